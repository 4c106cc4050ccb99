// Package realtime delivers row-change events to registered listeners.
//
// A Hub fans published ChangeEvents out to Subscriptions whose table and
// equality filters match. Each Subscription owns one delivery goroutine fed
// through a bounded buffer; when the buffer is full the event is dropped and
// logged. There is no replay: a listener only sees events published while
// its subscription is active.
//
// Backends that cannot push changes use a Poller, which re-reads a table on
// an interval and publishes the INSERT/UPDATE/DELETE diff against the
// previous snapshot. PollGroup shares one poller per table between all
// subscriptions on that table.
package realtime
