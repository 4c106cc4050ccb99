// Package remote normalises calls against the backend-as-a-service into a
// single Result shape.
//
// Every backend capability (auth, table reads and writes, realtime
// subscribe) is passed to Invoke as an Operation. Invoke never returns an
// error and never panics: a service-reported error (ServiceError) and a
// transport failure both become a Failure carrying a human-readable
// message, and the failure is logged with the request id from the context.
// There is no retry, backoff or timeout at this layer.
package remote
