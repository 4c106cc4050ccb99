package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"zheliyou/internal/domain"
	"zheliyou/internal/domain/models"
)

var ErrStopped = errors.New("subscription already stopped")

// Subscription is a handle on a stream of change events for one table.
type Subscription struct {
	hub      *Hub
	id       uint64
	scope    string
	table    string
	filters  []domain.Filter
	listener Listener
	hooks    Hooks

	mu      sync.Mutex
	active  bool
	stopped bool
	events  chan models.ChangeEvent
	done    chan struct{}
}

func (s *Subscription) Table() string { return s.table }

// Start begins delivery. Cancelling ctx stops the subscription.
// Starting an active subscription is a no-op; a stopped one cannot restart.
func (s *Subscription) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.active {
		return nil
	}
	if s.hooks.OnStart != nil {
		if err := s.hooks.OnStart(); err != nil {
			return err
		}
	}

	s.events = make(chan models.ChangeEvent, s.hub.bufferSize())
	s.done = make(chan struct{})
	s.active = true
	s.hub.register(s)
	go s.loop(ctx, s.events, s.done)
	return nil
}

// Stop ends delivery; events still buffered are discarded. Safe to call twice.
func (s *Subscription) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	if !s.active {
		return
	}
	s.active = false
	s.hub.unregister(s)
	close(s.done)
	if s.hooks.OnStop != nil {
		s.hooks.OnStop()
	}
}

// Active reports whether the subscription is currently delivering.
func (s *Subscription) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Subscription) loop(ctx context.Context, events <-chan models.ChangeEvent, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			s.Stop()
			return
		case e := <-events:
			s.call(e)
		}
	}
}

func (s *Subscription) call(e models.ChangeEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			logDrop(s.table, fmt.Sprintf("listener panic: %v", rec))
		}
	}()
	s.listener(e)
}

func (s *Subscription) deliver(e models.ChangeEvent) {
	s.mu.Lock()
	events := s.events
	active := s.active
	s.mu.Unlock()
	if !active {
		return
	}
	select {
	case events <- e:
	default:
		logDrop(s.table, "buffer full, event dropped")
	}
}

func (s *Subscription) matches(e models.ChangeEvent) bool {
	if e.Table != s.table {
		return false
	}
	record := e.Record()
	for _, f := range s.filters {
		got := fmt.Sprint(record[f.Field])
		if _, ok := record[f.Field]; !ok {
			got = "null"
		}
		equal := got == f.ValueString()
		if f.Op == domain.OpEq && !equal {
			return false
		}
		if f.Op == domain.OpNeq && equal {
			return false
		}
	}
	return true
}
