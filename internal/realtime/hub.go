package realtime

import (
	"fmt"
	"sync"

	"zheliyou/internal/domain"
	"zheliyou/internal/domain/models"
	"zheliyou/internal/utils"
)

// DefaultBuffer is the per-subscription event buffer.
const DefaultBuffer = 64

// Listener receives change events for one subscription, one at a time.
type Listener func(models.ChangeEvent)

// Hooks run when a subscription starts and after it stops.
type Hooks struct {
	OnStart func() error
	OnStop  func()
}

type Hub struct {
	Buffer int

	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*Subscription
}

func NewHub() *Hub {
	return &Hub{Buffer: DefaultBuffer, subs: map[uint64]*Subscription{}}
}

// NewSubscription prepares a subscription for table; it receives nothing
// until Start is called. Only eq and neq filters are supported.
func (h *Hub) NewSubscription(table string, filters []domain.Filter, listener Listener, hooks Hooks) (*Subscription, error) {
	return h.NewScopedSubscription("", table, filters, listener, hooks)
}

// NewScopedSubscription is NewSubscription for events published under scope.
// A scoped subscription never sees events from another scope.
func (h *Hub) NewScopedSubscription(scope, table string, filters []domain.Filter, listener Listener, hooks Hooks) (*Subscription, error) {
	if err := domain.Required("table", table); err != nil {
		return nil, err
	}
	if listener == nil {
		return nil, domain.ValidationError{Field: "listener", Msg: "is required"}
	}
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		if f.Op != domain.OpEq && f.Op != domain.OpNeq {
			return nil, domain.ValidationError{Field: "filter", Msg: fmt.Sprintf("realtime supports eq and neq only, got %q", f.Op)}
		}
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.mu.Unlock()

	return &Subscription{
		hub:      h,
		id:       id,
		scope:    scope,
		table:    table,
		filters:  append([]domain.Filter{}, filters...),
		listener: listener,
		hooks:    hooks,
	}, nil
}

// Publish hands e to every active unscoped subscription that matches it. It never blocks.
func (h *Hub) Publish(e models.ChangeEvent) {
	h.PublishScoped("", e)
}

// PublishScoped delivers e only to subscriptions created under scope.
func (h *Hub) PublishScoped(scope string, e models.ChangeEvent) {
	h.mu.RLock()
	targets := make([]*Subscription, 0, len(h.subs))
	for _, s := range h.subs {
		if s.scope == scope && s.matches(e) {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range targets {
		s.deliver(e)
	}
}

// Len returns the number of active subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) register(s *Subscription) {
	h.mu.Lock()
	if h.subs == nil {
		h.subs = map[uint64]*Subscription{}
	}
	h.subs[s.id] = s
	h.mu.Unlock()
}

func (h *Hub) unregister(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s.id)
	h.mu.Unlock()
}

func (h *Hub) bufferSize() int {
	if h.Buffer > 0 {
		return h.Buffer
	}
	return DefaultBuffer
}

func logDrop(table string, reason string) {
	utils.LogEvent("", "realtime", "deliver", fmt.Sprintf("table=%s %s", table, reason))
}
