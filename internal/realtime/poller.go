package realtime

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"zheliyou/internal/domain/models"
	"zheliyou/internal/utils"
)

// DefaultPollInterval is used when a Poller or PollGroup has no interval.
const DefaultPollInterval = 3 * time.Second

// FetchFunc reads the current rows of a table.
type FetchFunc func(ctx context.Context) ([]map[string]any, error)

// Poller turns periodic table reads into change events.
type Poller struct {
	Table    string
	Schema   string
	Key      string
	Interval time.Duration
	Fetch    FetchFunc
	Publish  func(models.ChangeEvent)
	Now      func() time.Time

	snapshot map[string]map[string]any
	primed   bool
}

// Run polls until ctx is cancelled. Fetch errors are logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if err := p.Tick(ctx); err != nil {
		utils.LogEvent("", "realtime", "poll", fmt.Sprintf("table=%s error=%v", p.Table, err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Tick(ctx); err != nil {
				utils.LogEvent("", "realtime", "poll", fmt.Sprintf("table=%s error=%v", p.Table, err))
			}
		}
	}
}

// Tick performs one read and publishes the diff. The first successful tick
// only records the baseline.
func (p *Poller) Tick(ctx context.Context) error {
	rows, err := p.Fetch(ctx)
	if err != nil {
		return err
	}

	key := p.Key
	if key == "" {
		key = "id"
	}
	next := make(map[string]map[string]any, len(rows))
	for _, row := range rows {
		id, ok := row[key]
		if !ok || id == nil {
			continue
		}
		next[fmt.Sprint(id)] = row
	}

	if !p.primed {
		p.snapshot = next
		p.primed = true
		return nil
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	schema := p.Schema
	if schema == "" {
		schema = "public"
	}
	emit := func(t models.ChangeType, newRow, oldRow map[string]any) {
		if p.Publish == nil {
			return
		}
		p.Publish(models.ChangeEvent{
			Type:            t,
			Schema:          schema,
			Table:           p.Table,
			New:             newRow,
			Old:             oldRow,
			CommitTimestamp: now().UTC(),
		})
	}

	for _, id := range sortedKeys(next) {
		row := next[id]
		old, existed := p.snapshot[id]
		switch {
		case !existed:
			emit(models.ChangeInsert, row, nil)
		case !reflect.DeepEqual(old, row):
			emit(models.ChangeUpdate, row, old)
		}
	}
	for _, id := range sortedKeys(p.snapshot) {
		if _, still := next[id]; !still {
			emit(models.ChangeDelete, nil, p.snapshot[id])
		}
	}

	p.snapshot = next
	return nil
}

func sortedKeys(m map[string]map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PollGroup runs at most one Poller per (scope, table), shared by reference
// count. A poller publishes into its own scope only, so callers that poll
// with different credentials never see each other's rows.
type PollGroup struct {
	Hub      *Hub
	Interval time.Duration

	mu      sync.Mutex
	pollers map[pollKey]*pollEntry
}

type pollKey struct {
	scope string
	table string
}

type pollEntry struct {
	refs   int
	cancel context.CancelFunc
}

// Acquire starts (or joins) the poller for table under scope and returns its
// release func. fetch is only used when a new poller is started.
func (g *PollGroup) Acquire(scope, table string, fetch FetchFunc) func() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pollers == nil {
		g.pollers = map[pollKey]*pollEntry{}
	}
	key := pollKey{scope: scope, table: table}
	entry, ok := g.pollers[key]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		entry = &pollEntry{cancel: cancel}
		g.pollers[key] = entry
		hub := g.Hub
		p := &Poller{
			Table:    table,
			Interval: g.Interval,
			Fetch:    fetch,
			Publish:  func(e models.ChangeEvent) { hub.PublishScoped(scope, e) },
		}
		go p.Run(ctx)
	}
	entry.refs++

	var once sync.Once
	return func() {
		once.Do(func() { g.release(key) })
	}
}

// Watching returns the number of running pollers.
func (g *PollGroup) Watching() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pollers)
}

func (g *PollGroup) release(key pollKey) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.pollers[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		entry.cancel()
		delete(g.pollers, key)
	}
}
