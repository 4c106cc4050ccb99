package supabase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"zheliyou/internal/domain"
	"zheliyou/internal/realtime"
)

// Subscribe watches table by polling. Subscriptions made with the same token
// share one poller per table and only see rows that token can read.
func (c *Client) Subscribe(table string, filters []domain.Filter, listener realtime.Listener) (*realtime.Subscription, error) {
	if err := c.ready(context.Background()); err != nil {
		return nil, err
	}
	scope := c.scope()
	var release func()
	return c.hub.NewScopedSubscription(scope, table, filters, listener, realtime.Hooks{
		OnStart: func() error {
			release = c.polls.Acquire(scope, table, c.fetchAll(table))
			return nil
		},
		OnStop: func() {
			if release != nil {
				release()
			}
		},
	})
}

func (c *Client) fetchAll(table string) realtime.FetchFunc {
	return func(ctx context.Context) ([]map[string]any, error) {
		var rows []map[string]any
		if err := c.Select(ctx, table, domain.Query{}, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}
}

// scope identifies the principal the poller runs as without keeping the raw token as a key.
func (c *Client) scope() string {
	if c.token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(c.token))
	return hex.EncodeToString(sum[:])
}
