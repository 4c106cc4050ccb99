// Package sqlstore implements backend.Client on MySQL for self-hosted and
// local deployments. Auth uses bcrypt hashes and HS256 access tokens; writes
// are published to an in-process realtime hub.
package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"zheliyou/internal/backend"
	intconfig "zheliyou/internal/config"
	"zheliyou/internal/domain"
	"zheliyou/internal/domain/models"
	"zheliyou/internal/realtime"
)

// DefaultTokenTTL matches the Supabase default access token lifetime.
const DefaultTokenTTL = time.Hour

// Schema is reported on change events, mirroring Postgres' default schema.
const Schema = "public"

type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	Now       func() time.Time
}

type Store struct {
	DB *sql.DB

	secret []byte
	ttl    time.Duration
	now    func() time.Time
	token  string

	schema *schemaCache
	hub    *realtime.Hub
}

var _ backend.Client = (*Store)(nil)

// New returns a store on db. A nil db falls back to the shared config.DB.
func New(db *sql.DB, opts Options) (*Store, error) {
	secret := strings.TrimSpace(opts.JWTSecret)
	if secret == "" {
		return nil, domain.ValidationError{Field: "jwt_secret", Msg: "is required"}
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		DB:     db,
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
		schema: &schemaCache{},
		hub:    realtime.NewHub(),
	}, nil
}

func (s *Store) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

// WithToken returns a copy bound to token. Schema cache and hub are shared.
func (s *Store) WithToken(token string) backend.Client {
	out := *s
	out.token = strings.TrimSpace(token)
	return &out
}

// Subscribe registers with the hub fed by this store's own writes.
func (s *Store) Subscribe(table string, filters []domain.Filter, listener realtime.Listener) (*realtime.Subscription, error) {
	return s.hub.NewSubscription(table, filters, listener, realtime.Hooks{})
}

func (s *Store) ready(ctx context.Context) error {
	if s.db() == nil {
		return domain.InternalError{Msg: "database not connected"}
	}
	if ctx != nil {
		return ctx.Err()
	}
	return nil
}

func (s *Store) publish(t models.ChangeType, table string, newRow, oldRow map[string]any) {
	s.hub.Publish(models.ChangeEvent{
		Type:            t,
		Schema:          Schema,
		Table:           table,
		New:             newRow,
		Old:             oldRow,
		CommitTimestamp: s.now().UTC(),
	})
}
