// Package app builds the dependency graph shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"

	"zheliyou/internal/backend"
	"zheliyou/internal/backend/memstore"
	"zheliyou/internal/backend/sqlstore"
	"zheliyou/internal/backend/supabase"
	intconfig "zheliyou/internal/config"
	"zheliyou/internal/services"
	"zheliyou/internal/utils"
)

// Wire bundles the backend client and the services built on it.
type Wire struct {
	Env      intconfig.Env
	Backend  backend.Client
	Services services.Set

	close func()
}

// NewWire picks the backend named by env.Backend. The mysql backend opens
// the shared connection and runs its migrations.
func NewWire(ctx context.Context, env intconfig.Env) (*Wire, error) {
	var (
		client  backend.Client
		closeFn = func() {}
	)

	switch env.Backend {
	case intconfig.BackendSupabase:
		c, err := supabase.New(env.SupabaseURL, env.SupabaseAnonKey, supabase.Options{PollInterval: env.RealtimePollInterval})
		if err != nil {
			return nil, fmt.Errorf("supabase backend: %w", err)
		}
		client = c
	case intconfig.BackendMySQL:
		db, err := intconfig.ConnectDB(env.DBDSN)
		if err != nil {
			return nil, err
		}
		store, err := sqlstore.New(db, sqlstore.Options{JWTSecret: env.JWTSecret, TokenTTL: env.TokenTTL})
		if err != nil {
			intconfig.CloseDB()
			return nil, fmt.Errorf("mysql backend: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			intconfig.CloseDB()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		client = store
		closeFn = intconfig.CloseDB
	case intconfig.BackendMemory:
		client = memstore.New()
	default:
		return nil, fmt.Errorf("unknown BACKEND %q (want %s, %s or %s)", env.Backend, intconfig.BackendSupabase, intconfig.BackendMySQL, intconfig.BackendMemory)
	}

	utils.LogEvent("", "app", "wire", "backend="+env.Backend)
	return FromBackend(env, client, closeFn), nil
}

// FromBackend wires services over an existing client; tests use it with fakes.
func FromBackend(env intconfig.Env, client backend.Client, closeFn func()) *Wire {
	return &Wire{
		Env:      env,
		Backend:  client,
		Services: services.NewSet(client),
		close:    closeFn,
	}
}

func (w *Wire) Close() {
	if w != nil && w.close != nil {
		w.close()
	}
}
