// Package backend defines the capability set of the backend-as-a-service
// that the services call through remote.Invoke.
//
// Implementations report domain-level failures as *remote.ServiceError and
// everything else (network, decoding) as plain errors.
package backend

import (
	"context"

	"zheliyou/internal/domain"
	"zheliyou/internal/domain/models"
	"zheliyou/internal/realtime"
)

// Client is safe for concurrent use. WithToken returns a copy scoped to the
// principal owning token; the receiver is left unchanged.
type Client interface {
	SignUp(ctx context.Context, creds models.Credentials) (models.Session, error)
	SignIn(ctx context.Context, email, password string) (models.Session, error)
	SignOut(ctx context.Context) error
	CurrentUser(ctx context.Context) (models.Principal, error)
	WithToken(token string) Client

	// Select decodes matching rows into out: a slice pointer, or a struct
	// pointer when q.Single is set.
	Select(ctx context.Context, table string, q domain.Query, out any) error
	// Insert stores record and decodes the stored row into out when out is non-nil.
	Insert(ctx context.Context, table string, record any, out any) error
	// Update patches rows matching q and decodes them into out when out is non-nil.
	Update(ctx context.Context, table string, q domain.Query, patch any, out any) error
	Delete(ctx context.Context, table string, q domain.Query) error

	// Subscribe returns a not-yet-started subscription on table.
	Subscribe(table string, filters []domain.Filter, listener realtime.Listener) (*realtime.Subscription, error)
}

// Single-row PostgREST error, reused by every backend so callers see one code.
const (
	CodeSingleRow = "PGRST116"
	MsgSingleRow  = "JSON object requested, multiple (or no) rows returned"
)

// Duplicate-key error code (PostgreSQL unique_violation).
const CodeUniqueViolation = "23505"
