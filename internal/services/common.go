package services

import (
	"context"
	"strings"

	"zheliyou/internal/backend"
	"zheliyou/internal/domain"
)

func ready(b backend.Client) error {
	if b == nil {
		return domain.InternalError{Msg: "backend not configured"}
	}
	return nil
}

// selectOne reads exactly one row of table into a T.
func selectOne[T any](ctx context.Context, b backend.Client, table string, q domain.Query) (T, error) {
	var out T
	if err := ready(b); err != nil {
		return out, err
	}
	err := b.Select(ctx, table, q.One(), &out)
	return out, err
}

// selectAll reads every matching row; an empty result is an empty, non-nil slice.
func selectAll[T any](ctx context.Context, b backend.Client, table string, q domain.Query) ([]T, error) {
	out := []T{}
	if err := ready(b); err != nil {
		return out, err
	}
	if err := b.Select(ctx, table, q, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func insertOne[T any](ctx context.Context, b backend.Client, table string, record any) (T, error) {
	var out T
	if err := ready(b); err != nil {
		return out, err
	}
	err := b.Insert(ctx, table, record, &out)
	return out, err
}

func updateByID[T any](ctx context.Context, b backend.Client, table, id string, patch map[string]any) (T, error) {
	var out T
	if err := ready(b); err != nil {
		return out, err
	}
	if err := domain.Required("id", id); err != nil {
		return out, err
	}
	if len(patch) == 0 {
		return out, domain.ValidationError{Field: "updates", Msg: "must not be empty"}
	}
	err := b.Update(ctx, table, domain.ByID(strings.TrimSpace(id)), patch, &out)
	return out, err
}
