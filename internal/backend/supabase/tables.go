package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	postgrest "github.com/supabase-community/postgrest-go"

	"zheliyou/internal/domain"
)

func (c *Client) Select(ctx context.Context, table string, q domain.Query, out any) error {
	if err := c.check(ctx, table, q); err != nil {
		return err
	}
	columns := strings.TrimSpace(q.Columns)
	if columns == "" {
		columns = "*"
	}
	fb := applyQuery(c.sdk.From(table).Select(columns, "", false), q)
	_, err := fb.ExecuteTo(out)
	return translate(err)
}

func (c *Client) Insert(ctx context.Context, table string, record any, out any) error {
	if err := c.check(ctx, table, domain.Query{}); err != nil {
		return err
	}
	body, err := marshalBody(record)
	if err != nil {
		return err
	}
	fb := c.sdk.From(table).Insert(body, false, "", returning(out), "")
	return c.finish(fb, out)
}

func (c *Client) Update(ctx context.Context, table string, q domain.Query, patch any, out any) error {
	if err := c.check(ctx, table, q); err != nil {
		return err
	}
	if len(q.Filters) == 0 && len(q.AnyOf) == 0 {
		return domain.ValidationError{Field: "update", Msg: "refusing to update without a filter"}
	}
	body, err := marshalBody(patch)
	if err != nil {
		return err
	}
	fb := applyQuery(c.sdk.From(table).Update(body, returning(out), ""), q)
	return c.finish(fb, out)
}

func (c *Client) Delete(ctx context.Context, table string, q domain.Query) error {
	if err := c.check(ctx, table, q); err != nil {
		return err
	}
	if len(q.Filters) == 0 && len(q.AnyOf) == 0 {
		return domain.ValidationError{Field: "delete", Msg: "refusing to delete without a filter"}
	}
	q.Single = false
	fb := applyQuery(c.sdk.From(table).Delete("minimal", ""), q)
	_, _, err := fb.Execute()
	return translate(err)
}

func (c *Client) check(ctx context.Context, table string, q domain.Query) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if err := domain.Required("table", table); err != nil {
		return err
	}
	return q.Validate()
}

func (c *Client) finish(fb *postgrest.FilterBuilder, out any) error {
	if out == nil {
		_, _, err := fb.Execute()
		return translate(err)
	}
	if !isSlicePtr(out) {
		fb = fb.Single()
	}
	_, err := fb.ExecuteTo(out)
	return translate(err)
}

func applyQuery(fb *postgrest.FilterBuilder, q domain.Query) *postgrest.FilterBuilder {
	for _, f := range q.Filters {
		if f.Op == domain.OpIn {
			fb = fb.In(f.Field, f.Values())
			continue
		}
		fb = fb.Filter(f.Field, f.Op, f.ValueString())
	}
	if len(q.AnyOf) > 0 {
		fb = fb.Or(orExpression(q.AnyOf), "")
	}
	for _, s := range q.Order {
		fb = fb.Order(s.Field, &postgrest.OrderOpts{Ascending: s.Ascending()})
	}
	if q.Limit > 0 {
		fb = fb.Limit(q.Limit, "")
	}
	if q.Single {
		fb = fb.Single()
	}
	return fb
}

// orExpression renders filters in PostgREST's or=(a.eq.1,b.eq.1) syntax.
func orExpression(filters []domain.Filter) string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		if f.Op == domain.OpIn {
			parts = append(parts, fmt.Sprintf("%s.in.(%s)", f.Field, strings.Join(f.Values(), ",")))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s.%s.%s", f.Field, f.Op, f.ValueString()))
	}
	return strings.Join(parts, ",")
}

// marshalBody encodes up front; postgrest-go stores marshal failures on the
// shared client and fails every later request.
func marshalBody(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, domain.ValidationError{Field: "body", Msg: "is required"}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, domain.ValidationError{Field: "body", Msg: "cannot be encoded", Err: err}
	}
	return b, nil
}

func returning(out any) string {
	if out == nil {
		return "minimal"
	}
	return "representation"
}

func isSlicePtr(out any) bool {
	t := reflect.TypeOf(out)
	return t != nil && t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Slice
}
