package domain

import (
	"fmt"
	"strings"
)

// Table names owned by the backend.
const (
	TableUserProfiles = "user_profiles"
	TableTrips        = "trips"
	TableMatches      = "matches"
	TableAttractions  = "attractions"
)

// Filter operators understood by both backends.
const (
	OpEq    = "eq"
	OpNeq   = "neq"
	OpGt    = "gt"
	OpGte   = "gte"
	OpLt    = "lt"
	OpLte   = "lte"
	OpLike  = "like"
	OpIlike = "ilike"
	OpIs    = "is"
	OpIn    = "in"
)

var knownOps = map[string]bool{
	OpEq: true, OpNeq: true, OpGt: true, OpGte: true, OpLt: true, OpLte: true,
	OpLike: true, OpIlike: true, OpIs: true, OpIn: true,
}

// Sort defines sorting preference.
type Sort struct {
	Field     string `json:"field"`
	Direction string `json:"direction"` // asc / desc
}

// Ascending reports whether the sort direction is ascending (the default).
func (s Sort) Ascending() bool {
	return !strings.EqualFold(strings.TrimSpace(s.Direction), "desc")
}

// Filter expresses a simple filter clause.
type Filter struct {
	Field string `json:"field"`
	Op    string `json:"op"` // eq, neq, like, gt, lt, in, is ...
	Value any    `json:"value"`
}

func Eq(field string, value any) Filter  { return Filter{Field: field, Op: OpEq, Value: value} }
func Neq(field string, value any) Filter { return Filter{Field: field, Op: OpNeq, Value: value} }

// ValueString renders the filter value the way PostgREST expects it in a URL.
func (f Filter) ValueString() string {
	switch v := f.Value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}

// Values returns the filter value as a list, for "in" filters.
func (f Filter) Values() []string {
	switch v := f.Value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case nil:
		return nil
	default:
		return []string{f.ValueString()}
	}
}

// Validate checks the operator and field name.
func (f Filter) Validate() error {
	if strings.TrimSpace(f.Field) == "" {
		return ValidationError{Field: "filter", Msg: "field is required"}
	}
	if !knownOps[f.Op] {
		return ValidationError{Field: "filter", Msg: fmt.Sprintf("unsupported operator %q", f.Op)}
	}
	return nil
}

// Query describes a table read: row filters, an optional OR group,
// ordering, a limit and whether exactly one row is expected.
type Query struct {
	Columns string
	Filters []Filter
	AnyOf   []Filter
	Order   []Sort
	Limit   int
	Single  bool
}

func (q Query) Validate() error {
	for _, f := range q.Filters {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	for _, f := range q.AnyOf {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	for _, s := range q.Order {
		if strings.TrimSpace(s.Field) == "" {
			return ValidationError{Field: "order", Msg: "field is required"}
		}
	}
	if q.Limit < 0 {
		return ValidationError{Field: "limit", Msg: "must not be negative"}
	}
	return nil
}

// Where returns a copy of q with extra AND filters.
func (q Query) Where(filters ...Filter) Query {
	q.Filters = append(append([]Filter{}, q.Filters...), filters...)
	return q
}

// OrderBy returns a copy of q with an extra ordering clause.
func (q Query) OrderBy(field string, ascending bool) Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.Order = append(append([]Sort{}, q.Order...), Sort{Field: field, Direction: dir})
	return q
}

// One returns a copy of q that expects exactly one row.
func (q Query) One() Query {
	q.Single = true
	return q
}

// ByID selects exactly one row by primary key.
func ByID(id string) Query {
	return Query{Filters: []Filter{Eq("id", id)}, Single: true}
}
