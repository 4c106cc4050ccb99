package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryBuilders(t *testing.T) {
	q := Query{}.Where(Eq("creator_id", "u1")).OrderBy("created_at", false)
	assert.Len(t, q.Filters, 1)
	assert.False(t, q.Order[0].Ascending())
	assert.NoError(t, q.Validate())

	one := ByID("t1")
	assert.True(t, one.Single)
	assert.Equal(t, "id", one.Filters[0].Field)
}

func TestQueryValidate(t *testing.T) {
	err := Query{Filters: []Filter{{Field: "id", Op: "drop"}}}.Validate()
	assert.True(t, IsValidation(err))

	err = Query{AnyOf: []Filter{{Op: OpEq}}}.Validate()
	assert.True(t, IsValidation(err))

	err = Query{Limit: -1}.Validate()
	assert.EqualError(t, err, "limit: must not be negative")
}

func TestFilterValues(t *testing.T) {
	assert.Equal(t, "null", Filter{Field: "x", Op: OpIs}.ValueString())
	assert.Equal(t, "42", Eq("age", 42).ValueString())
	assert.Equal(t, []string{"a", "b"}, Filter{Op: OpIn, Value: []any{"a", "b"}}.Values())
	assert.Equal(t, []string{"a"}, Filter{Op: OpIn, Value: "a"}.Values())
}

func TestRequired(t *testing.T) {
	assert.NoError(t, Required("email", "a@b.c"))
	err := Required("email", "  ")
	assert.True(t, IsValidation(err))
	assert.EqualError(t, err, "email: is required")
}
