package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyFilterRendersNothing(t *testing.T) {
	where, args := NewFilter().Where()
	assert.Equal(t, "", where)
	assert.Nil(t, args)
	assert.True(t, NewFilter().Empty())
}

func TestSinglePredicate(t *testing.T) {
	where, args := NewFilter().Equal("status", "CONFIRMED").Where()
	assert.Equal(t, " WHERE status = $1", where)
	assert.Equal(t, []any{"CONFIRMED"}, args)
}

func TestPredicatesComposeWithAndInOrder(t *testing.T) {
	f := NewFilter().
		Equal("status", "SHIPPED").
		Equal("user_id", 7).
		GreaterOrEqual("created_at", "2026-01-01T00:00:00Z").
		LessOrEqual("created_at", "2026-02-01T00:00:00Z")

	where, args := f.Where()
	assert.Equal(t,
		" WHERE status = $1 AND user_id = $2 AND created_at >= $3 AND created_at <= $4",
		where)
	assert.Equal(t, []any{"SHIPPED", 7, "2026-01-01T00:00:00Z", "2026-02-01T00:00:00Z"}, args)
}

func TestLikePredicatesWrapValue(t *testing.T) {
	where, args := NewFilter().ILike("email", "shop").Where()
	assert.Equal(t, " WHERE email ILIKE $1", where)
	assert.Equal(t, []any{"%shop%"}, args)

	where, args = NewFilter().Prefix("code", "SK-2026").Where()
	assert.Equal(t, " WHERE code ILIKE $1", where)
	assert.Equal(t, []any{"SK-2026%"}, args)
}
