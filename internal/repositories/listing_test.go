package repositories

import (
	"testing"

	"resto_pos_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSearchCondition(t *testing.T) {
	fields := FieldMap{"name": "f.name", "description": "f.description"}

	condition, args := SearchCondition("burger", fields, 3)
	assert.Equal(t, "(f.description ILIKE $3 OR f.name ILIKE $4)", condition)
	assert.Equal(t, []interface{}{"%burger%", "%burger%"}, args)
}

func TestSearchConditionEmpty(t *testing.T) {
	condition, args := SearchCondition("", FieldMap{"name": "name"}, 1)
	assert.Empty(t, condition)
	assert.Nil(t, args)

	condition, args = SearchCondition("burger", FieldMap{}, 1)
	assert.Empty(t, condition)
	assert.Nil(t, args)
}

func TestOrderByClause(t *testing.T) {
	fields := FieldMap{"name": "name", "price": "f.price", "created_at": "f.created_at"}

	testCases := []struct {
		sortExpr string
		expected string
	}{
		{"name", " ORDER BY name ASC"},
		{"-price", " ORDER BY f.price DESC"},
		{"name,-created_at", " ORDER BY name ASC, f.created_at DESC"},
		{" price , name", " ORDER BY f.price ASC, name ASC"},
		// Unknown columns are skipped, not rejected.
		{"bogus", ""},
		{"bogus,-price", " ORDER BY f.price DESC"},
		{"", ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, OrderByClause(tc.sortExpr, fields), "sort=%q", tc.sortExpr)
	}
}

func TestLimitOffsetClause(t *testing.T) {
	clause, args := LimitOffsetClause(models.ListOptions{Limit: 15, Page: 3}, 2)
	assert.Equal(t, " LIMIT $2 OFFSET $3", clause)
	assert.Equal(t, []interface{}{15, 30}, args)
}

func TestLimitOffsetClauseUnpaginated(t *testing.T) {
	clause, args := LimitOffsetClause(models.ListOptions{Limit: 0, Page: 5}, 1)
	assert.Empty(t, clause)
	assert.Nil(t, args)

	clause, args = LimitOffsetClause(models.ListOptions{Limit: -1}, 1)
	assert.Empty(t, clause)
	assert.Nil(t, args)
}

func TestLimitOffsetClausePageFloor(t *testing.T) {
	clause, args := LimitOffsetClause(models.ListOptions{Limit: 10, Page: 0}, 4)
	assert.Equal(t, " LIMIT $4 OFFSET $5", clause)
	assert.Equal(t, []interface{}{10, 0}, args)
}
