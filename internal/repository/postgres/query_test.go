package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditions(t *testing.T) {
	var c conditions
	assert.Equal(t, "", c.where())

	c.add("user_id = $%d", "u1")
	c.add("(title ILIKE $%[1]d OR slug ILIKE $%[1]d)", "%x%")
	assert.Equal(t, " WHERE user_id = $1 AND (title ILIKE $2 OR slug ILIKE $2)", c.where())

	clause, args := c.page(20, 40)
	assert.Equal(t, " LIMIT $3 OFFSET $4", clause)
	assert.Equal(t, []any{"u1", "%x%", 20, 40}, args)
	assert.Len(t, c.args, 2)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}
