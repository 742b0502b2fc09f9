package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildWhere(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		where, args := buildWhere(map[string]string{"mentee_id": "", "status": ""})
		assert.Empty(t, where)
		assert.Empty(t, args)
	})

	t.Run("stable column order", func(t *testing.T) {
		where, args := buildWhere(map[string]string{
			"status":    "active",
			"mentee_id": "mentee-1",
			"mentor_id": "",
		})
		assert.Equal(t, " WHERE mentee_id = $1 AND status = $2", where)
		assert.Equal(t, []any{"mentee-1", "active"}, args)
	})
}

func TestNilIfEmpty(t *testing.T) {
	assert.Nil(t, nilIfEmpty(""))
	v := nilIfEmpty("x")
	if assert.NotNil(t, v) {
		assert.Equal(t, "x", *v)
	}
	assert.Equal(t, "", valueOrEmpty(nil))
}
