package httpmiddleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucket_Allow(t *testing.T) {
	l := NewTokenBucket(2, 2)

	assert.True(t, l.allow("10.0.0.5"))
	assert.True(t, l.allow("10.0.0.5"))
	assert.False(t, l.allow("10.0.0.5"), "bucket exhausted")

	t.Run("clients have independent buckets", func(t *testing.T) {
		assert.True(t, l.allow("10.0.0.6"))
	})
}

func TestTokenBucket_DefaultCapacity(t *testing.T) {
	l := NewTokenBucket(0, 3)
	assert.True(t, l.allow("a"))
	assert.True(t, l.allow("a"))
	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))
}
