package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	token, exp, err := Issue("operator", "operator", "rollcall", "secret", time.Minute)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := Parse(token, "secret", "rollcall")
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Subject)
	assert.Equal(t, "operator", claims.Role)
}

func TestParse_Rejects(t *testing.T) {
	token, _, err := Issue("operator", "operator", "rollcall", "secret", time.Minute)
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		_, err := Parse(token, "other", "rollcall")
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := Parse(token, "secret", "someone-else")
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		old, _, err := Issue("operator", "operator", "rollcall", "secret", -time.Minute)
		require.NoError(t, err)
		_, err = Parse(old, "secret", "rollcall")
		assert.Error(t, err)
	})
}
