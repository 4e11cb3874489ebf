package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionID(t *testing.T) {
	a, err := NewSessionID()
	require.NoError(t, err)

	b, err := NewSessionID()
	require.NoError(t, err)

	assert.Len(t, a, SessionIDLen*2) // hex encoded
	assert.NotEqual(t, a, b)
}

func TestNew(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		tok, err := New()
		require.NoError(t, err)
		require.Len(t, tok, CredentialLen)

		for _, r := range tok {
			assert.True(t, strings.ContainsRune(alphabet, r), "unexpected character %q", r)
		}

		assert.False(t, seen[tok], "token generated twice")
		seen[tok] = true
	}
}

func TestNewLen(t *testing.T) {
	tok, err := NewLen(0)
	require.NoError(t, err)
	assert.Empty(t, tok)

	tok, err = NewLen(100)
	require.NoError(t, err)
	assert.Len(t, tok, 100)
}
