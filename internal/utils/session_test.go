package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	tok, err := NewSessionToken("secret", 42, "creator", true)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Raw)
	assert.Equal(t, HashSessionRaw(tok.Raw), tok.Hash)

	claims, err := ParseSessionToken("secret", tok.Raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "creator", claims.Role)
	assert.True(t, claims.Moderator)
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	tok, err := NewSessionToken("secret", 7, "reader", false)
	require.NoError(t, err)

	_, err = ParseSessionToken("other-secret", tok.Raw)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestParseSessionToken_Tampered(t *testing.T) {
	tok, err := NewSessionToken("secret", 7, "reader", false)
	require.NoError(t, err)

	// Flip a character inside the payload segment.
	parts := strings.Split(tok.Raw, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	parts[1] = string(payload)

	_, err = ParseSessionToken("secret", strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestParseSessionToken_Garbage(t *testing.T) {
	_, err := ParseSessionToken("secret", "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestHashSessionRaw_Stable(t *testing.T) {
	a := HashSessionRaw("token")
	b := HashSessionRaw("token")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // sha256 hex
	assert.NotEqual(t, a, HashSessionRaw("other"))
}
