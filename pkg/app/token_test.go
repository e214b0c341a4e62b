package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenGenerateAndParse(t *testing.T) {
	tm := NewTokenManager(TokenConfig{
		SecretKey: "test-secret-key",
		Expiry:    time.Hour,
	})

	token, err := tm.Generate(42, "alice@example.com", "127.0.0.1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.UID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "127.0.0.1", user.IP)
	assert.Equal(t, DefaultTokenIssuer, user.Issuer)
}

func TestTokenParseWithWrongKey(t *testing.T) {
	tm := NewTokenManager(TokenConfig{
		SecretKey: "key-one",
		Expiry:    time.Hour,
	})

	token, err := tm.Generate(1, "bob@example.com", "")
	require.NoError(t, err)

	_, err = ParseTokenWithKey(token, "key-two")
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager(TokenConfig{
		SecretKey: "test-secret-key",
		Expiry:    -time.Minute,
	})

	token, err := tm.Generate(7, "carol@example.com", "")
	require.NoError(t, err)

	err = tm.Validate(token)
	assert.Error(t, err)
}

func TestTokenParseGarbage(t *testing.T) {
	_, err := ParseTokenWithKey("not-a-token", "whatever")
	assert.Error(t, err)
}
