package identity_test

import (
	"encoding/hex"
	"testing"
	"time"

	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuerExpiry(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	issuer := identity.NewTokenIssuer(
		identity.WithTokenClock(func() time.Time { return now }),
	)

	token, expiresAt, err := issuer.Issue()
	require.NoError(t, err)

	assert.Equal(t, now.Add(24*time.Hour), expiresAt)
	assert.Len(t, token, 32)

	// Fixed-length hex from 16 random bytes.
	raw, err := hex.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, raw, 16)
}

func TestTokenIssuerCustomTTL(t *testing.T) {
	now := time.Now()

	issuer := identity.NewTokenIssuer(
		identity.WithTokenTTL(time.Hour),
		identity.WithTokenClock(func() time.Time { return now }),
	)

	_, expiresAt, err := issuer.Issue()
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)
}

func TestTokenIssuerProducesDistinctTokens(t *testing.T) {
	issuer := identity.NewTokenIssuer()

	a, _, err := issuer.Issue()
	require.NoError(t, err)
	b, _, err := issuer.Issue()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
