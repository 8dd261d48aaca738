package identity_test

import (
	"testing"

	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true, // bcrypt can hash empty strings!
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := identity.HashPassword(tt.password)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, hash)

			err = identity.ComparePasswordAndHash(tt.password, hash)
			assert.NoError(t, err)
		})
	}
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "testPassword123!"
	hash, err := identity.HashPassword(password)
	assert.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  bool
	}{
		{
			name:     "Matching password",
			password: password,
			hash:     hash,
			wantErr:  false,
		},
		{
			name:     "Wrong password",
			password: "wrongPassword",
			hash:     hash,
			wantErr:  true,
		},
		{
			name:     "Garbage hash",
			password: password,
			hash:     "not-a-bcrypt-hash",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := identity.ComparePasswordAndHash(tt.password, tt.hash)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestComparePasswordAndHashSentinel(t *testing.T) {
	hash, err := identity.HashPassword("a-password")
	assert.NoError(t, err)

	err = identity.ComparePasswordAndHash("another-password", hash)
	assert.ErrorIs(t, err, identity.ErrMismatchedHashAndPassword)
}

func TestBcryptAuthenticatorRoundTrip(t *testing.T) {
	hasher := identity.BcryptAuthenticator{}

	hash, err := hasher.HashPassword("a-password")
	assert.NoError(t, err)
	assert.NoError(t, hasher.ComparePasswordAndHash("a-password", hash))
	assert.Error(t, hasher.ComparePasswordAndHash("other", hash))
}
