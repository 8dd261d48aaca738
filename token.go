package identity

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// TokenTTL is how long a freshly issued verification token stays valid.
var TokenTTL = 24 * time.Hour

// TokenByteLength is the entropy of a verification token before hex encoding.
// The rendered string is twice this length.
var TokenByteLength = 16

// HexTokenIssuer mints verification tokens from crypto/rand, rendered as
// fixed-length hex. No uniqueness re-check is performed against storage,
// collision probability at 16 bytes is negligible.
type HexTokenIssuer struct {
	ttl   time.Duration
	bytes int
	now   func() time.Time
}

var _ TokenIssuer = (*HexTokenIssuer)(nil)

// TokenIssuerOption customizes token issuance.
type TokenIssuerOption func(*HexTokenIssuer)

// WithTokenTTL overrides the default 24h validity window.
func WithTokenTTL(ttl time.Duration) TokenIssuerOption {
	return func(t *HexTokenIssuer) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithTokenClock injects a custom clock (useful for tests). The same clock
// must be the one the repository compares expiries against.
func WithTokenClock(clock func() time.Time) TokenIssuerOption {
	return func(t *HexTokenIssuer) {
		if clock != nil {
			t.now = clock
		}
	}
}

// NewTokenIssuer returns the default crypto/rand backed issuer.
func NewTokenIssuer(opts ...TokenIssuerOption) *HexTokenIssuer {
	issuer := &HexTokenIssuer{
		ttl:   TokenTTL,
		bytes: TokenByteLength,
		now:   time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(issuer)
		}
	}

	return issuer
}

// Issue generates an opaque token and its expiry timestamp.
func (t *HexTokenIssuer) Issue() (string, time.Time, error) {
	b := make([]byte, t.bytes)
	if _, err := rand.Read(b); err != nil {
		return "", time.Time{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to source token entropy")
	}

	return hex.EncodeToString(b), t.now().Add(t.ttl), nil
}
