package identity

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// IdentityService orchestrates registration, login, verification, and
// session-state checks. Every operation reports its outcome twice: a one-shot
// notification written to the session, and a typed error for callers that
// need programmatic discrimination.
type IdentityService interface {
	Register(ctx context.Context, session *Session, email, username, password string) (bool, error)
	Login(ctx context.Context, session *Session, email, password string) (bool, error)
	VerifyAccount(ctx context.Context, session *Session, token string) (bool, error)
	CheckSession(session *Session) bool
	Logout(session *Session)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// TokenIssuer mints opaque verification tokens with their expiry.
type TokenIssuer interface {
	Issue() (token string, expiresAt time.Time, err error)
}

// Notifier delivers a verification message carrying the token to a mailbox.
type Notifier interface {
	SendVerification(ctx context.Context, email, token string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] IDENTITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] IDENTITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] IDENTITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] IDENTITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
