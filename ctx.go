package identity

import (
	"context"
)

var sessionCtxKey = &contextKey{"session"}
var accountCtxKey = &contextKey{"account"}

type contextKey struct {
	name string
}

// WithSessionContext sets the Session in the given context
func WithSessionContext(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, session)
}

// SessionFromContext finds the session from the context.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(*Session)
	return raw, ok
}

// WithAccountContext sets the Account in the given context
func WithAccountContext(ctx context.Context, account *Account) context.Context {
	return context.WithValue(ctx, accountCtxKey, account)
}

// AccountFromContext finds the account from the context.
func AccountFromContext(ctx context.Context) (*Account, bool) {
	raw, ok := ctx.Value(accountCtxKey).(*Account)
	return raw, ok
}
