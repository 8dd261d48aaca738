package identity_test

import (
	"context"
	"database/sql"
	"time"

	identity "github.com/goliatone/go-identity"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockAccounts implements identity.Accounts for the methods the service
// touches. The embedded repository interface covers the rest of the surface.
type MockAccounts struct {
	mock.Mock
	repository.Repository[*identity.Account]
}

func (m *MockAccounts) GetByUsernameOrEmail(ctx context.Context, username, email string) (*identity.Account, error) {
	args := m.Called(ctx, username, email)
	if acc, ok := args.Get(0).(*identity.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) GetByUsernameOrEmailTx(ctx context.Context, tx bun.IDB, username, email string) (*identity.Account, error) {
	return m.GetByUsernameOrEmail(ctx, username, email)
}

func (m *MockAccounts) GetByToken(ctx context.Context, token string) (*identity.Account, error) {
	args := m.Called(ctx, token)
	if acc, ok := args.Get(0).(*identity.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*identity.Account, error) {
	return m.GetByToken(ctx, token)
}

func (m *MockAccounts) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*identity.Account, error) {
	args := m.Called(ctx, identifier)
	if acc, ok := args.Get(0).(*identity.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) RegisterPending(ctx context.Context, account *identity.Account) (*identity.Account, error) {
	args := m.Called(ctx, account)
	if acc, ok := args.Get(0).(*identity.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) RegisterPendingTx(ctx context.Context, tx bun.IDB, account *identity.Account) (*identity.Account, error) {
	return m.RegisterPending(ctx, account)
}

func (m *MockAccounts) Activate(ctx context.Context, id uuid.UUID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockAccounts) ActivateTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error {
	return m.Activate(ctx, id, token)
}

// stubManager wires an Accounts fake behind the RepositoryManager interface.
type stubManager struct {
	accounts identity.Accounts
}

func (s stubManager) Accounts() identity.Accounts {
	return s.accounts
}

func (s stubManager) Validate() error {
	return nil
}

func (s stubManager) MustValidate() {}

func (s stubManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

// MockNotifier implements identity.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerification(ctx context.Context, email, token string) error {
	args := m.Called(ctx, email, token)
	return args.Error(0)
}

// stubTokenIssuer returns a canned token/expiry pair.
type stubTokenIssuer struct {
	token     string
	expiresAt time.Time
	err       error
}

func (s stubTokenIssuer) Issue() (string, time.Time, error) {
	return s.token, s.expiresAt, s.err
}

// capturingSink collects activity events for assertions.
type capturingSink struct {
	events []identity.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt identity.ActivityEvent) error {
	c.events = append(c.events, evt)
	return nil
}
