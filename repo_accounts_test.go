package identity_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	identity "github.com/goliatone/go-identity"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const sqliteCreateAccounts = `CREATE TABLE accounts (
    id TEXT NOT NULL PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    token TEXT NULL,
    token_expires_at TIMESTAMP NULL,
    status TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP
);`

func setupAccountsRepo(t *testing.T) (identity.Accounts, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.Exec(sqliteCreateAccounts)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = bunDB.Close()
		_ = sqldb.Close()
	})

	return identity.NewAccountsRepository(bunDB), bunDB
}

func pendingAccount(username, email, token string, expiresAt time.Time) *identity.Account {
	return &identity.Account{
		Username:       username,
		Email:          email,
		PasswordHash:   "$2a$14$not-a-real-hash",
		Token:          &token,
		TokenExpiresAt: &expiresAt,
		Status:         identity.AccountStatusPending,
	}
}

func TestRegisterPendingAppliesDefaults(t *testing.T) {
	repo, _ := setupAccountsRepo(t)
	ctx := context.Background()

	account := &identity.Account{
		Username:     "alice",
		Email:        "a@x.com",
		PasswordHash: "hash",
	}

	created, err := repo.RegisterPending(ctx, account)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, identity.AccountStatusPending, created.Status)
}

func TestUniqueConstraintsHoldAcrossStatuses(t *testing.T) {
	repo, _ := setupAccountsRepo(t)
	ctx := context.Background()

	expiresAt := time.Now().Add(24 * time.Hour)

	first, err := repo.RegisterPending(ctx, pendingAccount("alice", "a@x.com", "tok-1", expiresAt))
	require.NoError(t, err)

	// Activate the first account; its email must stay reserved.
	require.NoError(t, repo.Activate(ctx, first.ID, "tok-1"))

	_, err = repo.RegisterPending(ctx, pendingAccount("someone", "a@x.com", "tok-2", expiresAt))
	assert.Error(t, err)

	_, err = repo.RegisterPending(ctx, pendingAccount("alice", "other@x.com", "tok-3", expiresAt))
	assert.Error(t, err)
}

func TestGetByUsernameOrEmailMatchesEither(t *testing.T) {
	repo, _ := setupAccountsRepo(t)
	ctx := context.Background()

	expiresAt := time.Now().Add(24 * time.Hour)
	_, err := repo.RegisterPending(ctx, pendingAccount("alice", "a@x.com", "tok-1", expiresAt))
	require.NoError(t, err)

	byUsername, err := repo.GetByUsernameOrEmail(ctx, "alice", "unknown@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", byUsername.Username)

	byEmail, err := repo.GetByUsernameOrEmail(ctx, "unknown", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byEmail.Email)

	_, err = repo.GetByUsernameOrEmail(ctx, "unknown", "unknown@x.com")
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestActivateConsumesTokenOnce(t *testing.T) {
	repo, bunDB := setupAccountsRepo(t)
	ctx := context.Background()

	expiresAt := time.Now().Add(24 * time.Hour)
	created, err := repo.RegisterPending(ctx, pendingAccount("alice", "a@x.com", "tok-1", expiresAt))
	require.NoError(t, err)

	found, err := repo.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	require.NoError(t, repo.Activate(ctx, created.ID, "tok-1"))

	// Token and expiry travel together, both cleared on activation.
	activated := &identity.Account{}
	err = bunDB.NewSelect().Model(activated).
		Where("?TableAlias.id = ?", created.ID).
		Scan(ctx)
	require.NoError(t, err)

	assert.Equal(t, identity.AccountStatusActive, activated.Status)
	assert.Nil(t, activated.Token)
	assert.Nil(t, activated.TokenExpiresAt)

	// The token is single use: the lookup no longer matches and a second
	// conditional activate reports not found.
	_, err = repo.GetByToken(ctx, "tok-1")
	assert.True(t, repository.IsRecordNotFound(err))

	err = repo.Activate(ctx, created.ID, "tok-1")
	assert.True(t, repository.IsRecordNotFound(err))
}

// End-to-end flow against the real repository: register, duplicate denial,
// pending login, verification, replay.
func TestIdentityFlowAgainstSQLite(t *testing.T) {
	_, bunDB := setupAccountsRepo(t)
	ctx := context.Background()

	var issuedToken string
	notifier := identity.NotifierFunc(func(ctx context.Context, email, token string) error {
		issuedToken = token
		return nil
	})

	svc := identity.NewService(identity.NewRepositoryManager(bunDB)).
		WithNotifier(notifier)

	session := identity.NewSession(nil)

	ok, err := svc.Register(ctx, session, "a@x.com", "alice", "pw1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, issuedToken)
	session.TakeNotification()

	// Second registration with the same email must leave one account.
	ok, err = svc.Register(ctx, session, "a@x.com", "alicia", "pw2")
	assert.False(t, ok)
	assert.True(t, identity.IsDuplicateCredential(err))
	session.TakeNotification()

	count, err := bunDB.NewSelect().Model((*identity.Account)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Pending accounts can log in.
	ok, err = svc.Login(ctx, session, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, session.IsLoggedIn())
	session.TakeNotification()

	ok, err = svc.VerifyAccount(ctx, session, issuedToken)
	require.NoError(t, err)
	assert.True(t, ok)
	session.TakeNotification()

	// Replaying the consumed token reports an invalid token.
	ok, err = svc.VerifyAccount(ctx, session, issuedToken)
	assert.False(t, ok)
	assert.True(t, identity.IsTokenNotFound(err))
}
