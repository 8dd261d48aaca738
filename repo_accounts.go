package identity

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ActivateAccountSQL clears the token pair and flips the status in one
// conditional statement. The token guard makes concurrent verifications of
// the same token safe: only the first one matches, the rest see no rows.
var ActivateAccountSQL = `UPDATE "accounts" AS "acc"
SET
	"token" = NULL,
	"token_expires_at" = NULL,
	"status" = 'active'
WHERE (
	"acc"."id" = ?
) AND (
	"acc"."token" = ?
) RETURNING *;`

type Accounts interface {
	repository.Repository[*Account]

	GetByUsernameOrEmail(ctx context.Context, username, email string) (*Account, error)
	GetByUsernameOrEmailTx(ctx context.Context, tx bun.IDB, username, email string) (*Account, error)
	GetByToken(ctx context.Context, token string) (*Account, error)
	GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*Account, error)

	RegisterPending(ctx context.Context, account *Account) (*Account, error)
	RegisterPendingTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error)
	Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error)

	Activate(ctx context.Context, id uuid.UUID, token string) error
	ActivateTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) GetByUsernameOrEmail(ctx context.Context, username, email string) (*Account, error) {
	return a.GetByUsernameOrEmailTx(ctx, a.db, username, email)
}

// GetByUsernameOrEmailTx matches any account, whatever its status, holding
// either credential. Registration uses it to enforce global uniqueness.
func (a *accounts) GetByUsernameOrEmailTx(ctx context.Context, tx bun.IDB, username, email string) (*Account, error) {
	record := &Account{}

	err := tx.NewSelect().Model(record).
		Where("?TableAlias.username = ?", username).
		WhereOr("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"username": username,
					"email":    email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) GetByToken(ctx context.Context, token string) (*Account, error) {
	return a.GetByTokenTx(ctx, a.db, token)
}

func (a *accounts) GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*Account, error) {
	record := &Account{}

	err := tx.NewSelect().Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"token": token,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) RegisterPending(ctx context.Context, account *Account) (*Account, error) {
	return a.RegisterPendingTx(ctx, a.db, account)
}

func (a *accounts) RegisterPendingTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error) {
	return a.CreateTx(ctx, tx, account)
}

func (a *accounts) Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *accounts) CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	prepareAccountDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *accounts) Activate(ctx context.Context, id uuid.UUID, token string) error {
	return a.ActivateTx(ctx, a.db, id, token)
}

func (a *accounts) ActivateTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error {
	res, err := a.Repository.RawTx(ctx, tx, ActivateAccountSQL, id.String(), token)
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
