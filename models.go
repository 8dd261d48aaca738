package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountStatus is the account's lifecycle status
type AccountStatus = string

const (
	// AccountStatusPending means the mailbox has not been verified yet
	AccountStatusPending AccountStatus = "pending"
	// AccountStatusActive means mailbox ownership was proven via token
	AccountStatusActive AccountStatus = "active"
)

// Account is the account model
type Account struct {
	bun.BaseModel  `bun:"table:accounts,alias:acc"`
	ID             uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username       string        `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string        `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string        `bun:"password_hash,notnull" json:"password_hash,omitempty"`
	Token          *string       `bun:"token,nullzero" json:"token,omitempty"`
	TokenExpiresAt *time.Time    `bun:"token_expires_at,nullzero" json:"token_expires_at,omitempty"`
	Status         AccountStatus `bun:"status,notnull" json:"status,omitempty"`
	CreatedAt      *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EnsureStatus normalizes a missing status to pending
func (a *Account) EnsureStatus() {
	if a.Status == "" {
		a.Status = AccountStatusPending
	}
}

// IsActive reports whether the mailbox was verified
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// TokenExpired compares the stored expiry against now. Accounts without a
// token report false, there is nothing left to expire.
func (a *Account) TokenExpired(now time.Time) bool {
	if a.Token == nil || a.TokenExpiresAt == nil {
		return false
	}
	return now.After(*a.TokenExpiresAt)
}

// MarkActivated clears the verification token pair and flips the status.
// Token and expiry travel together, both present or both absent.
func (a *Account) MarkActivated() *Account {
	a.Token = nil
	a.TokenExpiresAt = nil
	a.Status = AccountStatusActive
	return a
}
