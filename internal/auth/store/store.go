package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/webtemplate/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Records are reached through sub-repositories so a Tx can
// hand out the same repositories bound to the transaction.
type Store interface {
	Users() Users
	Posts() Posts

	ApplyMigrations(ctx context.Context) error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction. It commits when fn returns nil and
	// rolls back on error or panic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id int64) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts u and returns it with the store-assigned ID.
	// Returns ErrAlreadyExists if the username is taken.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// UpdateMFASecret stores a pending TOTP secret without touching
	// mfa_enabled.
	UpdateMFASecret(ctx context.Context, userID int64, secret string) error

	// EnableMFA flips mfa_enabled on. It fails with ErrNotFound if the user
	// has no secret, so an enabled user always has one.
	EnableMFA(ctx context.Context, userID int64) error

	// DisableMFA clears mfa_enabled and mfa_secret together.
	DisableMFA(ctx context.Context, userID int64) error

	// DeleteUser cascades to posts (per schema).
	DeleteUser(ctx context.Context, userID int64) error
}

type Posts interface {
	CreatePost(ctx context.Context, p domain.Post) (domain.Post, error)
	GetPostByID(ctx context.Context, id int64) (domain.Post, error)

	// ListPosts returns posts ordered by id.
	ListPosts(ctx context.Context, skip, limit int) ([]domain.Post, error)

	// ListPostsByOwner returns a user's posts ordered by id.
	ListPostsByOwner(ctx context.Context, ownerID int64) ([]domain.Post, error)

	DeletePost(ctx context.Context, id int64) error
}
