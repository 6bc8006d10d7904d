package store

import (
	"context"
	"errors"

	"github.com/swapline/miniapp/internal/miniapp/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Users() Users
	Leads() Leads

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn returns
	// an error and committing otherwise. Prefer this over Tx.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetByTelegramID returns the identity keyed by the exact Telegram user
	// id string.
	GetByTelegramID(ctx context.Context, telegramID string) (domain.User, error)

	// Upsert creates the identity on first sight or updates its username on
	// subsequent logins. The tg_user_id uniqueness constraint plus
	// conflict-update semantics guarantee concurrent logins for the same id
	// never produce two rows.
	Upsert(ctx context.Context, u domain.User) (domain.User, error)

	// Count returns the number of identities.
	Count(ctx context.Context) (int64, error)
}

type Leads interface {
	// Create inserts a new lead (id is provided by the app via ULID).
	Create(ctx context.Context, l domain.Lead) error

	// ListByTelegramID returns a user's leads newest first.
	ListByTelegramID(ctx context.Context, telegramID string) ([]domain.Lead, error)
}
