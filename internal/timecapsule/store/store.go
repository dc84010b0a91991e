package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories so a Tx hands out the same repos
// bound to the transaction.
type Store interface {
	Users() Users
	Capsules() Capsules

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the username or email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is an exact, case-sensitive match.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// ExistsByUsernameOrEmail reports whether either value is already taken.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}

type Capsules interface {
	// CreateCapsule inserts the capsule and its recipients in order. Run it
	// inside a Tx so the capsule and its recipients land together.
	CreateCapsule(ctx context.Context, c domain.TimeCapsule) error

	// GetCapsuleByID returns a capsule with its recipients.
	GetCapsuleByID(ctx context.Context, id string) (domain.TimeCapsule, error)

	// ListCapsulesByCreator returns every capsule created by creatorID, newest
	// first. Capsules sharing a timestamp are ordered by id, descending.
	ListCapsulesByCreator(ctx context.Context, creatorID string) ([]domain.TimeCapsule, error)
}
