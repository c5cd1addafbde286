package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/fantacard/market-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// The user must already carry a hashed password.
	// Returns ErrEmailExists if the email is already taken.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List retrieves users ordered by creation time, paginated with a
	// 1-based page number.
	List(ctx context.Context, page, perPage int) ([]*domain.User, error)

	// Update modifies an existing user's profile fields (username, country).
	// Budget is NOT written here; use AdjustBudget inside a trade
	// transaction so the non-negativity guard applies.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// AdjustBudget atomically adds delta (which may be negative) to the
	// user's budget. The update is conditional on the resulting budget
	// staying non-negative; a guard failure returns ErrInvalidEntity so the
	// caller can translate it into its own insufficient-funds error.
	// Returns ErrUserNotFound if the user does not exist.
	//
	// MUST be run within a transaction alongside the matching card
	// mutation; use WithTx and RunInTransaction.
	AdjustBudget(ctx context.Context, id uuid.UUID, delta int64) error

	// Delete removes a user from the store by their ID. Owned cards are
	// removed by the database's ON DELETE CASCADE constraint.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new UserStore instance that uses the provided
	// transaction. This allows multiple operations to be executed within a
	// single transaction managed by the caller (typically a service).
	WithTx(tx *sql.Tx) UserStore
}
