package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/fantacard/market-api/internal/domain"
)

// CardMutation is applied to a card snapshot inside ApplyTrade. It mutates
// the card in place; returning an error aborts the update without writing.
type CardMutation func(card *domain.Card) error

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// CreateMultiple saves multiple cards to the store.
	// MUST be run within a transaction when the cards accompany another
	// write (e.g. user registration); use WithTx with RunInTransaction.
	// Returns validation errors if any card data is invalid.
	CreateMultiple(ctx context.Context, cards []*domain.Card) error

	// GetByID retrieves a card by its unique ID regardless of market state.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetByOwner retrieves all cards owned by the given user,
	// ordered by creation time.
	GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Card, error)

	// ListListed retrieves listed cards ordered by creation time,
	// paginated with a 1-based page number.
	ListListed(ctx context.Context, page, perPage int) ([]*domain.Card, error)

	// ListAll retrieves the full card population. Used by the valuation
	// engine to snapshot training data.
	ListAll(ctx context.Context) ([]*domain.Card, error)

	// ApplyTrade performs a conditional update of a single card: the
	// current row is loaded, the mutation is applied in memory, and the
	// write succeeds only if the row's version still equals
	// expectedVersion. The version is bumped on success and the updated
	// card is returned.
	//
	// Returns ErrCardNotFound if the card does not exist, ErrConflict if
	// another trade mutated the card first, and any error returned by the
	// mutation unchanged.
	//
	// MUST be run within a transaction whenever budgets move with the
	// card; use WithTx with RunInTransaction.
	ApplyTrade(
		ctx context.Context,
		cardID uuid.UUID,
		expectedVersion int64,
		mutate CardMutation,
	) (*domain.Card, error)

	// UpdateMarketValues overwrites market_value for the given cards in one
	// statement batch. Cards that disappeared since the snapshot are
	// skipped silently; the valuation engine retrains from scratch on every
	// run so a missed card self-heals.
	UpdateMarketValues(ctx context.Context, values map[uuid.UUID]int64) error

	// WithTx returns a new CardStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) CardStore
}
