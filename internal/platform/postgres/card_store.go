package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fantacard/market-api/internal/domain"
	"github.com/fantacard/market-api/internal/platform/logger"
	"github.com/fantacard/market-api/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

const cardColumns = `id, owner_id, name, age, skill, market_value, market_price, listed, version, created_at, updated_at`

// scanCard scans one card row. market_price is stored as NULL while the
// card is off the market and maps to zero on the domain entity.
func scanCard(scan func(dest ...any) error) (*domain.Card, error) {
	var card domain.Card
	var marketPrice sql.NullInt64

	err := scan(
		&card.ID,
		&card.OwnerID,
		&card.Name,
		&card.Age,
		&card.Skill,
		&card.MarketValue,
		&marketPrice,
		&card.Listed,
		&card.Version,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if marketPrice.Valid {
		card.MarketPrice = marketPrice.Int64
	}
	return &card, nil
}

// nullablePrice converts the domain's zero-while-unlisted price back into
// the NULL the schema expects.
func nullablePrice(card *domain.Card) sql.NullInt64 {
	if card.Listed {
		return sql.NullInt64{Int64: card.MarketPrice, Valid: true}
	}
	return sql.NullInt64{}
}

// CreateMultiple implements store.CardStore.CreateMultiple
// Returns validation errors if any card data is invalid and
// store.ErrInvalidEntity if an owner does not exist.
func (s *PostgresCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cards) == 0 {
		return nil
	}

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("card validation failed during create",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return err
		}
	}

	query := `
		INSERT INTO cards (id, owner_id, name, age, skill, market_value, market_price, listed, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for _, card := range cards {
		_, err := s.db.ExecContext(
			ctx,
			query,
			card.ID,
			card.OwnerID,
			card.Name,
			card.Age,
			card.Skill,
			card.MarketValue,
			nullablePrice(card),
			card.Listed,
			card.Version,
			card.CreatedAt,
			card.UpdatedAt,
		)
		if err != nil {
			if IsForeignKeyViolation(err) {
				log.Warn("foreign key violation during card creation",
					slog.String("card_id", card.ID.String()),
					slog.String("owner_id", card.OwnerID.String()))
				return fmt.Errorf("%w: owner with ID %s not found",
					store.ErrInvalidEntity, card.OwnerID)
			}

			log.Error("failed to create card",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return store.NewStoreError("card", "create", "insert failed", MapError(err))
		}
	}

	log.Info("cards created successfully", slog.Int("card_count", len(cards)))
	return nil
}

// GetByID implements store.CardStore.GetByID
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, store.NewStoreError("card", "get", "query failed", MapError(err))
	}

	return card, nil
}

// queryCards runs a multi-row card query and scans the results.
func (s *PostgresCardStore) queryCards(ctx context.Context, query string, args ...any) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("card", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows.Scan)
		if err != nil {
			return nil, store.NewStoreError("card", "list", "scan failed", MapError(err))
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", "list", "row iteration failed", MapError(err))
	}

	return cards, nil
}

// GetByOwner implements store.CardStore.GetByOwner
func (s *PostgresCardStore) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE owner_id = $1
		ORDER BY created_at, id
	`
	return s.queryCards(ctx, query, ownerID)
}

// ListListed implements store.CardStore.ListListed
func (s *PostgresCardStore) ListListed(ctx context.Context, page, perPage int) ([]*domain.Card, error) {
	if page < 1 {
		page = 1
	}

	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE listed
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`
	return s.queryCards(ctx, query, perPage, (page-1)*perPage)
}

// ListAll implements store.CardStore.ListAll
func (s *PostgresCardStore) ListAll(ctx context.Context) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards ORDER BY created_at, id`
	return s.queryCards(ctx, query)
}

// ApplyTrade implements store.CardStore.ApplyTrade
// The write is conditional on the row's version still matching
// expectedVersion; a failed condition surfaces as store.ErrConflict (or
// store.ErrCardNotFound once the row is gone). The mutation's own errors
// pass through unchanged so the trade engine keeps its typed failures.
func (s *PostgresCardStore) ApplyTrade(
	ctx context.Context,
	cardID uuid.UUID,
	expectedVersion int64,
	mutate store.CardMutation,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if card.Version != expectedVersion {
		log.Debug("card version moved before trade applied",
			slog.String("card_id", cardID.String()),
			slog.Int64("expected_version", expectedVersion),
			slog.Int64("current_version", card.Version))
		return nil, fmt.Errorf("%w: card %s", store.ErrConflict, cardID)
	}

	if err := mutate(card); err != nil {
		return nil, err
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	card.Version = expectedVersion + 1
	card.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE cards
		SET owner_id = $3, market_value = $4, market_price = $5, listed = $6,
		    version = $7, updated_at = $8
		WHERE id = $1 AND version = $2
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		expectedVersion,
		card.OwnerID,
		card.MarketValue,
		nullablePrice(card),
		card.Listed,
		card.Version,
		card.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to apply trade",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, store.NewStoreError("card", "apply_trade", "update failed", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Either another trade bumped the version between our read and
		// write, or the card was deleted outright.
		var exists bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM cards WHERE id = $1)`, cardID).Scan(&exists)
		if err != nil {
			return nil, store.NewStoreError("card", "apply_trade", "existence check failed", MapError(err))
		}
		if !exists {
			return nil, store.ErrCardNotFound
		}
		log.Debug("lost race applying trade",
			slog.String("card_id", cardID.String()),
			slog.Int64("expected_version", expectedVersion))
		return nil, fmt.Errorf("%w: card %s", store.ErrConflict, cardID)
	}

	return card, nil
}

// UpdateMarketValues implements store.CardStore.UpdateMarketValues
// Cards deleted since the snapshot was taken simply match no row; the next
// valuation run retrains without them.
func (s *PostgresCardStore) UpdateMarketValues(ctx context.Context, values map[uuid.UUID]int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(values) == 0 {
		return nil
	}

	query := `
		UPDATE cards
		SET market_value = $2, updated_at = now()
		WHERE id = $1
	`
	for id, value := range values {
		if _, err := s.db.ExecContext(ctx, query, id, value); err != nil {
			log.Error("failed to update market value",
				slog.String("error", err.Error()),
				slog.String("card_id", id.String()))
			return store.NewStoreError("card", "update_market_values", "update failed", MapError(err))
		}
	}

	log.Debug("market values updated", slog.Int("card_count", len(values)))
	return nil
}
