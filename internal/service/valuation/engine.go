// Package valuation recomputes each card's intrinsic market value from a
// regression over the (age, skill) features of the full card population.
// The engine is stateless: every run retrains from scratch on the current
// snapshot, so a skipped or failed run is repaired by the next one.
package valuation

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/fantacard/market-api/internal/domain"
	"github.com/fantacard/market-api/internal/platform/logger"
)

// ErrUnavailable is returned when the regression cannot be computed:
// an empty population, fewer than two distinct feature points, or a
// singular normal matrix. Market values are left unchanged; the condition
// is non-fatal by design.
var ErrUnavailable = errors.New("valuation unavailable")

// CardSource is the narrow persistence surface the engine needs: a snapshot
// of the population and a bulk value write-back.
type CardSource interface {
	// ListAll retrieves the full card population.
	ListAll(ctx context.Context) ([]*domain.Card, error)

	// UpdateMarketValues overwrites market_value for the given cards.
	UpdateMarketValues(ctx context.Context, values map[uuid.UUID]int64) error
}

// Engine recomputes market values for the whole card population.
type Engine struct {
	cards  CardSource
	logger *slog.Logger
}

// NewEngine creates a valuation engine over the given card source.
func NewEngine(cards CardSource, log *slog.Logger) (*Engine, error) {
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		cards:  cards,
		logger: log.With(slog.String("component", "valuation_engine")),
	}, nil
}

// Revalue snapshots the card population, trains the regression, and writes
// each card's predicted value back, rounded to the nearest integer unit.
//
// Returns ErrUnavailable without touching any value when the model cannot
// be trained. Partial write-back on a store failure is tolerated: values
// are idempotent predictions and the next run recomputes all of them.
func (e *Engine) Revalue(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, e.logger)

	cards, err := e.cards.ListAll(ctx)
	if err != nil {
		log.Error("failed to snapshot card population",
			slog.String("error", err.Error()))
		return err
	}

	model, err := fitLinearModel(cards)
	if err != nil {
		log.Warn("valuation model not computable, leaving values unchanged",
			slog.Int("card_count", len(cards)),
			slog.String("error", err.Error()))
		return err
	}

	values := make(map[uuid.UUID]int64, len(cards))
	changed := 0
	for _, card := range cards {
		age, skill := card.Features()
		predicted := int64(math.Round(model.predict(age, skill)))
		values[card.ID] = predicted
		if predicted != card.MarketValue {
			changed++
		}
	}

	if err := e.cards.UpdateMarketValues(ctx, values); err != nil {
		log.Error("failed to write market values",
			slog.String("error", err.Error()))
		return err
	}

	log.Info("revaluation completed",
		slog.Int("card_count", len(cards)),
		slog.Int("changed_count", changed))
	return nil
}
