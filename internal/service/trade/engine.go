// Package trade implements the marketplace state machine: listing,
// withdrawal, and the atomic purchase transaction that moves ownership and
// budget together. Every public operation runs as one unit of work against
// the store; concurrent purchases of the same card are serialized by the
// card's version token, so exactly one buyer wins.
package trade

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fantacard/market-api/internal/domain"
	"github.com/fantacard/market-api/internal/platform/logger"
	"github.com/fantacard/market-api/internal/store"
)

// RevaluationTrigger requests a background revaluation of the card
// population. Implementations must not block the caller.
type RevaluationTrigger interface {
	TriggerRevaluation(ctx context.Context) error
}

// Receipt describes a completed purchase. Budgets are the post-trade
// values read back inside the same transaction.
type Receipt struct {
	Card         *domain.Card
	Price        int64
	BuyerID      uuid.UUID
	SellerID     uuid.UUID
	BuyerBudget  int64
	SellerBudget int64
}

// Engine orchestrates card market transitions over the user and card stores.
type Engine struct {
	db       *sql.DB
	users    store.UserStore
	cards    store.CardStore
	revaluer RevaluationTrigger
	logger   *slog.Logger
}

// NewEngine creates a trade engine.
// revaluer may be nil, in which case completed purchases simply skip the
// revaluation trigger (used by tests and tooling).
func NewEngine(
	db *sql.DB,
	users store.UserStore,
	cards store.CardStore,
	revaluer RevaluationTrigger,
	log *slog.Logger,
) (*Engine, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		db:       db,
		users:    users,
		cards:    cards,
		revaluer: revaluer,
		logger:   log.With(slog.String("component", "trade_engine")),
	}, nil
}

// CheckPermission applies the uniform permission rule for operations on a
// user: admins may act on anyone, regular users only on themselves.
// Returns ErrForbidden otherwise.
func (e *Engine) CheckPermission(identity domain.Identity, targetUserID uuid.UUID) error {
	switch identity.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleRegular:
		if identity.UserID == targetUserID {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}

// List places the caller's card on the market at the given price.
// Re-listing an already-listed card overwrites the price (idempotent).
// Fails with a validation error for a non-positive price and ErrNotOwner
// when the caller does not own the card.
func (e *Engine) List(
	ctx context.Context,
	identity domain.Identity,
	cardID uuid.UUID,
	price int64,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	if price <= 0 {
		return nil, domain.NewValidationError(
			"market_price", "must be a positive integer", domain.ErrCardPriceInvalid)
	}

	var listed *domain.Card
	err := store.RunInTransaction(ctx, e.db, func(ctx context.Context, tx *sql.Tx) error {
		txCards := e.cards.WithTx(tx)

		card, err := txCards.GetByID(ctx, cardID)
		if err != nil {
			return err
		}

		if card.OwnerID != identity.UserID {
			return NewTradeError("list", "card owned by another user", ErrNotOwner)
		}

		listed, err = txCards.ApplyTrade(ctx, cardID, card.Version,
			func(c *domain.Card) error {
				return c.PlaceOnMarket(price)
			})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("card listed",
		slog.String("card_id", cardID.String()),
		slog.String("owner_id", identity.UserID.String()),
		slog.Int64("market_price", price))
	return listed, nil
}

// Withdraw takes the caller's card off the market. No money changes hands.
// Fails with ErrNotListed when the card is not on the market (including a
// repeated withdraw) and ErrNotOwner when the caller does not own it.
func (e *Engine) Withdraw(
	ctx context.Context,
	identity domain.Identity,
	cardID uuid.UUID,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	var withdrawn *domain.Card
	err := store.RunInTransaction(ctx, e.db, func(ctx context.Context, tx *sql.Tx) error {
		txCards := e.cards.WithTx(tx)

		card, err := txCards.GetByID(ctx, cardID)
		if err != nil {
			return err
		}

		if !card.Listed {
			return NewTradeError("withdraw", "card not on market", ErrNotListed)
		}

		if card.OwnerID != identity.UserID {
			return NewTradeError("withdraw", "card owned by another user", ErrNotOwner)
		}

		withdrawn, err = txCards.ApplyTrade(ctx, cardID, card.Version,
			func(c *domain.Card) error {
				return c.WithdrawFromMarket()
			})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("card withdrawn",
		slog.String("card_id", cardID.String()),
		slog.String("owner_id", identity.UserID.String()))
	return withdrawn, nil
}

// Purchase buys a listed card for the caller. Ownership transfer, the
// budget debit, and the budget credit commit together or not at all, so
// the sum of buyer and seller budgets is conserved and no budget can go
// negative. The card's intrinsic value becomes the realized price.
//
// A concurrent buyer who loses the race observes ErrConflict from the
// version check, or ErrNotListed once the winner's commit is visible.
//
// After a successful commit the engine requests a background revaluation;
// a trigger failure is logged and never affects the completed trade.
func (e *Engine) Purchase(
	ctx context.Context,
	identity domain.Identity,
	cardID uuid.UUID,
) (*Receipt, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	receipt := &Receipt{BuyerID: identity.UserID}
	err := store.RunInTransaction(ctx, e.db, func(ctx context.Context, tx *sql.Tx) error {
		txCards := e.cards.WithTx(tx)
		txUsers := e.users.WithTx(tx)

		card, err := txCards.GetByID(ctx, cardID)
		if err != nil {
			return err
		}

		if !card.Listed {
			return NewTradeError("purchase", "card not on market", ErrNotListed)
		}

		if card.OwnerID == identity.UserID {
			return NewTradeError("purchase", "buyer already owns card", ErrSelfPurchase)
		}

		price := card.MarketPrice
		sellerID := card.OwnerID

		buyer, err := txUsers.GetByID(ctx, identity.UserID)
		if err != nil {
			return err
		}

		if buyer.Budget < price {
			return NewTradeError("purchase", "buyer budget below price", ErrInsufficientFunds)
		}

		// The version check makes this the serialization point: of two
		// concurrent buyers only one update matches the version read above.
		sold, err := txCards.ApplyTrade(ctx, cardID, card.Version,
			func(c *domain.Card) error {
				return c.TransferTo(identity.UserID)
			})
		if err != nil {
			return err
		}

		if err := txUsers.AdjustBudget(ctx, identity.UserID, -price); err != nil {
			if errors.Is(err, store.ErrInvalidEntity) {
				return NewTradeError("purchase", "buyer budget below price", ErrInsufficientFunds)
			}
			return err
		}

		if err := txUsers.AdjustBudget(ctx, sellerID, price); err != nil {
			return err
		}

		buyerAfter, err := txUsers.GetByID(ctx, identity.UserID)
		if err != nil {
			return err
		}
		sellerAfter, err := txUsers.GetByID(ctx, sellerID)
		if err != nil {
			return err
		}

		receipt.Card = sold
		receipt.Price = price
		receipt.SellerID = sellerID
		receipt.BuyerBudget = buyerAfter.Budget
		receipt.SellerBudget = sellerAfter.Budget
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("card purchased",
		slog.String("card_id", cardID.String()),
		slog.String("buyer_id", receipt.BuyerID.String()),
		slog.String("seller_id", receipt.SellerID.String()),
		slog.Int64("price", receipt.Price))

	e.triggerRevaluation(ctx)
	return receipt, nil
}

// triggerRevaluation requests a background revaluation after a committed
// trade. Failure here is reported and swallowed: the trade stands, and the
// scheduled sweep revalues the population regardless.
func (e *Engine) triggerRevaluation(ctx context.Context) {
	if e.revaluer == nil {
		return
	}

	if err := e.revaluer.TriggerRevaluation(ctx); err != nil {
		log := logger.FromContextOrDefault(ctx, e.logger)
		log.Warn("failed to trigger revaluation after trade",
			slog.String("error", err.Error()))
	}
}
