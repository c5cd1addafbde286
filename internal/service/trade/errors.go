package trade

import (
	"errors"
	"fmt"
)

// Trade errors returned by the engine's public operations.
var (
	// ErrNotOwner is returned when a caller tries to list or withdraw a
	// card they do not own.
	ErrNotOwner = errors.New("caller does not own this card")

	// ErrForbidden is returned by the permission gate when a regular user
	// acts on another user's profile.
	ErrForbidden = errors.New("operation forbidden")

	// ErrNotListed is returned when the target card is not on the market.
	// A concurrent buyer who lost the race also observes this once the
	// winning trade has taken the card off the market.
	ErrNotListed = errors.New("card is not listed on the market")

	// ErrSelfPurchase is returned when the listing owner tries to buy
	// their own card.
	ErrSelfPurchase = errors.New("cannot purchase your own card")

	// ErrInsufficientFunds is returned when the buyer's budget is below
	// the listing price.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// TradeError is a custom error type carrying the failing operation for
// context. It wraps one of the sentinels above or a store error.
type TradeError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TradeError.
func (e *TradeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("trade %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("trade %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TradeError) Unwrap() error {
	return e.Err
}

// NewTradeError creates a new TradeError.
func NewTradeError(operation, message string, err error) *TradeError {
	return &TradeError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
