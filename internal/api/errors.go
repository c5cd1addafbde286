package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fantacard/market-api/internal/api/shared"
	"github.com/fantacard/market-api/internal/domain"
	"github.com/fantacard/market-api/internal/service/auth"
	"github.com/fantacard/market-api/internal/service/trade"
	"github.com/fantacard/market-api/internal/service/user"
	"github.com/fantacard/market-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	// Field-level validation failures carry their own wrapped sentinel,
	// which may not be ErrValidation itself.
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, trade.ErrNotOwner),
		errors.Is(err, trade.ErrForbidden):
		return http.StatusForbidden

	// Buyer cannot cover the asking price
	case errors.Is(err, trade.ErrInsufficientFunds):
		return http.StatusPaymentRequired

	// Not found errors; covers the entity-specific sentinels too
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors: the card changed underneath the caller, or the
	// email is already registered
	case errors.Is(err, store.ErrEmailExists),
		store.IsConflictError(err),
		errors.Is(err, trade.ErrNotListed),
		errors.Is(err, domain.ErrCardNotListed):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, trade.ErrSelfPurchase),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrCardPriceInvalid):
		return http.StatusBadRequest

	// The starter card feed is an upstream dependency
	case errors.Is(err, user.ErrStarterFeed):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, trade.ErrNotOwner):
		return "You do not own this card"

	case errors.Is(err, trade.ErrForbidden):
		return "You are not allowed to perform this operation"

	case errors.Is(err, trade.ErrInsufficientFunds):
		return "Insufficient budget for this purchase"

	case errors.Is(err, trade.ErrSelfPurchase):
		return "You cannot buy your own card"

	case errors.Is(err, trade.ErrNotListed),
		errors.Is(err, domain.ErrCardNotListed):
		return "Card is not listed on the market"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrConflict):
		return "Card was modified concurrently, please retry"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, user.ErrStarterFeed):
		return "Player data feed is unavailable, please retry"

	case errors.Is(err, domain.ErrCardPriceInvalid):
		return "Market price must be a positive integer"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidRole):
		return "Validation error"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status code and safe message and writes
// the response. An empty userMessage falls back to the mapped safe
// message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	status := MapErrorToStatusCode(err)
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}

// SanitizeValidationError turns a validator error into a user-friendly
// message without echoing raw input back.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gt":
		return "must be greater than zero"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
