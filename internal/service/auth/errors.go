package auth

import "errors"

// Authentication errors returned by the JWT service and login flow.
var (
	// ErrInvalidToken is returned when a token is malformed, has a bad
	// signature, or carries claims we cannot use.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token's expiry has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid is returned when a token's NotBefore is in the future.
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrInvalidCredentials is returned on a failed email/password login.
	// Deliberately indistinguishable between unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
