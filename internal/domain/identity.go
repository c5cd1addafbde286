package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the closed set of user roles. The marketplace knows exactly two:
// administrators, who may act on any user, and regular users, who may only
// act on themselves.
type Role string

const (
	// RoleAdmin may read, update, and delete any user profile.
	RoleAdmin Role = "admin"

	// RoleRegular may only act on their own profile and cards.
	RoleRegular Role = "regular"
)

// ParseRole converts a raw string into a Role.
// Returns ErrInvalidRole for anything outside the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleRegular:
		return RoleRegular, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Validate checks that the role is one of the closed set.
func (r Role) Validate() error {
	switch r {
	case RoleAdmin, RoleRegular:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, string(r))
	}
}

// IsAdmin reports whether the role carries administrative privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Identity is the verified caller identity supplied to every core operation.
// It is produced by the authentication middleware from a validated token and
// is never persisted or constructed by business logic.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// Validate checks that the identity carries a user ID and a known role.
func (id Identity) Validate() error {
	if id.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}
	return id.Role.Validate()
}
