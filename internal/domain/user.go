package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// StartingBudget is the budget every user receives at registration,
// in integer currency units.
const StartingBudget int64 = 500

// User-specific validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
	ErrNegativeBudget      = errors.New("budget cannot be negative")
)

// User represents a registered marketplace participant. Budget is held in
// integer currency units and is mutated only by the trade engine inside a
// purchase transaction; it must never go negative.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Never expose the password hash in JSON
	Country        string    `json:"country"`
	Role           Role      `json:"role"`
	Budget         int64     `json:"budget"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the starting budget.
// It generates a new UUID for the user ID and sets the timestamps.
// The caller is responsible for hashing the password and setting
// HashedPassword before the user is stored.
func NewUser(username, email, country string, role Role) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Country:   country,
		Role:      role,
		Budget:    StartingBudget,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Username == "" {
		return ErrEmptyUsername
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if err := u.Role.Validate(); err != nil {
		return err
	}

	if u.Budget < 0 {
		return ErrNegativeBudget
	}

	return nil
}

// Debit subtracts amount from the budget.
// Returns ErrNegativeBudget if the result would go below zero.
func (u *User) Debit(amount int64) error {
	if amount < 0 {
		return NewValidationError("amount", "cannot be negative", ErrValidation)
	}
	if u.Budget-amount < 0 {
		return ErrNegativeBudget
	}
	u.Budget -= amount
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// Credit adds amount to the budget.
func (u *User) Credit(amount int64) error {
	if amount < 0 {
		return NewValidationError("amount", "cannot be negative", ErrValidation)
	}
	u.Budget += amount
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// validateEmailFormat performs basic validation of email format: one @ with
// a non-empty local part and a dotted domain. Registration additionally
// validates the full address at the request layer.
func validateEmailFormat(email string) bool {
	atIndex := -1
	for i, char := range email {
		if char == '@' {
			atIndex = i
			break
		}
	}

	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	domainPart := email[atIndex+1:]
	if len(domainPart) < 3 {
		return false
	}

	dotIndex := -1
	for i, char := range domainPart {
		if char == '.' {
			dotIndex = i
			break
		}
	}

	return dotIndex > 0 && dotIndex < len(domainPart)-1
}
