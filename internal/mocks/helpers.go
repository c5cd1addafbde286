package mocks

import (
	"context"
	"sync"

	"github.com/fantacard/market-api/internal/service/auth"
	"github.com/fantacard/market-api/internal/service/trade"
	"github.com/fantacard/market-api/internal/service/user"
)

// PlainPasswordHasher implements auth.PasswordHasher without bcrypt so
// tests stay fast. The "hash" is the password itself.
type PlainPasswordHasher struct {
	Err error
}

var _ auth.PasswordHasher = (*PlainPasswordHasher)(nil)

// Hash implements the auth.PasswordHasher interface
func (h *PlainPasswordHasher) Hash(password string) (string, error) {
	if h.Err != nil {
		return "", h.Err
	}
	return password, nil
}

// PlainPasswordVerifier implements auth.PasswordVerifier against the
// PlainPasswordHasher's identity "hash".
type PlainPasswordVerifier struct{}

var _ auth.PasswordVerifier = (*PlainPasswordVerifier)(nil)

// Compare implements the auth.PasswordVerifier interface
func (v *PlainPasswordVerifier) Compare(hashedPassword, password string) error {
	if hashedPassword != password {
		return auth.ErrInvalidCredentials
	}
	return nil
}

// MockRevaluationTrigger implements trade.RevaluationTrigger and counts
// calls.
type MockRevaluationTrigger struct {
	mu    sync.Mutex
	count int

	Err error
}

var _ trade.RevaluationTrigger = (*MockRevaluationTrigger)(nil)

// TriggerRevaluation implements the trade.RevaluationTrigger interface
func (m *MockRevaluationTrigger) TriggerRevaluation(ctx context.Context) error {
	m.mu.Lock()
	m.count++
	m.mu.Unlock()
	return m.Err
}

// Count returns how many times the trigger fired.
func (m *MockRevaluationTrigger) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// StaticStarterCardSource implements user.StarterCardSource with a fixed
// set of cards.
type StaticStarterCardSource struct {
	Cards []user.StarterCard
	Err   error
}

var _ user.StarterCardSource = (*StaticStarterCardSource)(nil)

// FetchStarterCards implements the user.StarterCardSource interface
func (s *StaticStarterCardSource) FetchStarterCards(
	ctx context.Context,
	count int,
) ([]user.StarterCard, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if count < len(s.Cards) {
		return s.Cards[:count], nil
	}
	return s.Cards, nil
}
