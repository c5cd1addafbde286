package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fantacard/market-api/internal/domain"
	"github.com/fantacard/market-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing
type MockJWTService struct {
	// Custom behavior functions
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID, role domain.Role) (string, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default response values
	Token  string
	Claims *auth.Claims
	Err    error

	// Call tracking for verification
	GenerateTokenCalls struct {
		mu      sync.Mutex
		Count   int
		UserIDs []uuid.UUID
		Roles   []domain.Role
	}
	ValidateTokenCalls struct {
		mu     sync.Mutex
		Count  int
		Tokens []string
	}
}

var _ auth.JWTService = (*MockJWTService)(nil)

// GenerateToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateToken(
	ctx context.Context,
	userID uuid.UUID,
	role domain.Role,
) (string, error) {
	m.GenerateTokenCalls.mu.Lock()
	m.GenerateTokenCalls.Count++
	m.GenerateTokenCalls.UserIDs = append(m.GenerateTokenCalls.UserIDs, userID)
	m.GenerateTokenCalls.Roles = append(m.GenerateTokenCalls.Roles, role)
	m.GenerateTokenCalls.mu.Unlock()

	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID, role)
	}
	return m.Token, m.Err
}

// ValidateToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	m.ValidateTokenCalls.mu.Lock()
	m.ValidateTokenCalls.Count++
	m.ValidateTokenCalls.Tokens = append(m.ValidateTokenCalls.Tokens, tokenString)
	m.ValidateTokenCalls.mu.Unlock()

	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.Claims, m.Err
}
