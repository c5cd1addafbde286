package mocks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantacard/market-api/internal/domain"
	"github.com/fantacard/market-api/internal/store"
)

func TestAdjustBudgetDebitsAndCredits(t *testing.T) {
	t.Parallel()

	s := NewInMemoryUserStore()
	u, err := domain.NewUser("alice", "alice@example.com", "ES", domain.RoleRegular)
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), u))

	require.NoError(t, s.AdjustBudget(context.Background(), u.ID, -150))
	budget, ok := s.Budget(u.ID)
	require.True(t, ok)
	assert.Equal(t, domain.StartingBudget-150, budget)

	require.NoError(t, s.AdjustBudget(context.Background(), u.ID, 500))
	budget, _ = s.Budget(u.ID)
	assert.Equal(t, domain.StartingBudget+350, budget)

	stored, err := s.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.After(u.UpdatedAt),
		"expected budget mutation to advance UpdatedAt")
}

func TestAdjustBudgetGuardsNegativeBalance(t *testing.T) {
	t.Parallel()

	s := NewInMemoryUserStore()
	u, err := domain.NewUser("bob", "bob@example.com", "", domain.RoleRegular)
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), u))

	err = s.AdjustBudget(context.Background(), u.ID, -(domain.StartingBudget + 1))
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	// A failed guard leaves the balance untouched
	budget, ok := s.Budget(u.ID)
	require.True(t, ok)
	assert.Equal(t, domain.StartingBudget, budget)

	err = s.AdjustBudget(context.Background(), uuid.New(), -10)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
