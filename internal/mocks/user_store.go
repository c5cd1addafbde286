package mocks

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fantacard/market-api/internal/domain"
	"github.com/fantacard/market-api/internal/store"
)

// InMemoryUserStore implements store.UserStore with a map. It applies
// the same guards as the Postgres implementation: unique emails and a
// non-negative budget on AdjustBudget.
type InMemoryUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User

	// Optional error overrides per method
	CreateErr       error
	GetByIDErr      error
	GetByEmailErr   error
	ListErr         error
	UpdateErr       error
	AdjustBudgetErr error
	DeleteErr       error
}

var _ store.UserStore = (*InMemoryUserStore)(nil)

// NewInMemoryUserStore creates an empty in-memory user store.
func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users: make(map[uuid.UUID]*domain.User),
	}
}

// Create implements store.UserStore.
func (s *InMemoryUserStore) Create(ctx context.Context, user *domain.User) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if err := user.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}

	s.users[user.ID] = cloneUser(user)
	return nil
}

// GetByID implements store.UserStore.
func (s *InMemoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if s.GetByIDErr != nil {
		return nil, s.GetByIDErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return cloneUser(user), nil
}

// GetByEmail implements store.UserStore.
func (s *InMemoryUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if s.GetByEmailErr != nil {
		return nil, s.GetByEmailErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// List implements store.UserStore.
func (s *InMemoryUserStore) List(ctx context.Context, page, perPage int) ([]*domain.User, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*domain.User, 0, len(s.users))
	for _, user := range s.users {
		all = append(all, cloneUser(user))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	return paginate(all, page, perPage), nil
}

// Update implements store.UserStore. Only profile fields are written,
// matching the Postgres implementation.
func (s *InMemoryUserStore) Update(ctx context.Context, user *domain.User) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}

	existing.Username = user.Username
	existing.Country = user.Country
	existing.UpdatedAt = user.UpdatedAt
	return nil
}

// AdjustBudget implements store.UserStore. The mutation goes through the
// domain's Debit/Credit so the non-negative guard matches the entity's
// own rules, surfaced as store.ErrInvalidEntity like the Postgres guard.
func (s *InMemoryUserStore) AdjustBudget(ctx context.Context, id uuid.UUID, delta int64) error {
	if s.AdjustBudgetErr != nil {
		return s.AdjustBudgetErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return store.ErrUserNotFound
	}

	var err error
	if delta < 0 {
		err = user.Debit(-delta)
	} else {
		err = user.Credit(delta)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	return nil
}

// Delete implements store.UserStore. Cascading card deletion is the
// card store's concern in tests; pair the stores when it matters.
func (s *InMemoryUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// WithTx implements store.UserStore. The in-memory store has no
// transaction isolation; the same instance is returned.
func (s *InMemoryUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return s
}

// Budget returns the current budget for assertions.
func (s *InMemoryUserStore) Budget(id uuid.UUID) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return 0, false
	}
	return user.Budget, true
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}

func paginate[T any](items []T, page, perPage int) []T {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		return nil
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
