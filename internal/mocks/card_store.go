package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fantacard/market-api/internal/domain"
	"github.com/fantacard/market-api/internal/store"
)

// InMemoryCardStore implements store.CardStore with a map, including the
// version check that serializes concurrent trades in the Postgres
// implementation.
type InMemoryCardStore struct {
	mu    sync.Mutex
	cards map[uuid.UUID]*domain.Card

	// Optional error overrides per method
	CreateMultipleErr     error
	GetByIDErr            error
	ListErr               error
	ApplyTradeErr         error
	UpdateMarketValuesErr error

	// UpdateMarketValuesCalls counts write-backs for assertions.
	UpdateMarketValuesCalls int
}

var _ store.CardStore = (*InMemoryCardStore)(nil)

// NewInMemoryCardStore creates an empty in-memory card store.
func NewInMemoryCardStore() *InMemoryCardStore {
	return &InMemoryCardStore{
		cards: make(map[uuid.UUID]*domain.Card),
	}
}

// Seed inserts cards directly, bypassing validation. Test setup helper.
func (s *InMemoryCardStore) Seed(cards ...*domain.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, card := range cards {
		s.cards[card.ID] = cloneCard(card)
	}
}

// CreateMultiple implements store.CardStore.
func (s *InMemoryCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	if s.CreateMultipleErr != nil {
		return s.CreateMultipleErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return err
		}
		s.cards[card.ID] = cloneCard(card)
	}
	return nil
}

// GetByID implements store.CardStore.
func (s *InMemoryCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	if s.GetByIDErr != nil {
		return nil, s.GetByIDErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return cloneCard(card), nil
}

// GetByOwner implements store.CardStore.
func (s *InMemoryCardStore) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Card, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owned := make([]*domain.Card, 0)
	for _, card := range s.cards {
		if card.OwnerID == ownerID {
			owned = append(owned, cloneCard(card))
		}
	}
	sortCards(owned)
	return owned, nil
}

// ListListed implements store.CardStore.
func (s *InMemoryCardStore) ListListed(ctx context.Context, page, perPage int) ([]*domain.Card, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	listed := make([]*domain.Card, 0)
	for _, card := range s.cards {
		if card.Listed {
			listed = append(listed, cloneCard(card))
		}
	}
	sortCards(listed)
	return paginate(listed, page, perPage), nil
}

// ListAll implements store.CardStore.
func (s *InMemoryCardStore) ListAll(ctx context.Context) ([]*domain.Card, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*domain.Card, 0, len(s.cards))
	for _, card := range s.cards {
		all = append(all, cloneCard(card))
	}
	sortCards(all)
	return all, nil
}

// ApplyTrade implements store.CardStore with the same version semantics
// as the Postgres store: the write only lands when the stored version
// still matches expectedVersion.
func (s *InMemoryCardStore) ApplyTrade(
	ctx context.Context,
	cardID uuid.UUID,
	expectedVersion int64,
	mutate store.CardMutation,
) (*domain.Card, error) {
	if s.ApplyTradeErr != nil {
		return nil, s.ApplyTradeErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.cards[cardID]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	if current.Version != expectedVersion {
		return nil, store.ErrConflict
	}

	updated := cloneCard(current)
	if err := mutate(updated); err != nil {
		return nil, err
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	updated.Version = expectedVersion + 1
	s.cards[cardID] = updated
	return cloneCard(updated), nil
}

// UpdateMarketValues implements store.CardStore.
func (s *InMemoryCardStore) UpdateMarketValues(ctx context.Context, values map[uuid.UUID]int64) error {
	if s.UpdateMarketValuesErr != nil {
		return s.UpdateMarketValuesErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.UpdateMarketValuesCalls++
	for id, value := range values {
		card, ok := s.cards[id]
		if !ok {
			continue
		}
		card.MarketValue = value
	}
	return nil
}

// WithTx implements store.CardStore. The in-memory store has no
// transaction isolation; the same instance is returned.
func (s *InMemoryCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return s
}

// DeleteByOwner removes all cards owned by the given user. Tests use it
// to mirror the database's ON DELETE CASCADE.
func (s *InMemoryCardStore) DeleteByOwner(ownerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, card := range s.cards {
		if card.OwnerID == ownerID {
			delete(s.cards, id)
		}
	}
}

func cloneCard(c *domain.Card) *domain.Card {
	clone := *c
	return &clone
}

func sortCards(cards []*domain.Card) {
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].ID.String() < cards[j].ID.String()
		}
		return cards[i].CreatedAt.Before(cards[j].CreatedAt)
	})
}
