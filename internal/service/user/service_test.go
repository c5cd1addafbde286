package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantacard/market-api/internal/domain"
	"github.com/fantacard/market-api/internal/mocks"
	"github.com/fantacard/market-api/internal/service/trade"
	"github.com/fantacard/market-api/internal/service/user"
	"github.com/fantacard/market-api/internal/store"
)

type serviceFixture struct {
	service *user.Service
	users   *mocks.InMemoryUserStore
	cards   *mocks.InMemoryCardStore
	source  *mocks.StaticStarterCardSource
	trigger *mocks.MockRevaluationTrigger
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	users := mocks.NewInMemoryUserStore()
	cards := mocks.NewInMemoryCardStore()
	trigger := &mocks.MockRevaluationTrigger{}
	source := &mocks.StaticStarterCardSource{
		Cards: []user.StarterCard{
			{Name: "Player One", Age: 22, Skill: 6.5},
			{Name: "Player Two", Age: 27, Skill: 7.0},
			{Name: "Player Three", Age: 31, Skill: 5.5},
			{Name: "Player Four", Age: 19, Skill: 8.0},
			{Name: "Player Five", Age: 25, Skill: 6.0},
		},
	}

	db := mocks.NewDB()
	perms, err := trade.NewEngine(db, users, cards, nil, nil)
	require.NoError(t, err)

	svc, err := user.NewService(db, users, cards, source, &mocks.PlainPasswordHasher{}, perms, trigger, 5, nil)
	require.NoError(t, err)

	return &serviceFixture{
		service: svc,
		users:   users,
		cards:   cards,
		source:  source,
		trigger: trigger,
	}
}

func registerParams(email string) user.RegisterParams {
	return user.RegisterParams{
		Username: "alice",
		Email:    email,
		Password: "s3cret-password",
		Country:  "ES",
		Role:     domain.RoleRegular,
	}
}

func TestRegisterCreatesUserWithStartersAndBudget(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	newUser, err := f.service.Register(context.Background(), registerParams("alice@example.com"))
	require.NoError(t, err)

	assert.Equal(t, domain.StartingBudget, newUser.Budget)
	assert.Equal(t, domain.RoleRegular, newUser.Role)
	assert.NotEmpty(t, newUser.HashedPassword)

	owned, err := f.cards.GetByOwner(context.Background(), newUser.ID)
	require.NoError(t, err)
	require.Len(t, owned, 5)
	for _, card := range owned {
		assert.Equal(t, domain.DefaultMarketValue, card.MarketValue)
		assert.False(t, card.Listed)
	}

	assert.Equal(t, 1, f.trigger.Count(), "registration requests a revaluation")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	_, err := f.service.Register(context.Background(), registerParams("alice@example.com"))
	require.NoError(t, err)

	_, err = f.service.Register(context.Background(), registerParams("alice@example.com"))
	assert.True(t, errors.Is(err, store.ErrEmailExists), "expected ErrEmailExists, got %v", err)
}

func TestRegisterFeedFailureAbortsRegistration(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.source.Err = errors.New("upstream down")

	_, err := f.service.Register(context.Background(), registerParams("alice@example.com"))
	assert.True(t, errors.Is(err, user.ErrStarterFeed), "expected ErrStarterFeed, got %v", err)

	_, err = f.users.GetByEmail(context.Background(), "alice@example.com")
	assert.True(t, errors.Is(err, store.ErrUserNotFound), "no user row may survive a feed failure")
}

func TestGetProfileComputesCollectionValue(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	newUser, err := f.service.Register(context.Background(), registerParams("alice@example.com"))
	require.NoError(t, err)

	profile, err := f.service.Get(context.Background(), domain.Identity{UserID: newUser.ID, Role: newUser.Role}, newUser.ID)
	require.NoError(t, err)

	assert.Equal(t, 5, profile.CardsCount)
	assert.Equal(t, 5*domain.DefaultMarketValue, profile.CollectionValue)
	assert.Len(t, profile.CardIDs, 5)
}

func TestGetProfileForbiddenForOtherUser(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	alice, err := f.service.Register(context.Background(), registerParams("alice@example.com"))
	require.NoError(t, err)
	bobParams := registerParams("bob@example.com")
	bobParams.Username = "bob"
	bob, err := f.service.Register(context.Background(), bobParams)
	require.NoError(t, err)

	_, err = f.service.Get(context.Background(), domain.Identity{UserID: bob.ID, Role: domain.RoleRegular}, alice.ID)
	assert.True(t, errors.Is(err, trade.ErrForbidden), "expected ErrForbidden, got %v", err)

	// An admin can read anyone's profile
	_, err = f.service.Get(context.Background(), domain.Identity{UserID: bob.ID, Role: domain.RoleAdmin}, alice.ID)
	assert.NoError(t, err)
}

func TestListUsersAdminOnly(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	alice, err := f.service.Register(context.Background(), registerParams("alice@example.com"))
	require.NoError(t, err)

	_, err = f.service.List(context.Background(), domain.Identity{UserID: alice.ID, Role: domain.RoleRegular}, 1, 20)
	assert.True(t, errors.Is(err, trade.ErrForbidden), "expected ErrForbidden, got %v", err)

	profiles, err := f.service.List(context.Background(), domain.Identity{UserID: alice.ID, Role: domain.RoleAdmin}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}

func TestUpdateProfileFields(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	alice, err := f.service.Register(context.Background(), registerParams("alice@example.com"))
	require.NoError(t, err)

	newName := "alice2"
	updated, err := f.service.Update(
		context.Background(),
		domain.Identity{UserID: alice.ID, Role: domain.RoleRegular},
		alice.ID,
		user.UpdateParams{Username: &newName},
	)
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "ES", updated.Country, "unset fields stay unchanged")

	stored, err := f.users.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", stored.Username)
	assert.True(t, stored.UpdatedAt.After(alice.UpdatedAt),
		"expected update to advance UpdatedAt past %v, got %v", alice.UpdatedAt, stored.UpdatedAt)
}

func TestUpdateRejectsInvalidUsername(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	alice, err := f.service.Register(context.Background(), registerParams("alice@example.com"))
	require.NoError(t, err)

	empty := ""
	_, err = f.service.Update(
		context.Background(),
		domain.Identity{UserID: alice.ID, Role: domain.RoleRegular},
		alice.ID,
		user.UpdateParams{Username: &empty},
	)
	assert.Error(t, err)
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	alice, err := f.service.Register(context.Background(), registerParams("alice@example.com"))
	require.NoError(t, err)

	// A regular user cannot delete someone else
	err = f.service.Delete(context.Background(), domain.Identity{UserID: uuid.New(), Role: domain.RoleRegular}, alice.ID)
	assert.True(t, errors.Is(err, trade.ErrForbidden), "expected ErrForbidden, got %v", err)

	err = f.service.Delete(context.Background(), domain.Identity{UserID: alice.ID, Role: domain.RoleRegular}, alice.ID)
	require.NoError(t, err)

	_, err = f.users.GetByID(context.Background(), alice.ID)
	assert.True(t, errors.Is(err, store.ErrUserNotFound))
}
