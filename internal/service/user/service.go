// Package user implements registration with starter-card onboarding and
// the permission-gated profile operations (read, update, delete).
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fantacard/market-api/internal/domain"
	"github.com/fantacard/market-api/internal/platform/logger"
	"github.com/fantacard/market-api/internal/service/auth"
	"github.com/fantacard/market-api/internal/service/trade"
	"github.com/fantacard/market-api/internal/store"
)

// ErrStarterFeed is returned when the starter-card feed cannot supply
// players at registration time. Registration is aborted; no user row is
// left behind because the feed is consulted before the transaction opens.
var ErrStarterFeed = errors.New("starter card feed unavailable")

// StarterCard is one already-validated {name, age, skill} tuple from the
// external data feed.
type StarterCard struct {
	Name  string
	Age   int
	Skill float64
}

// StarterCardSource supplies starter cards for a new user.
// The production implementation talks to the football data feed.
type StarterCardSource interface {
	FetchStarterCards(ctx context.Context, count int) ([]StarterCard, error)
}

// PermissionChecker is the permission gate applied to profile operations.
// Satisfied by the trade engine's CheckPermission.
type PermissionChecker interface {
	CheckPermission(identity domain.Identity, targetUserID uuid.UUID) error
}

// RegisterParams carries the validated registration request.
type RegisterParams struct {
	Username string
	Email    string
	Password string
	Country  string
	Role     domain.Role
}

// Profile is a user enriched with their card collection summary.
type Profile struct {
	User            *domain.User
	CollectionValue int64
	CardsCount      int
	CardIDs         []uuid.UUID
}

// Service implements user lifecycle and profile operations.
type Service struct {
	db           *sql.DB
	users        store.UserStore
	cards        store.CardStore
	starters     StarterCardSource
	hasher       auth.PasswordHasher
	perms        PermissionChecker
	revaluer     trade.RevaluationTrigger
	starterCount int
	logger       *slog.Logger
}

// NewService creates a user service.
// starters and revaluer may be nil: without a feed new users start with an
// empty collection, and without a trigger onboarding skips the revaluation
// request.
func NewService(
	db *sql.DB,
	users store.UserStore,
	cards store.CardStore,
	starters StarterCardSource,
	hasher auth.PasswordHasher,
	perms PermissionChecker,
	revaluer trade.RevaluationTrigger,
	starterCount int,
	log *slog.Logger,
) (*Service, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if perms == nil {
		return nil, domain.NewValidationError("perms", "cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		db:           db,
		users:        users,
		cards:        cards,
		starters:     starters,
		hasher:       hasher,
		perms:        perms,
		revaluer:     revaluer,
		starterCount: starterCount,
		logger:       log.With(slog.String("component", "user_service")),
	}, nil
}

// Register creates a new user with the starting budget and their starter
// cards in a single transaction, then requests a revaluation so the new
// cards receive model-based values.
// Returns store.ErrEmailExists when the email is taken and ErrStarterFeed
// when the card feed cannot deliver.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	newUser, err := domain.NewUser(params.Username, params.Email, params.Country, params.Role)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	newUser.HashedPassword = hashed

	// The feed call happens before the transaction opens so a slow or
	// failing upstream never holds database locks.
	var starters []StarterCard
	if s.starters != nil {
		starters, err = s.starters.FetchStarterCards(ctx, s.starterCount)
		if err != nil {
			log.Warn("starter card feed failed, aborting registration",
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: %v", ErrStarterFeed, err)
		}
	}

	cards := make([]*domain.Card, 0, len(starters))
	for _, starter := range starters {
		card, err := domain.NewCard(newUser.ID, starter.Name, starter.Age, starter.Skill)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.users.WithTx(tx).Create(ctx, newUser); err != nil {
			return err
		}
		return s.cards.WithTx(tx).CreateMultiple(ctx, cards)
	})
	if err != nil {
		return nil, err
	}

	log.Info("user registered",
		slog.String("user_id", newUser.ID.String()),
		slog.String("role", string(newUser.Role)),
		slog.Int("starter_cards", len(cards)))

	if s.revaluer != nil {
		if err := s.revaluer.TriggerRevaluation(ctx); err != nil {
			log.Warn("failed to trigger revaluation after registration",
				slog.String("error", err.Error()))
		}
	}

	return newUser, nil
}

// Get returns the profile of one user, including the collection summary.
// Gated by CheckPermission.
func (s *Service) Get(ctx context.Context, identity domain.Identity, userID uuid.UUID) (*Profile, error) {
	if err := s.perms.CheckPermission(identity, userID); err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.buildProfile(ctx, u)
}

// List returns a page of user profiles. Only admins may list users.
func (s *Service) List(ctx context.Context, identity domain.Identity, page, perPage int) ([]*Profile, error) {
	if !identity.Role.IsAdmin() {
		return nil, trade.ErrForbidden
	}

	users, err := s.users.List(ctx, page, perPage)
	if err != nil {
		return nil, err
	}

	profiles := make([]*Profile, 0, len(users))
	for _, u := range users {
		profile, err := s.buildProfile(ctx, u)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// UpdateParams carries the optional profile fields of a PATCH.
// Nil pointers leave the field unchanged.
type UpdateParams struct {
	Username *string
	Country  *string
}

// Update modifies the user's profile fields. Gated by CheckPermission.
func (s *Service) Update(
	ctx context.Context,
	identity domain.Identity,
	userID uuid.UUID,
	params UpdateParams,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.perms.CheckPermission(identity, userID); err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.Username != nil {
		u.Username = *params.Username
	}
	if params.Country != nil {
		u.Country = *params.Country
	}
	u.UpdatedAt = time.Now().UTC()

	if err := u.Validate(); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}

	log.Info("user updated", slog.String("user_id", userID.String()))
	return u, nil
}

// Delete removes the user; the database cascades the deletion to their
// cards. Gated by CheckPermission.
func (s *Service) Delete(ctx context.Context, identity domain.Identity, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.perms.CheckPermission(identity, userID); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	log.Info("user deleted", slog.String("user_id", userID.String()))
	return nil
}

// buildProfile attaches the card collection summary to a user.
func (s *Service) buildProfile(ctx context.Context, u *domain.User) (*Profile, error) {
	cards, err := s.cards.GetByOwner(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		User:       u,
		CardsCount: len(cards),
		CardIDs:    make([]uuid.UUID, 0, len(cards)),
	}
	for _, card := range cards {
		profile.CollectionValue += card.MarketValue
		profile.CardIDs = append(profile.CardIDs, card.ID)
	}
	return profile, nil
}
