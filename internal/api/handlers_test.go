package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantacard/market-api/internal/api"
	apiMiddleware "github.com/fantacard/market-api/internal/api/middleware"
	"github.com/fantacard/market-api/internal/domain"
	"github.com/fantacard/market-api/internal/mocks"
	"github.com/fantacard/market-api/internal/service/auth"
	"github.com/fantacard/market-api/internal/service/trade"
	"github.com/fantacard/market-api/internal/service/user"
)

// apiFixture wires the handlers against in-memory stores behind a real
// chi router, with a token format of "<userID>:<role>".
type apiFixture struct {
	router  http.Handler
	users   *mocks.InMemoryUserStore
	cards   *mocks.InMemoryCardStore
	service *user.Service
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	users := mocks.NewInMemoryUserStore()
	cards := mocks.NewInMemoryCardStore()
	db := mocks.NewDB()

	tradeEngine, err := trade.NewEngine(db, users, cards, nil, nil)
	require.NoError(t, err)

	starters := &mocks.StaticStarterCardSource{
		Cards: []user.StarterCard{
			{Name: "Player One", Age: 22, Skill: 6.5},
			{Name: "Player Two", Age: 27, Skill: 7.0},
			{Name: "Player Three", Age: 31, Skill: 5.5},
		},
	}

	userService, err := user.NewService(
		db, users, cards, starters,
		&mocks.PlainPasswordHasher{}, tradeEngine, nil, 3, nil,
	)
	require.NoError(t, err)

	jwtService := &mocks.MockJWTService{
		GenerateTokenFn: func(ctx context.Context, userID uuid.UUID, role domain.Role) (string, error) {
			return fmt.Sprintf("%s:%s", userID, role), nil
		},
		ValidateTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
			parts := strings.SplitN(tokenString, ":", 2)
			if len(parts) != 2 {
				return nil, auth.ErrInvalidToken
			}
			userID, err := uuid.Parse(parts[0])
			if err != nil {
				return nil, auth.ErrInvalidToken
			}
			role, err := domain.ParseRole(parts[1])
			if err != nil {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{UserID: userID, Role: role}, nil
		},
	}

	authHandler := api.NewAuthHandler(userService, users, jwtService, &mocks.PlainPasswordVerifier{})
	marketHandler := api.NewMarketHandler(tradeEngine, cards)
	userHandler := api.NewUserHandler(userService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/market", marketHandler.ListMarket)
			r.Get("/market/{cardID}", marketHandler.GetCard)
			r.Post("/market", marketHandler.ListCard)
			r.Patch("/market/{cardID}", marketHandler.TradeCard)
			r.Get("/users", userHandler.ListUsers)
			r.Get("/users/{userID}", userHandler.GetUser)
			r.Patch("/users/{userID}", userHandler.UpdateUser)
			r.Delete("/users/{userID}", userHandler.DeleteUser)
		})
	})

	return &apiFixture{
		router:  r,
		users:   users,
		cards:   cards,
		service: userService,
	}
}

func (f *apiFixture) register(t *testing.T, username, email string) *domain.User {
	t.Helper()

	u, err := f.service.Register(context.Background(), user.RegisterParams{
		Username: username,
		Email:    email,
		Password: "s3cret-password",
		Country:  "ES",
		Role:     domain.RoleRegular,
	})
	require.NoError(t, err)
	return u
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, as *domain.User) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if as != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s:%s", as.ID, as.Role))
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "s3cret-password",
		"country":  "ES",
	}, nil)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeBody[api.AuthResponse](t, rec)
	assert.NotEqual(t, uuid.Nil, resp.UserID)
	assert.NotEmpty(t, resp.Token)

	// Duplicate email conflicts
	rec = f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "s3cret-password",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterEndpointValidation(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing email", map[string]string{"username": "alice", "password": "s3cret-password"}},
		{"bad email", map[string]string{"username": "alice", "email": "nope", "password": "s3cret-password"}},
		{"short password", map[string]string{"username": "alice", "email": "a@example.com", "password": "short"}},
		{"bad role", map[string]string{"username": "alice", "email": "a@example.com", "password": "s3cret-password", "role": "owner"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := f.do(t, http.MethodPost, "/api/auth/register", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	f.register(t, "alice", "alice@example.com")

	rec := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "s3cret-password",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "s3cret-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/market", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/market", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	out := httptest.NewRecorder()
	f.router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusUnauthorized, out.Code)
}

func TestMarketListShowsOnlyListedCards(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	aliceCards, err := f.cards.GetByOwner(context.Background(), alice.ID)
	require.NoError(t, err)
	require.NotEmpty(t, aliceCards)

	rec := f.do(t, http.MethodPost, "/api/market", map[string]any{
		"card_id": aliceCards[0].ID,
		"price":   150,
	}, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/market", nil, bob)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[api.CardListResponse](t, rec)
	require.Len(t, resp.Cards, 1)
	assert.Equal(t, aliceCards[0].ID, resp.Cards[0].ID)
	assert.Equal(t, int64(150), resp.Cards[0].MarketPrice)
}

func TestMarketGetCardOnlyWhileListed(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	alice := f.register(t, "alice", "alice@example.com")

	aliceCards, err := f.cards.GetByOwner(context.Background(), alice.ID)
	require.NoError(t, err)
	cardID := aliceCards[0].ID

	// Off-market cards are invisible through the market view
	rec := f.do(t, http.MethodGet, "/api/market/"+cardID.String(), nil, alice)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/market", map[string]any{
		"card_id": cardID,
		"price":   120,
	}, alice)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/market/"+cardID.String(), nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	card := decodeBody[api.CardResponse](t, rec)
	assert.Equal(t, cardID, card.ID)
	assert.True(t, card.Listed)
}

func TestMarketListCardNotOwned(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	aliceCards, err := f.cards.GetByOwner(context.Background(), alice.ID)
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/api/market", map[string]any{
		"card_id": aliceCards[0].ID,
		"price":   150,
	}, bob)
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
}

func TestTradeCardPatchDisambiguatesBySide(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	aliceCards, err := f.cards.GetByOwner(context.Background(), alice.ID)
	require.NoError(t, err)
	cardID := aliceCards[0].ID

	rec := f.do(t, http.MethodPost, "/api/market", map[string]any{
		"card_id": cardID,
		"price":   150,
	}, alice)
	require.Equal(t, http.StatusCreated, rec.Code)

	// The owner's PATCH withdraws the listing
	rec = f.do(t, http.MethodPatch, "/api/market/"+cardID.String(), nil, alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	withdrawn := decodeBody[api.CardResponse](t, rec)
	assert.False(t, withdrawn.Listed)

	// Relist, then a non-owner's PATCH purchases
	rec = f.do(t, http.MethodPost, "/api/market", map[string]any{
		"card_id": cardID,
		"price":   150,
	}, alice)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/market/"+cardID.String(), nil, bob)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	receipt := decodeBody[api.ReceiptResponse](t, rec)
	assert.Equal(t, bob.ID, receipt.BuyerID)
	assert.Equal(t, alice.ID, receipt.SellerID)
	assert.Equal(t, int64(150), receipt.Price)
	assert.Equal(t, domain.StartingBudget-150, receipt.BuyerBudget)
	assert.Equal(t, bob.ID, receipt.Card.OwnerID)
}

func TestPurchaseInsufficientFundsReturns402(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	aliceCards, err := f.cards.GetByOwner(context.Background(), alice.ID)
	require.NoError(t, err)
	cardID := aliceCards[0].ID

	rec := f.do(t, http.MethodPost, "/api/market", map[string]any{
		"card_id": cardID,
		"price":   domain.StartingBudget + 1,
	}, alice)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/market/"+cardID.String(), nil, bob)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code, rec.Body.String())
}

func TestGetUserProfile(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	rec := f.do(t, http.MethodGet, "/api/users/"+alice.ID.String(), nil, alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decodeBody[api.UserResponse](t, rec)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, domain.StartingBudget, profile.Budget)
	assert.Equal(t, 3, profile.CardsCount)
	assert.Equal(t, 3*domain.DefaultMarketValue, profile.CollectionValue)

	// A regular user cannot read someone else's profile
	rec = f.do(t, http.MethodGet, "/api/users/"+alice.ID.String(), nil, bob)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Listing users is admin only
	rec = f.do(t, http.MethodGet, "/api/users", nil, alice)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/users/not-a-uuid", nil, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAndDeleteUser(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	alice := f.register(t, "alice", "alice@example.com")

	rec := f.do(t, http.MethodPatch, "/api/users/"+alice.ID.String(), map[string]string{
		"username": "alice-renamed",
	}, alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[api.UserResponse](t, rec)
	assert.Equal(t, "alice-renamed", updated.Username)

	rec = f.do(t, http.MethodDelete, "/api/users/"+alice.ID.String(), nil, alice)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/users/"+alice.ID.String(), nil, alice)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
