package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantacard/market-api/internal/config"
	"github.com/fantacard/market-api/internal/domain"
	"github.com/fantacard/market-api/internal/service/auth"
)

const testSecret = "test-secret-key-thats-long-enough-for-hmac"

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service := auth.NewTestJWTService(testSecret, time.Hour, fixedClock(now))

	userID := uuid.New()
	token, err := service.GenerateToken(context.Background(), userID, domain.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, now, claims.IssuedAt)
	assert.Equal(t, now.Add(time.Hour), claims.ExpiresAt)

	identity := claims.Identity()
	assert.Equal(t, userID, identity.UserID)
	assert.True(t, identity.Role.IsAdmin())
}

func TestValidateExpiredToken(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := auth.NewTestJWTService(testSecret, time.Hour, fixedClock(issuedAt))

	token, err := issuer.GenerateToken(context.Background(), uuid.New(), domain.RoleRegular)
	require.NoError(t, err)

	// Validate two hours later
	validator := auth.NewTestJWTService(testSecret, time.Hour, fixedClock(issuedAt.Add(2*time.Hour)))
	_, err = validator.ValidateToken(context.Background(), token)
	assert.True(t, errors.Is(err, auth.ErrExpiredToken), "expected ErrExpiredToken, got %v", err)
}

func TestValidateTokenWrongKey(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := auth.NewTestJWTService(testSecret, time.Hour, fixedClock(now))
	validator := auth.NewTestJWTService("another-secret-key-thats-also-long-enough", time.Hour, fixedClock(now))

	token, err := issuer.GenerateToken(context.Background(), uuid.New(), domain.RoleRegular)
	require.NoError(t, err)

	_, err = validator.ValidateToken(context.Background(), token)
	assert.True(t, errors.Is(err, auth.ErrInvalidToken), "expected ErrInvalidToken, got %v", err)
}

func TestValidateGarbageToken(t *testing.T) {
	t.Parallel()

	service := auth.NewTestJWTService(testSecret, time.Hour, time.Now)

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		_, err := service.ValidateToken(context.Background(), token)
		assert.True(t, errors.Is(err, auth.ErrInvalidToken), "token %q: expected ErrInvalidToken, got %v", token, err)
	}
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := auth.NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)
}

func TestBcryptHashAndCompare(t *testing.T) {
	t.Parallel()

	hasher := auth.NewBcryptHasher()
	verifier := auth.NewBcryptVerifier()

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, verifier.Compare(hash, "correct horse battery staple"))
	assert.Error(t, verifier.Compare(hash, "wrong password"))
}
