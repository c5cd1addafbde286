package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/fantacard/market-api/internal/store"
)

func pgError(code, constraint string) error {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil passes through", nil, nil},
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("query: %w", sql.ErrNoRows), store.ErrNotFound},
		{"unique violation", pgError("23505", "idx_users_email"), store.ErrDuplicate},
		{"foreign key violation", pgError("23503", "cards_owner_id_fkey"), store.ErrInvalidEntity},
		{"check violation", pgError("23514", "users_budget_check"), store.ErrInvalidEntity},
		{"not null violation", pgError("23502", ""), store.ErrInvalidEntity},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MapError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}

	// Unknown errors pass through unchanged
	plain := errors.New("connection reset")
	assert.Equal(t, plain, MapError(plain))
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	unique := pgError("23505", "idx_users_email")
	fk := pgError("23503", "cards_owner_id_fkey")
	check := pgError("23514", "users_budget_check")

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(fk))

	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(check))

	assert.True(t, IsCheckConstraintViolation(check))
	assert.False(t, IsCheckConstraintViolation(unique))
	assert.False(t, IsCheckConstraintViolation(errors.New("plain")))
}
