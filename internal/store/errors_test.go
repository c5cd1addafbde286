package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreErrorMessage(t *testing.T) {
	t.Parallel()

	wrapped := NewStoreError("user", "create", "insert failed", errors.New("connection reset"))
	assert.Equal(t, "create operation on user failed: insert failed: connection reset", wrapped.Error())

	bare := NewStoreError("card", "list", "query failed", nil)
	assert.Equal(t, "list operation on card failed: query failed", bare.Error())
}

func TestStoreErrorPreservesSentinelChain(t *testing.T) {
	t.Parallel()

	err := NewStoreError("card", "get", "query failed", fmt.Errorf("%w: row gone", ErrCardNotFound))

	assert.ErrorIs(t, err, ErrCardNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	var storeErr *StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "card", storeErr.Entity)
	assert.Equal(t, "get", storeErr.Operation)
}

func TestNotFoundAndConflictPredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		err          error
		wantNotFound bool
		wantConflict bool
	}{
		{"generic not found", ErrNotFound, true, false},
		{"user not found", ErrUserNotFound, true, false},
		{"card not found", ErrCardNotFound, true, false},
		{"conflict", ErrConflict, false, true},
		{"wrapped not found", NewStoreError("user", "get", "query failed", ErrUserNotFound), true, false},
		{"wrapped conflict", fmt.Errorf("apply trade: %w", ErrConflict), false, true},
		{"duplicate", ErrEmailExists, false, false},
		{"plain error", errors.New("boom"), false, false},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantNotFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.wantConflict, IsConflictError(tt.err))
		})
	}
}
