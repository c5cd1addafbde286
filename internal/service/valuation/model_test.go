package valuation

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantacard/market-api/internal/domain"
)

func makeCard(t *testing.T, age int, skill float64, value int64) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(uuid.New(), "Player", age, skill)
	require.NoError(t, err)
	card.MarketValue = value
	return card
}

func TestFitLinearModelRecoversExactFit(t *testing.T) {
	t.Parallel()

	// Values generated from v = 10 + 2*age + 30*skill
	value := func(age int, skill float64) int64 {
		return int64(10 + 2*float64(age) + 30*skill)
	}

	cards := []*domain.Card{
		makeCard(t, 20, 5, value(20, 5)),
		makeCard(t, 25, 7, value(25, 7)),
		makeCard(t, 30, 4, value(30, 4)),
		makeCard(t, 22, 9, value(22, 9)),
		makeCard(t, 35, 6, value(35, 6)),
	}

	model, err := fitLinearModel(cards)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, model.intercept, 1e-6)
	assert.InDelta(t, 2.0, model.ageCoef, 1e-6)
	assert.InDelta(t, 30.0, model.skillCoef, 1e-6)

	assert.InDelta(t, float64(value(28, 8)), model.predict(28, 8), 1e-6)
}

func TestFitLinearModelDegeneratePopulations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cards []*domain.Card
	}{
		{
			name:  "empty population",
			cards: nil,
		},
		{
			name: "single card",
			cards: []*domain.Card{
				makeCard(t, 24, 7, 100),
			},
		},
		{
			name: "identical feature points",
			cards: []*domain.Card{
				makeCard(t, 24, 7, 100),
				makeCard(t, 24, 7, 300),
				makeCard(t, 24, 7, 500),
			},
		},
		{
			// Two distinct points cannot pin down three coefficients
			name: "two distinct points",
			cards: []*domain.Card{
				makeCard(t, 20, 5, 100),
				makeCard(t, 30, 8, 400),
			},
		},
		{
			// skill = age/10 everywhere, so the columns are collinear
			name: "collinear features",
			cards: []*domain.Card{
				makeCard(t, 20, 2, 100),
				makeCard(t, 30, 3, 200),
				makeCard(t, 40, 4, 300),
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			model, err := fitLinearModel(tt.cards)
			assert.Nil(t, model)
			assert.True(t, errors.Is(err, ErrUnavailable),
				"expected ErrUnavailable, got %v", err)
		})
	}
}

func TestSolve3RejectsSingularMatrix(t *testing.T) {
	t.Parallel()

	// Second row is a multiple of the first
	a := [3][3]float64{
		{1, 2, 3},
		{2, 4, 6},
		{1, 0, 1},
	}
	b := [3]float64{1, 2, 3}

	_, ok := solve3(a, b)
	assert.False(t, ok)
}

func TestSolve3SolvesWellConditionedSystem(t *testing.T) {
	t.Parallel()

	a := [3][3]float64{
		{2, 0, 0},
		{0, 3, 0},
		{0, 0, 4},
	}
	b := [3]float64{4, 9, 8}

	x, ok := solve3(a, b)
	require.True(t, ok)
	assert.InDelta(t, 2.0, x[0], 1e-12)
	assert.InDelta(t, 3.0, x[1], 1e-12)
	assert.InDelta(t, 2.0, x[2], 1e-12)
}
