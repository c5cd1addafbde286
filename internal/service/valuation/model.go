package valuation

import (
	"math"

	"github.com/fantacard/market-api/internal/domain"
)

// pivotEpsilon is the smallest pivot magnitude the elimination accepts
// before declaring the normal matrix singular.
const pivotEpsilon = 1e-9

// linearModel is an ordinary least squares fit of
// market_value ~ intercept + age + skill.
type linearModel struct {
	intercept float64
	ageCoef   float64
	skillCoef float64
}

// predict returns the model's estimate for one card's features.
func (m *linearModel) predict(age, skill float64) float64 {
	return m.intercept + m.ageCoef*age + m.skillCoef*skill
}

// fitLinearModel trains the regression on the full card population by
// solving the 3x3 normal equations (XᵀX)β = Xᵀy.
//
// Degenerate populations return ErrUnavailable: fewer than two distinct
// feature points carry no slope information, and a singular normal matrix
// (e.g. collinear features, or too few points to pin down three
// coefficients) has no unique solution.
func fitLinearModel(cards []*domain.Card) (*linearModel, error) {
	if len(cards) == 0 {
		return nil, ErrUnavailable
	}

	if countDistinctFeatures(cards) < 2 {
		return nil, ErrUnavailable
	}

	// Accumulate XᵀX and Xᵀy for the design matrix [1, age, skill].
	var xtx [3][3]float64
	var xty [3]float64
	for _, card := range cards {
		age, skill := card.Features()
		row := [3]float64{1, age, skill}
		y := float64(card.MarketValue)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * y
		}
	}

	beta, ok := solve3(xtx, xty)
	if !ok {
		return nil, ErrUnavailable
	}

	return &linearModel{
		intercept: beta[0],
		ageCoef:   beta[1],
		skillCoef: beta[2],
	}, nil
}

// countDistinctFeatures counts distinct (age, skill) training points.
func countDistinctFeatures(cards []*domain.Card) int {
	type point struct {
		age   float64
		skill float64
	}
	seen := make(map[point]struct{}, len(cards))
	for _, card := range cards {
		age, skill := card.Features()
		seen[point{age, skill}] = struct{}{}
	}
	return len(seen)
}

// solve3 solves the 3x3 linear system a·x = b with Gaussian elimination and
// partial pivoting. Reports ok=false when the matrix is singular or too
// ill-conditioned to trust.
func solve3(a [3][3]float64, b [3]float64) (x [3]float64, ok bool) {
	// Scale tolerance by the matrix magnitude so large populations don't
	// trip the singularity check on absolute size alone.
	maxEntry := 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if abs := math.Abs(a[i][j]); abs > maxEntry {
				maxEntry = abs
			}
		}
	}
	tol := pivotEpsilon * math.Max(maxEntry, 1)

	for col := 0; col < 3; col++ {
		// Partial pivoting: bring the largest remaining entry into place.
		pivotRow := col
		for row := col + 1; row < 3; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivotRow][col]) {
				pivotRow = row
			}
		}
		if math.Abs(a[pivotRow][col]) < tol {
			return x, false
		}
		if pivotRow != col {
			a[pivotRow], a[col] = a[col], a[pivotRow]
			b[pivotRow], b[col] = b[col], b[pivotRow]
		}

		for row := col + 1; row < 3; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < 3; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	for i := 2; i >= 0; i-- {
		sum := b[i]
		for j := i + 1; j < 3; j++ {
			sum -= a[i][j] * x[j]
		}
		x[i] = sum / a[i][i]
	}

	return x, true
}
