// Package resample draws indices from a weighted sample set with
// replacement, turning self-normalized importance weights back into an
// unweighted set of draws.
package resample

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/statlite/lapsis/errs"
)

// Indices draws count indices from the categorical distribution
// proportional to weights, with replacement. Weights need not sum to
// one, but every weight must be finite and non-negative and at least
// one must be positive.
//
// A nil src falls back to the global random source.
//
// Returns ErrNoWeights for an empty weight slice, ErrInvalidConfig for
// a non-positive count, and ErrDegenerateWeights when the weights
// cannot define a distribution.
func Indices(weights []float64, count int, src rand.Source) ([]int, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("%w: no weights to resample from", errs.ErrNoWeights)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: resample count %d must be positive", errs.ErrInvalidConfig, count)
	}

	// distuv.NewCategorical panics on invalid weights, so reject them
	// here with a proper error instead.
	sum := 0.0
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, fmt.Errorf("%w: weight %v at index %d", errs.ErrDegenerateWeights, w, i)
		}
		sum += w
	}
	if sum <= 0 || math.IsInf(sum, 1) {
		return nil, fmt.Errorf("%w: weight sum %v", errs.ErrDegenerateWeights, sum)
	}

	cat := distuv.NewCategorical(weights, src)

	idx := make([]int, count)
	for i := range idx {
		idx[i] = int(cat.Rand())
	}

	return idx, nil
}
