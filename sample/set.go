// Package sample defines the weighted sample set produced by drawing
// from a proposal distribution and scoring each draw against a target
// density. A Set starts out unweighted; smoothing attaches
// self-normalized importance weights, after which the set can be
// resampled into plain unweighted draws.
package sample

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/statlite/lapsis/errs"
	"github.com/statlite/lapsis/psis"
	"github.com/statlite/lapsis/resample"
)

// Set is a collection of proposal draws with their target and proposal
// log densities. The importance weights are owned by the Set: they are
// nil until Smooth succeeds and are replaced wholesale, never adjusted
// entry by entry.
type Set struct {
	// Draws holds one parameter vector per draw. All rows share the
	// same dimension.
	Draws [][]float64

	// TargetLogProb holds the target log density of each draw.
	TargetLogProb []float64

	// ProposalLogProb holds the proposal log density of each draw.
	ProposalLogProb []float64

	// LogRatios holds TargetLogProb[i] - ProposalLogProb[i], the raw
	// log importance ratios.
	LogRatios []float64

	weights  []float64
	khat     float64
	tailLen  int
	warnings psis.Warning
	smoothed bool
}

// New builds a Set from draws and their log densities. The three
// slices must have equal, positive length and every draw must share the
// same non-zero dimension.
func New(draws [][]float64, targetLogProb, proposalLogProb []float64) (*Set, error) {
	n := len(draws)
	if n == 0 {
		return nil, fmt.Errorf("%w: no draws", errs.ErrEmptySampleSet)
	}
	if len(targetLogProb) != n || len(proposalLogProb) != n {
		return nil, fmt.Errorf("%w: %d draws with %d target and %d proposal log densities",
			errs.ErrDimensionMismatch, n, len(targetLogProb), len(proposalLogProb))
	}

	dim := len(draws[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: draws must have at least one dimension", errs.ErrDimensionMismatch)
	}
	for i, d := range draws {
		if len(d) != dim {
			return nil, fmt.Errorf("%w: draw %d has dimension %d, want %d",
				errs.ErrDimensionMismatch, i, len(d), dim)
		}
	}

	ratios := make([]float64, n)
	for i := range ratios {
		ratios[i] = targetLogProb[i] - proposalLogProb[i]
	}

	return &Set{
		Draws:           draws,
		TargetLogProb:   targetLogProb,
		ProposalLogProb: proposalLogProb,
		LogRatios:       ratios,
		khat:            math.NaN(),
	}, nil
}

// Restore rebuilds a Set from persisted state, including weights that
// were already smoothed and normalized. A nil weights slice restores an
// unsmoothed set; otherwise the weights must match the draw count and
// sum to one.
func Restore(draws [][]float64, targetLogProb, proposalLogProb, weights []float64, khat float64, tailLen int, warnings psis.Warning) (*Set, error) {
	s, err := New(draws, targetLogProb, proposalLogProb)
	if err != nil {
		return nil, err
	}

	if weights == nil {
		return s, nil
	}

	if len(weights) != s.Len() {
		return nil, fmt.Errorf("%w: %d weights for %d draws",
			errs.ErrDimensionMismatch, len(weights), s.Len())
	}
	if tailLen < 0 || tailLen > s.Len() {
		return nil, fmt.Errorf("%w: tail length %d for %d draws", errs.ErrInvalidConfig, tailLen, s.Len())
	}
	sum := 0.0
	for i, w := range weights {
		if math.IsNaN(w) || w < 0 {
			return nil, fmt.Errorf("%w: weight %v at index %d", errs.ErrDegenerateWeights, w, i)
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-6 {
		return nil, fmt.Errorf("%w: weight sum %v, want 1", errs.ErrDegenerateWeights, sum)
	}

	s.weights = weights
	s.khat = khat
	s.tailLen = tailLen
	s.warnings = warnings
	s.smoothed = true

	return s, nil
}

// Len returns the number of draws.
func (s *Set) Len() int {
	return len(s.Draws)
}

// Dim returns the parameter dimension.
func (s *Set) Dim() int {
	if len(s.Draws) == 0 {
		return 0
	}

	return len(s.Draws[0])
}

// Smoothed reports whether importance weights are attached.
func (s *Set) Smoothed() bool {
	return s.smoothed
}

// Weights returns the self-normalized importance weights, or nil before
// Smooth. The slice is owned by the Set and must not be modified.
func (s *Set) Weights() []float64 {
	return s.weights
}

// KHat returns the tail-shape diagnostic from smoothing, NaN before
// Smooth or when the tail was too small to fit.
func (s *Set) KHat() float64 {
	return s.khat
}

// TailLen returns how many draws were in the smoothing tail, zero
// before Smooth or when the tail was too small.
func (s *Set) TailLen() int {
	return s.tailLen
}

// Warnings returns the diagnostic flags raised by smoothing.
func (s *Set) Warnings() psis.Warning {
	return s.warnings
}

// Smooth runs Pareto smoothed importance sampling over the log ratios
// and attaches the resulting weights to the set. The returned Fit
// carries the full diagnostics. Re-smoothing with different options
// replaces the previous weights.
func (s *Set) Smooth(opts ...psis.Option) (*psis.Fit, error) {
	fit, err := psis.Smooth(s.LogRatios, opts...)
	if err != nil {
		return nil, err
	}

	s.weights = fit.Weights
	s.khat = fit.KHat
	s.tailLen = fit.TailLen
	s.warnings = fit.Warnings
	s.smoothed = true

	return fit, nil
}

// EffectiveSampleSize estimates how many independent draws the weighted
// set is worth, 1 / sum(w^2). Returns NaN before smoothing.
func (s *Set) EffectiveSampleSize() float64 {
	if !s.smoothed {
		return math.NaN()
	}

	sumSq := 0.0
	for _, w := range s.weights {
		sumSq += w * w
	}

	return 1 / sumSq
}

// ResampleIndices draws count indices proportional to the importance
// weights, with replacement. Fails with ErrNoWeights until Smooth has
// attached weights.
func (s *Set) ResampleIndices(count int, src rand.Source) ([]int, error) {
	if !s.smoothed {
		return nil, fmt.Errorf("%w: set has not been smoothed", errs.ErrNoWeights)
	}

	return resample.Indices(s.weights, count, src)
}

// Resample draws count parameter vectors proportional to the importance
// weights, with replacement. The returned rows are copies; mutating
// them does not affect the set.
func (s *Set) Resample(count int, src rand.Source) ([][]float64, error) {
	idx, err := s.ResampleIndices(count, src)
	if err != nil {
		return nil, err
	}

	dim := s.Dim()
	out := make([][]float64, len(idx))
	for i, j := range idx {
		row := make([]float64, dim)
		copy(row, s.Draws[j])
		out[i] = row
	}

	return out, nil
}
