// Package grid evaluates a two-parameter posterior on a regular grid
// and samples from the resulting cell probabilities. It is the
// brute-force reference the mode-based approximation is checked
// against: no optimizer, no proposal, just quadrature.
package grid

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/statlite/lapsis/errs"
	"github.com/statlite/lapsis/internal/options"
	"github.com/statlite/lapsis/internal/parallel"
	"github.com/statlite/lapsis/posterior"
	"github.com/statlite/lapsis/resample"
)

// maxAxisPoints caps a single axis so a mistyped count cannot allocate
// gigabytes of cells.
const maxAxisPoints = 1 << 16

// Axis describes one regularly spaced grid dimension, inclusive of both
// endpoints.
type Axis struct {
	Min   float64
	Max   float64
	Count int
}

func (a Axis) validate(name string) error {
	if a.Count < 2 {
		return fmt.Errorf("%w: %s axis needs at least 2 points, got %d", errs.ErrInvalidGrid, name, a.Count)
	}
	if a.Count > maxAxisPoints {
		return fmt.Errorf("%w: %s axis count %d exceeds %d", errs.ErrInvalidGrid, name, a.Count, maxAxisPoints)
	}
	if math.IsNaN(a.Min) || math.IsNaN(a.Max) || math.IsInf(a.Min, 0) || math.IsInf(a.Max, 0) {
		return fmt.Errorf("%w: %s axis bounds [%v, %v] must be finite", errs.ErrInvalidGrid, name, a.Min, a.Max)
	}
	if a.Min >= a.Max {
		return fmt.Errorf("%w: %s axis bounds [%v, %v] must be increasing", errs.ErrInvalidGrid, name, a.Min, a.Max)
	}

	return nil
}

// step returns the spacing between adjacent points.
func (a Axis) step() float64 {
	return (a.Max - a.Min) / float64(a.Count-1)
}

// Grid is a two-dimensional evaluation lattice. Cells are stored
// row-major with the first parameter varying fastest:
// cell(ix, iy) = iy*x.Count + ix.
type Grid struct {
	x, y Axis
	xs   []float64
	ys   []float64

	weights   []float64
	evaluated bool

	workers int
	jitter  bool
}

// Option configures a Grid.
type Option = options.Option[*Grid]

// WithWorkers sets how many goroutines evaluate grid cells. Values
// below one use all available CPUs.
func WithWorkers(n int) Option {
	return options.NoError(func(g *Grid) {
		g.workers = n
	})
}

// WithoutJitter makes Sample return exact grid points instead of
// spreading each draw uniformly over its cell.
func WithoutJitter() Option {
	return options.NoError(func(g *Grid) {
		g.jitter = false
	})
}

// New builds an unevaluated grid over the two axes.
func New(x, y Axis, opts ...Option) (*Grid, error) {
	if err := x.validate("x"); err != nil {
		return nil, err
	}
	if err := y.validate("y"); err != nil {
		return nil, err
	}

	g := &Grid{
		x:      x,
		y:      y,
		xs:     floats.Span(make([]float64, x.Count), x.Min, x.Max),
		ys:     floats.Span(make([]float64, y.Count), y.Min, y.Max),
		jitter: true,
	}
	if err := options.Apply(g, opts...); err != nil {
		return nil, err
	}

	return g, nil
}

// XPoints returns a copy of the first axis points.
func (g *Grid) XPoints() []float64 {
	return append([]float64(nil), g.xs...)
}

// YPoints returns a copy of the second axis points.
func (g *Grid) YPoints() []float64 {
	return append([]float64(nil), g.ys...)
}

// Len returns the number of grid cells.
func (g *Grid) Len() int {
	return g.x.Count * g.y.Count
}

// Evaluated reports whether cell probabilities are available.
func (g *Grid) Evaluated() bool {
	return g.evaluated
}

// Weights returns the normalized cell probabilities, row-major, or nil
// before Evaluate. The slice is owned by the Grid and must not be
// modified.
func (g *Grid) Weights() []float64 {
	return g.weights
}

// Evaluate computes the target log density at every grid point and
// normalizes the exponentiated values into cell probabilities. The
// whole lattice is shifted by its maximum before exponentiation, so
// unnormalized log densities of any magnitude are fine.
//
// Returns ErrDimensionMismatch unless the target is two-dimensional and
// ErrDegenerateWeights when no cell has positive density.
func (g *Grid) Evaluate(target posterior.Target) error {
	if target.Dim() != 2 {
		return fmt.Errorf("%w: grid evaluation needs a 2-dimensional target, got %d",
			errs.ErrDimensionMismatch, target.Dim())
	}

	n := g.Len()
	nx := g.x.Count
	logDensity := make([]float64, n)
	parallel.ForEach(n, g.workers, func(start, end int) {
		theta := make([]float64, 2)
		for i := start; i < end; i++ {
			theta[0] = g.xs[i%nx]
			theta[1] = g.ys[i/nx]
			logDensity[i] = target.LogProb(theta)
		}
	})

	shift := floats.Max(logDensity)
	weights := make([]float64, n)
	sum := 0.0
	for i, ld := range logDensity {
		weights[i] = math.Exp(ld - shift)
		sum += weights[i]
	}
	if math.IsNaN(sum) || sum <= 0 {
		return fmt.Errorf("%w: grid density vanished everywhere", errs.ErrDegenerateWeights)
	}
	floats.Scale(1/sum, weights)

	g.weights = weights
	g.evaluated = true

	return nil
}

// Mean returns the posterior mean of both parameters under the cell
// probabilities. Fails with ErrNoWeights before Evaluate.
func (g *Grid) Mean() ([]float64, error) {
	if !g.evaluated {
		return nil, fmt.Errorf("%w: grid has not been evaluated", errs.ErrNoWeights)
	}

	nx := g.x.Count
	mean := make([]float64, 2)
	for i, w := range g.weights {
		mean[0] += w * g.xs[i%nx]
		mean[1] += w * g.ys[i/nx]
	}

	return mean, nil
}

// Sample draws n parameter vectors from the cell probabilities with
// replacement. Each draw is jittered uniformly within half a cell
// spacing per axis unless the grid was built WithoutJitter, so repeated
// cells do not collapse onto identical points.
//
// Fails with ErrNoWeights before Evaluate.
func (g *Grid) Sample(n int, src rand.Source) ([][]float64, error) {
	if !g.evaluated {
		return nil, fmt.Errorf("%w: grid has not been evaluated", errs.ErrNoWeights)
	}

	idx, err := resample.Indices(g.weights, n, src)
	if err != nil {
		return nil, err
	}

	var jx, jy distuv.Uniform
	if g.jitter {
		hx := g.x.step() / 2
		hy := g.y.step() / 2
		jx = distuv.Uniform{Min: -hx, Max: hx, Src: src}
		jy = distuv.Uniform{Min: -hy, Max: hy, Src: src}
	}

	nx := g.x.Count
	out := make([][]float64, len(idx))
	for i, cell := range idx {
		x := g.xs[cell%nx]
		y := g.ys[cell/nx]
		if g.jitter {
			x += jx.Rand()
			y += jy.Rand()
		}
		out[i] = []float64{x, y}
	}

	return out, nil
}
