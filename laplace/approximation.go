package laplace

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/statlite/lapsis/errs"
	"github.com/statlite/lapsis/internal/options"
	"github.com/statlite/lapsis/internal/parallel"
	"github.com/statlite/lapsis/posterior"
	"github.com/statlite/lapsis/sample"
)

// Approximation is the multivariate Gaussian centered at a fitted mode
// with the inverse Hessian as covariance. It acts as the proposal
// distribution for importance sampling and is itself a posterior.Target.
type Approximation struct {
	mean []float64
	cov  *mat.SymDense
	chol mat.Cholesky
	base *distmv.Normal
	dim  int
}

var _ posterior.Target = (*Approximation)(nil)

type drawConfig struct {
	workers int
}

// DrawOption configures Draw.
type DrawOption = options.Option[*drawConfig]

// WithWorkers sets how many goroutines evaluate target densities during
// Draw. Values below one use all available CPUs.
func WithWorkers(n int) DrawOption {
	return options.NoError(func(c *drawConfig) {
		c.workers = n
	})
}

// NewApproximation builds the Gaussian approximation from a fitted
// mode. Returns ErrInvalidCovariance when the mode carries no usable
// covariance, including one that is not positive definite.
func NewApproximation(m *Mode) (*Approximation, error) {
	if m == nil || m.Covariance == nil || len(m.Location) == 0 {
		return nil, fmt.Errorf("%w: mode is missing location or covariance", errs.ErrInvalidCovariance)
	}

	dim := len(m.Location)
	if m.Covariance.SymmetricDim() != dim {
		return nil, fmt.Errorf("%w: covariance dimension %d does not match location dimension %d",
			errs.ErrInvalidCovariance, m.Covariance.SymmetricDim(), dim)
	}

	cov := mat.NewSymDense(dim, nil)
	cov.CopySym(m.Covariance)

	a := &Approximation{
		mean: append([]float64(nil), m.Location...),
		cov:  cov,
		dim:  dim,
	}
	if ok := a.chol.Factorize(cov); !ok {
		return nil, fmt.Errorf("%w: covariance is not positive definite", errs.ErrInvalidCovariance)
	}
	a.base = distmv.NewNormalChol(a.mean, &a.chol, nil)

	return a, nil
}

// Dim returns the parameter dimension.
func (a *Approximation) Dim() int {
	return a.dim
}

// Mean returns a copy of the approximation's center.
func (a *Approximation) Mean() []float64 {
	return append([]float64(nil), a.mean...)
}

// Covariance returns a copy of the approximation's covariance matrix.
func (a *Approximation) Covariance() *mat.SymDense {
	cov := mat.NewSymDense(a.dim, nil)
	cov.CopySym(a.cov)

	return cov
}

// LogProb returns the normalized Gaussian log density at theta. Panics
// when theta does not match the approximation's dimension.
func (a *Approximation) LogProb(theta []float64) float64 {
	return a.base.LogProb(theta)
}

// Sample draws n parameter vectors from the approximation. A nil src
// falls back to the global random source. Returns nil for n < 1.
func (a *Approximation) Sample(n int, src rand.Source) [][]float64 {
	if n < 1 {
		return nil
	}

	normal := a.base
	if src != nil {
		normal = distmv.NewNormalChol(a.mean, &a.chol, src)
	}

	draws := make([][]float64, n)
	for i := range draws {
		draws[i] = normal.Rand(nil)
	}

	return draws
}

// Draw samples n vectors from the approximation and scores each against
// both the target and the approximation itself, producing the weighted
// sample set that smoothing operates on. Target evaluations run on
// multiple goroutines; sampling itself stays sequential so a seeded src
// gives reproducible draws.
func (a *Approximation) Draw(target posterior.Target, n int, src rand.Source, opts ...DrawOption) (*sample.Set, error) {
	cfg := &drawConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if target == nil {
		return nil, fmt.Errorf("%w: nil target", errs.ErrInvalidConfig)
	}
	if target.Dim() != a.dim {
		return nil, fmt.Errorf("%w: target dimension %d, approximation dimension %d",
			errs.ErrDimensionMismatch, target.Dim(), a.dim)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: draw count %d must be positive", errs.ErrInvalidConfig, n)
	}

	draws := a.Sample(n, src)
	targetLP := make([]float64, n)
	proposalLP := make([]float64, n)
	parallel.ForEach(n, cfg.workers, func(start, end int) {
		for i := start; i < end; i++ {
			targetLP[i] = target.LogProb(draws[i])
			proposalLP[i] = a.base.LogProb(draws[i])
		}
	})

	return sample.New(draws, targetLP, proposalLP)
}
