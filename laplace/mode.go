package laplace

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/statlite/lapsis/errs"
	"github.com/statlite/lapsis/internal/options"
	"github.com/statlite/lapsis/posterior"
)

const (
	// DefaultTolerance is the absolute objective-value change below
	// which the mode search is considered converged.
	DefaultTolerance = 1e-10

	// DefaultMaxIterations bounds the optimizer's major iterations.
	DefaultMaxIterations = 1000

	// convergeIterations is how many successive iterations must move the
	// objective by less than the tolerance before the search stops.
	convergeIterations = 20

	// singularRelTol is the determinant threshold, relative to the
	// product of the Hessian diagonal, below which the curvature is
	// treated as singular.
	singularRelTol = 1e-12
)

// Mode is the posterior mode together with the local Gaussian geometry:
// the inverse Hessian of the negative log density evaluated at the
// maximizer.
type Mode struct {
	// Location is the parameter vector maximizing the target log density.
	Location []float64

	// Covariance is the inverse Hessian of the negative log density at
	// Location, the covariance of the Laplace approximation.
	Covariance *mat.SymDense

	// LogProb is the target log density at Location.
	LogProb float64
}

type fitConfig struct {
	tolerance     float64
	maxIterations int
}

// FitOption configures FitMode.
type FitOption = options.Option[*fitConfig]

// WithTolerance overrides the convergence tolerance on the objective
// value. The tolerance must be positive.
func WithTolerance(tolerance float64) FitOption {
	return options.New(func(c *fitConfig) error {
		if math.IsNaN(tolerance) || tolerance <= 0 {
			return fmt.Errorf("%w: tolerance %v must be positive", errs.ErrInvalidConfig, tolerance)
		}
		c.tolerance = tolerance

		return nil
	})
}

// WithMaxIterations overrides the major-iteration budget.
func WithMaxIterations(n int) FitOption {
	return options.New(func(c *fitConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: iteration budget %d must be at least 1", errs.ErrInvalidConfig, n)
		}
		c.maxIterations = n

		return nil
	})
}

// FitMode locates the maximizer of the target log density with a
// derivative-free Nelder-Mead search and measures the curvature there
// by finite differences. A nil start searches from the origin.
//
// Returns ErrDimensionMismatch when start does not match the target
// dimension, ErrNonConvergence when the optimizer stops without
// converging, and ErrSingularCurvature when the negative log density
// has no positive-definite Hessian at the maximizer, which happens for
// flat or ridge-shaped densities.
func FitMode(target posterior.Target, start []float64, opts ...FitOption) (*Mode, error) {
	cfg := &fitConfig{
		tolerance:     DefaultTolerance,
		maxIterations: DefaultMaxIterations,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	dim := target.Dim()
	if dim < 1 {
		return nil, fmt.Errorf("%w: target dimension %d must be positive", errs.ErrDimensionMismatch, dim)
	}
	if start == nil {
		start = make([]float64, dim)
	}
	if len(start) != dim {
		return nil, fmt.Errorf("%w: start has length %d, target dimension is %d",
			errs.ErrDimensionMismatch, len(start), dim)
	}

	negLogProb := func(x []float64) float64 {
		return -target.LogProb(x)
	}

	problem := optimize.Problem{Func: negLogProb}
	settings := &optimize.Settings{
		MajorIterations: cfg.maxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   cfg.tolerance,
			Iterations: convergeIterations,
		},
	}

	initX := append([]float64(nil), start...)
	result, err := optimize.Minimize(problem, initX, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrNonConvergence, err)
	}
	switch result.Status {
	case optimize.Success, optimize.FunctionConvergence, optimize.MethodConverge,
		optimize.StepConvergence, optimize.FunctionThreshold, optimize.GradientThreshold:
	default:
		return nil, fmt.Errorf("%w: optimizer stopped with status %v after %d iterations",
			errs.ErrNonConvergence, result.Status, result.Stats.MajorIterations)
	}

	location := append([]float64(nil), result.X...)

	hessian := mat.NewSymDense(dim, nil)
	fd.Hessian(hessian, negLogProb, location, nil)

	var chol mat.Cholesky
	if ok := chol.Factorize(hessian); !ok {
		return nil, fmt.Errorf("%w: negative log density Hessian is not positive definite at the mode",
			errs.ErrSingularCurvature)
	}

	diagScale := 1.0
	for i := 0; i < dim; i++ {
		diagScale *= math.Abs(hessian.At(i, i))
	}
	if det := chol.Det(); det < singularRelTol*diagScale {
		return nil, fmt.Errorf("%w: Hessian determinant %v is numerically singular",
			errs.ErrSingularCurvature, det)
	}

	covariance := mat.NewSymDense(dim, nil)
	if err := chol.InverseTo(covariance); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSingularCurvature, err)
	}

	return &Mode{
		Location:   location,
		Covariance: covariance,
		LogProb:    -result.F,
	}, nil
}
