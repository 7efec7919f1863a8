// Package lapsis estimates low-dimensional Bayesian posteriors without
// MCMC: it fits a Laplace approximation at the posterior mode, draws
// from the resulting Gaussian, and corrects the draws with Pareto
// smoothed importance sampling. The fitted tail shape k-hat reports how
// much the Gaussian missed, turning a silent approximation error into a
// measurable diagnostic.
//
// Fit runs the whole pipeline:
//
//	target, err := posterior.NewBinomialLogit(posterior.Bioassay(), nil)
//	if err != nil {
//		return err
//	}
//	result, err := lapsis.Fit(target, lapsis.WithDraws(4000))
//	if err != nil {
//		return err
//	}
//	if !result.Reliable() {
//		log.Printf("k-hat %.2f: approximation questionable", result.KHat())
//	}
//	points, err := result.Resample(1000, nil)
//
// The subpackages expose each stage separately: posterior defines
// targets, laplace fits the mode and Gaussian, psis smooths importance
// ratios, sample and resample manage weighted draws, grid provides a
// quadrature reference, and draws persists sample sets in a binary
// format.
package lapsis

import (
	"fmt"
	"math/rand/v2"

	"github.com/statlite/lapsis/errs"
	"github.com/statlite/lapsis/internal/options"
	"github.com/statlite/lapsis/laplace"
	"github.com/statlite/lapsis/posterior"
	"github.com/statlite/lapsis/psis"
	"github.com/statlite/lapsis/sample"
)

// DefaultDraws is the proposal sample size used when WithDraws is not
// given.
const DefaultDraws = 1000

// Result carries every stage of a completed pipeline run.
type Result struct {
	// Mode is the fitted posterior mode and curvature.
	Mode *laplace.Mode

	// Approximation is the Gaussian proposal built at the mode.
	Approximation *laplace.Approximation

	// Set holds the proposal draws with their smoothed importance
	// weights attached.
	Set *sample.Set

	// Smoothing is the full Pareto-smoothing diagnostic record.
	Smoothing *psis.Fit
}

type config struct {
	draws      int
	start      []float64
	src        rand.Source
	workers    int
	fitOpts    []laplace.FitOption
	smoothOpts []psis.Option
}

// Option configures Fit.
type Option = options.Option[*config]

// WithDraws sets how many draws to take from the Gaussian proposal.
func WithDraws(n int) Option {
	return options.New(func(c *config) error {
		if n < 1 {
			return fmt.Errorf("%w: draw count %d must be positive", errs.ErrInvalidConfig, n)
		}
		c.draws = n

		return nil
	})
}

// WithStart sets the mode search's starting point. The default starts
// from the origin.
func WithStart(theta []float64) Option {
	return options.NoError(func(c *config) {
		c.start = append([]float64(nil), theta...)
	})
}

// WithSource seeds all randomness in the pipeline. A nil source uses
// the global one.
func WithSource(src rand.Source) Option {
	return options.NoError(func(c *config) {
		c.src = src
	})
}

// WithWorkers sets how many goroutines score draws against the target.
func WithWorkers(n int) Option {
	return options.NoError(func(c *config) {
		c.workers = n
	})
}

// WithFitOptions forwards options to the mode search.
func WithFitOptions(opts ...laplace.FitOption) Option {
	return options.NoError(func(c *config) {
		c.fitOpts = append(c.fitOpts, opts...)
	})
}

// WithSmoothOptions forwards options to the importance-weight
// smoothing.
func WithSmoothOptions(opts ...psis.Option) Option {
	return options.NoError(func(c *config) {
		c.smoothOpts = append(c.smoothOpts, opts...)
	})
}

// Fit runs mode search, Gaussian approximation, proposal sampling, and
// Pareto smoothed reweighting against the target, in that order. Any
// stage failing aborts the run with that stage's error.
func Fit(target posterior.Target, opts ...Option) (*Result, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: nil target", errs.ErrInvalidConfig)
	}

	cfg := &config{draws: DefaultDraws}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	mode, err := laplace.FitMode(target, cfg.start, cfg.fitOpts...)
	if err != nil {
		return nil, err
	}

	approx, err := laplace.NewApproximation(mode)
	if err != nil {
		return nil, err
	}

	set, err := approx.Draw(target, cfg.draws, cfg.src, laplace.WithWorkers(cfg.workers))
	if err != nil {
		return nil, err
	}

	fit, err := set.Smooth(cfg.smoothOpts...)
	if err != nil {
		return nil, err
	}

	return &Result{
		Mode:          mode,
		Approximation: approx,
		Set:           set,
		Smoothing:     fit,
	}, nil
}

// KHat returns the reliability diagnostic of the run.
func (r *Result) KHat() float64 {
	return r.Smoothing.KHat
}

// Reliable reports whether the run raised no smoothing warnings.
func (r *Result) Reliable() bool {
	return r.Smoothing.Reliable()
}

// EffectiveSampleSize estimates how many independent draws the weighted
// set is worth.
func (r *Result) EffectiveSampleSize() float64 {
	return r.Set.EffectiveSampleSize()
}

// Resample draws count unweighted parameter vectors from the weighted
// set with replacement.
func (r *Result) Resample(count int, src rand.Source) ([][]float64, error) {
	return r.Set.Resample(count, src)
}

// LD50 maps two-parameter draws to the dose -intercept/slope at which
// the outcome probability crosses one half. Draws with a non-positive
// slope have no such dose and are dropped.
func LD50(points [][]float64) []float64 {
	out := make([]float64, 0, len(points))
	for _, p := range points {
		if v, ok := posterior.LD50(p); ok {
			out = append(out, v)
		}
	}

	return out
}
