package psis

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/statlite/lapsis/errs"
	"github.com/statlite/lapsis/internal/options"
	"github.com/statlite/lapsis/internal/pool"
)

const (
	// DefaultTailFraction bounds the tail at a fifth of the sample set.
	DefaultTailFraction = 0.2

	// DefaultTailScale bounds the tail at three times the square root of
	// the sample count.
	DefaultTailScale = 3.0

	// MinTailLen is the smallest tail a Pareto fit is attempted on.
	// Smaller tails skip smoothing and raise TailTooSmall.
	MinTailLen = 5

	// DefaultWarnThreshold is the fitted shape above which estimates are
	// flagged unreliable.
	DefaultWarnThreshold = 0.7

	// DefaultUnusableThreshold is the fitted shape above which estimates
	// are flagged unusable.
	DefaultUnusableThreshold = 1.0
)

type config struct {
	tailFraction float64
	tailScale    float64
	warn         float64
	unusable     float64
}

// Option configures Smooth.
type Option = options.Option[*config]

// WithTailFraction overrides the fraction of draws eligible for the
// smoothed tail. The fraction must lie in (0, 1].
func WithTailFraction(fraction float64) Option {
	return options.New(func(c *config) error {
		if math.IsNaN(fraction) || fraction <= 0 || fraction > 1 {
			return fmt.Errorf("%w: tail fraction %v outside (0, 1]", errs.ErrInvalidConfig, fraction)
		}
		c.tailFraction = fraction

		return nil
	})
}

// WithTailScale overrides the multiplier on sqrt(n) bounding the tail
// length. The scale must be positive.
func WithTailScale(scale float64) Option {
	return options.New(func(c *config) error {
		if math.IsNaN(scale) || scale <= 0 {
			return fmt.Errorf("%w: tail scale %v must be positive", errs.ErrInvalidConfig, scale)
		}
		c.tailScale = scale

		return nil
	})
}

// WithThresholds overrides the shape thresholds for the unreliable and
// unusable warnings. Requires 0 < warn <= unusable.
func WithThresholds(warn, unusable float64) Option {
	return options.New(func(c *config) error {
		if math.IsNaN(warn) || math.IsNaN(unusable) || warn <= 0 || unusable < warn {
			return fmt.Errorf("%w: thresholds warn=%v unusable=%v must satisfy 0 < warn <= unusable",
				errs.ErrInvalidConfig, warn, unusable)
		}
		c.warn = warn
		c.unusable = unusable

		return nil
	})
}

// Fit holds the result of smoothing one set of importance ratios.
type Fit struct {
	// LogWeights are the smoothed log ratios on the input scale,
	// unnormalized. Entries outside the tail carry the caller's values
	// unchanged.
	LogWeights []float64

	// Weights are the self-normalized importance weights. They sum to
	// one; an individual weight is zero only where the corresponding
	// log ratio was -Inf.
	Weights []float64

	// KHat is the fitted generalized Pareto shape, the reliability
	// diagnostic. NaN when the tail was too small to attempt a fit,
	// zero when the tail was degenerate.
	KHat float64

	// Sigma is the fitted generalized Pareto scale, on the ratio scale
	// after shifting by the largest log ratio. NaN when no fit was
	// attempted, zero when the tail was degenerate.
	Sigma float64

	// TailLen is the number of draws in the smoothing tail, zero when
	// the tail was too small.
	TailLen int

	// Warnings flags diagnostic conditions observed while smoothing.
	Warnings Warning
}

// Reliable reports whether the weights can back importance-sampling
// estimates without further scrutiny.
func (f *Fit) Reliable() bool {
	return f.Warnings == 0
}

// Smooth stabilizes a set of log importance ratios by replacing the
// largest ratios with quantiles of a generalized Pareto distribution
// fitted to them, then self-normalizing.
//
// The tail comprises the min(ceil(fraction*n), ceil(scale*sqrt(n)))
// largest ratios. When fewer than MinTailLen draws qualify, smoothing is
// skipped, the raw ratios are normalized directly, and TailTooSmall is
// raised with KHat left NaN. Ratios outside the tail are never modified.
//
// The returned error is ErrEmptySampleSet for empty input,
// ErrInvalidConfig for an invalid option, or ErrDegenerateWeights when
// no draw ends up with positive weight. Warnings are not errors.
func Smooth(logRatios []float64, opts ...Option) (*Fit, error) {
	n := len(logRatios)
	if n == 0 {
		return nil, fmt.Errorf("%w: no log ratios to smooth", errs.ErrEmptySampleSet)
	}

	cfg := &config{
		tailFraction: DefaultTailFraction,
		tailScale:    DefaultTailScale,
		warn:         DefaultWarnThreshold,
		unusable:     DefaultUnusableThreshold,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	fit := &Fit{
		LogWeights: append([]float64(nil), logRatios...),
		KHat:       math.NaN(),
		Sigma:      math.NaN(),
	}

	m := tailLen(n, cfg.tailFraction, cfg.tailScale)
	if m < MinTailLen {
		fit.Warnings |= TailTooSmall
	} else {
		fit.TailLen = m
		smoothTail(fit, m)
	}

	if err := normalize(fit); err != nil {
		return nil, err
	}

	if !math.IsNaN(fit.KHat) {
		switch {
		case fit.KHat >= cfg.unusable:
			fit.Warnings |= UnreliableEstimate | UnusableEstimate
		case fit.KHat >= cfg.warn:
			fit.Warnings |= UnreliableEstimate
		}
	}

	return fit, nil
}

// tailLen returns the tail length for n draws, capped below n so at
// least one draw anchors the cutoff.
func tailLen(n int, fraction, scale float64) int {
	byFraction := int(math.Ceil(fraction * float64(n)))
	byScale := int(math.Ceil(scale * math.Sqrt(float64(n))))

	m := min(byFraction, byScale)
	if m >= n {
		m = n - 1
	}

	return m
}

// smoothTail fits a generalized Pareto distribution to the m largest
// ratios and replaces them with its order-statistic quantiles, in place.
// The fitted shape and scale land in fit; a degenerate tail (all tied)
// records shape zero and leaves the ratios untouched.
func smoothTail(fit *Fit, m int) {
	lw := fit.LogWeights
	n := len(lw)

	idx, release := pool.GetIntSlice(n)
	defer release()
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(a, b int) int {
		return cmp.Compare(lw[a], lw[b])
	})

	// Work on the ratio scale shifted by the maximum so exponentiation
	// cannot overflow. The shift cancels under self-normalization.
	shift := lw[idx[n-1]]
	cutoff := lw[idx[n-m-1]]
	expCutoff := math.Exp(cutoff - shift)

	exceedances, releaseExc := pool.GetFloat64Slice(m)
	defer releaseExc()
	for j := 0; j < m; j++ {
		exceedances[j] = math.Exp(lw[idx[n-m+j]]-shift) - expCutoff
	}

	k, sigma, ok := gpdFit(exceedances)
	if !ok {
		fit.KHat, fit.Sigma = 0, 0
		return
	}
	fit.KHat, fit.Sigma = k, sigma

	for j := 0; j < m; j++ {
		p := (float64(j) + 0.5) / float64(m)
		lw[idx[n-m+j]] = math.Log(gpdQuantile(p, k, sigma)+expCutoff) + shift
	}
}

// normalize exponentiates the log weights into fit.Weights summing to
// one. All-zero or NaN weights are unrecoverable and surface as
// ErrDegenerateWeights.
func normalize(fit *Fit) error {
	lw := fit.LogWeights
	lse := floats.LogSumExp(lw)

	w := make([]float64, len(lw))
	for i, v := range lw {
		w[i] = math.Exp(v - lse)
	}

	sum := floats.Sum(w)
	if math.IsNaN(sum) || sum <= 0 {
		return fmt.Errorf("%w: normalization produced no positive weights", errs.ErrDegenerateWeights)
	}
	floats.Scale(1/sum, w)

	fit.Weights = w

	return nil
}
