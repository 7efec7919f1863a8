// Package psis implements Pareto smoothed importance sampling: it
// stabilizes raw importance ratios by modeling their upper tail with a
// generalized Pareto distribution and replacing the largest ratios with
// the fitted quantiles before self-normalizing.
//
// # Algorithm
//
// Given n log importance ratios, Smooth selects the
// min(ceil(0.2*n), ceil(3*sqrt(n))) largest as the tail, fits a
// generalized Pareto distribution to their exceedances over the largest
// non-tail ratio using the Zhang-Stephens profile-likelihood estimator,
// and replaces each tail ratio with the quantile at (j-0.5)/m of the
// fitted distribution. Ratios below the cutoff are never touched. The
// smoothed ratios are then exponentiated and normalized to sum to one.
//
// # Diagnostics
//
// The fitted shape parameter KHat doubles as a reliability diagnostic:
// values at or above 0.7 flag UnreliableEstimate, at or above 1.0
// additionally UnusableEstimate. Both thresholds are configurable via
// WithThresholds. A sample set too small to form a five-draw tail skips
// smoothing entirely and raises TailTooSmall with KHat left NaN.
//
// # Example
//
//	fit, err := psis.Smooth(logRatios)
//	if err != nil {
//		return err
//	}
//	if fit.Warnings.Has(psis.UnusableEstimate) {
//		log.Printf("k-hat %.2f: proposal too light-tailed", fit.KHat)
//	}
//	estimate := 0.0
//	for i, w := range fit.Weights {
//		estimate += w * values[i]
//	}
package psis
