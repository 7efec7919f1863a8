package posterior

import "math"

const logTwoPi = 1.8378770664093453

// Prior is a log-prior term added to a model's log-likelihood. Priors are
// pure functions of the parameter vector.
type Prior func(theta []float64) float64

// FlatPrior returns the improper uniform prior: a constant zero log-density.
// The standard choice for the bioassay analysis.
func FlatPrior() Prior {
	return func([]float64) float64 { return 0 }
}

// GaussianPrior returns independent normal log-priors with the given per-
// coordinate means and standard deviations. len(mean) must equal len(sd) and
// every sd must be positive; the returned Prior panics when evaluated against
// a theta of a different length.
func GaussianPrior(mean, sd []float64) Prior {
	if len(mean) != len(sd) {
		panic("posterior: GaussianPrior mean and sd lengths differ")
	}
	for _, s := range sd {
		if s <= 0 {
			panic("posterior: GaussianPrior requires positive standard deviations")
		}
	}

	return func(theta []float64) float64 {
		if len(theta) != len(mean) {
			panic("posterior: prior dimension mismatch")
		}
		lp := 0.0
		for i, x := range theta {
			z := (x - mean[i]) / sd[i]
			lp += -0.5*(z*z+logTwoPi) - math.Log(sd[i])
		}

		return lp
	}
}
