package posterior

// Target is an unnormalized log-density over a fixed-dimension parameter
// vector. Implementations must be pure: no state, no side effects, the same
// theta always yields the same value.
//
// The method set matches gonum's multivariate distributions (LogProb, Dim),
// so e.g. a *distmv.Normal satisfies Target without adaptation.
type Target interface {
	// LogProb evaluates the log-density at theta, up to an additive constant.
	// It must return a value (possibly -Inf) for every theta of length Dim
	// and panics if len(theta) != Dim().
	LogProb(theta []float64) float64

	// Dim returns the parameter dimension.
	Dim() int
}
