package posterior

import (
	"fmt"
	"math"
)

// BinomialLogit is the two-parameter logistic dose-response posterior:
// intercept and slope on the logit scale, binomial likelihood per dose group,
// plus an optional log-prior. It implements Target.
//
// The binomial coefficient is omitted; it does not depend on the parameters
// and cancels in importance ratios.
type BinomialLogit struct {
	data  Dataset
	prior Prior
}

var _ Target = (*BinomialLogit)(nil)

// NewBinomialLogit builds the model for a validated dataset. A nil prior
// selects FlatPrior.
//
// Returns:
//   - *BinomialLogit: the model, holding a read-only reference to data.
//   - error: errs.ErrInvalidDataset when validation fails.
func NewBinomialLogit(data Dataset, prior Prior) (*BinomialLogit, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("binomial-logit model: %w", err)
	}
	if prior == nil {
		prior = FlatPrior()
	}

	return &BinomialLogit{data: data, prior: prior}, nil
}

// Dim returns 2: intercept and slope.
func (m *BinomialLogit) Dim() int { return 2 }

// Data returns the dataset the model was built for.
func (m *BinomialLogit) Data() Dataset { return m.data }

// LogProb evaluates the unnormalized log-posterior at theta = (alpha, beta).
//
// Each dose group contributes y*z - n*log(1+exp(z)) with z = alpha + beta*x,
// computed through log1pExp so the result saturates for large |z| instead of
// overflowing. The value is finite for every finite theta under a flat prior.
// Panics if len(theta) != 2.
func (m *BinomialLogit) LogProb(theta []float64) float64 {
	if len(theta) != 2 {
		panic("posterior: binomial-logit parameter vector must have length 2")
	}
	alpha, beta := theta[0], theta[1]

	lp := m.prior(theta)
	for _, obs := range m.data {
		z := alpha + beta*obs.Covariate
		lp += float64(obs.Successes)*z - float64(obs.Trials)*log1pExp(z)
	}

	return lp
}

// log1pExp computes log(1+exp(z)) without overflow, following the standard
// piecewise evaluation: exp(z) below -37, direct log1p in the central range,
// z + exp(-z) once log1p would lose the correction, and z alone once even
// exp(-z) is below double precision.
func log1pExp(z float64) float64 {
	switch {
	case z <= -37:
		return math.Exp(z)
	case z <= 18:
		return math.Log1p(math.Exp(z))
	case z <= 33.3:
		return z + math.Exp(-z)
	default:
		return z
	}
}

// LD50 returns the dose at which the expected success probability crosses
// one half: -alpha/beta. The quantity is meaningful only for a positive
// slope; ok is false otherwise (and for malformed vectors).
func LD50(theta []float64) (ld50 float64, ok bool) {
	if len(theta) != 2 || !(theta[1] > 0) {
		return 0, false
	}

	return -theta[0] / theta[1], true
}
