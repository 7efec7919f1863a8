// Package posterior defines the target densities the rest of the library
// approximates and corrects: the Target interface, the binomial-logit
// regression model, prior terms, and the dose-response datasets the model is
// fit to.
//
// # Target
//
// A Target is an unnormalized log-density over a fixed-dimension parameter
// vector:
//
//	type Target interface {
//	    LogProb(theta []float64) float64
//	    Dim() int
//	}
//
// The method set matches gonum's multivariate distributions, so a
// *distmv.Normal (or any distribution with LogProb and Dim) can stand in as
// a Target directly. The test suites build synthetic targets that way.
//
// # Binomial-logit model
//
// BinomialLogit evaluates the unnormalized log-posterior of a two-parameter
// logistic dose-response model. Each dose group (x, n, y) contributes
//
//	y*z - n*log(1+exp(z)),  z = alpha + beta*x
//
// and the prior term is added on top. The log(1+exp) factor is evaluated
// piecewise so large |z| saturates instead of overflowing, which keeps the
// density proper over the whole plane on extreme parameter values.
//
// # Bioassay
//
// Bioassay returns the four-group dose-response experiment (Racine et al.
// 1986) that serves as the canonical example and test fixture throughout the
// module.
package posterior
