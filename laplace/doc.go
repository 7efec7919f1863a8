// Package laplace fits a Gaussian approximation to a posterior density
// at its mode. FitMode locates the maximizer with a derivative-free
// Nelder-Mead search and takes the inverse Hessian of the negative log
// density as the local covariance; NewApproximation turns the fitted
// mode into a multivariate normal that can be sampled from and scored
// against the exact target.
//
// The approximation doubles as the importance-sampling proposal:
//
//	mode, err := laplace.FitMode(target, nil)
//	if err != nil {
//		return err
//	}
//	approx, err := laplace.NewApproximation(mode)
//	if err != nil {
//		return err
//	}
//	set, err := approx.Draw(target, 1000, src)
//	if err != nil {
//		return err
//	}
//	fit, err := set.Smooth()
//
// The smoothing diagnostics then report how well the Gaussian covers
// the exact posterior.
package laplace
