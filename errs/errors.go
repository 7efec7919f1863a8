// Package errs defines the sentinel error values returned by lapsis packages.
//
// All errors are plain sentinel values intended for errors.Is checks. Packages
// wrap them with fmt.Errorf("%w: ...") to attach call-site detail, so callers
// match on the sentinel and read the detail from Error().
package errs

import "errors"

// Dataset and model errors.
var (
	// ErrInvalidDataset indicates a dataset that fails validation, such as a
	// negative trial count or more successes than trials.
	ErrInvalidDataset = errors.New("invalid dataset")

	// ErrDimensionMismatch indicates a parameter vector whose length does not
	// match the dimension a component was built for.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// Mode fitting and proposal construction errors.
var (
	// ErrNonConvergence indicates the optimizer exhausted its iteration budget
	// or otherwise stopped before meeting its convergence tolerance. Callers
	// may retry with a different starting point; the fit is never retried
	// internally.
	ErrNonConvergence = errors.New("optimizer did not converge")

	// ErrSingularCurvature indicates the curvature (Hessian of the negative
	// log-density) at the fitted mode is not invertible, so no covariance can
	// be derived from it.
	ErrSingularCurvature = errors.New("singular curvature at mode")

	// ErrInvalidCovariance indicates a covariance matrix that is not symmetric
	// positive-definite and therefore cannot parameterize a proposal.
	ErrInvalidCovariance = errors.New("covariance not positive-definite")
)

// Sampling and weighting errors.
var (
	// ErrEmptySampleSet indicates an operation on a sample set with no draws.
	ErrEmptySampleSet = errors.New("empty sample set")

	// ErrNoWeights indicates a resample request on a sample set whose weights
	// have not been computed yet.
	ErrNoWeights = errors.New("weights not computed")

	// ErrDegenerateWeights indicates a weight vector that cannot define a
	// sampling distribution: negative entries, NaNs, or a sum that is zero or
	// underflows to zero.
	ErrDegenerateWeights = errors.New("degenerate weights")

	// ErrInvalidGrid indicates a grid axis with fewer than two points or a
	// non-increasing range.
	ErrInvalidGrid = errors.New("invalid grid")
)

// Configuration errors.
var (
	// ErrInvalidConfig indicates an option value outside its documented range,
	// such as a non-positive draw count or a tail fraction outside (0, 1].
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Draws persistence format errors.
var (
	// ErrInvalidHeaderSize indicates header bytes shorter than the fixed
	// header length.
	ErrInvalidHeaderSize = errors.New("invalid header size")

	// ErrInvalidMagic indicates header bytes whose magic pattern does not
	// identify a draws blob.
	ErrInvalidMagic = errors.New("invalid magic number")

	// ErrInvalidHeaderFlags indicates a header whose flag word carries an
	// unknown compression type or reserved bits set.
	ErrInvalidHeaderFlags = errors.New("invalid header flags")

	// ErrChecksumMismatch indicates payload bytes whose checksum does not
	// match the header.
	ErrChecksumMismatch = errors.New("payload checksum mismatch")

	// ErrPayloadCorrupted indicates a payload whose decoded length does not
	// match the counts declared in the header.
	ErrPayloadCorrupted = errors.New("payload corrupted")

	// ErrUnsupportedCompression indicates a compression type this build does
	// not provide a codec for.
	ErrUnsupportedCompression = errors.New("unsupported compression type")
)
