package psis

import "strings"

// Warning is a bitmask of non-fatal diagnostic conditions raised while
// smoothing a weight set. Warnings never abort the computation; callers
// decide how much to trust the result.
type Warning uint8

const (
	// TailTooSmall indicates the sample set was too small to form a
	// usable tail, so smoothing was skipped and the raw ratios were
	// normalized directly.
	TailTooSmall Warning = 1 << iota

	// UnreliableEstimate indicates the fitted tail shape crossed the
	// warn threshold. Importance-sampling estimates may have high
	// variance.
	UnreliableEstimate

	// UnusableEstimate indicates the fitted tail shape crossed the
	// unusable threshold. The proposal is too light-tailed for the
	// target and estimates should not be trusted.
	UnusableEstimate
)

// Has reports whether all bits in flag are set.
func (w Warning) Has(flag Warning) bool {
	return w&flag == flag
}

// String returns a pipe-separated list of the set flags, or "none".
func (w Warning) String() string {
	if w == 0 {
		return "none"
	}

	parts := make([]string, 0, 3)
	if w.Has(TailTooSmall) {
		parts = append(parts, "tail-too-small")
	}
	if w.Has(UnreliableEstimate) {
		parts = append(parts, "unreliable-estimate")
	}
	if w.Has(UnusableEstimate) {
		parts = append(parts, "unusable-estimate")
	}

	return strings.Join(parts, "|")
}
