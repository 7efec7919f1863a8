package posterior

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/statlite/lapsis/errs"
	"github.com/statlite/lapsis/internal/hash"
)

// Observation is one dose group: a covariate (typically log dose), the number
// of trials at that level, and the number of successes observed.
type Observation struct {
	Covariate float64
	Trials    int
	Successes int
}

// Dataset is an ordered sequence of observations. It is treated as immutable
// once constructed: models hold a read-only reference and never copy or
// modify it.
type Dataset []Observation

// Validate checks every observation for structural soundness.
//
// Returns errs.ErrInvalidDataset when the dataset is empty, a covariate is
// NaN or infinite, a trial count is negative, or a success count falls
// outside [0, Trials].
func (d Dataset) Validate() error {
	if len(d) == 0 {
		return fmt.Errorf("%w: no observations", errs.ErrInvalidDataset)
	}
	for i, obs := range d {
		if math.IsNaN(obs.Covariate) || math.IsInf(obs.Covariate, 0) {
			return fmt.Errorf("%w: observation %d has non-finite covariate", errs.ErrInvalidDataset, i)
		}
		if obs.Trials < 0 {
			return fmt.Errorf("%w: observation %d has negative trial count %d", errs.ErrInvalidDataset, i, obs.Trials)
		}
		if obs.Successes < 0 || obs.Successes > obs.Trials {
			return fmt.Errorf("%w: observation %d has %d successes out of %d trials",
				errs.ErrInvalidDataset, i, obs.Successes, obs.Trials)
		}
	}

	return nil
}

// Fingerprint returns the xxHash64 of the dataset's canonical little-endian
// serialization. Draws blobs record it so a persisted sample set can be
// matched back to the dataset it was drawn for.
func (d Dataset) Fingerprint() uint64 {
	buf := make([]byte, 0, len(d)*24)
	for _, obs := range d {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(obs.Covariate))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(obs.Trials))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(obs.Successes))
	}

	return hash.Sum64(buf)
}

// Bioassay returns the classic four-group dose-response experiment
// (Racine et al. 1986): dose in log g/ml, five animals per group, deaths
// rising from zero to five across the dose range.
func Bioassay() Dataset {
	return Dataset{
		{Covariate: -0.86, Trials: 5, Successes: 0},
		{Covariate: -0.30, Trials: 5, Successes: 1},
		{Covariate: -0.05, Trials: 5, Successes: 3},
		{Covariate: 0.73, Trials: 5, Successes: 5},
	}
}
