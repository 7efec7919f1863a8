package posterior

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statlite/lapsis/errs"
)

func TestDatasetValidate(t *testing.T) {
	tests := []struct {
		name    string
		data    Dataset
		wantErr bool
	}{
		{"bioassay is valid", Bioassay(), false},
		{"single observation", Dataset{{Covariate: 0.5, Trials: 10, Successes: 3}}, false},
		{"zero trials allowed", Dataset{{Covariate: 0, Trials: 0, Successes: 0}}, false},
		{"empty dataset", Dataset{}, true},
		{"nil dataset", nil, true},
		{"NaN covariate", Dataset{{Covariate: math.NaN(), Trials: 5, Successes: 1}}, true},
		{"infinite covariate", Dataset{{Covariate: math.Inf(1), Trials: 5, Successes: 1}}, true},
		{"negative trials", Dataset{{Covariate: 0, Trials: -1, Successes: 0}}, true},
		{"successes above trials", Dataset{{Covariate: 0, Trials: 5, Successes: 6}}, true},
		{"negative successes", Dataset{{Covariate: 0, Trials: 5, Successes: -1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrInvalidDataset)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDatasetFingerprint(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		require.Equal(t, Bioassay().Fingerprint(), Bioassay().Fingerprint())
	})

	t.Run("sensitive to values", func(t *testing.T) {
		a := Bioassay()
		b := Bioassay()
		b[2].Successes++
		require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	})

	t.Run("sensitive to order", func(t *testing.T) {
		a := Bioassay()
		b := Bioassay()
		b[0], b[1] = b[1], b[0]
		require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	})
}

func TestBioassay(t *testing.T) {
	d := Bioassay()
	require.Len(t, d, 4)
	assert.Equal(t, Observation{Covariate: -0.86, Trials: 5, Successes: 0}, d[0])
	assert.Equal(t, Observation{Covariate: 0.73, Trials: 5, Successes: 5}, d[3])
	require.NoError(t, d.Validate())
}
