package psis

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statlite/lapsis/errs"
)

// normalRatios draws n log ratios from a standard normal, seeded.
func normalRatios(n int, seed uint64) []float64 {
	src := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	lw := make([]float64, n)
	for i := range lw {
		lw[i] = src.NormFloat64()
	}

	return lw
}

// mismatchRatios simulates importance ratios for a 2D standard normal
// proposal against a target with 100x the variance: the classic case of
// a proposal narrower than the target, whose ratios are heavy-tailed
// with Pareto index near one.
func mismatchRatios(n int, seed uint64) []float64 {
	src := rand.New(rand.NewPCG(seed, seed+1))
	lw := make([]float64, n)
	for i := range lw {
		x := src.NormFloat64()
		y := src.NormFloat64()
		s := x*x + y*y
		lw[i] = 0.495*s - math.Log(100)
	}

	return lw
}

// syntheticTailRatios builds n ratios whose top m values are exact
// generalized Pareto order statistics with the given shape, so the
// fitted shape is predictable up to the prior regularization.
func syntheticTailRatios(n, m int, shape float64) []float64 {
	lw := make([]float64, n)
	bulk := n - m
	for i := 0; i < bulk; i++ {
		lw[i] = 0.001 * float64(i)
	}

	expCutoff := math.Exp(lw[bulk-1])
	for j := 0; j < m; j++ {
		q := gpdQuantile((float64(j)+0.5)/float64(m), shape, 1.0)
		lw[bulk+j] = math.Log(expCutoff + q)
	}

	return lw
}

func TestSmooth_WeightsSumToOne(t *testing.T) {
	lw := normalRatios(1000, 42)

	fit, err := Smooth(lw)
	require.NoError(t, err)

	sum := 0.0
	for _, w := range fit.Weights {
		require.GreaterOrEqual(t, w, 0.0)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-12)

	// min(ceil(0.2*1000), ceil(3*sqrt(1000))) = min(200, 95)
	assert.Equal(t, 95, fit.TailLen)
	assert.False(t, math.IsNaN(fit.KHat))
	assert.Len(t, fit.LogWeights, 1000)
	assert.Len(t, fit.Weights, 1000)
}

func TestSmooth_BulkUntouched(t *testing.T) {
	lw := mismatchRatios(1000, 7)
	raw := slices.Clone(lw)

	fit, err := Smooth(lw)
	require.NoError(t, err)
	require.Equal(t, 95, fit.TailLen)

	order := make([]int, len(raw))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		return cmp.Compare(raw[a], raw[b])
	})

	bulk := order[:len(order)-fit.TailLen]
	for _, i := range bulk {
		assert.Equal(t, raw[i], fit.LogWeights[i], "bulk position %d modified", i)
	}

	changed := 0
	for _, i := range order[len(order)-fit.TailLen:] {
		if fit.LogWeights[i] != raw[i] {
			changed++
		}
	}
	assert.Positive(t, changed, "smoothing should alter tail ratios")
}

func TestSmooth_InputNotMutated(t *testing.T) {
	lw := mismatchRatios(500, 3)
	backup := slices.Clone(lw)

	_, err := Smooth(lw)
	require.NoError(t, err)
	assert.Equal(t, backup, lw)
}

func TestSmooth_UniformRatios(t *testing.T) {
	lw := make([]float64, 1000)
	for i := range lw {
		lw[i] = 0.3
	}

	fit, err := Smooth(lw)
	require.NoError(t, err)

	// Identical ratios have zero exceedances: no distribution can be
	// fitted, the shape reports zero and every weight stays uniform.
	assert.Zero(t, fit.KHat)
	assert.Zero(t, fit.Sigma)
	assert.Equal(t, Warning(0), fit.Warnings)
	assert.True(t, fit.Reliable())

	for _, w := range fit.Weights {
		assert.InDelta(t, 1.0/1000, w, 1e-9)
	}
}

func TestSmooth_HeavyTailDetected(t *testing.T) {
	lw := mismatchRatios(5000, 12345)

	fit, err := Smooth(lw)
	require.NoError(t, err)

	// min(ceil(0.2*5000), ceil(3*sqrt(5000))) = min(1000, 213)
	assert.Equal(t, 213, fit.TailLen)
	assert.Greater(t, fit.KHat, 0.5)

	sum := 0.0
	for _, w := range fit.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestSmooth_WarningThresholds(t *testing.T) {
	t.Run("UnreliableOnly", func(t *testing.T) {
		// Shape 0.85 regularizes to about 0.83: above warn, below unusable.
		lw := syntheticTailRatios(2000, 135, 0.85)

		fit, err := Smooth(lw)
		require.NoError(t, err)
		require.Equal(t, 135, fit.TailLen)

		assert.Greater(t, fit.KHat, 0.72)
		assert.Less(t, fit.KHat, 0.95)
		assert.True(t, fit.Warnings.Has(UnreliableEstimate))
		assert.False(t, fit.Warnings.Has(UnusableEstimate))
		assert.False(t, fit.Reliable())
	})

	t.Run("Unusable", func(t *testing.T) {
		lw := syntheticTailRatios(2000, 135, 1.5)

		fit, err := Smooth(lw)
		require.NoError(t, err)

		assert.Greater(t, fit.KHat, 1.0)
		assert.True(t, fit.Warnings.Has(UnreliableEstimate))
		assert.True(t, fit.Warnings.Has(UnusableEstimate))
		assert.False(t, fit.Reliable())
	})

	t.Run("CustomThresholds", func(t *testing.T) {
		lw := syntheticTailRatios(2000, 135, 0.85)

		relaxed, err := Smooth(lw, WithThresholds(1.5, 2.0))
		require.NoError(t, err)
		assert.Equal(t, Warning(0), relaxed.Warnings)
		assert.True(t, relaxed.Reliable())

		strict, err := Smooth(lw, WithThresholds(0.4, 0.6))
		require.NoError(t, err)
		assert.True(t, strict.Warnings.Has(UnreliableEstimate))
		assert.True(t, strict.Warnings.Has(UnusableEstimate))
	})
}

func TestSmooth_TailTooSmall(t *testing.T) {
	lw := normalRatios(20, 9)

	fit, err := Smooth(lw)
	require.NoError(t, err)

	// ceil(0.2*20) = 4 < 5: smoothing skipped, raw softmax weights.
	assert.Equal(t, TailTooSmall, fit.Warnings)
	assert.True(t, math.IsNaN(fit.KHat))
	assert.Zero(t, fit.TailLen)
	assert.False(t, fit.Reliable())

	maxLW := slices.Max(lw)
	sumExp := 0.0
	for _, v := range lw {
		sumExp += math.Exp(v - maxLW)
	}
	for i, v := range lw {
		expect := math.Exp(v-maxLW) / sumExp
		assert.InDelta(t, expect, fit.Weights[i], 1e-15)
	}
}

func TestSmooth_SmallestViableTail(t *testing.T) {
	lw := make([]float64, 21)
	for i := range lw {
		lw[i] = 0.1*float64(i) + 0.002*float64(i)*float64(i)
	}

	fit, err := Smooth(lw)
	require.NoError(t, err)

	// ceil(0.2*21) = 5 just reaches the minimum tail.
	assert.Equal(t, 5, fit.TailLen)
	assert.False(t, fit.Warnings.Has(TailTooSmall))
	assert.False(t, math.IsNaN(fit.KHat))

	sum := 0.0
	for _, w := range fit.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestSmooth_TailLengthOptions(t *testing.T) {
	lw := normalRatios(1000, 77)

	byFraction, err := Smooth(lw, WithTailFraction(0.05))
	require.NoError(t, err)
	assert.Equal(t, 50, byFraction.TailLen)

	byScale, err := Smooth(lw, WithTailScale(1.0))
	require.NoError(t, err)
	assert.Equal(t, 32, byScale.TailLen)
}

func TestSmooth_Errors(t *testing.T) {
	t.Run("EmptyInput", func(t *testing.T) {
		_, err := Smooth(nil)
		require.ErrorIs(t, err, errs.ErrEmptySampleSet)
	})

	t.Run("AllNegInf", func(t *testing.T) {
		lw := make([]float64, 30)
		for i := range lw {
			lw[i] = math.Inf(-1)
		}

		_, err := Smooth(lw)
		require.ErrorIs(t, err, errs.ErrDegenerateWeights)
	})

	t.Run("NaNRatio", func(t *testing.T) {
		lw := normalRatios(50, 4)
		lw[10] = math.NaN()

		_, err := Smooth(lw)
		require.ErrorIs(t, err, errs.ErrDegenerateWeights)
	})

	t.Run("PosInfRatio", func(t *testing.T) {
		lw := normalRatios(50, 5)
		lw[3] = math.Inf(1)

		_, err := Smooth(lw)
		require.ErrorIs(t, err, errs.ErrDegenerateWeights)
	})
}

func TestSmooth_OptionValidation(t *testing.T) {
	lw := normalRatios(100, 1)

	cases := []struct {
		name string
		opt  Option
	}{
		{"ZeroTailFraction", WithTailFraction(0)},
		{"TailFractionAboveOne", WithTailFraction(1.5)},
		{"NaNTailFraction", WithTailFraction(math.NaN())},
		{"NegativeTailScale", WithTailScale(-1)},
		{"InvertedThresholds", WithThresholds(0.9, 0.5)},
		{"ZeroWarnThreshold", WithThresholds(0, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Smooth(lw, tc.opt)
			require.ErrorIs(t, err, errs.ErrInvalidConfig)
		})
	}
}

func BenchmarkSmooth(b *testing.B) {
	lw := mismatchRatios(1000, 2024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Smooth(lw); err != nil {
			b.Fatal(err)
		}
	}
}
