package grid

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/statlite/lapsis/errs"
	"github.com/statlite/lapsis/posterior"
)

// gaussTarget is an unnormalized 2D Gaussian log density centered at
// (1, -2) with variances 1 and 4.
type gaussTarget struct{}

func (gaussTarget) Dim() int { return 2 }

func (gaussTarget) LogProb(x []float64) float64 {
	dx := x[0] - 1
	dy := x[1] + 2
	return -0.5 * (dx*dx + dy*dy/4)
}

func gaussGrid(t *testing.T, opts ...Option) *Grid {
	t.Helper()

	g, err := New(Axis{Min: -4, Max: 6, Count: 101}, Axis{Min: -12, Max: 8, Count: 101}, opts...)
	require.NoError(t, err)
	require.NoError(t, g.Evaluate(gaussTarget{}))

	return g
}

func TestNew_Validation(t *testing.T) {
	valid := Axis{Min: 0, Max: 1, Count: 10}

	cases := []struct {
		name string
		x, y Axis
	}{
		{"SinglePointAxis", Axis{Min: 0, Max: 1, Count: 1}, valid},
		{"ZeroCount", valid, Axis{Min: 0, Max: 1, Count: 0}},
		{"InvertedBounds", Axis{Min: 2, Max: 1, Count: 10}, valid},
		{"EqualBounds", valid, Axis{Min: 3, Max: 3, Count: 10}},
		{"NaNBound", Axis{Min: math.NaN(), Max: 1, Count: 10}, valid},
		{"InfBound", valid, Axis{Min: 0, Max: math.Inf(1), Count: 10}},
		{"OversizedAxis", Axis{Min: 0, Max: 1, Count: maxAxisPoints + 1}, valid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.x, tc.y)
			require.ErrorIs(t, err, errs.ErrInvalidGrid)
		})
	}
}

func TestNew_Lattice(t *testing.T) {
	g, err := New(Axis{Min: -4, Max: 6, Count: 101}, Axis{Min: -12, Max: 8, Count: 51})
	require.NoError(t, err)

	assert.Equal(t, 101*51, g.Len())

	xs := g.XPoints()
	require.Len(t, xs, 101)
	assert.Equal(t, -4.0, xs[0])
	assert.InDelta(t, 6.0, xs[100], 1e-12)
	assert.InDelta(t, 0.1, xs[1]-xs[0], 1e-12)

	ys := g.YPoints()
	require.Len(t, ys, 51)
	assert.Equal(t, -12.0, ys[0])
	assert.InDelta(t, 8.0, ys[50], 1e-12)

	// Accessors hand out copies.
	xs[0] = 999
	assert.Equal(t, -4.0, g.XPoints()[0])
}

func TestGrid_Evaluate(t *testing.T) {
	g := gaussGrid(t)

	require.True(t, g.Evaluated())
	weights := g.Weights()
	require.Len(t, weights, 101*101)

	sum := 0.0
	argmax := 0
	for i, w := range weights {
		require.GreaterOrEqual(t, w, 0.0)
		sum += w
		if w > weights[argmax] {
			argmax = i
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// Both axes place a point exactly on the density peak at (1, -2).
	assert.Equal(t, 50*101+50, argmax)

	mean, err := g.Mean()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, mean[0], 0.05)
	assert.InDelta(t, -2.0, mean[1], 0.05)
}

func TestGrid_EvaluateDeterministicAcrossWorkers(t *testing.T) {
	serial := gaussGrid(t, WithWorkers(1))
	concurrent := gaussGrid(t, WithWorkers(8))

	assert.Equal(t, serial.Weights(), concurrent.Weights())
}

func TestGrid_Sample(t *testing.T) {
	g := gaussGrid(t)

	const n = 5000
	draws, err := g.Sample(n, rand.NewPCG(21, 34))
	require.NoError(t, err)
	require.Len(t, draws, n)

	xs := make([]float64, n)
	ys := make([]float64, n)
	hx := (6.0 - -4.0) / 100 / 2
	hy := (8.0 - -12.0) / 100 / 2
	for i, d := range draws {
		require.Len(t, d, 2)
		require.GreaterOrEqual(t, d[0], -4-hx)
		require.LessOrEqual(t, d[0], 6+hx)
		require.GreaterOrEqual(t, d[1], -12-hy)
		require.LessOrEqual(t, d[1], 8+hy)
		xs[i] = d[0]
		ys[i] = d[1]
	}

	assert.InDelta(t, 1.0, stat.Mean(xs, nil), 0.1)
	assert.InDelta(t, -2.0, stat.Mean(ys, nil), 0.2)
	assert.InDelta(t, 1.0, stat.Variance(xs, nil), 0.25)
	assert.InDelta(t, 4.0, stat.Variance(ys, nil), 0.8)
}

func TestGrid_SampleWithoutJitter(t *testing.T) {
	g := gaussGrid(t, WithoutJitter())

	draws, err := g.Sample(1000, rand.NewPCG(2, 7))
	require.NoError(t, err)

	// Every draw must land exactly on a lattice point.
	for _, d := range draws {
		fx := (d[0] - -4) / 0.1
		fy := (d[1] - -12) / 0.2
		assert.InDelta(t, math.Round(fx), fx, 1e-9)
		assert.InDelta(t, math.Round(fy), fy, 1e-9)
	}
}

func TestGrid_SampleSeedReproducible(t *testing.T) {
	g := gaussGrid(t)

	first, err := g.Sample(100, rand.NewPCG(8, 8))
	require.NoError(t, err)
	second, err := g.Sample(100, rand.NewPCG(8, 8))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGrid_Errors(t *testing.T) {
	t.Run("SampleBeforeEvaluate", func(t *testing.T) {
		g, err := New(Axis{Min: 0, Max: 1, Count: 10}, Axis{Min: 0, Max: 1, Count: 10})
		require.NoError(t, err)

		_, err = g.Sample(10, nil)
		require.ErrorIs(t, err, errs.ErrNoWeights)

		_, err = g.Mean()
		require.ErrorIs(t, err, errs.ErrNoWeights)
	})

	t.Run("EvaluateDimensionMismatch", func(t *testing.T) {
		g, err := New(Axis{Min: 0, Max: 1, Count: 10}, Axis{Min: 0, Max: 1, Count: 10})
		require.NoError(t, err)

		err = g.Evaluate(oneDimTarget{})
		require.ErrorIs(t, err, errs.ErrDimensionMismatch)
	})

	t.Run("VanishingDensity", func(t *testing.T) {
		g, err := New(Axis{Min: 0, Max: 1, Count: 10}, Axis{Min: 0, Max: 1, Count: 10})
		require.NoError(t, err)

		err = g.Evaluate(vanishingTarget{})
		require.ErrorIs(t, err, errs.ErrDegenerateWeights)
	})
}

type oneDimTarget struct{}

func (oneDimTarget) Dim() int { return 1 }
func (oneDimTarget) LogProb([]float64) float64 { return 0 }

type vanishingTarget struct{}

func (vanishingTarget) Dim() int { return 2 }
func (vanishingTarget) LogProb([]float64) float64 { return math.Inf(-1) }

func TestGrid_Bioassay(t *testing.T) {
	target, err := posterior.NewBinomialLogit(posterior.Bioassay(), nil)
	require.NoError(t, err)

	g, err := New(Axis{Min: -5, Max: 10, Count: 101}, Axis{Min: -10, Max: 40, Count: 101})
	require.NoError(t, err)
	require.NoError(t, g.Evaluate(target))

	// The exact posterior is right-skewed: its mean sits above the mode
	// near (0.85, 7.75).
	mean, err := g.Mean()
	require.NoError(t, err)
	assert.Greater(t, mean[0], 0.8)
	assert.Less(t, mean[0], 2.0)
	assert.Greater(t, mean[1], 8.0)
	assert.Less(t, mean[1], 16.0)
}
