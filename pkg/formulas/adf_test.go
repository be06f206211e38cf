package formulas

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomWalk accumulates white noise into an integrated series.
func randomWalk(seed int64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	level := 100.0
	for i := range out {
		level += rng.NormFloat64()
		out[i] = level
	}
	return out
}

func TestADFStationarySeries(t *testing.T) {
	x := normalSample(11, 500, 0, 0.01)
	res, err := ADF(x)
	require.NoError(t, err)
	assert.Less(t, res.PValue, 0.05, "white noise should reject the unit root")
	assert.Negative(t, res.Statistic)
}

func TestADFRandomWalk(t *testing.T) {
	// The test statistic is itself random under the null, so check that the
	// unit root survives on a clear majority of independent walks.
	kept := 0
	for seed := int64(12); seed < 17; seed++ {
		res, err := ADF(randomWalk(seed, 500))
		require.NoError(t, err)
		if res.PValue > 0.05 {
			kept++
		}
	}
	assert.GreaterOrEqual(t, kept, 3, "random walks should rarely reject the unit root")
}

func TestADFConstantSeries(t *testing.T) {
	x := make([]float64, 100)
	for i := range x {
		x[i] = 5
	}
	_, err := ADF(x)
	assert.Error(t, err)
}

func TestADFTooShort(t *testing.T) {
	_, err := ADF([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestADFLagSelectionBounded(t *testing.T) {
	x := normalSample(13, 300, 0, 1)
	res, err := ADF(x)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.UsedLags, 0)
	assert.LessOrEqual(t, res.UsedLags, 16)
}

func TestADFPValueInterpolation(t *testing.T) {
	tests := []struct {
		name string
		tau  float64
		lo   float64
		hi   float64
	}{
		{"deep rejection", -10, 0, 0.001},
		{"at 1 percent critical value", -3.96, 0.009, 0.011},
		{"at 5 percent critical value", -3.41, 0.049, 0.051},
		{"between 5 and 10 percent", -3.2, 0.05, 0.10},
		{"far above table", 1.5, 0.99, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := adfPValue(tt.tau)
			assert.GreaterOrEqual(t, p, tt.lo)
			assert.LessOrEqual(t, p, tt.hi)
		})
	}
}

func TestADFPValueMonotone(t *testing.T) {
	prev := 0.0
	for tau := -6.0; tau <= 1.0; tau += 0.1 {
		p := adfPValue(tau)
		assert.GreaterOrEqual(t, p, prev, "p-value must be non-decreasing in tau")
		prev = p
	}
}
