package formulas

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// normalSample draws a deterministic N(mu, sigma) sample.
func normalSample(seed int64, n int, mu, sigma float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = mu + sigma*rng.NormFloat64()
	}
	return out
}

// paretoSample draws a deterministic Pareto(alpha) sample with minimum 1 via
// inverse-transform sampling.
func paretoSample(seed int64, n int, alpha float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}
		out[i] = math.Pow(u, -1/alpha)
	}
	return out
}

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		expected float64
	}{
		{"simple", []float64{1, 2, 3, 4, 5}, 3},
		{"negative", []float64{-2, 2}, 0},
		{"single", []float64{7}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Mean(tt.data), 1e-12)
		})
	}
}

func TestMeanEmpty(t *testing.T) {
	assert.True(t, math.IsNaN(Mean(nil)))
}

func TestStdDev(t *testing.T) {
	// Sample std of {2,4,4,4,5,5,7,9} is sqrt(32/7).
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, math.Sqrt(32.0/7.0), StdDev(data), 1e-12)

	assert.True(t, math.IsNaN(StdDev([]float64{1})))
}

func TestSkewnessSymmetric(t *testing.T) {
	data := normalSample(1, 5000, 0, 1)
	assert.InDelta(t, 0, Skewness(data), 0.15)
}

func TestExcessKurtosisNormal(t *testing.T) {
	data := normalSample(2, 10000, 0, 1)
	assert.InDelta(t, 0, ExcessKurtosis(data), 0.3)
}

func TestExcessKurtosisHeavyTail(t *testing.T) {
	data := paretoSample(3, 5000, 3)
	assert.Greater(t, ExcessKurtosis(data), 1.0, "Pareto tails should show positive excess kurtosis")
}

func TestMinMax(t *testing.T) {
	data := []float64{3, -1, 4, 1, 5}
	assert.Equal(t, -1.0, Min(data))
	assert.Equal(t, 5.0, Max(data))
	assert.True(t, math.IsNaN(Min(nil)))
	assert.True(t, math.IsNaN(Max(nil)))
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		q        float64
		expected float64
	}{
		{"median odd", []float64{1, 2, 3}, 0.5, 2},
		{"median even interpolates", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"q25", []float64{0, 1, 2, 3}, 0.25, 0.75},
		{"q75", []float64{0, 1, 2, 3}, 0.75, 2.25},
		{"zero", []float64{5, 1, 9}, 0, 1},
		{"one", []float64{5, 1, 9}, 1, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Quantile(tt.data, tt.q), 1e-12)
		})
	}
}

func TestQuantileInvalid(t *testing.T) {
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
	assert.True(t, math.IsNaN(Quantile([]float64{1, 2}, -0.1)))
	assert.True(t, math.IsNaN(Quantile([]float64{1, 2}, 1.1)))
}

func TestJarqueBeraNormal(t *testing.T) {
	data := normalSample(4, 5000, 0, 1)
	statistic, p := JarqueBera(data)
	require.False(t, math.IsNaN(statistic))
	assert.Greater(t, p, 0.001, "normal sample should not strongly reject normality")
}

func TestJarqueBeraHeavyTail(t *testing.T) {
	data := paretoSample(5, 5000, 3)
	statistic, p := JarqueBera(data)
	assert.Greater(t, statistic, 100.0)
	assert.Less(t, p, 0.001, "heavy-tailed sample should reject normality")
}

func TestJarqueBeraDegenerate(t *testing.T) {
	statistic, p := JarqueBera([]float64{1, 1, 1, 1})
	assert.True(t, math.IsNaN(statistic))
	assert.True(t, math.IsNaN(p))
}
