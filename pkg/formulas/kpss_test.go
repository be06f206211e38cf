package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKPSSStationarySeries(t *testing.T) {
	x := normalSample(21, 500, 0, 1)
	res, err := KPSS(x)
	require.NoError(t, err)
	assert.Greater(t, res.PValue, 0.05, "white noise should not reject stationarity")
}

func TestKPSSRandomWalk(t *testing.T) {
	x := randomWalk(22, 500)
	res, err := KPSS(x)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.PValue, 0.05, "a random walk should reject trend stationarity")
}

func TestKPSSConstantSeries(t *testing.T) {
	x := make([]float64, 100)
	for i := range x {
		x[i] = 3.14
	}
	_, err := KPSS(x)
	assert.Error(t, err)
}

func TestKPSSPureTrend(t *testing.T) {
	// A perfect linear trend leaves zero residual variance.
	x := make([]float64, 100)
	for i := range x {
		x[i] = float64(i) * 0.5
	}
	_, err := KPSS(x)
	assert.Error(t, err)
}

func TestKPSSTooShort(t *testing.T) {
	_, err := KPSS([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestKPSSPValueClamped(t *testing.T) {
	assert.Equal(t, 0.10, kpssPValue(0.01))
	assert.Equal(t, 0.01, kpssPValue(5.0))

	// Interior values interpolate between the tabulated points.
	p := kpssPValue(0.16)
	assert.Greater(t, p, 0.01)
	assert.Less(t, p, 0.05)
}
