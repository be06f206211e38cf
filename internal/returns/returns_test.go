package returns

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/eda/internal/config"
	"github.com/aristath/eda/internal/panel"
)

// syntheticPrices builds a panel of strictly positive prices following a
// deterministic geometric walk.
func syntheticPrices(seed int64, columns []string, rows int) *panel.Panel {
	rng := rand.New(rand.NewSource(seed))
	p := &panel.Panel{Columns: columns, Series: make([][]float64, len(columns))}
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for r := 0; r < rows; r++ {
		p.Index = append(p.Index, start.AddDate(0, 0, r))
	}
	for i := range columns {
		price := 100.0
		series := make([]float64, rows)
		for r := 0; r < rows; r++ {
			price *= math.Exp(0.0002 + 0.01*rng.NormFloat64())
			series[r] = price
		}
		p.Series[i] = series
	}
	return p
}

func TestComputeLogReturns(t *testing.T) {
	prices := &panel.Panel{
		Columns: []string{"A"},
		Series:  [][]float64{{100, 110, 99}},
	}
	rets, dropped, err := Compute(prices, config.ReturnTypeLog)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Equal(t, 2, rets.NumRows())

	a, err := rets.Column("A")
	require.NoError(t, err)
	assert.InDelta(t, math.Log(110.0/100.0), a[0], 1e-12)
	assert.InDelta(t, math.Log(99.0/110.0), a[1], 1e-12)
}

func TestComputeSimpleReturns(t *testing.T) {
	prices := &panel.Panel{
		Columns: []string{"A"},
		Series:  [][]float64{{100, 110, 99}},
	}
	rets, dropped, err := Compute(prices, config.ReturnTypeSimple)
	require.NoError(t, err)
	assert.Zero(t, dropped)

	a, err := rets.Column("A")
	require.NoError(t, err)
	assert.InDelta(t, 0.10, a[0], 1e-12)
	assert.InDelta(t, -0.10, a[1], 1e-12)
}

func TestComputeTwoColumnPanelShape(t *testing.T) {
	prices := syntheticPrices(99, []string{"A", "B"}, 252)
	rets, dropped, err := Compute(prices, config.ReturnTypeLog)
	require.NoError(t, err)

	assert.Zero(t, dropped)
	assert.Equal(t, 251, rets.NumRows())
	assert.Equal(t, []string{"A", "B"}, rets.Columns)
	require.True(t, rets.HasDates())
	assert.Len(t, rets.Index, 251)
	assert.Equal(t, prices.Index[1], rets.Index[0])

	for _, series := range rets.Series {
		for _, v := range series {
			assert.False(t, math.IsNaN(v))
		}
	}
}

func TestComputeLogReturnRoundTrip(t *testing.T) {
	// Accumulating log returns and exponentiating must reproduce the price
	// relative to the first observation.
	prices := syntheticPrices(7, []string{"A"}, 100)
	rets, _, err := Compute(prices, config.ReturnTypeLog)
	require.NoError(t, err)

	raw := prices.Series[0]
	cum := 0.0
	for i, r := range rets.Series[0] {
		cum += r
		assert.InDelta(t, raw[i+1]/raw[0], math.Exp(cum), 1e-9)
	}
}

func TestComputeDropsNonFiniteRows(t *testing.T) {
	prices := &panel.Panel{
		Columns: []string{"A", "B"},
		Series: [][]float64{
			{100, 110, -5, 120, 125},
			{50, 51, 52, 53, 54},
		},
	}
	rets, dropped, err := Compute(prices, config.ReturnTypeLog)
	require.NoError(t, err)

	// log(-5/110) and log(120/-5) are both undefined, so two rows go.
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 2, rets.NumRows())
	for _, series := range rets.Series {
		for _, v := range series {
			assert.False(t, math.IsNaN(v))
			assert.False(t, math.IsInf(v, 0))
		}
	}
}

func TestComputeTooFewRows(t *testing.T) {
	prices := &panel.Panel{Columns: []string{"A"}, Series: [][]float64{{100}}}
	_, _, err := Compute(prices, config.ReturnTypeLog)
	require.Error(t, err)

	var dataErr *panel.DataError
	assert.True(t, errors.As(err, &dataErr))
}
