package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization factor for daily return series.
const TradingDaysPerYear = 252

// RollingVolatility computes the annualized rolling standard deviation of a
// return series over the given window. The first window-1 positions are NaN.
func RollingVolatility(returns []float64, window int) []float64 {
	if window < 2 || len(returns) < window {
		out := make([]float64, len(returns))
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	out := talib.StdDev(returns, window, 1.0)
	factor := math.Sqrt(TradingDaysPerYear)
	for i := range out {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] *= factor
	}
	return out
}

// CorrelationMatrix computes the Pearson correlation matrix of the given
// equal-length series. Result[i][j] is the correlation between series i and j.
func CorrelationMatrix(series [][]float64) [][]float64 {
	n := len(series)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		out[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c := stat.Correlation(series[i], series[j], nil)
			out[i][j] = c
			out[j][i] = c
		}
	}
	return out
}
