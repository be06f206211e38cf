package formulas

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// LjungBoxResult holds the outcome of a Ljung-Box autocorrelation test at a
// single maximum lag.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
}

// Autocorrelation returns the sample autocorrelation of the series at the
// given lag.
func Autocorrelation(x []float64, lag int) float64 {
	n := len(x)
	if lag < 0 || lag >= n {
		return math.NaN()
	}
	mean := Mean(x)
	var num, den float64
	for t := 0; t < n; t++ {
		d := x[t] - mean
		den += d * d
		if t >= lag {
			num += d * (x[t-lag] - mean)
		}
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// LjungBox tests for serial autocorrelation up to maxLag. The null
// hypothesis is no autocorrelation at any of the included lags; the
// statistic is asymptotically chi-squared with maxLag degrees of freedom.
// Only the statistic at the maximum lag is reported.
func LjungBox(x []float64, maxLag int) (*LjungBoxResult, error) {
	n := len(x)
	if maxLag < 1 {
		return nil, fmt.Errorf("ljung-box: maxLag must be >= 1, got %d", maxLag)
	}
	if n <= maxLag+1 {
		return nil, fmt.Errorf("ljung-box: need more than %d observations, have %d", maxLag+1, n)
	}

	var q float64
	for k := 1; k <= maxLag; k++ {
		rho := Autocorrelation(x, k)
		if math.IsNaN(rho) {
			return nil, fmt.Errorf("ljung-box: undefined autocorrelation at lag %d", k)
		}
		q += rho * rho / float64(n-k)
	}
	q *= float64(n) * float64(n+2)

	chi2 := distuv.ChiSquared{K: float64(maxLag)}
	return &LjungBoxResult{
		Statistic: q,
		PValue:    chi2.Survival(q),
		Lags:      maxLag,
	}, nil
}
