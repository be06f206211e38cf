package formulas

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ARCHLMResult holds the outcome of Engle's LM test for autoregressive
// conditional heteroskedasticity.
type ARCHLMResult struct {
	Statistic float64
	PValue    float64
	Lags      int
}

// ARCHLM tests for volatility clustering by regressing squared deviations on
// their own lags. The LM statistic is nobs * R-squared of the auxiliary
// regression, asymptotically chi-squared with nlags degrees of freedom under
// the null of no ARCH effects.
func ARCHLM(x []float64, nlags int) (*ARCHLMResult, error) {
	n := len(x)
	if nlags < 1 {
		return nil, fmt.Errorf("arch-lm: nlags must be >= 1, got %d", nlags)
	}
	if n <= 2*nlags+1 {
		return nil, fmt.Errorf("arch-lm: need more than %d observations, have %d", 2*nlags+1, n)
	}

	mean := Mean(x)
	sq := make([]float64, n)
	for i, v := range x {
		d := v - mean
		sq[i] = d * d
	}

	nobs := n - nlags
	nparam := nlags + 1
	y := make([]float64, nobs)
	data := make([]float64, 0, nobs*nparam)
	for t := nlags; t < n; t++ {
		y[t-nlags] = sq[t]
		row := make([]float64, 0, nparam)
		row = append(row, 1)
		for i := 1; i <= nlags; i++ {
			row = append(row, sq[t-i])
		}
		data = append(data, row...)
	}

	fit, err := olsRegress(y, mat.NewDense(nobs, nparam, data))
	if err != nil {
		return nil, fmt.Errorf("arch-lm: %w", err)
	}

	lm := float64(nobs) * fit.rsq
	if math.IsNaN(lm) || lm < 0 {
		return nil, fmt.Errorf("arch-lm: degenerate auxiliary regression")
	}

	chi2 := distuv.ChiSquared{K: float64(nlags)}
	return &ARCHLMResult{
		Statistic: lm,
		PValue:    chi2.Survival(lm),
		Lags:      nlags,
	}, nil
}
