package formulas

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ADFResult holds the outcome of an Augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic float64
	PValue    float64
	UsedLags  int
}

// adfTauTable maps Dickey-Fuller tau statistics (trend+constant
// specification, asymptotic) to cumulative probabilities. The 1%/2.5%/5%/10%
// points are MacKinnon critical values; intermediate and upper points follow
// the tabulated tau distribution. P-values are interpolated linearly between
// entries and extrapolated log-linearly below the table.
var adfTauTable = []struct{ tau, p float64 }{
	{-3.96, 0.01},
	{-3.66, 0.025},
	{-3.41, 0.05},
	{-3.13, 0.10},
	{-2.85, 0.20},
	{-2.57, 0.30},
	{-2.18, 0.50},
	{-1.78, 0.70},
	{-1.25, 0.90},
	{-0.94, 0.95},
	{-0.66, 0.975},
	{-0.33, 0.99},
}

// adfPValue approximates the p-value of an ADF tau statistic under the
// trend+constant specification.
func adfPValue(tau float64) float64 {
	table := adfTauTable
	if tau <= table[0].tau {
		// Log-linear decay below the smallest tabulated point, floored so a
		// very negative statistic still reports a strictly positive p-value.
		slope := math.Log(table[0].p/table[1].p) / (table[0].tau - table[1].tau)
		p := table[0].p * math.Exp(slope*(tau-table[0].tau))
		return math.Max(p, 1e-6)
	}
	if tau >= table[len(table)-1].tau {
		return 0.9999
	}
	for i := 1; i < len(table); i++ {
		if tau <= table[i].tau {
			lo, hi := table[i-1], table[i]
			frac := (tau - lo.tau) / (hi.tau - lo.tau)
			return lo.p + frac*(hi.p-lo.p)
		}
	}
	return 0.9999
}

// ADF runs the Augmented Dickey-Fuller unit-root test with trend+constant
// specification and automatic lag selection by AIC. The null hypothesis is
// that the series has a unit root.
//
// The lag search runs over 0..maxlag with maxlag = ceil(12*(n/100)^(1/4)),
// using a fixed estimation window so the candidate fits are comparable; the
// final statistic comes from a re-fit with the selected lag over all usable
// observations.
func ADF(x []float64) (*ADFResult, error) {
	n := len(x)
	if n < 15 {
		return nil, fmt.Errorf("adf: need at least 15 observations, have %d", n)
	}

	maxlag := int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	// Keep enough observations for the widest candidate regression.
	if limit := n/2 - 3; maxlag > limit {
		maxlag = limit
	}
	if maxlag < 0 {
		return nil, fmt.Errorf("adf: series too short for lag selection")
	}

	diff := make([]float64, n-1)
	for t := 1; t < n; t++ {
		diff[t-1] = x[t] - x[t-1]
	}

	bestLag := 0
	bestAIC := math.Inf(1)
	for k := 0; k <= maxlag; k++ {
		fit, err := adfFit(x, diff, k, maxlag)
		if err != nil {
			return nil, err
		}
		if aic := fit.aic(); aic < bestAIC {
			bestAIC = aic
			bestLag = k
		}
	}

	fit, err := adfFit(x, diff, bestLag, bestLag)
	if err != nil {
		return nil, err
	}

	tau := fit.tStat(2)
	if math.IsNaN(tau) || math.IsInf(tau, 0) {
		return nil, fmt.Errorf("adf: degenerate regression")
	}
	return &ADFResult{
		Statistic: tau,
		PValue:    adfPValue(tau),
		UsedLags:  bestLag,
	}, nil
}

// adfFit regresses diff[t] on a constant, a linear trend, the lagged level
// x[t] and k lagged differences, starting the sample at diff index start so
// candidate fits share a window during lag selection.
//
// Column order: const, trend, level, diff lags; the unit-root statistic is
// the t-statistic of column 2.
func adfFit(x, diff []float64, k, start int) (*olsFit, error) {
	m := len(diff)
	nobs := m - start
	nparam := 3 + k
	if nobs <= nparam {
		return nil, fmt.Errorf("adf: %d observations for %d parameters", nobs, nparam)
	}

	y := make([]float64, nobs)
	data := make([]float64, 0, nobs*nparam)
	for t := start; t < m; t++ {
		y[t-start] = diff[t]
		row := make([]float64, 0, nparam)
		row = append(row, 1, float64(t+1), x[t])
		for i := 1; i <= k; i++ {
			row = append(row, diff[t-i])
		}
		data = append(data, row...)
	}
	return olsRegress(y, mat.NewDense(nobs, nparam, data))
}
