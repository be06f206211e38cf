package formulas

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// KPSSResult holds the outcome of a KPSS stationarity test.
type KPSSResult struct {
	Statistic float64
	PValue    float64
	Lags      int
}

// kpssCritTable maps KPSS statistics (trend+constant specification) to
// p-values. The p-value is interpolated between entries and clamped to
// [0.01, 0.10] outside the tabulated range, matching the conventional
// critical-value tables for the trend case.
var kpssCritTable = []struct{ stat, p float64 }{
	{0.119, 0.10},
	{0.146, 0.05},
	{0.176, 0.025},
	{0.216, 0.01},
}

func kpssPValue(eta float64) float64 {
	table := kpssCritTable
	if eta <= table[0].stat {
		return table[0].p
	}
	if eta >= table[len(table)-1].stat {
		return table[len(table)-1].p
	}
	for i := 1; i < len(table); i++ {
		if eta <= table[i].stat {
			lo, hi := table[i-1], table[i]
			frac := (eta - lo.stat) / (hi.stat - lo.stat)
			return lo.p + frac*(hi.p-lo.p)
		}
	}
	return table[len(table)-1].p
}

// KPSS runs the Kwiatkowski-Phillips-Schmidt-Shin stationarity test with
// trend+constant specification. The null hypothesis is that the series is
// stationary around a deterministic trend.
//
// The long-run variance uses a Newey-West estimator with Bartlett weights and
// the ceil(12*(n/100)^(1/4)) bandwidth rule.
func KPSS(x []float64) (*KPSSResult, error) {
	n := len(x)
	if n < 10 {
		return nil, fmt.Errorf("kpss: need at least 10 observations, have %d", n)
	}

	// Residuals from a regression on constant and linear trend.
	data := make([]float64, 0, n*2)
	for t := 0; t < n; t++ {
		data = append(data, 1, float64(t+1))
	}
	fit, err := olsRegress(x, mat.NewDense(n, 2, data))
	if err != nil {
		return nil, fmt.Errorf("kpss: %w", err)
	}
	if fit.rss == 0 {
		return nil, fmt.Errorf("kpss: series is deterministic, no residual variance")
	}

	lags := int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	if lags >= n {
		lags = n - 1
	}

	// Newey-West long-run variance with Bartlett kernel.
	nf := float64(n)
	s2 := fit.rss / nf
	for j := 1; j <= lags; j++ {
		w := 1 - float64(j)/float64(lags+1)
		var gamma float64
		for t := j; t < n; t++ {
			gamma += fit.resid[t] * fit.resid[t-j]
		}
		s2 += 2 / nf * w * gamma
	}
	if s2 <= 0 || math.IsNaN(s2) {
		return nil, fmt.Errorf("kpss: non-positive long-run variance")
	}

	// Partial sums of residuals.
	var cumsum, eta float64
	for t := 0; t < n; t++ {
		cumsum += fit.resid[t]
		eta += cumsum * cumsum
	}
	eta /= nf * nf * s2

	return &KPSSResult{
		Statistic: eta,
		PValue:    kpssPValue(eta),
		Lags:      lags,
	}, nil
}
