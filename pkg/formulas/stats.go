// Package formulas provides the statistical primitives used by the
// diagnostics suite: sample moments, quantiles, normality and serial
// correlation tests, unit-root tests, and the Hill tail-index estimator.
//
// All functions are pure and operate on plain float64 slices. Functions that
// cannot produce a meaningful value for the given input return NaN (moment
// helpers) or an explicit error (regression-based tests), never panic.
package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the unbiased sample standard deviation
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return math.NaN()
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the unbiased sample variance
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return math.NaN()
	}
	return stat.Variance(data, nil)
}

// Skewness calculates the bias-adjusted sample skewness
func Skewness(data []float64) float64 {
	if len(data) < 3 {
		return math.NaN()
	}
	return stat.Skew(data, nil)
}

// ExcessKurtosis calculates the bias-adjusted sample excess kurtosis
func ExcessKurtosis(data []float64) float64 {
	if len(data) < 4 {
		return math.NaN()
	}
	return stat.ExKurtosis(data, nil)
}

// Min returns the smallest value in the slice
func Min(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	m := data[0]
	for _, v := range data[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest value in the slice
func Max(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	m := data[0]
	for _, v := range data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Quantile returns the empirical q-th quantile of the data using linear
// interpolation between order statistics: with n observations the quantile
// sits at rank h = (n-1)q, interpolated between the surrounding values.
func Quantile(data []float64, q float64) float64 {
	n := len(data)
	if n == 0 || q < 0 || q > 1 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)

	h := float64(n-1) * q
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// JarqueBera computes the Jarque-Bera normality statistic and its asymptotic
// chi-squared(2) p-value. The statistic uses the population (biased) moment
// estimators: JB = n/6 * (S^2 + K^2/4) with K the population excess kurtosis.
func JarqueBera(data []float64) (statistic float64, pValue float64) {
	n := float64(len(data))
	if n < 2 {
		return math.NaN(), math.NaN()
	}

	mean := Mean(data)
	var m2, m3, m4 float64
	for _, v := range data {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m3 /= n
	m4 /= n
	if m2 == 0 {
		return math.NaN(), math.NaN()
	}

	skew := m3 / math.Pow(m2, 1.5)
	exKurt := m4/(m2*m2) - 3

	jb := n / 6 * (skew*skew + exKurt*exKurt/4)
	chi2 := distuv.ChiSquared{K: 2}
	return jb, chi2.Survival(jb)
}
