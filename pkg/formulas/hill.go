package formulas

import "math"

// MinTailExceedances is the smallest exceedance count the Hill estimator
// accepts. Below this the estimate is statistically unreliable and the
// estimator returns NaN.
const MinTailExceedances = 10

// HillTailIndex estimates the tail index of the upper tail of a series.
//
// The threshold u is the empirical thresholdQuantile-th quantile of the data.
// The estimate is the reciprocal of the mean log-exceedance ratio over the
// set {x : x > u}. Smaller values indicate heavier tails. Callers interested
// in the lower tail must negate the input first.
//
// Returns NaN when fewer than MinTailExceedances observations exceed the
// threshold, or when the exceedance ratios are not well defined (u <= 0).
func HillTailIndex(data []float64, thresholdQuantile float64) float64 {
	u := Quantile(data, thresholdQuantile)
	if math.IsNaN(u) {
		return math.NaN()
	}

	var sum float64
	count := 0
	for _, x := range data {
		if x > u {
			sum += math.Log(x / u)
			count++
		}
	}
	if count < MinTailExceedances {
		return math.NaN()
	}

	mean := sum / float64(count)
	if mean <= 0 || math.IsNaN(mean) || math.IsInf(mean, 0) {
		return math.NaN()
	}
	return 1 / mean
}
