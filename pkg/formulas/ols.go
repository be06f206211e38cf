package formulas

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// olsFit holds the quantities the regression-based tests need from an
// ordinary least squares fit.
type olsFit struct {
	coef   []float64
	stderr []float64
	resid  []float64
	rss    float64
	rsq    float64
	nobs   int
	nparam int
}

// tStat returns the t-statistic of the j-th coefficient.
func (f *olsFit) tStat(j int) float64 {
	return f.coef[j] / f.stderr[j]
}

// logLikelihood returns the Gaussian log-likelihood of the fit, used for
// information-criterion lag selection.
func (f *olsFit) logLikelihood() float64 {
	n := float64(f.nobs)
	return -n / 2 * (math.Log(2*math.Pi) + math.Log(f.rss/n) + 1)
}

// aic returns the Akaike information criterion of the fit.
func (f *olsFit) aic() float64 {
	return 2*float64(f.nparam) - 2*f.logLikelihood()
}

// olsRegress fits y = X*beta + e by ordinary least squares. X is row-major
// with one row per observation. Fails on rank deficiency or when there are
// no residual degrees of freedom.
func olsRegress(y []float64, x *mat.Dense) (*olsFit, error) {
	nobs, nparam := x.Dims()
	if nobs != len(y) {
		return nil, fmt.Errorf("ols: %d rows in design matrix, %d observations", nobs, len(y))
	}
	if nobs <= nparam {
		return nil, fmt.Errorf("ols: %d observations for %d parameters", nobs, nparam)
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("ols: design matrix is singular: %w", err)
	}

	yVec := mat.NewVecDense(len(y), y)
	var xty mat.VecDense
	xty.MulVec(x.T(), yVec)
	var beta mat.VecDense
	beta.MulVec(&xtxInv, &xty)

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)

	fit := &olsFit{
		coef:   make([]float64, nparam),
		stderr: make([]float64, nparam),
		resid:  make([]float64, nobs),
		nobs:   nobs,
		nparam: nparam,
	}
	for j := 0; j < nparam; j++ {
		fit.coef[j] = beta.AtVec(j)
	}

	meanY := Mean(y)
	var tss float64
	for i := 0; i < nobs; i++ {
		r := y[i] - fitted.AtVec(i)
		fit.resid[i] = r
		fit.rss += r * r
		d := y[i] - meanY
		tss += d * d
	}
	if tss > 0 {
		fit.rsq = 1 - fit.rss/tss
	}

	sigma2 := fit.rss / float64(nobs-nparam)
	for j := 0; j < nparam; j++ {
		fit.stderr[j] = math.Sqrt(sigma2 * xtxInv.At(j, j))
	}
	return fit, nil
}
