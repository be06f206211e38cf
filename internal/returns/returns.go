// Package returns converts a price panel into a return panel.
package returns

import (
	"fmt"
	"math"
	"time"

	"github.com/aristath/eda/internal/config"
	"github.com/aristath/eda/internal/panel"
)

// Compute derives a return panel from a price panel.
//
// Log returns are ln(p[t]/p[t-1]); simple returns are (p[t]-p[t-1])/p[t-1].
// The first observation carries no return and is dropped. Rows that become
// non-finite (non-positive prices under the log transform, zero previous
// price under the simple transform) are also dropped; the count of such rows
// is returned as a data-quality signal.
func Compute(p *panel.Panel, returnType string) (*panel.Panel, int, error) {
	if p.NumRows() < 2 {
		return nil, 0, &panel.DataError{Stage: "returns", Err: fmt.Errorf("need at least 2 observations, have %d", p.NumRows())}
	}

	n := p.NumRows() - 1
	series := make([][]float64, p.NumColumns())
	for i := range series {
		series[i] = make([]float64, n)
	}

	for i, prices := range p.Series {
		for t := 1; t <= n; t++ {
			var r float64
			switch returnType {
			case config.ReturnTypeLog:
				r = math.Log(prices[t] / prices[t-1])
			case config.ReturnTypeSimple:
				r = (prices[t] - prices[t-1]) / prices[t-1]
			default:
				return nil, 0, fmt.Errorf("unknown return type %q", returnType)
			}
			series[i][t-1] = r
		}
	}

	ret := &panel.Panel{
		Columns: append([]string(nil), p.Columns...),
		Series:  series,
	}
	if p.HasDates() {
		ret.Index = append([]time.Time(nil), p.Index[1:]...)
	}

	dropped := dropNonFinite(ret)
	if ret.NumRows() == 0 {
		return nil, dropped, &panel.DataError{Stage: "returns", Err: fmt.Errorf("no finite returns remain")}
	}
	return ret, dropped, nil
}

// dropNonFinite removes rows containing NaN or Inf in any series and returns
// the number of rows removed.
func dropNonFinite(p *panel.Panel) int {
	for i := range p.Series {
		for r := range p.Series[i] {
			if math.IsInf(p.Series[i][r], 0) {
				p.Series[i][r] = math.NaN()
			}
		}
	}
	return p.DropMissingRows()
}
