// Package panel provides the price panel data structure and its CSV loader.
//
// A Panel is a column-major table of named numeric series over a shared,
// strictly-ordered temporal index. It is built once by the loader and never
// mutated afterwards; downstream stages share it read-only.
package panel

import (
	"fmt"
	"math"
	"time"
)

// Panel holds named numeric series over a shared index.
//
// Index is nil when no temporal key could be resolved; rows are then treated
// as ordinal observations. When Index is non-nil, len(Index) == NumRows().
type Panel struct {
	Index   []time.Time
	Columns []string
	Series  [][]float64 // Series[i] belongs to Columns[i]; all equal length
}

// NumRows returns the number of observations in the panel.
func (p *Panel) NumRows() int {
	if len(p.Series) == 0 {
		return 0
	}
	return len(p.Series[0])
}

// NumColumns returns the number of series in the panel.
func (p *Panel) NumColumns() int { return len(p.Columns) }

// Column returns the series with the given name.
func (p *Panel) Column(name string) ([]float64, error) {
	for i, c := range p.Columns {
		if c == name {
			return p.Series[i], nil
		}
	}
	return nil, fmt.Errorf("panel has no column %q", name)
}

// HasDates reports whether the panel carries a resolved temporal index.
func (p *Panel) HasDates() bool { return len(p.Index) > 0 }

// dropRows removes the rows at the given (sorted, unique) positions from
// every series and from the index.
func (p *Panel) dropRows(positions map[int]bool) {
	if len(positions) == 0 {
		return
	}
	n := p.NumRows()
	for i := range p.Series {
		kept := p.Series[i][:0:0]
		for r := 0; r < n; r++ {
			if !positions[r] {
				kept = append(kept, p.Series[i][r])
			}
		}
		p.Series[i] = kept
	}
	if p.HasDates() {
		kept := p.Index[:0:0]
		for r := 0; r < n; r++ {
			if !positions[r] {
				kept = append(kept, p.Index[r])
			}
		}
		p.Index = kept
	}
}

// DropMissingRows removes every row containing at least one NaN across the
// panel's series. It returns the number of rows removed.
func (p *Panel) DropMissingRows() int {
	drop := map[int]bool{}
	for r := 0; r < p.NumRows(); r++ {
		for i := range p.Series {
			if math.IsNaN(p.Series[i][r]) {
				drop[r] = true
				break
			}
		}
	}
	p.dropRows(drop)
	return len(drop)
}
