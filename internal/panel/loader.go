package panel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/eda/internal/config"
)

// Column names matching any of these fragments are never inferred as price
// series. The list and its precedence are load-bearing: declared column first,
// then name-pattern match, then first-column fallback.
var nonPriceFragments = []string{"date", "time", "index", "id"}

// dateFragments are the name patterns used to locate a temporal column.
var dateFragments = []string{"date", "time"}

// dateLayouts are the timestamp formats the loader recognizes, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
}

// missingTokens are cell values treated as missing data.
var missingTokens = map[string]bool{
	"": true, "na": true, "nan": true, "null": true, "n/a": true, "none": true,
}

// Loader reads a price panel from a delimited file according to a configuration.
type Loader struct {
	cfg *config.Config
	log zerolog.Logger
}

// NewLoader creates a panel loader.
func NewLoader(cfg *config.Config, log zerolog.Logger) *Loader {
	return &Loader{
		cfg: cfg,
		log: log.With().Str("component", "panel_loader").Logger(),
	}
}

// Load reads the configured CSV file and produces a cleaned price panel.
func (l *Loader) Load() (*Panel, error) {
	header, rows, err := readCSV(l.cfg.InputCSV)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &DataError{Stage: "load", Err: fmt.Errorf("%s contains no data rows", l.cfg.InputCSV)}
	}

	dateCol, index, err := l.resolveDates(header, rows)
	if err != nil {
		return nil, err
	}

	columns, series, err := l.resolvePriceColumns(header, rows, dateCol)
	if err != nil {
		return nil, err
	}

	p := &Panel{Index: index, Columns: columns, Series: series}
	l.log.Info().
		Int("rows", p.NumRows()).
		Strs("columns", p.Columns).
		Msg("Loaded price panel")

	if l.cfg.DropNA {
		dropped := p.DropMissingRows()
		if dropped > 0 {
			l.log.Info().Int("dropped_rows", dropped).Msg("Dropped rows with missing values")
		}
		if p.NumRows() == 0 {
			return nil, &DataError{Stage: "clean", Err: fmt.Errorf("no data remaining after dropping missing values")}
		}
	}

	if l.cfg.Resample != "" {
		if err := l.resample(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// readCSV returns the header row and the data rows of a delimited file.
func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &DataError{Stage: "load", Err: fmt.Errorf("open %s: %w", path, err)}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, &DataError{Stage: "load", Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	if len(records) == 0 {
		return nil, nil, &DataError{Stage: "load", Err: fmt.Errorf("%s is empty", path)}
	}
	return records[0], records[1:], nil
}

// resolveDates locates and parses the temporal index. It returns the index of
// the consumed date column (-1 when none) and the parsed timestamps (nil for
// an ordinal index).
//
// Precedence: declared date_column, then the first column whose name matches a
// date/time pattern, then (under parse_dates) a parse attempt on the first
// column. A failed attempt on the fallback is non-fatal and leaves an ordinal
// index; a failed parse on a declared or pattern-matched column is a data error.
func (l *Loader) resolveDates(header []string, rows [][]string) (int, []time.Time, error) {
	if l.cfg.DateColumn != "" {
		col := indexOf(header, l.cfg.DateColumn)
		if col < 0 {
			return -1, nil, &config.Error{Stage: "load", Err: fmt.Errorf("date_column %q not found in %s", l.cfg.DateColumn, l.cfg.InputCSV)}
		}
		idx, err := parseDates(column(rows, col))
		if err != nil {
			return -1, nil, &DataError{Stage: "load", Err: fmt.Errorf("parse date_column %q: %w", l.cfg.DateColumn, err)}
		}
		l.checkOrdered(idx)
		return col, idx, nil
	}

	for col, name := range header {
		if matchesAny(name, dateFragments) {
			idx, err := parseDates(column(rows, col))
			if err != nil {
				return -1, nil, &DataError{Stage: "load", Err: fmt.Errorf("parse date-like column %q: %w", name, err)}
			}
			l.checkOrdered(idx)
			return col, idx, nil
		}
	}

	if l.cfg.ParseDates && len(header) > 0 {
		idx, err := parseDates(column(rows, 0))
		if err == nil {
			l.checkOrdered(idx)
			return 0, idx, nil
		}
	}

	l.log.Warn().Msg("Could not resolve a date column; using ordinal index")
	return -1, nil, nil
}

// resolvePriceColumns selects and parses the numeric price series.
func (l *Loader) resolvePriceColumns(header []string, rows [][]string, dateCol int) ([]string, [][]float64, error) {
	excluded := map[string]bool{}
	for _, name := range l.cfg.PriceColumnsExclude {
		excluded[name] = true
	}

	var names []string
	if len(l.cfg.PriceColumnsInclude) > 0 {
		for _, name := range l.cfg.PriceColumnsInclude {
			if excluded[name] {
				continue
			}
			if indexOf(header, name) < 0 {
				return nil, nil, &config.Error{Stage: "load", Err: fmt.Errorf("price column %q not found in %s", name, l.cfg.InputCSV)}
			}
			names = append(names, name)
		}
	} else {
		for col, name := range header {
			if col == dateCol || excluded[name] || matchesAny(name, nonPriceFragments) {
				continue
			}
			if isNumericColumn(column(rows, col)) {
				names = append(names, name)
			}
		}
	}

	if len(names) == 0 {
		return nil, nil, &config.Error{Stage: "load", Err: fmt.Errorf("no price columns resolved from %s", l.cfg.InputCSV)}
	}

	series := make([][]float64, len(names))
	for i, name := range names {
		col := indexOf(header, name)
		values, err := parseNumeric(column(rows, col))
		if err != nil {
			return nil, nil, &DataError{Stage: "load", Err: fmt.Errorf("column %q: %w", name, err)}
		}
		series[i] = values
	}
	return names, series, nil
}

// resample aggregates the panel to the configured period, taking the last
// observation in each period and dropping incomplete rows.
func (l *Loader) resample(p *Panel) error {
	if !p.HasDates() {
		return &DataError{Stage: "resample", Err: fmt.Errorf("resample %q requires a resolved date index", l.cfg.Resample)}
	}

	ends := make([]time.Time, len(p.Index))
	for i, t := range p.Index {
		end, err := periodEnd(t, l.cfg.Resample)
		if err != nil {
			return &config.Error{Stage: "resample", Err: err}
		}
		ends[i] = end
	}

	// Last non-missing observation per column within each period.
	type bucket struct {
		values []float64
	}
	buckets := map[time.Time]*bucket{}
	var order []time.Time
	for r := 0; r < p.NumRows(); r++ {
		b, ok := buckets[ends[r]]
		if !ok {
			b = &bucket{values: make([]float64, p.NumColumns())}
			for i := range b.values {
				b.values[i] = math.NaN()
			}
			buckets[ends[r]] = b
			order = append(order, ends[r])
		}
		for i := range p.Series {
			if !math.IsNaN(p.Series[i][r]) {
				b.values[i] = p.Series[i][r]
			}
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	index := make([]time.Time, 0, len(order))
	series := make([][]float64, p.NumColumns())
	for i := range series {
		series[i] = make([]float64, 0, len(order))
	}
	for _, end := range order {
		index = append(index, end)
		for i := range series {
			series[i] = append(series[i], buckets[end].values[i])
		}
	}

	p.Index = index
	p.Series = series
	dropped := p.DropMissingRows()
	if dropped > 0 {
		l.log.Debug().Int("dropped_rows", dropped).Msg("Dropped incomplete resampled rows")
	}
	if p.NumRows() == 0 {
		return &DataError{Stage: "resample", Err: fmt.Errorf("no data remaining after resampling to %q", l.cfg.Resample)}
	}
	l.log.Info().Str("rule", l.cfg.Resample).Int("rows", p.NumRows()).Msg("Resampled panel")
	return nil
}

// checkOrdered warns when the temporal index is not strictly increasing.
func (l *Loader) checkOrdered(idx []time.Time) {
	for i := 1; i < len(idx); i++ {
		if !idx[i].After(idx[i-1]) {
			l.log.Warn().Time("at", idx[i]).Msg("Temporal index is not strictly increasing")
			return
		}
	}
}

// periodEnd maps a timestamp to the end of its aggregation period.
//
// Supported period codes: "D" (day), "W" (week ending Sunday), "M" (month
// end), "Q" (quarter end), "Y"/"A" (year end).
func periodEnd(t time.Time, rule string) (time.Time, error) {
	switch strings.ToUpper(strings.TrimSpace(rule)) {
	case "D":
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
	case "W", "W-SUN":
		days := (7 - int(t.Weekday())) % 7
		d := t.AddDate(0, 0, days)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location()), nil
	case "M", "ME":
		first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		return first.AddDate(0, 1, -1), nil
	case "Q", "QE":
		q := (int(t.Month()) - 1) / 3
		first := time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, t.Location())
		return first.AddDate(0, 3, -1), nil
	case "Y", "A", "YE":
		return time.Date(t.Year(), 12, 31, 0, 0, 0, 0, t.Location()), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported resample rule %q", rule)
	}
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func matchesAny(name string, fragments []string) bool {
	lower := strings.ToLower(name)
	for _, f := range fragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

func column(rows [][]string, col int) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		if col < len(row) {
			out[i] = row[col]
		}
	}
	return out
}

func isMissing(cell string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(cell))]
}

// isNumericColumn reports whether every non-missing cell parses as a float
// and at least one cell carries a value.
func isNumericColumn(cells []string) bool {
	seen := false
	for _, cell := range cells {
		if isMissing(cell) {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

// parseNumeric converts cells to floats, mapping missing tokens to NaN.
func parseNumeric(cells []string) ([]float64, error) {
	out := make([]float64, len(cells))
	for i, cell := range cells {
		if isMissing(cell) {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseDates converts cells to timestamps, trying each known layout.
func parseDates(cells []string) ([]time.Time, error) {
	out := make([]time.Time, len(cells))
	for i, cell := range cells {
		t, err := parseDate(strings.TrimSpace(cell))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out[i] = t
	}
	return out, nil
}

func parseDate(cell string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", cell)
}
