package panel

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/eda/internal/config"
)

func writeCSVFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testConfig(path string) *config.Config {
	return &config.Config{
		InputCSV:   path,
		ParseDates: true,
		DropNA:     true,
		ReturnType: config.ReturnTypeLog,
		Tests:      config.TestParams{ADFAlpha: 0.05, LBLags: 10, ARCHLMLags: 10},
		Tails:      config.TailParams{HillThresholdQuantile: 0.95},
		OutputDirs: config.OutputDirs{Artifacts: "a", Reports: "r"},
	}
}

func TestLoadExplicitDateColumn(t *testing.T) {
	path := writeCSVFile(t, `Day,AAPL,MSFT
2024-01-02,185.5,370.1
2024-01-03,184.2,368.9
2024-01-04,186.0,372.4
`)
	cfg := testConfig(path)
	cfg.DateColumn = "Day"

	p, err := NewLoader(cfg, zerolog.Nop()).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, p.Columns)
	assert.Equal(t, 3, p.NumRows())
	require.True(t, p.HasDates())
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), p.Index[0])
}

func TestLoadInfersDateColumnByName(t *testing.T) {
	path := writeCSVFile(t, `Date,EURUSD
2024-01-02,1.0945
2024-01-03,1.0921
`)
	p, err := NewLoader(testConfig(path), zerolog.Nop()).Load()
	require.NoError(t, err)
	assert.True(t, p.HasDates())
	assert.Equal(t, []string{"EURUSD"}, p.Columns)
}

func TestLoadParsesFirstColumnFallback(t *testing.T) {
	path := writeCSVFile(t, `d,SPX
2024-01-02,4742.8
2024-01-03,4704.8
`)
	p, err := NewLoader(testConfig(path), zerolog.Nop()).Load()
	require.NoError(t, err)
	assert.True(t, p.HasDates())
	assert.Equal(t, []string{"SPX"}, p.Columns)
}

func TestLoadOrdinalIndexWhenNothingParses(t *testing.T) {
	path := writeCSVFile(t, `label,SPX
foo,4742.8
bar,4704.8
`)
	p, err := NewLoader(testConfig(path), zerolog.Nop()).Load()
	require.NoError(t, err)
	assert.False(t, p.HasDates())
	assert.Equal(t, []string{"SPX"}, p.Columns)
}

func TestLoadIncludeAndExcludeLists(t *testing.T) {
	path := writeCSVFile(t, `Date,AAPL,MSFT,GOOG
2024-01-02,185.5,370.1,140.2
2024-01-03,184.2,368.9,139.8
`)
	cfg := testConfig(path)
	cfg.PriceColumnsInclude = []string{"AAPL", "GOOG", "MSFT"}
	cfg.PriceColumnsExclude = []string{"MSFT"}

	p, err := NewLoader(cfg, zerolog.Nop()).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "GOOG"}, p.Columns)
}

func TestLoadIncludeUnknownColumn(t *testing.T) {
	path := writeCSVFile(t, `Date,AAPL
2024-01-02,185.5
`)
	cfg := testConfig(path)
	cfg.PriceColumnsInclude = []string{"TSLA"}

	_, err := NewLoader(cfg, zerolog.Nop()).Load()
	require.Error(t, err)

	var cfgErr *config.Error
	assert.True(t, errors.As(err, &cfgErr))
}

func TestLoadNoPriceColumns(t *testing.T) {
	// Only a date column and an id-patterned numeric column: nothing left
	// after pattern exclusion, so this must fail as a configuration error.
	path := writeCSVFile(t, `Date,id
2024-01-02,1
2024-01-03,2
`)
	_, err := NewLoader(testConfig(path), zerolog.Nop()).Load()
	require.Error(t, err)

	var cfgErr *config.Error
	assert.True(t, errors.As(err, &cfgErr))
}

func TestLoadSkipsNonNumericColumns(t *testing.T) {
	path := writeCSVFile(t, `Date,AAPL,venue
2024-01-02,185.5,NASDAQ
2024-01-03,184.2,NASDAQ
`)
	p, err := NewLoader(testConfig(path), zerolog.Nop()).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, p.Columns)
}

func TestLoadDropNA(t *testing.T) {
	path := writeCSVFile(t, `Date,A,B
2024-01-02,1.0,2.0
2024-01-03,,2.1
2024-01-04,1.2,2.2
`)
	p, err := NewLoader(testConfig(path), zerolog.Nop()).Load()
	require.NoError(t, err)
	assert.Equal(t, 2, p.NumRows())

	a, err := p.Column("A")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 1.2}, a)
}

func TestLoadDropNAEmptiesPanel(t *testing.T) {
	path := writeCSVFile(t, `Date,A,B
2024-01-02,,2.0
2024-01-03,1.1,
`)
	_, err := NewLoader(testConfig(path), zerolog.Nop()).Load()
	require.Error(t, err)

	var dataErr *DataError
	assert.True(t, errors.As(err, &dataErr))
}

func TestLoadMissingFile(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "absent.csv"))
	_, err := NewLoader(cfg, zerolog.Nop()).Load()
	require.Error(t, err)

	var dataErr *DataError
	assert.True(t, errors.As(err, &dataErr))
}

func TestLoadResampleWeekly(t *testing.T) {
	// Two ISO weeks of daily prices; weekly-last keeps the Friday close
	// labelled on the following Sunday.
	path := writeCSVFile(t, `Date,A
2024-01-01,1.0
2024-01-02,1.1
2024-01-03,1.2
2024-01-04,1.3
2024-01-05,1.4
2024-01-08,2.0
2024-01-09,2.1
2024-01-10,2.2
`)
	cfg := testConfig(path)
	cfg.Resample = "W"

	p, err := NewLoader(cfg, zerolog.Nop()).Load()
	require.NoError(t, err)
	require.Equal(t, 2, p.NumRows())

	a, err := p.Column("A")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.4, 2.2}, a)
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), p.Index[0])
	assert.Equal(t, time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC), p.Index[1])
}

func TestLoadResampleWithoutDates(t *testing.T) {
	path := writeCSVFile(t, `label,A
foo,1.0
bar,1.1
`)
	cfg := testConfig(path)
	cfg.Resample = "W"

	_, err := NewLoader(cfg, zerolog.Nop()).Load()
	require.Error(t, err)

	var dataErr *DataError
	assert.True(t, errors.As(err, &dataErr))
}

func TestLoadUnsupportedResampleRule(t *testing.T) {
	path := writeCSVFile(t, `Date,A
2024-01-02,1.0
2024-01-03,1.1
`)
	cfg := testConfig(path)
	cfg.Resample = "5min"

	_, err := NewLoader(cfg, zerolog.Nop()).Load()
	require.Error(t, err)

	var cfgErr *config.Error
	assert.True(t, errors.As(err, &cfgErr))
}

func TestPeriodEnd(t *testing.T) {
	loc := time.UTC
	wed := time.Date(2024, 3, 13, 0, 0, 0, 0, loc) // a Wednesday

	tests := []struct {
		name string
		rule string
		want time.Time
	}{
		{"daily", "D", wed},
		{"weekly ends sunday", "W", time.Date(2024, 3, 17, 0, 0, 0, 0, loc)},
		{"month end", "M", time.Date(2024, 3, 31, 0, 0, 0, 0, loc)},
		{"quarter end", "Q", time.Date(2024, 3, 31, 0, 0, 0, 0, loc)},
		{"year end", "Y", time.Date(2024, 12, 31, 0, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := periodEnd(wed, tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
