// Package report serializes diagnostic results into CSV artifacts and a
// Markdown report.
package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/aristath/eda/internal/config"
	"github.com/aristath/eda/internal/diagnostics"
	"github.com/aristath/eda/internal/panel"
	"github.com/aristath/eda/pkg/formulas"
)

// Artifact file names under the artifacts directory.
const (
	SummaryFile      = "summary_stats.csv"
	StationarityFile = "stationarity.csv"
	StylizedFile     = "stylized_facts.csv"
)

// Plot-data file names under the reports directory. These carry the series
// the report's plot list refers to; actual image rendering is external.
const (
	CorrMatrixFile = "corr_matrix.csv"
	RollingVolFile = "rolling_vol.csv"
	ACFFile        = "acf.csv"
)

// RollingVolWindow is the window used for the rolling-volatility plot data.
const RollingVolWindow = 21

// ACFMaxLag is the deepest lag written to the autocorrelation plot data.
const ACFMaxLag = 40

// Renderer writes diagnostic tables and the narrative report to the
// configured output directories.
type Renderer struct {
	cfg *config.Config
	log zerolog.Logger
}

// NewRenderer creates a report renderer.
func NewRenderer(cfg *config.Config, log zerolog.Logger) *Renderer {
	return &Renderer{
		cfg: cfg,
		log: log.With().Str("component", "report").Logger(),
	}
}

// WriteTables serializes the three result tables to CSV under the artifacts
// directory, one file per table, full numeric fidelity. It returns the
// written paths.
func (r *Renderer) WriteTables(
	summary []diagnostics.SummaryRow,
	stationarity []diagnostics.StationarityRow,
	stylized []diagnostics.StylizedRow,
) ([]string, error) {
	dir := r.cfg.OutputDirs.Artifacts

	summaryRows := [][]string{{"Series", "Mean", "Std", "Skewness", "Excess_Kurtosis", "JB_Statistic", "JB_p_value", "Min", "Max", "Q25", "Q75", "Observations"}}
	for _, row := range summary {
		summaryRows = append(summaryRows, []string{
			row.Series,
			full(row.Mean), full(row.Std), full(row.Skewness), full(row.ExcessKurtosis),
			full(row.JBStatistic), full(row.JBPValue),
			full(row.Min), full(row.Max), full(row.Q25), full(row.Q75),
			strconv.Itoa(row.Observations),
		})
	}

	stationarityRows := [][]string{{"Series", "ADF_Statistic", "ADF_p_value", "ADF_Result", "KPSS_Statistic", "KPSS_p_value", "KPSS_Result"}}
	for _, row := range stationarity {
		stationarityRows = append(stationarityRows, []string{
			row.Series,
			full(row.ADFStatistic), full(row.ADFPValue), string(row.ADFResult),
			full(row.KPSSStatistic), full(row.KPSSPValue), string(row.KPSSResult),
		})
	}

	stylizedRows := [][]string{{"Series", "Ljung_Box_Stat", "Ljung_Box_p_value", "ARCH_LM_Stat", "ARCH_LM_p_value", "Hill_Tail_Index", "Excess_Kurtosis"}}
	for _, row := range stylized {
		stylizedRows = append(stylizedRows, []string{
			row.Series,
			full(row.LjungBoxStat), full(row.LjungBoxPValue),
			full(row.ARCHLMStat), full(row.ARCHLMPValue),
			full(row.HillTailIndex), full(row.ExcessKurtosis),
		})
	}

	var paths []string
	for _, t := range []struct {
		name string
		rows [][]string
	}{
		{SummaryFile, summaryRows},
		{StationarityFile, stationarityRows},
		{StylizedFile, stylizedRows},
	} {
		path := filepath.Join(dir, t.name)
		if err := writeCSV(path, t.rows); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	r.log.Info().Strs("files", paths).Msg("Wrote diagnostic tables")
	return paths, nil
}

// WritePlotData writes the companion data series the report's plot list
// refers to, gated by the configured plot flags.
func (r *Renderer) WritePlotData(prices, rets *panel.Panel) ([]string, error) {
	dir := r.cfg.OutputDirs.Reports
	var paths []string

	if r.cfg.Plots["heatmap"] && rets.NumColumns() > 1 {
		corr := formulas.CorrelationMatrix(rets.Series)
		rows := [][]string{append([]string{"Series"}, rets.Columns...)}
		for i, name := range rets.Columns {
			row := []string{name}
			for j := range rets.Columns {
				row = append(row, full(corr[i][j]))
			}
			rows = append(rows, row)
		}
		path := filepath.Join(dir, CorrMatrixFile)
		if err := writeCSV(path, rows); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	if r.cfg.Plots["returns"] {
		rows := [][]string{append([]string{"Row"}, rets.Columns...)}
		vols := make([][]float64, rets.NumColumns())
		for i := range rets.Series {
			vols[i] = formulas.RollingVolatility(rets.Series[i], RollingVolWindow)
		}
		for t := 0; t < rets.NumRows(); t++ {
			row := []string{strconv.Itoa(t)}
			for i := range vols {
				row = append(row, full(vols[i][t]))
			}
			rows = append(rows, row)
		}
		path := filepath.Join(dir, RollingVolFile)
		if err := writeCSV(path, rows); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	if r.cfg.Plots["acf_pacf"] {
		rows := [][]string{append([]string{"Lag"}, rets.Columns...)}
		maxLag := ACFMaxLag
		if n := rets.NumRows() - 1; maxLag > n {
			maxLag = n
		}
		for k := 1; k <= maxLag; k++ {
			row := []string{strconv.Itoa(k)}
			for i := range rets.Series {
				row = append(row, full(formulas.Autocorrelation(rets.Series[i], k)))
			}
			rows = append(rows, row)
		}
		path := filepath.Join(dir, ACFFile)
		if err := writeCSV(path, rows); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	if len(paths) > 0 {
		r.log.Info().Strs("files", paths).Msg("Wrote plot data")
	}
	return paths, nil
}

// full formats a float at full precision; NaN and infinities serialize as
// "NaN" so the tables stay machine-readable.
func full(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}
