// Package pipeline sequences one full diagnostics run: load panel, derive
// returns, run the diagnostics suite, render artifacts, record the run.
package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/aristath/eda/internal/config"
	"github.com/aristath/eda/internal/diagnostics"
	"github.com/aristath/eda/internal/panel"
	"github.com/aristath/eda/internal/report"
	"github.com/aristath/eda/internal/returns"
	"github.com/aristath/eda/internal/runstore"
)

// Result summarizes a completed run.
type Result struct {
	RunID          string
	SeriesCount    int
	PriceRows      int
	ReturnRows     int
	DroppedReturns int
	TablePaths     []string
	PlotDataPaths  []string
	ReportPath     string
	Duration       time.Duration
}

// Pipeline owns the end-to-end execution of one analysis run.
type Pipeline struct {
	cfg        *config.Config
	configPath string
	log        zerolog.Logger
	store      *runstore.Store
	now        func() time.Time
}

// New creates a pipeline for the given configuration. configPath is the
// location the configuration was loaded from, recorded in the run history.
func New(cfg *config.Config, configPath string, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		configPath: configPath,
		log:        log.With().Str("component", "pipeline").Logger(),
		now:        time.Now,
	}
}

// SetStore attaches a run-history store. Optional: without it, runs are not
// recorded.
func (p *Pipeline) SetStore(s *runstore.Store) {
	p.store = s
}

// Run executes the full pipeline. Terminal errors (bad configuration,
// unreadable data, empty panel) abort the run before any artifact is
// written; per-series test failures are recorded in the tables and do not
// abort.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := p.now()
	runID := uuid.NewString()
	log := p.log.With().Str("run_id", runID).Logger()

	prices, err := panel.NewLoader(p.cfg, log).Load()
	if err != nil {
		return nil, err
	}

	rets, dropped, err := returns.Compute(prices, p.cfg.ReturnType)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		log.Warn().Int("dropped_rows", dropped).Msg("Dropped non-finite returns")
	}

	suite := diagnostics.NewSuite(p.cfg, log)
	summary := suite.Summary(rets)
	stationarity := suite.Stationarity(rets)
	stylized := suite.StylizedFacts(rets)

	// No output exists before this point, so terminal failures above leave
	// nothing partial behind.
	if err := p.cfg.EnsureOutputDirs(); err != nil {
		return nil, err
	}

	renderer := report.NewRenderer(p.cfg, log)
	tablePaths, err := renderer.WriteTables(summary, stationarity, stylized)
	if err != nil {
		return nil, err
	}
	plotPaths, err := renderer.WritePlotData(prices, rets)
	if err != nil {
		return nil, err
	}
	reportPath, err := renderer.WriteReport(summary, stationarity, stylized, p.now())
	if err != nil {
		return nil, err
	}

	finished := p.now()
	if p.store != nil {
		run := &runstore.Run{
			ID:           runID,
			StartedAt:    started,
			FinishedAt:   finished,
			ConfigPath:   p.configPath,
			InputCSV:     p.cfg.InputCSV,
			Seed:         p.cfg.Seed,
			SeriesCount:  rets.NumColumns(),
			DroppedRows:  dropped,
			ReportPath:   reportPath,
			Summary:      summary,
			Stationarity: stationarity,
			Stylized:     stylized,
		}
		if err := p.store.Record(ctx, run); err != nil {
			// Run history is best-effort; the artifacts are already on disk.
			log.Warn().Err(err).Msg("Failed to record run history")
		}
	}

	res := &Result{
		RunID:          runID,
		SeriesCount:    rets.NumColumns(),
		PriceRows:      prices.NumRows(),
		ReturnRows:     rets.NumRows(),
		DroppedReturns: dropped,
		TablePaths:     tablePaths,
		PlotDataPaths:  plotPaths,
		ReportPath:     reportPath,
		Duration:       finished.Sub(started),
	}
	p.logRunSummary(log, res)
	return res, nil
}

// logRunSummary emits the closing log line with a host resource snapshot.
func (p *Pipeline) logRunSummary(log zerolog.Logger, res *Result) {
	ev := log.Info().
		Int("series", res.SeriesCount).
		Int("return_rows", res.ReturnRows).
		Dur("duration", res.Duration).
		Str("report", res.ReportPath)

	if vm, err := mem.VirtualMemory(); err == nil {
		ev = ev.Float64("host_mem_used_pct", vm.UsedPercent)
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := proc.MemoryInfo(); err == nil {
			ev = ev.Uint64("rss_bytes", mi.RSS)
		}
	}
	ev.Msg("Analysis run completed")
}
