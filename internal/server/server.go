// Package server exposes a read-only HTTP view of generated reports,
// artifacts and run history.
package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/eda/internal/config"
	"github.com/aristath/eda/internal/runstore"
)

// Server serves reports, artifacts and run history over HTTP.
type Server struct {
	cfg   *config.Config
	store *runstore.Store
	log   zerolog.Logger
}

// New creates a server. store may be nil; the run-history endpoints then
// report 404.
func New(cfg *config.Config, store *runstore.Store, log zerolog.Logger) *Server {
	return &Server{
		cfg:   cfg,
		store: store,
		log:   log.With().Str("component", "server").Logger(),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	r.Get("/api/runs", s.handleListRuns)
	r.Get("/api/runs/{id}", s.handleGetRun)

	r.Handle("/reports/*", http.StripPrefix("/reports/", http.FileServer(http.Dir(s.cfg.OutputDirs.Reports))))
	r.Handle("/artifacts/*", http.StripPrefix("/artifacts/", http.FileServer(http.Dir(s.cfg.OutputDirs.Artifacts))))

	return r
}

// ListenAndServe serves until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("Serving reports")
	return srv.ListenAndServe()
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "run history not available", http.StatusNotFound)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list runs")
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "run history not available", http.StatusNotFound)
		return
	}
	id := chi.URLParam(r, "id")
	run, err := s.store.Get(r.Context(), id)
	if err != nil {
		http.Error(w, fmt.Sprintf("run %s not found", id), http.StatusNotFound)
		return
	}
	writeJSON(w, runView(run))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// runView converts a run into a JSON-encodable shape. Result tables may hold
// NaN, which encoding/json rejects, so numeric cells pass through nullable.
func runView(run *runstore.Run) map[string]any {
	summary := make([]map[string]any, 0, len(run.Summary))
	for _, row := range run.Summary {
		summary = append(summary, map[string]any{
			"series":          row.Series,
			"mean":            nullable(row.Mean),
			"std":             nullable(row.Std),
			"skewness":        nullable(row.Skewness),
			"excess_kurtosis": nullable(row.ExcessKurtosis),
			"jb_statistic":    nullable(row.JBStatistic),
			"jb_p_value":      nullable(row.JBPValue),
			"min":             nullable(row.Min),
			"max":             nullable(row.Max),
			"q25":             nullable(row.Q25),
			"q75":             nullable(row.Q75),
			"observations":    row.Observations,
		})
	}

	stationarity := make([]map[string]any, 0, len(run.Stationarity))
	for _, row := range run.Stationarity {
		stationarity = append(stationarity, map[string]any{
			"series":         row.Series,
			"adf_statistic":  nullable(row.ADFStatistic),
			"adf_p_value":    nullable(row.ADFPValue),
			"adf_result":     row.ADFResult,
			"kpss_statistic": nullable(row.KPSSStatistic),
			"kpss_p_value":   nullable(row.KPSSPValue),
			"kpss_result":    row.KPSSResult,
		})
	}

	stylized := make([]map[string]any, 0, len(run.Stylized))
	for _, row := range run.Stylized {
		stylized = append(stylized, map[string]any{
			"series":            row.Series,
			"ljung_box_stat":    nullable(row.LjungBoxStat),
			"ljung_box_p_value": nullable(row.LjungBoxPValue),
			"arch_lm_stat":      nullable(row.ARCHLMStat),
			"arch_lm_p_value":   nullable(row.ARCHLMPValue),
			"hill_tail_index":   nullable(row.HillTailIndex),
			"excess_kurtosis":   nullable(row.ExcessKurtosis),
		})
	}

	return map[string]any{
		"id":           run.ID,
		"started_at":   run.StartedAt,
		"finished_at":  run.FinishedAt,
		"config_path":  run.ConfigPath,
		"input_csv":    run.InputCSV,
		"seed":         run.Seed,
		"series_count": run.SeriesCount,
		"dropped_rows": run.DroppedRows,
		"report_path":  run.ReportPath,
		"summary":      summary,
		"stationarity": stationarity,
		"stylized":     stylized,
	}
}

func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
