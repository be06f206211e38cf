// Package main is the entry point for the EDA engine: statistical
// diagnostics for financial time series. Given a YAML configuration naming a
// price panel CSV, it computes returns, summary statistics, stationarity
// tests and stylized-fact diagnostics, and writes CSV tables plus a Markdown
// report.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/eda/internal/config"
	"github.com/aristath/eda/internal/pipeline"
	"github.com/aristath/eda/internal/runstore"
	"github.com/aristath/eda/internal/scheduler"
	"github.com/aristath/eda/internal/server"
	"github.com/aristath/eda/pkg/logger"
)

// getEnv retrieves an environment variable value, returning a fallback if
// the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; it can set EDA_LOG_LEVEL and EDA_CONFIG.
	_ = godotenv.Load()

	var configPath string
	log := logger.New(logger.Config{
		Level:  getEnv("EDA_LOG_LEVEL", "info"),
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	root := &cobra.Command{
		Use:           "eda",
		Short:         "Statistical diagnostics for financial time series",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd.Context(), configPath, log)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c",
		getEnv("EDA_CONFIG", config.DefaultPath), "path to the configuration file")

	var addr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated reports, artifacts and run history over HTTP",
		RunE: func(_ *cobra.Command, _ []string) error {
			return serve(configPath, addr, log)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	root.AddCommand(serveCmd)

	var cronSpec string
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Re-run the analysis on a cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return schedule(cmd.Context(), configPath, cronSpec, log)
		},
	}
	scheduleCmd.Flags().StringVar(&cronSpec, "cron", "0 18 * * MON-FRI", "cron schedule for re-runs")
	root.AddCommand(scheduleCmd)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("Run failed")
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// runOnce executes one full analysis run.
func runOnce(ctx context.Context, configPath string, log zerolog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, configPath, log)
	if store, err := openStore(cfg); err != nil {
		log.Warn().Err(err).Msg("Run history unavailable")
	} else {
		defer store.Close()
		p.SetStore(store)
	}

	res, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Analysis completed: %d series, %d return observations\n", res.SeriesCount, res.ReturnRows)
	fmt.Printf("  Artifacts: %s\n", cfg.OutputDirs.Artifacts)
	fmt.Printf("  Report:    %s\n", res.ReportPath)
	return nil
}

// serve exposes the output directories and run history over HTTP.
func serve(configPath, addr string, log zerolog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Run history unavailable")
		store = nil
	} else {
		defer store.Close()
	}

	return server.New(cfg, store, log).ListenAndServe(addr)
}

// schedule re-runs the pipeline on a cron schedule until interrupted.
func schedule(ctx context.Context, configPath, cronSpec string, log zerolog.Logger) error {
	sched := scheduler.New(log)
	err := sched.AddRun(cronSpec, func() error {
		return runOnce(ctx, configPath, log)
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", cronSpec, err)
	}

	sched.Start()
	defer sched.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	return nil
}

// openStore opens the run-history database under the artifacts directory.
func openStore(cfg *config.Config) (*runstore.Store, error) {
	if err := cfg.EnsureOutputDirs(); err != nil {
		return nil, err
	}
	return runstore.Open(filepath.Join(cfg.OutputDirs.Artifacts, "runs.db"))
}
