// Package config provides configuration loading and validation for an analysis run.
//
// Configuration is read once from a YAML file and validated eagerly: a missing
// file, malformed document, or out-of-range parameter is a terminal error at
// startup, never a lazy failure at first use.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the conventional configuration location used when no path is given.
const DefaultPath = "configs/eda.yaml"

// Return type selectors for the price-to-return transform.
const (
	ReturnTypeLog    = "log"
	ReturnTypeSimple = "simple"
)

// TestParams holds numeric parameters for the statistical tests.
type TestParams struct {
	ADFAlpha   float64 `yaml:"adf_alpha"`    // significance level shared by ADF and KPSS verdicts
	LBLags     int     `yaml:"lb_lags"`      // maximum lag for the Ljung-Box test
	ARCHLMLags int     `yaml:"arch_lm_lags"` // lag order for the ARCH-LM test
}

// TailParams holds parameters for tail-index estimation.
type TailParams struct {
	HillThresholdQuantile float64 `yaml:"hill_threshold_quantile"`
}

// OutputDirs names the output directories for the two artifact classes.
type OutputDirs struct {
	Artifacts string `yaml:"artifacts"` // CSV result tables
	Reports   string `yaml:"reports"`   // Markdown report and plot data
}

// Config is the immutable configuration for one analysis run.
type Config struct {
	InputCSV            string          `yaml:"input_csv"`
	DateColumn          string          `yaml:"date_column"`
	ParseDates          bool            `yaml:"parse_dates"`
	DropNA              bool            `yaml:"dropna"`
	PriceColumnsInclude []string        `yaml:"price_columns_include"`
	PriceColumnsExclude []string        `yaml:"price_columns_exclude"`
	Resample            string          `yaml:"resample"` // period code ("W", "M", ...) or empty for none
	ReturnType          string          `yaml:"return_type"`
	Plots               map[string]bool `yaml:"plots"`
	Tests               TestParams      `yaml:"tests"`
	Tails               TailParams      `yaml:"tails"`
	OutputDirs          OutputDirs      `yaml:"output_dirs"`
	Seed                int64           `yaml:"seed"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Stage: "config", Err: fmt.Errorf("read %s: %w", path, err)}
	}

	cfg := defaults()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, &Error{Stage: "config", Err: fmt.Errorf("parse %s: %w", path, err)}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaults returns a config pre-populated with the documented test and tail
// parameter defaults. YAML unmarshalling overwrites any key the file sets.
func defaults() *Config {
	return &Config{
		ParseDates: true,
		DropNA:     true,
		ReturnType: ReturnTypeLog,
		Tests: TestParams{
			ADFAlpha:   0.05,
			LBLags:     10,
			ARCHLMLags: 10,
		},
		Tails: TailParams{
			HillThresholdQuantile: 0.95,
		},
		OutputDirs: OutputDirs{
			Artifacts: "artifacts/eda",
			Reports:   "reports/eda",
		},
		Seed: 123,
	}
}

// Validate checks every field that a run depends on. Errors here are terminal.
func (c *Config) Validate() error {
	if c.InputCSV == "" {
		return &Error{Stage: "config", Err: fmt.Errorf("input_csv is required")}
	}
	if c.ReturnType != ReturnTypeLog && c.ReturnType != ReturnTypeSimple {
		return &Error{Stage: "config", Err: fmt.Errorf("return_type must be %q or %q, got %q", ReturnTypeLog, ReturnTypeSimple, c.ReturnType)}
	}
	if c.Tests.ADFAlpha <= 0 || c.Tests.ADFAlpha >= 1 {
		return &Error{Stage: "config", Err: fmt.Errorf("tests.adf_alpha must be in (0,1), got %g", c.Tests.ADFAlpha)}
	}
	if c.Tests.LBLags < 1 {
		return &Error{Stage: "config", Err: fmt.Errorf("tests.lb_lags must be >= 1, got %d", c.Tests.LBLags)}
	}
	if c.Tests.ARCHLMLags < 1 {
		return &Error{Stage: "config", Err: fmt.Errorf("tests.arch_lm_lags must be >= 1, got %d", c.Tests.ARCHLMLags)}
	}
	if q := c.Tails.HillThresholdQuantile; q <= 0 || q >= 1 {
		return &Error{Stage: "config", Err: fmt.Errorf("tails.hill_threshold_quantile must be in (0,1), got %g", q)}
	}
	if c.OutputDirs.Artifacts == "" || c.OutputDirs.Reports == "" {
		return &Error{Stage: "config", Err: fmt.Errorf("output_dirs.artifacts and output_dirs.reports are required")}
	}
	return nil
}

// EnsureOutputDirs creates the configured output directories if they do not exist.
func (c *Config) EnsureOutputDirs() error {
	for _, dir := range []string{c.OutputDirs.Artifacts, c.OutputDirs.Reports} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &Error{Stage: "config", Err: fmt.Errorf("create output directory %s: %w", dir, err)}
		}
	}
	return nil
}
