// Package runstore persists a history of completed analysis runs.
//
// Each run records its configuration fingerprint, artifact locations and the
// three diagnostic result tables (msgpack-encoded), so sibling pipeline
// stages and the serve command can retrieve past results without re-reading
// the CSV artifacts.
package runstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/aristath/eda/internal/diagnostics"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP NOT NULL,
	config_path   TEXT NOT NULL,
	input_csv     TEXT NOT NULL,
	seed          INTEGER NOT NULL,
	series_count  INTEGER NOT NULL,
	dropped_rows  INTEGER NOT NULL,
	report_path   TEXT NOT NULL,
	summary       BLOB NOT NULL,
	stationarity  BLOB NOT NULL,
	stylized      BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// Run describes one completed pipeline run.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	ConfigPath   string
	InputCSV     string
	Seed         int64
	SeriesCount  int
	DroppedRows  int
	ReportPath   string
	Summary      []diagnostics.SummaryRow
	Stationarity []diagnostics.StationarityRow
	Stylized     []diagnostics.StylizedRow
}

// Store is a sqlite-backed run history.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens (creating if necessary) the run store at the given path.
func Open(path string) (*Store, error) {
	// WAL with relaxed sync: run history is operational data, not an audit trail.
	connStr := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open run store %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping run store %s: %w", path, err)
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize run store schema: %w", err)
	}

	return &Store{conn: conn, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.conn.Close() }

// Record persists a completed run.
func (s *Store) Record(ctx context.Context, run *Run) error {
	summary, err := msgpack.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("encode summary table: %w", err)
	}
	stationarity, err := msgpack.Marshal(run.Stationarity)
	if err != nil {
		return fmt.Errorf("encode stationarity table: %w", err)
	}
	stylized, err := msgpack.Marshal(run.Stylized)
	if err != nil {
		return fmt.Errorf("encode stylized facts table: %w", err)
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, config_path, input_csv, seed,
			series_count, dropped_rows, report_path, summary, stationarity, stylized)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FinishedAt, run.ConfigPath, run.InputCSV, run.Seed,
		run.SeriesCount, run.DroppedRows, run.ReportPath, summary, stationarity, stylized,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// List returns the most recent runs, newest first, without the result tables.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, started_at, finished_at, config_path, input_csv, seed,
			series_count, dropped_rows, report_path
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.ConfigPath, &r.InputCSV,
			&r.Seed, &r.SeriesCount, &r.DroppedRows, &r.ReportPath); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns one run with its decoded result tables.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	r := &Run{}
	var summary, stationarity, stylized []byte
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, config_path, input_csv, seed,
			series_count, dropped_rows, report_path, summary, stationarity, stylized
		FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.ConfigPath, &r.InputCSV, &r.Seed,
			&r.SeriesCount, &r.DroppedRows, &r.ReportPath, &summary, &stationarity, &stylized)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	if err := msgpack.Unmarshal(summary, &r.Summary); err != nil {
		return nil, fmt.Errorf("decode summary table: %w", err)
	}
	if err := msgpack.Unmarshal(stationarity, &r.Stationarity); err != nil {
		return nil, fmt.Errorf("decode stationarity table: %w", err)
	}
	if err := msgpack.Unmarshal(stylized, &r.Stylized); err != nil {
		return nil, fmt.Errorf("decode stylized facts table: %w", err)
	}
	return r, nil
}
