package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/benchrig/rigcheck/internal/harness"
)

// Options configures history behaviour.
type Options struct {
	// RunRetention bounds how many runs are kept. Older runs and their
	// results are pruned on insert. Defaults to 100.
	RunRetention int
}

// Store wraps sqlite persistence for run history so stats survive process
// restarts on the bench host.
type Store struct {
	db       *sql.DB
	runLimit int
}

// RunSummary describes one persisted run.
type RunSummary struct {
	ID         int64     `json:"id"`
	Request    string    `json:"request"`
	StartedAt  time.Time `json:"started_at"`
	Total      int       `json:"total"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	DurationMS int64     `json:"duration_ms"`
}

// Open initialises a sqlite store with WAL enabled and required schema.
func Open(path string, opts Options) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := configureSQLite(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	runLimit := opts.RunRetention
	if runLimit <= 0 {
		runLimit = 100
	}

	store := &Store{db: db, runLimit: runLimit}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func configureSQLite(db *sql.DB) error {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	return nil
}

func (s *Store) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS check_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL,
			section_id TEXT NOT NULL,
			check_name TEXT NOT NULL,
			passed INTEGER NOT NULL,
			message TEXT,
			duration_ms INTEGER,
			occurred_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_check_results_run ON check_results (run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_check_results_section ON check_results (section_id, occurred_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// RecordRun persists the results of one run and enforces retention. Skipped
// sections contribute no rows.
func (s *Store) RecordRun(ctx context.Context, request string, startedAt time.Time, reports []harness.SectionReport) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var res sql.Result
	res, err = tx.ExecContext(ctx, `
		INSERT INTO runs (request, started_at) VALUES (?, ?)
	`, request, startedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	occurred := startedAt.UTC()
	for _, rep := range reports {
		if rep.Status == harness.StatusSkipped {
			continue
		}
		for _, cr := range rep.Results {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO check_results (run_id, section_id, check_name, passed, message, duration_ms, occurred_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, runID, rep.SectionID, cr.Name, boolToInt(cr.Passed), cr.Message, cr.DurationMS, occurred)
			if err != nil {
				return 0, fmt.Errorf("insert check_result: %w", err)
			}
		}
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM check_results WHERE run_id NOT IN (
			SELECT id FROM runs ORDER BY id DESC LIMIT ?
		)
	`, s.runLimit)
	if err != nil {
		return 0, fmt.Errorf("prune check_results: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY id DESC LIMIT ?
		)
	`, s.runLimit)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// Totals folds every stored check result into aggregate counts.
func (s *Store) Totals(ctx context.Context) (harness.Totals, error) {
	var t harness.Totals
	if s == nil || s.db == nil {
		return t, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(passed), 0), COALESCE(SUM(duration_ms), 0)
		FROM check_results
	`)
	var total, passed int
	var durationMS int64
	if err := row.Scan(&total, &passed, &durationMS); err != nil {
		return t, fmt.Errorf("query totals: %w", err)
	}

	t.Total = total
	t.Passed = passed
	t.Failed = total - passed
	t.TotalDuration = time.Duration(durationMS) * time.Millisecond
	t.TotalDurationMS = durationMS
	if total > 0 {
		t.AverageDuration = t.TotalDuration / time.Duration(total)
	}
	t.AverageDurationMS = t.AverageDuration.Milliseconds()
	return t, nil
}

// Clear removes all stored runs and results.
func (s *Store) Clear(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM check_results`); err != nil {
		return fmt.Errorf("clear check_results: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs`); err != nil {
		return fmt.Errorf("clear runs: %w", err)
	}
	return nil
}

// RecentRuns returns the latest runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.request, r.started_at,
			COUNT(c.id), COALESCE(SUM(c.passed), 0), COALESCE(SUM(c.duration_ms), 0)
		FROM runs r
		LEFT JOIN check_results c ON c.run_id = r.id
		GROUP BY r.id
		ORDER BY r.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var run RunSummary
		var total, passed int
		if err := rows.Scan(&run.ID, &run.Request, &run.StartedAt, &total, &passed, &run.DurationMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Total = total
		run.Passed = passed
		run.Failed = total - passed
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
