// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger persists batch run history in SQLite. Each batch run
// gets one row in runs plus one row per processed file, so failures can
// be reviewed after the fact without re-running recognition.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mkostiv/scorebatch/internal/batch"
	"github.com/mkostiv/scorebatch/pkg/types"
)

// Store manages the run history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the configured ledger database, creating
// parent directories and the schema as needed.
func Open(cfg types.LedgerConfig) (*Store, error) {
	path := cfg.Path
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			root TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			recognized INTEGER NOT NULL DEFAULT 0,
			recognize_failed INTEGER NOT NULL DEFAULT 0,
			convert_failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			source TEXT NOT NULL,
			normalized TEXT,
			status TEXT NOT NULL,
			exit_code INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_run_id ON files(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun records the start of a batch over root and returns the run ID.
func (s *Store) BeginRun(ctx context.Context, root string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (root, started_at) VALUES (?, ?)`,
		root, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}
	return id, nil
}

// RecordFile stores the outcome of one file under a run.
func (s *Store) RecordFile(ctx context.Context, runID int64, o batch.FileOutcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (run_id, source, normalized, status, exit_code, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, o.Source, o.Normalized, string(o.Status), o.ExitCode, o.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording file outcome: %w", err)
	}
	return nil
}

// FinishRun stamps the run's end time and result counts.
func (s *Store) FinishRun(ctx context.Context, runID int64, r batch.Result) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, recognized = ?, recognize_failed = ?, convert_failed = ?
		 WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		r.Recognized, r.RecognizeFailed, r.ConvertFailed, runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// RunSummary is one row of run history.
type RunSummary struct {
	ID              int64  `json:"id" yaml:"id"`
	Root            string `json:"root" yaml:"root"`
	StartedAt       string `json:"started_at" yaml:"started_at"`
	FinishedAt      string `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Recognized      int    `json:"recognized" yaml:"recognized"`
	RecognizeFailed int    `json:"recognize_failed" yaml:"recognize_failed"`
	ConvertFailed   int    `json:"convert_failed" yaml:"convert_failed"`
}

// FileRecord is one per-file outcome row.
type FileRecord struct {
	Source     string `json:"source" yaml:"source"`
	Normalized string `json:"normalized,omitempty" yaml:"normalized,omitempty"`
	Status     string `json:"status" yaml:"status"`
	ExitCode   int    `json:"exit_code" yaml:"exit_code"`
	DurationMS int64  `json:"duration_ms" yaml:"duration_ms"`
}

// Runs returns the most recent runs, newest first, up to limit.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, started_at, COALESCE(finished_at, ''), recognized, recognize_failed, convert_failed
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Root, &r.StartedAt, &r.FinishedAt,
			&r.Recognized, &r.RecognizeFailed, &r.ConvertFailed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Files returns the per-file outcomes of one run in processing order.
func (s *Store) Files(ctx context.Context, runID int64) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, COALESCE(normalized, ''), status, exit_code, duration_ms
		 FROM files WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying files for run %d: %w", runID, err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.Source, &f.Normalized, &f.Status, &f.ExitCode, &f.DurationMS); err != nil {
			return nil, fmt.Errorf("scanning file record: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// RunRecorder adapts a Store plus a run ID to batch.Recorder. Record
// errors are reported on stderr but never interrupt the batch.
type RunRecorder struct {
	store *Store
	runID int64
}

// NewRunRecorder begins a run and returns its recorder.
func NewRunRecorder(ctx context.Context, s *Store, root string) (*RunRecorder, error) {
	id, err := s.BeginRun(ctx, root)
	if err != nil {
		return nil, err
	}
	return &RunRecorder{store: s, runID: id}, nil
}

// RunID returns the ledger ID of the recorded run.
func (r *RunRecorder) RunID() int64 { return r.runID }

func (r *RunRecorder) Record(o batch.FileOutcome) {
	if err := r.store.RecordFile(context.Background(), r.runID, o); err != nil {
		fmt.Fprintf(os.Stderr, "warning: ledger write failed for %s: %v\n", o.Source, err)
	}
}

// Finish stamps the run's final counts.
func (r *RunRecorder) Finish(ctx context.Context, result batch.Result) error {
	return r.store.FinishRun(ctx, r.runID, result)
}
