// Package history keeps a per-asset record of past runs in SQLite. It is
// reporting only: the working directory remains the single source of truth
// for what stage an asset is in.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"otrpipe/internal/fileutil"
	"otrpipe/internal/services"
)

// Outcome classifies how an asset fared in one stage of one run.
type Outcome string

const (
	OutcomeDone     Outcome = "done"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeNotFound Outcome = "not-found"
	OutcomeFailed   Outcome = "failed"
)

// Record is one asset outcome within a run.
type Record struct {
	RunID      string
	AssetKey   string
	Stage      string
	Outcome    Outcome
	Detail     string
	RecordedAt time.Time
}

// Run describes one pipeline invocation.
type Run struct {
	ID         string
	WorkingDir string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is open
}

// Store manages history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    working_dir TEXT NOT NULL,
    started_at  TEXT NOT NULL,
    finished_at TEXT
);
CREATE TABLE IF NOT EXISTS assets (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id      TEXT NOT NULL REFERENCES runs(id),
    asset_key   TEXT NOT NULL,
    stage       TEXT NOT NULL,
    outcome     TEXT NOT NULL,
    detail      TEXT,
    recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assets_run ON assets(run_id);
`

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "history", "open", "", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "history", "open", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrFilesystem, "history", "open",
				fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrFilesystem, "history", "open", "apply schema", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun opens a new run and returns its ID.
func (s *Store) BeginRun(ctx context.Context, workingDir string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, working_dir, started_at) VALUES (?, ?, ?)`,
		id, workingDir, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", services.Wrap(services.ErrFilesystem, "history", "begin-run", "", err)
	}
	return id, nil
}

// FinishRun stamps the run's end time.
func (s *Store) FinishRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), runID)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "history", "finish-run", "", err)
	}
	return nil
}

// Record stores one asset outcome.
func (s *Store) Record(ctx context.Context, rec Record) error {
	at := rec.RecordedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assets (run_id, asset_key, stage, outcome, detail, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.AssetKey, rec.Stage, string(rec.Outcome), rec.Detail,
		at.Format(time.RFC3339Nano))
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "history", "record", rec.AssetKey, err)
	}
	return nil
}

// Recent returns the newest asset records, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, asset_key, stage, outcome, COALESCE(detail, ''), recorded_at
         FROM assets ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "history", "recent", "", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var outcome, recordedAt string
		if err := rows.Scan(&rec.RunID, &rec.AssetKey, &rec.Stage, &outcome, &rec.Detail, &recordedAt); err != nil {
			return nil, services.Wrap(services.ErrFilesystem, "history", "recent", "scan", err)
		}
		rec.Outcome = Outcome(outcome)
		rec.RecordedAt, _ = time.Parse(time.RFC3339Nano, recordedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "history", "recent", "", err)
	}
	return records, nil
}

// Runs returns the newest runs, most recent first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, working_dir, started_at, COALESCE(finished_at, '')
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "history", "runs", "", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(&run.ID, &run.WorkingDir, &started, &finished); err != nil {
			return nil, services.Wrap(services.ErrFilesystem, "history", "runs", "scan", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "history", "runs", "", err)
	}
	return runs, nil
}
