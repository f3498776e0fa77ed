package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/faultlinehq/faultline/internal/models"
	"github.com/faultlinehq/faultline/internal/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id            TEXT PRIMARY KEY,
	started_at    INTEGER NOT NULL,
	duration_ms   INTEGER NOT NULL,
	window_events INTEGER NOT NULL,
	pattern_count INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON analysis_runs(started_at);

CREATE TABLE IF NOT EXISTS run_patterns (
	run_id     TEXT NOT NULL,
	pattern_id TEXT NOT NULL,
	type       TEXT NOT NULL,
	confidence REAL NOT NULL,
	payload    TEXT NOT NULL,
	PRIMARY KEY (run_id, pattern_id)
);

CREATE TABLE IF NOT EXISTS advisories (
	id           TEXT PRIMARY KEY,
	created_at   INTEGER NOT NULL,
	event_count  INTEGER NOT NULL,
	threshold    INTEGER NOT NULL,
	triggered_by TEXT NOT NULL,
	message      TEXT NOT NULL
);
`

const (
	defaultRunLimit    = 20
	slowWriteThreshold = 250 * time.Millisecond
)

// SQLiteArchive persists runs, their patterns and advisories to a local
// SQLite database. A single connection keeps writers serialized, which is
// plenty for the write rates here.
type SQLiteArchive struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteArchive(ctx context.Context, path string, logger *slog.Logger) (*SQLiteArchive, error) {
	if logger == nil {
		logger = utils.NewSilentLogger()
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, utils.NewAppError("archive.open", "open sqlite database", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, utils.NewAppError("archive.open", "ping sqlite database", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, utils.NewAppError("archive.open", "apply schema", err)
	}
	logger.Info("archive ready", "path", path)
	return &SQLiteArchive{db: db, logger: logger}, nil
}

// SaveRun stores the run row and its patterns in one transaction.
func (a *SQLiteArchive) SaveRun(ctx context.Context, run Run, patterns []models.ErrorPattern) error {
	started := time.Now()
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return utils.NewAppError("archive.save_run", "begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, started_at, duration_ms, window_events, pattern_count)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.Unix(), run.DurationMs, run.WindowEvents, run.PatternCount)
	if err != nil {
		return utils.NewAppError("archive.save_run", "insert run", err)
	}

	for _, pattern := range patterns {
		payload, err := json.Marshal(pattern)
		if err != nil {
			return utils.NewAppError("archive.save_run", "encode pattern", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO run_patterns (run_id, pattern_id, type, confidence, payload)
			 VALUES (?, ?, ?, ?, ?)`,
			run.ID, pattern.PatternID, string(pattern.Type), pattern.ConfidenceScore, string(payload))
		if err != nil {
			return utils.NewAppError("archive.save_run", "insert pattern", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return utils.NewAppError("archive.save_run", "commit", err)
	}
	if elapsed := time.Since(started); elapsed > slowWriteThreshold {
		a.logger.Warn("slow archive write", "run_id", run.ID, "elapsed", elapsed)
	}
	return nil
}

func (a *SQLiteArchive) SaveAdvisory(ctx context.Context, advisory models.Advisory) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO advisories (id, created_at, event_count, threshold, triggered_by, message)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		advisory.ID, advisory.Timestamp.Unix(), advisory.EventCount, advisory.Threshold,
		advisory.TriggeredBy, advisory.Message)
	if err != nil {
		return utils.NewAppError("archive.save_advisory", "insert advisory", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (a *SQLiteArchive) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, window_events, pattern_count
		 FROM analysis_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, utils.NewAppError("archive.recent_runs", "query runs", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var run Run
		var started int64
		if err := rows.Scan(&run.ID, &started, &run.DurationMs, &run.WindowEvents, &run.PatternCount); err != nil {
			return nil, utils.NewAppError("archive.recent_runs", "scan run", err)
		}
		run.StartedAt = time.Unix(started, 0).UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.NewAppError("archive.recent_runs", "iterate runs", err)
	}
	return runs, nil
}

func (a *SQLiteArchive) Close() error { return a.db.Close() }
