// Package history persists completed analysis runs to a DuckDB file so the
// upload view can list recent analyses across server restarts.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/jeevamani007/data-analysis-sub000/internal/models"
)

// Outcome labels for a recorded run.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Record is one finished run.
type Record struct {
	RunID        string       `json:"runId"`
	SessionID    string       `json:"sessionId,omitempty"`
	StartedAt    time.Time    `json:"startedAt"`
	FileCount    int          `json:"fileCount"`
	StageReached models.Stage `json:"stageReached"`
	Outcome      string       `json:"outcome"`
	DurationMs   int64        `json:"durationMs"`
}

// Store is a DuckDB-backed history log.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	connector, err := duckdb.NewConnector(path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating DuckDB connector: %w", err)
	}
	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id        VARCHAR PRIMARY KEY,
			session_id    VARCHAR,
			started_at    TIMESTAMP NOT NULL,
			file_count    INTEGER NOT NULL,
			stage_reached VARCHAR NOT NULL,
			outcome       VARCHAR NOT NULL,
			duration_ms   BIGINT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating runs table: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Record inserts one finished run.
func (s *Store) Record(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(run_id, session_id, started_at, file_count, stage_reached, outcome, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.SessionID, rec.StartedAt, rec.FileCount,
		string(rec.StageReached), rec.Outcome, rec.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", rec.RunID, err)
	}
	return nil
}

// Recent returns the most recently started runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, session_id, started_at, file_count, stage_reached, outcome, duration_ms
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying run history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var stage string
		var sessionID sql.NullString
		if err := rows.Scan(&rec.RunID, &sessionID, &rec.StartedAt, &rec.FileCount,
			&stage, &rec.Outcome, &rec.DurationMs); err != nil {
			return nil, fmt.Errorf("scanning run history row: %w", err)
		}
		rec.SessionID = sessionID.String
		rec.StageReached = models.Stage(stage)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
