// Package tracker persists an upstream-call log for observability.
package tracker

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/pantainos/fmp/pkg/models"
)

// Tracker records and summarizes upstream API calls.
type Tracker interface {
	// Record stores one call record.
	Record(ctx context.Context, rec models.CallRecord) error
	// Summary returns per-endpoint aggregates, busiest endpoints first.
	Summary(ctx context.Context) ([]models.CallSummary, error)
	// Close releases resources.
	Close() error
}

// SQLiteTracker implements Tracker with a SQLite database.
type SQLiteTracker struct {
	db *sql.DB
}

const createTable = `
CREATE TABLE IF NOT EXISTS api_calls (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	endpoint TEXT NOT NULL,
	outcome TEXT NOT NULL,
	status_code INTEGER NOT NULL DEFAULT 0,
	latency_ms INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_api_calls_endpoint ON api_calls(endpoint, created_at);
`

// New creates a SQLiteTracker and runs auto-migration.
func New(dbPath string) (*SQLiteTracker, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open tracker db: %w", err)
	}

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate tracker db: %w", err)
	}

	return &SQLiteTracker{db: db}, nil
}

// Record stores one call record.
func (t *SQLiteTracker) Record(ctx context.Context, rec models.CallRecord) error {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO api_calls (endpoint, outcome, status_code, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.Endpoint, rec.Outcome, rec.StatusCode, rec.LatencyMs, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record call: %w", err)
	}
	return nil
}

// Summary aggregates call records per endpoint. Cache hits are counted
// separately and excluded from the latency average, which only covers
// calls that actually went to the network.
func (t *SQLiteTracker) Summary(ctx context.Context) ([]models.CallSummary, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT endpoint,
		       COUNT(*),
		       SUM(CASE WHEN outcome = 'success' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN outcome IN ('transient', 'permanent', 'malformed') THEN 1 ELSE 0 END),
		       SUM(CASE WHEN outcome = 'cache_hit' THEN 1 ELSE 0 END),
		       COALESCE(AVG(CASE WHEN outcome != 'cache_hit' THEN latency_ms END), 0)
		FROM api_calls
		GROUP BY endpoint
		ORDER BY COUNT(*) DESC, endpoint`)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var out []models.CallSummary
	for rows.Next() {
		var s models.CallSummary
		if err := rows.Scan(&s.Endpoint, &s.Calls, &s.Successes, &s.Failures, &s.CacheHits, &s.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close releases the database connection.
func (t *SQLiteTracker) Close() error {
	return t.db.Close()
}
