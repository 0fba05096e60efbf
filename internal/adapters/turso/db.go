// Package turso persists discovery run history in a libsql database.
package turso

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/go-libsql"
)

const schema = `
CREATE TABLE IF NOT EXISTS discovery_runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	sessions_new INTEGER NOT NULL,
	sessions_modified INTEGER NOT NULL,
	sessions_unchanged INTEGER NOT NULL,
	sessions_excluded INTEGER NOT NULL,
	total_projects INTEGER NOT NULL,
	total_sessions INTEGER NOT NULL,
	patterns_found INTEGER NOT NULL,
	noise_filtered INTEGER NOT NULL,
	candidates_ranked INTEGER NOT NULL,
	duplicates_dropped INTEGER NOT NULL,
	epsilon REAL NOT NULL,
	clustering_degraded INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_candidates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES discovery_runs(id) ON DELETE CASCADE,
	rank INTEGER NOT NULL,
	pattern_key TEXT NOT NULL,
	suggested_name TEXT NOT NULL,
	score REAL NOT NULL,
	occurrences INTEGER NOT NULL,
	project_count INTEGER NOT NULL,
	session_count INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_candidates_run ON run_candidates(run_id);
`

// NewDB opens the run-history database at the given URL (typically a
// file: path under the data directory) and ensures the schema exists.
func NewDB(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("libsql", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	// The driver executes one statement per call, so the schema is split
	// on semicolons.
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}
	return db, nil
}
