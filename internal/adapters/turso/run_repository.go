package turso

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/skillscout/internal/discover"
	"github.com/emiliopalmerini/skillscout/internal/util"
)

// RunSummary is one persisted discovery run, as listed by `skillscout
// runs`.
type RunSummary struct {
	ID                 string
	StartedAt          time.Time
	FinishedAt         time.Time
	SessionsProcessed  int
	PatternsFound      int
	CandidatesRanked   int
	Epsilon            float64
	ClusteringDegraded bool
}

// RunRepository stores discovery reports and their ranked candidates.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a repository over an open database.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun persists one report with its candidates in a single
// transaction. Returns the generated run ID.
func (r *RunRepository) SaveRun(ctx context.Context, report *discover.Report) (string, error) {
	id := uuid.NewString()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO discovery_runs (
			id, started_at, finished_at,
			sessions_new, sessions_modified, sessions_unchanged, sessions_excluded,
			total_projects, total_sessions, patterns_found, noise_filtered,
			candidates_ranked, duplicates_dropped, epsilon, clustering_degraded
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		report.StartedAt.Format(time.RFC3339),
		report.FinishedAt.Format(time.RFC3339),
		report.Stats.New,
		report.Stats.Modified,
		report.Stats.Unchanged,
		report.Stats.Excluded,
		report.TotalProjects,
		report.TotalSessions,
		report.PatternsFound,
		report.NoiseFiltered,
		len(report.Candidates),
		report.DuplicatesDropped,
		report.Epsilon,
		util.BoolToInt64(report.ClusteringDegraded),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for i, c := range report.Candidates {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_candidates (
				run_id, rank, pattern_key, suggested_name,
				score, occurrences, project_count, session_count
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i+1, c.Key, c.SuggestedName,
			c.Score, c.Occurrences, c.ProjectCount, c.SessionCount,
		)
		if err != nil {
			return "", fmt.Errorf("insert candidate %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at,
			sessions_new + sessions_modified,
			patterns_found, candidates_ranked, epsilon, clustering_degraded
		FROM discovery_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var started, finished string
		var degraded int64
		if err := rows.Scan(
			&run.ID, &started, &finished,
			&run.SessionsProcessed, &run.PatternsFound,
			&run.CandidatesRanked, &run.Epsilon, &degraded,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = util.ParseTimeRFC3339(started)
		run.FinishedAt = util.ParseTimeRFC3339(finished)
		run.ClusteringDegraded = degraded != 0
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
