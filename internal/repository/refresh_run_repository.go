package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

// DefaultRefreshRunLimit caps ListRefreshRuns when no positive limit is given.
const DefaultRefreshRunLimit = 20

// RefreshRunRepository records orchestrator runs in the refresh_run table.
type RefreshRunRepository struct {
	db *sql.DB
}

// NewRefreshRunRepository creates a new RefreshRunRepository with the provided database connection.
func NewRefreshRunRepository(db *sql.DB) *RefreshRunRepository {
	return &RefreshRunRepository{db: db}
}

// InsertRefreshRun stores one run.
func (r *RefreshRunRepository) InsertRefreshRun(ctx context.Context, run model.RefreshRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_run (id, kind, started_at, finished_at, succeeded, failed, fallback_used, committed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		string(run.Kind),
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.Succeeded,
		run.Failed,
		run.FallbackUsed,
		run.Committed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert refresh run: %w", err)
	}
	return nil
}

// ListRefreshRuns returns the most recent runs, newest first.
func (r *RefreshRunRepository) ListRefreshRuns(ctx context.Context, limit int) ([]model.RefreshRun, error) {
	if limit <= 0 {
		limit = DefaultRefreshRunLimit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, started_at, finished_at, succeeded, failed, fallback_used, committed
		FROM refresh_run
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query refresh_run table: %w", err)
	}
	defer rows.Close()

	runs := []model.RefreshRun{}
	for rows.Next() {
		var (
			run                   model.RefreshRun
			kind                  string
			startedStr, finishStr string
		)
		if err := rows.Scan(&run.ID, &kind, &startedStr, &finishStr, &run.Succeeded, &run.Failed, &run.FallbackUsed, &run.Committed); err != nil {
			return nil, fmt.Errorf("failed to scan refresh_run row: %w", err)
		}
		run.Kind = model.RefreshKind(kind)
		if run.StartedAt, err = ParseTime(startedStr); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = ParseTime(finishStr); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate refresh_run rows: %w", err)
	}
	return runs, nil
}
