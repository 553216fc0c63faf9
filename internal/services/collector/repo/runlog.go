package repo

import (
	"context"

	"github.com/iliebabcenco/big-collector/internal/platform/store"
	"github.com/iliebabcenco/big-collector/internal/services/collector/domain"
	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

// RunLog is the append-only run history, kept in ClickHouse
type RunLog struct {
	ch store.Clickhouse
}

// NewRunLog wraps the ClickHouse seam
func NewRunLog(ch store.Clickhouse) *RunLog { return &RunLog{ch: ch} }

const runLogTable = `collector_run_log
	(run_id, source_type, status, items_collected, new_problems, duplicates,
	duration_ms, error, started_at, completed_at)`

// Append implements domain.RunLogPort
func (r *RunLog) Append(ctx context.Context, e domain.RunLogEntry) error {
	if r == nil || r.ch == nil {
		return nil // run history is best effort when CH is disabled
	}
	return r.ch.Insert(ctx, runLogTable, [][]any{{
		e.RunID, e.SourceType.String(), string(e.Status),
		int32(e.ItemsCollected), int32(e.NewProblems), int32(e.Duplicates),
		e.DurationMs, e.Error, e.StartedAt, e.CompletedAt,
	}})
}

const recentRunsSQL = `
	SELECT run_id, source_type, status, items_collected, new_problems, duplicates,
		duration_ms, error, started_at, completed_at
	FROM collector_run_log
	ORDER BY started_at DESC
	LIMIT ?`

// Recent implements domain.RunLogPort, newest first
func (r *RunLog) Recent(ctx context.Context, limit int) ([]domain.RunLogEntry, error) {
	if r == nil || r.ch == nil {
		return nil, nil
	}
	rows, err := r.ch.Query(ctx, recentRunsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RunLogEntry
	for rows.Next() {
		var (
			e                  domain.RunLogEntry
			src, status        string
			items, probs, dups int32
		)
		if err := rows.Scan(
			&e.RunID, &src, &status, &items, &probs, &dups,
			&e.DurationMs, &e.Error, &e.StartedAt, &e.CompletedAt,
		); err != nil {
			return nil, err
		}
		e.SourceType = sigdomain.SourceType(src)
		e.Status = domain.Status(status)
		e.ItemsCollected = int(items)
		e.NewProblems = int(probs)
		e.Duplicates = int(dups)
		out = append(out, e)
	}
	return out, rows.Err()
}
