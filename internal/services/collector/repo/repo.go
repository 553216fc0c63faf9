// Package repo provides the collector config and target repositories.
package repo

import (
	"context"

	"github.com/iliebabcenco/big-collector/internal/modkit/repokit"
	"github.com/iliebabcenco/big-collector/internal/services/collector/domain"
	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the collector repository
type Storage interface {
	GetConfig(ctx context.Context, src sigdomain.SourceType) (domain.RunConfig, bool, error)
	ListConfigs(ctx context.Context) ([]domain.RunConfig, error)
	AcquireRun(ctx context.Context, src sigdomain.SourceType) (bool, error)
	SetStatus(ctx context.Context, src sigdomain.SourceType, st domain.Status, lastError *string) error
	SetResult(ctx context.Context, src sigdomain.SourceType, r domain.Result) error
	ResetStale(ctx context.Context, reason string) (int64, error)
	EnabledTargets(ctx context.Context, src sigdomain.SourceType) ([]domain.Target, error)
}

const configCols = `
	id, source_type, enabled, status, last_run_at, last_cursor, last_error,
	items_last_run, max_items, settings, created_at, updated_at`

func scanConfig(row repokit.Row) (domain.RunConfig, error) {
	var c domain.RunConfig
	err := row.Scan(
		&c.ID, &c.SourceType, &c.Enabled, &c.Status, &c.LastRunAt, &c.LastCursor,
		&c.LastError, &c.ItemsLastRun, &c.MaxItems, &c.Settings, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

const getConfigSQL = `SELECT ` + configCols + ` FROM collector_config WHERE source_type = $1`

// GetConfig implements Storage
func (s *pg) GetConfig(ctx context.Context, src sigdomain.SourceType) (domain.RunConfig, bool, error) {
	rows, err := s.q.Query(ctx, getConfigSQL, string(src))
	if err != nil {
		return domain.RunConfig{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return domain.RunConfig{}, false, rows.Err()
	}
	c, err := scanConfig(rows)
	if err != nil {
		return domain.RunConfig{}, false, err
	}
	return c, true, rows.Err()
}

const listConfigsSQL = `SELECT ` + configCols + ` FROM collector_config ORDER BY source_type ASC`

// ListConfigs implements Storage
func (s *pg) ListConfigs(ctx context.Context) ([]domain.RunConfig, error) {
	rows, err := s.q.Query(ctx, listConfigsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RunConfig
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const acquireRunSQL = `
	UPDATE collector_config
	SET status = 'RUNNING', last_error = NULL, updated_at = now()
	WHERE source_type = $1 AND status <> 'RUNNING'`

// AcquireRun implements Storage. The WHERE clause is the compare-and-set:
// zero rows updated means another run already holds the RUNNING status
func (s *pg) AcquireRun(ctx context.Context, src sigdomain.SourceType) (bool, error) {
	tag, err := s.q.Exec(ctx, acquireRunSQL, string(src))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

const setStatusSQL = `
	UPDATE collector_config
	SET status = $2, last_error = $3, updated_at = now()
	WHERE source_type = $1`

// SetStatus implements Storage
func (s *pg) SetStatus(ctx context.Context, src sigdomain.SourceType, st domain.Status, lastError *string) error {
	_, err := s.q.Exec(ctx, setStatusSQL, string(src), string(st), lastError)
	return err
}

const setResultSQL = `
	UPDATE collector_config
	SET status = $2, last_run_at = now(), items_last_run = $3,
		last_cursor = COALESCE($4, last_cursor), last_error = $5, updated_at = now()
	WHERE source_type = $1`

// SetResult implements Storage and records the outcome of a finished run
func (s *pg) SetResult(ctx context.Context, src sigdomain.SourceType, r domain.Result) error {
	_, err := s.q.Exec(ctx, setResultSQL,
		string(src), string(r.Status), r.ItemsCollected, r.LastCursor, r.Error)
	return err
}

const resetStaleSQL = `
	UPDATE collector_config
	SET status = 'IDLE', last_error = $1, updated_at = now()
	WHERE status = 'RUNNING'`

// ResetStale implements Storage. Run at startup to clear RUNNING rows left
// behind by a crashed process
func (s *pg) ResetStale(ctx context.Context, reason string) (int64, error) {
	tag, err := s.q.Exec(ctx, resetStaleSQL, reason)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const enabledTargetsSQL = `
	SELECT id, source_type, target_type, target_value, enabled, priority, metadata, created_at, updated_at
	FROM collector_target
	WHERE source_type = $1 AND enabled = TRUE
	ORDER BY priority DESC, id ASC`

// EnabledTargets implements Storage
func (s *pg) EnabledTargets(ctx context.Context, src sigdomain.SourceType) ([]domain.Target, error) {
	rows, err := s.q.Query(ctx, enabledTargetsSQL, string(src))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Target
	for rows.Next() {
		var t domain.Target
		if err := rows.Scan(
			&t.ID, &t.SourceType, &t.TargetType, &t.TargetValue, &t.Enabled,
			&t.Priority, &t.Metadata, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
