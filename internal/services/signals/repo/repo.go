// Package repo provides the signals repository implementation.
package repo

import (
	"context"

	"github.com/iliebabcenco/big-collector/internal/modkit/repokit"
	"github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the signals repository
type Storage interface {
	Insert(ctx context.Context, sourceType domain.SourceType, sourceID, rawText string) (bool, error)
	Exists(ctx context.Context, sourceType domain.SourceType, sourceID string) (bool, error)
	ListUnprocessed(ctx context.Context) ([]domain.Signal, error)
	MarkProcessed(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, reason string) error
	ActivePrompt(ctx context.Context, name string) (string, error)
}

const insertSQL = `
	INSERT INTO collector_signal (source_type, source_id, raw_text)
	VALUES ($1, $2, $3)
	ON CONFLICT (source_type, source_id) DO NOTHING`

// Insert implements Storage. Returns false when the signal was already present
func (s *pg) Insert(ctx context.Context, sourceType domain.SourceType, sourceID, rawText string) (bool, error) {
	tag, err := s.q.Exec(ctx, insertSQL, string(sourceType), sourceID, rawText)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

const existsSQL = `
	SELECT EXISTS (
		SELECT 1 FROM collector_signal WHERE source_type = $1 AND source_id = $2
	)`

// Exists implements Storage
func (s *pg) Exists(ctx context.Context, sourceType domain.SourceType, sourceID string) (bool, error) {
	var found bool
	err := s.q.QueryRow(ctx, existsSQL, string(sourceType), sourceID).Scan(&found)
	return found, err
}

const listUnprocessedSQL = `
	SELECT id, source_type, source_id, raw_text, processed, processed_at, error, created_at
	FROM collector_signal
	WHERE processed = FALSE
	ORDER BY created_at ASC`

// ListUnprocessed implements Storage, oldest first
func (s *pg) ListUnprocessed(ctx context.Context) ([]domain.Signal, error) {
	rows, err := s.q.Query(ctx, listUnprocessedSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Signal
	for rows.Next() {
		var sig domain.Signal
		if err := rows.Scan(
			&sig.ID, &sig.SourceType, &sig.SourceID, &sig.RawText,
			&sig.Processed, &sig.ProcessedAt, &sig.Error, &sig.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

const markProcessedSQL = `
	UPDATE collector_signal
	SET processed = TRUE, processed_at = now(), error = NULL
	WHERE id = $1`

// MarkProcessed implements Storage
func (s *pg) MarkProcessed(ctx context.Context, id int64) error {
	_, err := s.q.Exec(ctx, markProcessedSQL, id)
	return err
}

const markFailedSQL = `
	UPDATE collector_signal
	SET processed = TRUE, processed_at = now(), error = $2
	WHERE id = $1`

// MarkFailed implements Storage. Failed signals still leave the queue
func (s *pg) MarkFailed(ctx context.Context, id int64, reason string) error {
	_, err := s.q.Exec(ctx, markFailedSQL, id, reason)
	return err
}

const activePromptSQL = `
	SELECT system_prompt FROM llm_prompt WHERE prompt_name = $1 AND active = TRUE`

// ActivePrompt implements Storage. Missing prompts resolve to ""
func (s *pg) ActivePrompt(ctx context.Context, name string) (string, error) {
	rows, err := s.q.Query(ctx, activePromptSQL, name)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	if !rows.Next() {
		return "", rows.Err()
	}
	var prompt string
	if err := rows.Scan(&prompt); err != nil {
		return "", err
	}
	return prompt, rows.Err()
}
