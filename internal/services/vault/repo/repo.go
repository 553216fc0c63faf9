// Package repo provides the problem vault repository implementation.
package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliebabcenco/big-collector/internal/modkit/repokit"
	perr "github.com/iliebabcenco/big-collector/internal/platform/errors"
	"github.com/iliebabcenco/big-collector/internal/services/vault/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the problem vault repository
type Storage interface {
	SearchSimilar(ctx context.Context, vec string, maxDistance float64, limit int) ([]domain.Entry, error)
	DistanceTo(ctx context.Context, id int64, vec string) (float64, bool, error)
	InsertEntry(ctx context.Context, d domain.Draft, confidence float64) (domain.Entry, error)
	InsertEvidence(ctx context.Context, entryID int64, ev domain.EvidenceDraft) error
	BumpSourceCount(ctx context.Context, id int64) (int, error)
	SetConfidence(ctx context.Context, id int64, confidence float64) error
	SetScores(ctx context.Context, id int64, s domain.Scores) error
	Get(ctx context.Context, id int64) (domain.Entry, error)
	ListEvidence(ctx context.Context, entryID int64) ([]domain.Evidence, error)
	List(ctx context.Context, f domain.Filter) ([]domain.Entry, error)
}

// entryCols is every problem_vault column except the embedding, which
// never needs to round-trip through Go
const entryCols = `
	pv.id, pv.title, pv.description, pv.problem_type, pv.industry, pv.target_customer,
	pv.score_demand, pv.score_pain, pv.score_growth, pv.score_tractability, pv.score_frequency,
	pv.overall_score, pv.confidence, pv.source_count, pv.is_public,
	pv.first_seen_at, pv.last_seen_at, pv.created_at, pv.updated_at`

func scanEntry(row repokit.Row) (domain.Entry, error) {
	var e domain.Entry
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.ProblemType, &e.Industry, &e.TargetCustomer,
		&e.ScoreDemand, &e.ScorePain, &e.ScoreGrowth, &e.ScoreTract, &e.ScoreFrequency,
		&e.OverallScore, &e.Confidence, &e.SourceCount, &e.IsPublic,
		&e.FirstSeenAt, &e.LastSeenAt, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

const searchSimilarSQL = `
	SELECT ` + entryCols + `
	FROM problem_vault pv
	WHERE pv.embedding IS NOT NULL
		AND (pv.embedding <=> cast($1 as vector)) < $2
	ORDER BY (pv.embedding <=> cast($1 as vector)) ASC
	LIMIT $3`

// SearchSimilar implements Storage using pgvector cosine distance
func (s *pg) SearchSimilar(ctx context.Context, vec string, maxDistance float64, limit int) ([]domain.Entry, error) {
	rows, err := s.q.Query(ctx, searchSimilarSQL, vec, maxDistance, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const distanceToSQL = `
	SELECT (pv.embedding <=> cast($2 as vector)) as distance
	FROM problem_vault pv
	WHERE pv.id = $1 AND pv.embedding IS NOT NULL`

// DistanceTo implements Storage. ok is false when the entry has no embedding
func (s *pg) DistanceTo(ctx context.Context, id int64, vec string) (float64, bool, error) {
	rows, err := s.q.Query(ctx, distanceToSQL, id, vec)
	if err != nil {
		return 0, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, false, rows.Err()
	}
	var d float64
	if err := rows.Scan(&d); err != nil {
		return 0, false, err
	}
	return d, true, rows.Err()
}

const insertEntrySQL = `
	INSERT INTO problem_vault
		(title, description, problem_type, industry, target_customer,
		source_count, confidence, embedding, first_seen_at, last_seen_at)
	VALUES ($1, $2, $3, $4, $5, 1, $6, cast($7 as vector), now(), now())
	RETURNING id, first_seen_at, last_seen_at, created_at, updated_at`

// InsertEntry implements Storage
func (s *pg) InsertEntry(ctx context.Context, d domain.Draft, confidence float64) (domain.Entry, error) {
	var vec *string
	if len(d.Embedding) > 0 {
		lit := d.Embedding.String()
		vec = &lit
	}

	e := domain.Entry{
		Title:          d.Title,
		Description:    d.Description,
		ProblemType:    d.ProblemType,
		Industry:       d.Industry,
		TargetCustomer: d.TargetCustomer,
		SourceCount:    1,
		Confidence:     confidence,
	}
	err := s.q.QueryRow(ctx, insertEntrySQL,
		d.Title, d.Description, d.ProblemType, d.Industry, d.TargetCustomer,
		confidence, vec,
	).Scan(&e.ID, &e.FirstSeenAt, &e.LastSeenAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.Entry{}, err
	}
	return e, nil
}

const insertEvidenceSQL = `
	INSERT INTO problem_evidence
		(problem_vault_id, source_type, source_url, raw_text, quote_text, platform_score, collected_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// InsertEvidence implements Storage
func (s *pg) InsertEvidence(ctx context.Context, entryID int64, ev domain.EvidenceDraft) error {
	_, err := s.q.Exec(ctx, insertEvidenceSQL,
		entryID, string(ev.SourceType), ev.SourceURL, ev.RawText, ev.QuoteText,
		ev.PlatformScore, ev.CollectedAt,
	)
	return err
}

const bumpSourceCountSQL = `
	UPDATE problem_vault
	SET source_count = source_count + 1, last_seen_at = now(), updated_at = now()
	WHERE id = $1
	RETURNING source_count`

// BumpSourceCount implements Storage and returns the new count
func (s *pg) BumpSourceCount(ctx context.Context, id int64) (int, error) {
	var n int
	if err := s.q.QueryRow(ctx, bumpSourceCountSQL, id).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

const setConfidenceSQL = `
	UPDATE problem_vault SET confidence = $2, updated_at = now() WHERE id = $1`

// SetConfidence implements Storage
func (s *pg) SetConfidence(ctx context.Context, id int64, confidence float64) error {
	_, err := s.q.Exec(ctx, setConfidenceSQL, id, confidence)
	return err
}

const setScoresSQL = `
	UPDATE problem_vault
	SET score_demand = $2, score_pain = $3, score_growth = $4,
		score_tractability = $5, score_frequency = $6, overall_score = $7,
		updated_at = now()
	WHERE id = $1`

// SetScores implements Storage
func (s *pg) SetScores(ctx context.Context, id int64, sc domain.Scores) error {
	_, err := s.q.Exec(ctx, setScoresSQL, id,
		sc.Demand, sc.Pain, sc.Gap, sc.Timing, sc.Feasibility, sc.Overall)
	return err
}

const getSQL = `SELECT ` + entryCols + ` FROM problem_vault pv WHERE pv.id = $1`

// Get implements Storage
func (s *pg) Get(ctx context.Context, id int64) (domain.Entry, error) {
	rows, err := s.q.Query(ctx, getSQL, id)
	if err != nil {
		return domain.Entry{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.Entry{}, err
		}
		return domain.Entry{}, perr.NotFoundf("vault entry %d not found", id)
	}
	return scanEntry(rows)
}

const listEvidenceSQL = `
	SELECT id, problem_vault_id, source_type, source_url, raw_text, quote_text, platform_score, collected_at
	FROM problem_evidence
	WHERE problem_vault_id = $1
	ORDER BY collected_at ASC, id ASC`

// ListEvidence implements Storage
func (s *pg) ListEvidence(ctx context.Context, entryID int64) ([]domain.Evidence, error) {
	rows, err := s.q.Query(ctx, listEvidenceSQL, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Evidence
	for rows.Next() {
		var ev domain.Evidence
		if err := rows.Scan(
			&ev.ID, &ev.EntryID, &ev.SourceType, &ev.SourceURL, &ev.RawText,
			&ev.QuoteText, &ev.PlatformScore, &ev.CollectedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// List implements Storage with optional filters, best scored first
func (s *pg) List(ctx context.Context, f domain.Filter) ([]domain.Entry, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`SELECT ` + entryCols + ` FROM problem_vault pv WHERE TRUE`)
	if f.Industry != "" {
		sb.WriteString(" AND pv.industry = " + arg(f.Industry))
	}
	if f.ProblemType != "" {
		sb.WriteString(" AND pv.problem_type = " + arg(f.ProblemType))
	}
	if f.MinScore != nil {
		sb.WriteString(" AND pv.overall_score >= " + arg(*f.MinScore))
	}
	if f.MinSources != nil {
		sb.WriteString(" AND pv.source_count >= " + arg(*f.MinSources))
	}
	sb.WriteString(" ORDER BY pv.overall_score DESC NULLS LAST, pv.source_count DESC, pv.id ASC")
	sb.WriteString(" LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset))

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Entry, 0, f.Limit)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
