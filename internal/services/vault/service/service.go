// Package service contains problem vault workflows
package service

import (
	"context"

	"github.com/iliebabcenco/big-collector/internal/modkit/repokit"
	"github.com/iliebabcenco/big-collector/internal/services/vault/domain"
	"github.com/iliebabcenco/big-collector/internal/services/vault/repo"
)

// Service bundles the vault ports implemented by Svc
type Service interface {
	domain.SimilarityPort
	domain.WriterPort
	domain.QueryPort
}

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Storage
	binder repokit.Binder[repo.Storage]
	db     repokit.TxRunner
}

// New creates a new vault service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage]) *Svc {
	if db == nil {
		panic("vault.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("vault.Service requires a non nil Storage binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db}
}

// SearchSimilar returns near neighbours of vec, closest first
func (s *Svc) SearchSimilar(ctx context.Context, vec domain.Vector, maxDistance float64, limit int) ([]domain.Entry, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	return s.Repo.SearchSimilar(ctx, vec.String(), maxDistance, limit)
}

// DistanceTo measures cosine distance from entry id to vec
func (s *Svc) DistanceTo(ctx context.Context, id int64, vec domain.Vector) (float64, bool, error) {
	if len(vec) == 0 {
		return 0, false, nil
	}
	return s.Repo.DistanceTo(ctx, id, vec.String())
}

// Create inserts a new entry plus its first evidence row in one transaction
func (s *Svc) Create(ctx context.Context, d domain.Draft) (domain.Entry, error) {
	var out domain.Entry
	err := repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		e, err := r.InsertEntry(ctx, d, domain.ConfidenceFor(1))
		if err != nil {
			return err
		}
		if err := r.InsertEvidence(ctx, e.ID, d.Evidence); err != nil {
			return err
		}
		out = e
		return nil
	})
	return out, err
}

// Merge attaches evidence to an existing entry and upgrades its confidence
// tier from the new source count, all in one transaction
func (s *Svc) Merge(ctx context.Context, id int64, ev domain.EvidenceDraft) (domain.Entry, error) {
	var out domain.Entry
	err := repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		n, err := r.BumpSourceCount(ctx, id)
		if err != nil {
			return err
		}
		if err := r.SetConfidence(ctx, id, domain.ConfidenceFor(n)); err != nil {
			return err
		}
		if err := r.InsertEvidence(ctx, id, ev); err != nil {
			return err
		}
		e, err := r.Get(ctx, id)
		if err != nil {
			return err
		}
		out = e
		return nil
	})
	return out, err
}

// SetScores persists the rubric for an entry
func (s *Svc) SetScores(ctx context.Context, id int64, sc domain.Scores) error {
	return s.Repo.SetScores(ctx, id, sc)
}

// List returns vault entries per filter, best scored first
func (s *Svc) List(ctx context.Context, f domain.Filter) ([]domain.Entry, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.Repo.List(ctx, f)
}

// Get returns one entry with its evidence trail
func (s *Svc) Get(ctx context.Context, id int64) (domain.Entry, []domain.Evidence, error) {
	e, err := s.Repo.Get(ctx, id)
	if err != nil {
		return domain.Entry{}, nil, err
	}
	ev, err := s.Repo.ListEvidence(ctx, id)
	if err != nil {
		return domain.Entry{}, nil, err
	}
	return e, ev, nil
}
