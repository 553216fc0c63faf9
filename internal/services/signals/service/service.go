// Package service contains signal intake and queue workflows
package service

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/iliebabcenco/big-collector/internal/modkit/repokit"
	"github.com/iliebabcenco/big-collector/internal/services/signals/domain"
	"github.com/iliebabcenco/big-collector/internal/services/signals/repo"
)

// Service bundles the signal ports implemented by Svc
type Service interface {
	domain.IngestPort
	domain.QueuePort
	domain.PromptPort
}

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Storage
	binder repokit.Binder[repo.Storage]
	db     repokit.TxRunner
}

// New creates a new signals service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage]) *Svc {
	if db == nil {
		panic("signals.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("signals.Service requires a non nil Storage binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db}
}

// Ingest stores a signal keyed by (sourceType, sourceID).
// Raw text is NFC-normalized so dedup and embedding see one spelling
// of visually identical reviews
func (s *Svc) Ingest(ctx context.Context, sourceType domain.SourceType, sourceID, rawText string) (bool, error) {
	raw := norm.NFC.String(strings.TrimSpace(rawText))
	return s.Repo.Insert(ctx, sourceType, sourceID, raw)
}

// Seen reports whether the signal identity has been collected before
func (s *Svc) Seen(ctx context.Context, sourceType domain.SourceType, sourceID string) (bool, error) {
	return s.Repo.Exists(ctx, sourceType, sourceID)
}

// Unprocessed returns the extraction backlog, oldest first
func (s *Svc) Unprocessed(ctx context.Context) ([]domain.Signal, error) {
	return s.Repo.ListUnprocessed(ctx)
}

// MarkProcessed flags a signal as fully handled
func (s *Svc) MarkProcessed(ctx context.Context, id int64) error {
	return s.Repo.MarkProcessed(ctx, id)
}

// MarkFailed records a per-signal failure without blocking the queue
func (s *Svc) MarkFailed(ctx context.Context, id int64, reason string) error {
	return s.Repo.MarkFailed(ctx, id, reason)
}

// ActivePrompt resolves a prompt override by name, "" when absent
func (s *Svc) ActivePrompt(ctx context.Context, name string) (string, error) {
	return s.Repo.ActivePrompt(ctx, name)
}
