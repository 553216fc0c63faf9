// Package service contains the collector orchestration workflows
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliebabcenco/big-collector/internal/modkit/repokit"
	"github.com/iliebabcenco/big-collector/internal/platform/logger"
	"github.com/iliebabcenco/big-collector/internal/services/collector/domain"
	"github.com/iliebabcenco/big-collector/internal/services/collector/repo"
	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

// staleResetReason is written to configs stuck in RUNNING after a restart
const staleResetReason = "Reset on startup - previous run did not complete"

// recentRunLimit caps the run history endpoint
const recentRunLimit = 20

// Service bundles the collector ports implemented by Svc
type Service interface {
	domain.AdminPort
	domain.TargetPort
}

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Storage
	binder repokit.Binder[repo.Storage]
	db     repokit.TxRunner
	runlog domain.RunLogPort
	log    *logger.Logger

	sources map[sigdomain.SourceType]domain.Source

	mu      sync.Mutex
	running map[sigdomain.SourceType]context.CancelFunc
	// done lets tests wait for the async run to land
	done map[sigdomain.SourceType]chan struct{}
}

// New creates a new collector service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage], runlog domain.RunLogPort, srcs []domain.Source) *Svc {
	if db == nil {
		panic("collector.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("collector.Service requires a non nil Storage binder")
	}
	byType := make(map[sigdomain.SourceType]domain.Source, len(srcs))
	for _, s := range srcs {
		byType[s.Type()] = s
	}
	return &Svc{
		Repo:    binder.Bind(db),
		binder:  binder,
		db:      db,
		runlog:  runlog,
		log:     logger.Named("collector"),
		sources: byType,
		running: make(map[sigdomain.SourceType]context.CancelFunc),
		done:    make(map[sigdomain.SourceType]chan struct{}),
	}
}

// ResetStale flips configs stuck in RUNNING back to IDLE. Called once at
// startup before any collection can start
func (s *Svc) ResetStale(ctx context.Context) error {
	n, err := s.Repo.ResetStale(ctx, staleResetReason)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Warn().Int64("configs", n).Msg("reset stale RUNNING statuses to IDLE")
	}
	return nil
}

// Start implements domain.AdminPort
func (s *Svc) Start(ctx context.Context, src sigdomain.SourceType) (found, started bool, err error) {
	source, ok := s.sources[src]
	if !ok {
		return false, false, nil
	}
	cfg, ok, err := s.Repo.GetConfig(ctx, src)
	if err != nil {
		return false, false, err
	}
	if !ok {
		return false, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.running[src]; busy {
		return true, false, nil
	}

	// the UPDATE ... WHERE status <> 'RUNNING' is the run lock
	acquired, err := s.Repo.AcquireRun(ctx, src)
	if err != nil {
		return true, false, err
	}
	if !acquired {
		return true, false, nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.running[src] = cancel
	s.done[src] = done

	go func() {
		defer close(done)
		s.runCollection(runCtx, source, cfg)
	}()
	return true, true, nil
}

// Stop implements domain.AdminPort
func (s *Svc) Stop(ctx context.Context, src sigdomain.SourceType) (bool, error) {
	s.mu.Lock()
	cancel, ok := s.running[src]
	if ok {
		delete(s.running, src)
	}
	s.mu.Unlock()
	if !ok {
		return false, nil
	}

	cancel()
	reason := "Stopped by user"
	if err := s.Repo.SetStatus(ctx, src, domain.StatusIdle, &reason); err != nil {
		return true, err
	}
	return true, nil
}

// Statuses implements domain.AdminPort
func (s *Svc) Statuses(ctx context.Context) ([]domain.StatusView, error) {
	configs, err := s.Repo.ListConfigs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.StatusView, 0, len(configs))
	for _, c := range configs {
		out = append(out, domain.ViewOf(c))
	}
	return out, nil
}

// StatusOf implements domain.AdminPort
func (s *Svc) StatusOf(ctx context.Context, src sigdomain.SourceType) (domain.StatusView, bool, error) {
	cfg, ok, err := s.Repo.GetConfig(ctx, src)
	if err != nil || !ok {
		return domain.StatusView{}, ok, err
	}
	return domain.ViewOf(cfg), true, nil
}

// RecentRuns implements domain.AdminPort
func (s *Svc) RecentRuns(ctx context.Context) ([]domain.RunLogEntry, error) {
	if s.runlog == nil {
		return nil, nil
	}
	return s.runlog.Recent(ctx, recentRunLimit)
}

// EnabledTargets implements domain.TargetPort
func (s *Svc) EnabledTargets(ctx context.Context, src sigdomain.SourceType) ([]domain.Target, error) {
	return s.Repo.EnabledTargets(ctx, src)
}

// WaitFor blocks until the in-flight run for src finishes. Test hook
func (s *Svc) WaitFor(src sigdomain.SourceType) {
	s.mu.Lock()
	done := s.done[src]
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Svc) runCollection(ctx context.Context, source domain.Source, cfg domain.RunConfig) {
	startedAt := time.Now()
	src := source.Type()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("source", src.String()).Interface("panic", r).Msg("collection panicked")
			s.finish(src, startedAt, domain.Failed(src, 0, 0, nil, time.Since(startedAt), fmt.Errorf("panic: %v", r)))
		}
		s.mu.Lock()
		delete(s.running, src)
		delete(s.done, src)
		s.mu.Unlock()
	}()

	result := source.Collect(ctx, cfg)
	s.finish(src, startedAt, result)
}

// finish persists the run outcome. Uses a fresh context so a cancelled run
// still records its partial progress
func (s *Svc) finish(src sigdomain.SourceType, startedAt time.Time, result domain.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Repo.SetResult(ctx, src, result); err != nil {
		s.log.Error().Err(err).Str("source", src.String()).Msg("failed to persist run result")
	}

	if s.runlog == nil {
		return
	}
	entry := domain.RunLogEntry{
		RunID:          uuid.NewString(),
		SourceType:     src,
		Status:         result.Status,
		ItemsCollected: result.ItemsCollected,
		NewProblems:    result.NewProblems,
		Duplicates:     result.DuplicatesSkipped,
		DurationMs:     result.Duration.Milliseconds(),
		StartedAt:      startedAt,
		CompletedAt:    time.Now(),
	}
	if result.Error != nil {
		entry.Error = *result.Error
	}
	if err := s.runlog.Append(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("source", src.String()).Msg("failed to append run log")
	}
}
