// Package service runs collected signals through extraction, embedding,
// deduplication, and scoring
package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/iliebabcenco/big-collector/internal/adapters/llm"
	"github.com/iliebabcenco/big-collector/internal/platform/logger"
	"github.com/iliebabcenco/big-collector/internal/services/pipeline/domain"
	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
	vaultdomain "github.com/iliebabcenco/big-collector/internal/services/vault/domain"
)

// embedMaxChars caps the text sent for embedding to stay within token limits
const embedMaxChars = 8000

// Extractor pulls a structured problem out of raw signal text
type Extractor interface {
	Extract(ctx context.Context, prompts llm.PromptSource, sourceType, rawText string) (llm.Extraction, error)
}

// Embedder turns text into a vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Scorer rates a vault entry on the five-dimension rubric
type Scorer interface {
	Score(ctx context.Context, in llm.ScoreInput) (llm.Scores, error)
}

// Service is the pipeline surface
type Service interface {
	domain.RunnerPort
}

// Svc implements Service. AI seams are nil when no API key is configured,
// in which case runs report SKIPPED
type Svc struct {
	signals sigdomain.QueuePort
	prompts sigdomain.PromptPort
	writer  vaultdomain.WriterPort
	dedup   *Deduper

	extract Extractor
	embed   Embedder
	score   Scorer

	log     *logger.Logger
	running atomic.Bool
}

// New creates a new pipeline service. extract, embed, and score may all be
// nil together to model an unconfigured AI backend
func New(signals sigdomain.QueuePort, prompts sigdomain.PromptPort, writer vaultdomain.WriterPort, dedup *Deduper, extract Extractor, embed Embedder, score Scorer) *Svc {
	if signals == nil {
		panic("pipeline.Service requires a signal queue")
	}
	if writer == nil || dedup == nil {
		panic("pipeline.Service requires vault access")
	}
	return &Svc{
		signals: signals,
		prompts: prompts,
		writer:  writer,
		dedup:   dedup,
		extract: extract,
		embed:   embed,
		score:   score,
		log:     logger.Named("pipeline"),
	}
}

// Running implements domain.RunnerPort
func (s *Svc) Running() bool { return s.running.Load() }

// Process implements domain.RunnerPort
func (s *Svc) Process(ctx context.Context) domain.Result {
	if s.extract == nil {
		return domain.Result{Status: domain.StatusSkipped, Err: "OpenAI API key not configured"}
	}
	if !s.running.CompareAndSwap(false, true) {
		return domain.Result{Status: domain.StatusAlreadyRunning, Err: "Pipeline already running"}
	}
	defer s.running.Store(false)

	start := time.Now()
	res := domain.Result{Status: domain.StatusCompleted}

	signals, err := s.signals.Unprocessed(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load unprocessed signals")
		res.Errors++
		res.DurationMs = time.Since(start).Milliseconds()
		return res
	}
	res.TotalSignals = len(signals)
	s.log.Info().Int("signals", len(signals)).Msg("pipeline started")

	for _, sig := range signals {
		if ctx.Err() != nil {
			s.log.Info().Msg("pipeline interrupted")
			break
		}

		extracted, err := s.processSignal(ctx, sig)
		if err != nil {
			s.log.Error().Err(err).Int64("signal_id", sig.ID).Msg("signal processing failed")
			if mErr := s.signals.MarkFailed(ctx, sig.ID, err.Error()); mErr != nil {
				s.log.Error().Err(mErr).Int64("signal_id", sig.ID).Msg("failed to mark signal failed")
			}
			res.Errors++
			continue
		}
		res.Processed++
		if extracted {
			res.ProblemsExtracted++
		} else {
			res.NoProblem++
		}
	}

	res.DurationMs = time.Since(start).Milliseconds()
	s.log.Info().
		Int("processed", res.Processed).
		Int("extracted", res.ProblemsExtracted).
		Int("errors", res.Errors).
		Int64("duration_ms", res.DurationMs).
		Msg("pipeline completed")
	return res
}

// processSignal runs one signal end to end. Returns whether a problem was
// extracted and stored
func (s *Svc) processSignal(ctx context.Context, sig sigdomain.Signal) (bool, error) {
	ex, err := s.extract.Extract(ctx, s.prompts, sig.SourceType.String(), sig.RawText)
	if err != nil {
		return false, err
	}
	if !ex.Valid() {
		return false, s.signals.MarkProcessed(ctx, sig.ID)
	}

	vec := s.embedProblem(ctx, ex)

	entry, isNew, err := s.dedup.Deduplicate(ctx, ex, vec, sig)
	if err != nil {
		return false, err
	}

	if isNew {
		s.scoreEntry(ctx, entry)
	}

	return true, s.signals.MarkProcessed(ctx, sig.ID)
}

// embedProblem vectorizes the problem statement. Embedding failures are
// tolerated and yield an unembedded entry
func (s *Svc) embedProblem(ctx context.Context, ex llm.Extraction) vaultdomain.Vector {
	if s.embed == nil {
		return nil
	}
	text := ex.Title + ". " + ex.Description
	if len(text) > embedMaxChars {
		text = text[:embedMaxChars]
	}
	vec, err := s.embed.Embed(ctx, text)
	if err != nil {
		s.log.Warn().Err(err).Str("title", ex.Title).Msg("embedding failed")
		return nil
	}
	return vaultdomain.Vector(vec)
}

// scoreEntry rates a fresh entry. Scoring failures leave the entry unscored
func (s *Svc) scoreEntry(ctx context.Context, entry vaultdomain.Entry) {
	if s.score == nil {
		return
	}
	in := llm.ScoreInput{
		Title:       entry.Title,
		Description: entry.Description,
		SourceCount: entry.SourceCount,
	}
	if entry.Industry != nil {
		in.Industry = *entry.Industry
	}
	if entry.TargetCustomer != nil {
		in.TargetCustomer = *entry.TargetCustomer
	}
	if entry.ProblemType != nil {
		in.ProblemType = *entry.ProblemType
	}
	scores, err := s.score.Score(ctx, in)
	if err != nil {
		s.log.Warn().Err(err).Int64("entry_id", entry.ID).Msg("scoring failed")
		return
	}
	if err := s.writer.SetScores(ctx, entry.ID, vaultdomain.Scores{
		Demand:      scores.Demand,
		Pain:        scores.Pain,
		Gap:         scores.Gap,
		Timing:      scores.Timing,
		Feasibility: scores.Feasibility,
		Overall:     scores.Overall,
	}); err != nil {
		s.log.Error().Err(err).Int64("entry_id", entry.ID).Msg("failed to persist scores")
	}
}
