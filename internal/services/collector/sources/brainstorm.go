package sources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/iliebabcenco/big-collector/internal/adapters/llm"
	"github.com/iliebabcenco/big-collector/internal/platform/logger"
	"github.com/iliebabcenco/big-collector/internal/services/collector/domain"
	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

// Brainstormer is the slice of the model client this source needs
type Brainstormer interface {
	Brainstorm(ctx context.Context, industry string) ([]llm.Idea, error)
}

// Brainstorm generates candidate problems per target industry with a
// language model. Ideas enter the funnel marked ai_predicted so they never
// outrank observed evidence. Skips gracefully when the model is unconfigured
type Brainstorm struct {
	ai      Brainstormer
	signals sigdomain.IngestPort
	targets domain.TargetPort
	log     *logger.Logger
}

// NewBrainstorm constructs the brainstorm source. ai may be nil
func NewBrainstorm(d Deps, ai *llm.Client) *Brainstorm {
	b := &Brainstorm{
		signals: d.Signals,
		targets: d.Targets,
		log:     logger.Named("brainstorm"),
	}
	if ai != nil {
		b.ai = ai
	}
	return b
}

// Type implements domain.Source
func (s *Brainstorm) Type() sigdomain.SourceType { return sigdomain.SourceLLMBrainstorm }

type brainstormSignal struct {
	Title                  string `json:"title"`
	Description            string `json:"description"`
	TargetCustomer         string `json:"target_customer"`
	ProblemType            string `json:"problem_type"`
	MonetizationModel      string `json:"monetization_model"`
	EstimatedPainIntensity string `json:"estimated_pain_intensity"`
	Industry               string `json:"industry"`
	Confidence             string `json:"confidence"`
}

// Collect implements domain.Source
func (s *Brainstorm) Collect(ctx context.Context, cfg domain.RunConfig) domain.Result {
	start := time.Now()
	items, dups := 0, 0

	if s.ai == nil {
		s.log.Warn().Msg("model not configured, skipping brainstorm collection")
		return completed(s.Type(), 0, 0, nil, start)
	}

	targets, err := s.targets.EnabledTargets(ctx, s.Type())
	if err != nil {
		return domain.Failed(s.Type(), items, dups, nil, time.Since(start), err)
	}

	s.log.Info().Int("targets", len(targets)).Msg("brainstorm collection started")

	for _, t := range targets {
		if ctx.Err() != nil {
			break
		}

		industry := t.TargetValue
		ideas, err := s.ai.Brainstorm(ctx, industry)
		if err != nil {
			return domain.Failed(s.Type(), items, dups, nil, time.Since(start), err)
		}
		if len(ideas) == 0 {
			s.log.Warn().Str("industry", industry).Msg("no parseable ideas")
			continue
		}

		for _, idea := range ideas {
			if strings.TrimSpace(idea.Title) == "" {
				continue
			}

			sourceID := brainstormSourceID(industry, idea.Title)
			raw, err := json.Marshal(brainstormSignal{
				Title:                  idea.Title,
				Description:            idea.Description,
				TargetCustomer:         idea.TargetCustomer,
				ProblemType:            idea.ProblemType,
				MonetizationModel:      idea.MonetizationModel,
				EstimatedPainIntensity: idea.EstimatedPainIntensity,
				Industry:               industry,
				Confidence:             "ai_predicted",
			})
			if err != nil {
				raw = []byte("{}")
			}

			inserted, err := s.signals.Ingest(ctx, s.Type(), sourceID, string(raw))
			if err != nil {
				return domain.Failed(s.Type(), items, dups, nil, time.Since(start), err)
			}
			if !inserted {
				dups++
				continue
			}
			items++
		}
	}

	s.log.Info().Int("items", items).Int("duplicates", dups).Msg("brainstorm collection completed")
	return completed(s.Type(), items, dups, nil, start)
}

// brainstormSourceID keys an idea by industry and a hash of its title so
// the same idea generated twice dedups instead of piling up
func brainstormSourceID(industry, title string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(title))))
	hash := hex.EncodeToString(sum[:])[:12]
	return "llm_" + strings.ReplaceAll(strings.ToLower(industry), " ", "_") + "_" + hash
}
