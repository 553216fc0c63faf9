package service

import (
	"context"
	"strings"

	"github.com/iliebabcenco/big-collector/internal/adapters/llm"
	"github.com/iliebabcenco/big-collector/internal/platform/logger"
	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
	vaultdomain "github.com/iliebabcenco/big-collector/internal/services/vault/domain"
)

// Cosine distance thresholds for deciding whether an extracted problem
// already lives in the vault
const (
	definiteDuplicateThreshold = 0.10
	borderlineThreshold        = 0.20
	maxSearchDistance          = 0.25
	similarLimit               = 5
)

// Verifier settles borderline matches with a yes/no judgement
type Verifier interface {
	VerifyDuplicate(ctx context.Context, titleA, descA, titleB, descB string) (bool, error)
}

// Deduper folds extracted problems into the vault, merging duplicates
type Deduper struct {
	similar vaultdomain.SimilarityPort
	writer  vaultdomain.WriterPort
	verify  Verifier
	log     *logger.Logger
}

// NewDeduper constructs a Deduper. verify may be nil, in which case
// borderline matches are treated as distinct problems
func NewDeduper(similar vaultdomain.SimilarityPort, writer vaultdomain.WriterPort, verify Verifier) *Deduper {
	if similar == nil || writer == nil {
		panic("pipeline.Deduper requires vault ports")
	}
	return &Deduper{
		similar: similar,
		writer:  writer,
		verify:  verify,
		log:     logger.Named("dedup"),
	}
}

// Deduplicate stores ex in the vault, either as a fresh entry or as new
// evidence on its nearest neighbour. Returns the entry and whether it is new
func (d *Deduper) Deduplicate(ctx context.Context, ex llm.Extraction, vec vaultdomain.Vector, sig sigdomain.Signal) (vaultdomain.Entry, bool, error) {
	if len(vec) == 0 {
		entry, err := d.writer.Create(ctx, draftOf(ex, vec, sig))
		return entry, true, err
	}

	similar, err := d.similar.SearchSimilar(ctx, vec, maxSearchDistance, similarLimit)
	if err != nil {
		return vaultdomain.Entry{}, false, err
	}
	if len(similar) == 0 {
		entry, err := d.writer.Create(ctx, draftOf(ex, vec, sig))
		return entry, true, err
	}

	closest := similar[0]
	dist, ok, err := d.similar.DistanceTo(ctx, closest.ID, vec)
	if err != nil {
		return vaultdomain.Entry{}, false, err
	}
	if !ok {
		entry, err := d.writer.Create(ctx, draftOf(ex, vec, sig))
		return entry, true, err
	}

	if dist < definiteDuplicateThreshold {
		d.log.Info().Float64("distance", dist).Str("title", ex.Title).Str("matches", closest.Title).Msg("definite duplicate, merging")
		entry, err := d.writer.Merge(ctx, closest.ID, evidenceOf(ex, sig))
		return entry, false, err
	}

	if dist < borderlineThreshold && d.verify != nil {
		isDup, err := d.verify.VerifyDuplicate(ctx, ex.Title, ex.Description, closest.Title, closest.Description)
		if err != nil {
			// inconclusive verification falls through to a new entry
			d.log.Warn().Err(err).Str("title", ex.Title).Msg("duplicate verification failed")
		} else if isDup {
			d.log.Info().Float64("distance", dist).Str("title", ex.Title).Str("matches", closest.Title).Msg("verified duplicate, merging")
			entry, err := d.writer.Merge(ctx, closest.ID, evidenceOf(ex, sig))
			return entry, false, err
		}
	}

	entry, err := d.writer.Create(ctx, draftOf(ex, vec, sig))
	return entry, true, err
}

func draftOf(ex llm.Extraction, vec vaultdomain.Vector, sig sigdomain.Signal) vaultdomain.Draft {
	return vaultdomain.Draft{
		Title:          ex.Title,
		Description:    ex.Description,
		ProblemType:    optStr(ex.ProblemType),
		Industry:       optStr(ex.Industry),
		TargetCustomer: optStr(ex.TargetCustomer),
		Embedding:      vec,
		Evidence:       evidenceOf(ex, sig),
	}
}

func evidenceOf(ex llm.Extraction, sig sigdomain.Signal) vaultdomain.EvidenceDraft {
	var quote *string
	if len(ex.KeyQuotes) > 0 {
		quote = optStr(strings.Join(ex.KeyQuotes, " | "))
	}
	return vaultdomain.EvidenceDraft{
		SourceType:  sig.SourceType,
		SourceURL:   optStr(ex.SourceURL),
		RawText:     optStr(sig.RawText),
		QuoteText:   quote,
		CollectedAt: sig.CreatedAt,
	}
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
