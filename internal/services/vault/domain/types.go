// Package domain defines the types and interfaces for the problem vault
package domain

import (
	"strconv"
	"strings"
	"time"

	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

// Vector is an embedding in pgvector text form
type Vector []float32

// String renders the pgvector literal, e.g. [0.1,0.2]
func (v Vector) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Entry is one deduplicated problem statement in the vault
type Entry struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	ProblemType    *string    `json:"problem_type"`
	Industry       *string    `json:"industry"`
	TargetCustomer *string    `json:"target_customer"`
	ScoreDemand    *float64   `json:"score_demand"`
	ScorePain      *float64   `json:"score_pain"`
	ScoreGrowth    *float64   `json:"score_growth"`
	ScoreTract     *float64   `json:"score_tractability"`
	ScoreFrequency *float64   `json:"score_frequency"`
	OverallScore   *float64   `json:"overall_score"`
	Confidence     float64    `json:"confidence"`
	SourceCount    int        `json:"source_count"`
	IsPublic       bool       `json:"is_public"`
	FirstSeenAt    time.Time  `json:"first_seen_at"`
	LastSeenAt     time.Time  `json:"last_seen_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Evidence ties an entry back to one collected signal
type Evidence struct {
	ID            int64               `json:"id"`
	EntryID       int64               `json:"entry_id"`
	SourceType    sigdomain.SourceType `json:"source_type"`
	SourceURL     *string             `json:"source_url"`
	RawText       *string             `json:"raw_text"`
	QuoteText     *string             `json:"quote_text"`
	PlatformScore *int                `json:"platform_score"`
	CollectedAt   time.Time           `json:"collected_at"`
}

// Draft is the payload for a brand new vault entry
type Draft struct {
	Title          string
	Description    string
	ProblemType    *string
	Industry       *string
	TargetCustomer *string
	Embedding      Vector // nil when no embedding could be produced
	Evidence       EvidenceDraft
}

// EvidenceDraft is the payload for one evidence row
type EvidenceDraft struct {
	SourceType    sigdomain.SourceType
	SourceURL     *string
	RawText       *string
	QuoteText     *string
	PlatformScore *int
	CollectedAt   time.Time
}

// Scores holds the five-dimension rubric plus the total
type Scores struct {
	Demand      float64
	Pain        float64
	Gap         float64
	Timing      float64
	Feasibility float64
	Overall     float64
}

// Filter narrows vault listings
type Filter struct {
	Industry    string
	ProblemType string
	MinScore    *float64
	MinSources  *int
	Limit       int
	Offset      int
}

// ConfidenceFor maps evidence breadth to a confidence tier
func ConfidenceFor(sourceCount int) float64 {
	switch {
	case sourceCount >= 5:
		return 0.90 // validated
	case sourceCount >= 3:
		return 0.75 // ai_confirmed
	case sourceCount >= 2:
		return 0.50 // ai_inferred
	default:
		return 0.25 // ai_predicted
	}
}
