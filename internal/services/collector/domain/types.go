// Package domain defines the types and interfaces for the collector service
package domain

import (
	"time"

	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

// Status is the lifecycle state of one collector
type Status string

// Collector lifecycle states
const (
	StatusIdle      Status = "IDLE"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Target is one thing a collector should look at: an app id, a repo label,
// a subreddit, a search keyword, an industry
type Target struct {
	ID          int64
	SourceType  sigdomain.SourceType
	TargetType  string
	TargetValue string
	Enabled     bool
	Priority    int
	Metadata    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RunConfig is the per-source collector configuration row
type RunConfig struct {
	ID           int64
	SourceType   sigdomain.SourceType
	Enabled      bool
	Status       Status
	LastRunAt    *time.Time
	LastCursor   *string
	LastError    *string
	ItemsLastRun int
	MaxItems     int
	Settings     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Result summarizes one collection run
type Result struct {
	SourceType        sigdomain.SourceType
	Status            Status
	ItemsCollected    int
	NewProblems       int
	DuplicatesSkipped int
	LastCursor        *string
	Duration          time.Duration
	Error             *string
}

// Failed builds a FAILED result carrying whatever progress was made
func Failed(src sigdomain.SourceType, items, dups int, cursor *string, d time.Duration, err error) Result {
	msg := err.Error()
	return Result{
		SourceType:        src,
		Status:            StatusFailed,
		ItemsCollected:    items,
		DuplicatesSkipped: dups,
		LastCursor:        cursor,
		Duration:          d,
		Error:             &msg,
	}
}

// RunLogEntry is the append-only record of one run
type RunLogEntry struct {
	RunID          string
	SourceType     sigdomain.SourceType
	Status         Status
	ItemsCollected int
	NewProblems    int
	Duplicates     int
	DurationMs     int64
	Error          string
	StartedAt      time.Time
	CompletedAt    time.Time
}

// StatusView is the status payload served per collector
type StatusView struct {
	SourceType   string `json:"sourceType"`
	Enabled      bool   `json:"enabled"`
	Status       string `json:"status"`
	LastRunAt    string `json:"lastRunAt"`
	ItemsLastRun int    `json:"itemsLastRun"`
	LastError    string `json:"lastError"`
}

// ViewOf flattens a RunConfig into its status payload
func ViewOf(c RunConfig) StatusView {
	v := StatusView{
		SourceType:   c.SourceType.String(),
		Enabled:      c.Enabled,
		Status:       string(c.Status),
		ItemsLastRun: c.ItemsLastRun,
	}
	if c.LastRunAt != nil {
		v.LastRunAt = c.LastRunAt.UTC().Format(time.RFC3339)
	}
	if c.LastError != nil {
		v.LastError = *c.LastError
	}
	return v
}
