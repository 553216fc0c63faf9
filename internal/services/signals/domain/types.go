// Package domain defines the types and interfaces for the signals service
package domain

import (
	"fmt"
	"strings"
	"time"
)

// SourceType identifies the platform a signal was collected from
type SourceType string

// Known signal sources
const (
	SourceAppStore      SourceType = "APP_STORE"
	SourceGitHub        SourceType = "GITHUB"
	SourceHackerNews    SourceType = "HACKER_NEWS"
	SourceReddit        SourceType = "REDDIT"
	SourceProductHunt   SourceType = "PRODUCT_HUNT"
	SourceUpwork        SourceType = "UPWORK"
	SourceLLMBrainstorm SourceType = "LLM_BRAINSTORM"
)

// AllSourceTypes lists every known source in a stable order
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceAppStore,
		SourceGitHub,
		SourceHackerNews,
		SourceReddit,
		SourceProductHunt,
		SourceUpwork,
		SourceLLMBrainstorm,
	}
}

// ParseSourceType maps a path or query token to a SourceType.
// Accepts both APP_STORE and app_store spellings
func ParseSourceType(s string) (SourceType, error) {
	t := SourceType(strings.ToUpper(strings.TrimSpace(s)))
	for _, k := range AllSourceTypes() {
		if t == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown source type %q", s)
}

// String implements fmt.Stringer
func (t SourceType) String() string { return string(t) }

// Signal is one raw item captured from a source, pending extraction
type Signal struct {
	ID          int64
	SourceType  SourceType
	SourceID    string
	RawText     string
	Processed   bool
	ProcessedAt *time.Time
	Error       *string
	CreatedAt   time.Time
}
