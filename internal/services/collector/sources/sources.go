// Package sources implements the per-platform collectors.
//
// Each source walks its enabled targets, pulls raw items from the platform
// API, filters the noise, and hands surviving items to the signals service
// keyed by a platform-stable source id. Cancellation arrives through ctx
// and is honored between requests, never mid-write.
package sources

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/iliebabcenco/big-collector/internal/adapters/httpc"
	"github.com/iliebabcenco/big-collector/internal/adapters/llm"
	"github.com/iliebabcenco/big-collector/internal/services/collector/domain"
	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

// Deps are the shared dependencies every source needs
type Deps struct {
	HTTP    *httpc.Client
	Signals sigdomain.IngestPort
	Targets domain.TargetPort
}

// Options carries per-platform endpoints and credentials.
// Base URLs are swappable so tests can point sources at a local server
type Options struct {
	AppStoreBaseURL  string
	GitHubBaseURL    string
	GitHubToken      string
	HNBaseURL        string
	RedditBaseURL    string
	ProductHuntURL   string
	ProductHuntToken string
	UpworkFeedURL    string
}

// Defaults fills in the production endpoints for any unset base URL
func (o Options) Defaults() Options {
	if o.AppStoreBaseURL == "" {
		o.AppStoreBaseURL = "https://itunes.apple.com"
	}
	if o.GitHubBaseURL == "" {
		o.GitHubBaseURL = "https://api.github.com"
	}
	if o.HNBaseURL == "" {
		o.HNBaseURL = "https://hn.algolia.com"
	}
	if o.RedditBaseURL == "" {
		o.RedditBaseURL = "https://www.reddit.com"
	}
	if o.ProductHuntURL == "" {
		o.ProductHuntURL = "https://api.producthunt.com"
	}
	if o.UpworkFeedURL == "" {
		o.UpworkFeedURL = "https://www.upwork.com/ab/feed/jobs/rss"
	}
	return o
}

// All constructs every available source. The brainstorm source is included
// even when ai is unconfigured; it skips gracefully at run time
func All(d Deps, o Options, ai *llm.Client) []domain.Source {
	o = o.Defaults()
	return []domain.Source{
		NewAppStore(d, o),
		NewGitHub(d, o),
		NewHackerNews(d, o),
		NewReddit(d, o),
		NewProductHunt(d, o),
		NewUpwork(d, o),
		NewBrainstorm(d, ai),
	}
}

// wait sleeps for d unless ctx is cancelled first
func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// stripHTML flattens markup to plain text, mirroring what the platforms
// render. On parse failure the input is returned untouched
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// maxItemsOr returns the configured cap or the platform default of 100
func maxItemsOr(cfg domain.RunConfig) int {
	if cfg.MaxItems > 0 {
		return cfg.MaxItems
	}
	return 100
}

// completed builds a COMPLETED result
func completed(src sigdomain.SourceType, items, dups int, cursor *string, started time.Time) domain.Result {
	return domain.Result{
		SourceType:        src,
		Status:            domain.StatusCompleted,
		ItemsCollected:    items,
		DuplicatesSkipped: dups,
		LastCursor:        cursor,
		Duration:          time.Since(started),
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
