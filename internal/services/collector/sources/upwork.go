package sources

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/iliebabcenco/big-collector/internal/platform/logger"
	"github.com/iliebabcenco/big-collector/internal/services/collector/domain"
	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

// budgetPattern pulls dollar figures out of job descriptions
var budgetPattern = regexp.MustCompile(`\$([\d,]+(?:\.\d{2})?)`)

// Upwork reads the public job RSS feed per keyword. People paying for a
// fix are the strongest demand signal there is
type Upwork struct {
	parser  *gofeed.Parser
	signals sigdomain.IngestPort
	targets domain.TargetPort
	log     *logger.Logger
	feedURL string
	delay   time.Duration
}

// NewUpwork constructs the Upwork source
func NewUpwork(d Deps, o Options) *Upwork {
	return &Upwork{
		parser:  gofeed.NewParser(),
		signals: d.Signals,
		targets: d.Targets,
		log:     logger.Named("upwork"),
		feedURL: o.UpworkFeedURL,
		delay:   time.Second,
	}
}

// Type implements domain.Source
func (s *Upwork) Type() sigdomain.SourceType { return sigdomain.SourceUpwork }

type upworkSignal struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	BudgetMin   string `json:"budget_min"`
	BudgetMax   string `json:"budget_max"`
	Link        string `json:"link"`
	PubDate     string `json:"pubDate"`
}

// Collect implements domain.Source
func (s *Upwork) Collect(ctx context.Context, cfg domain.RunConfig) domain.Result {
	start := time.Now()
	items, dups := 0, 0
	maxItems := maxItemsOr(cfg)

	targets, err := s.targets.EnabledTargets(ctx, s.Type())
	if err != nil {
		return domain.Failed(s.Type(), items, dups, nil, time.Since(start), err)
	}

	s.log.Info().Int("targets", len(targets)).Int("max_items", maxItems).Msg("upwork collection started")

	for _, t := range targets {
		if ctx.Err() != nil || items >= maxItems {
			break
		}

		keyword := t.TargetValue
		feedURL := s.feedURL + "?q=" + url.QueryEscape(keyword) + "&sort=recency"

		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			// one bad keyword should not sink the run
			s.log.Warn().Err(err).Str("keyword", keyword).Msg("failed to fetch upwork rss")
		} else {
			for _, entry := range feed.Items {
				if items >= maxItems {
					break
				}

				sourceID := entry.Link
				if sourceID == "" {
					sourceID = entry.GUID
				}
				if sourceID == "" {
					continue
				}

				desc := stripHTML(entry.Description)
				pubDate := ""
				if entry.PublishedParsed != nil {
					pubDate = entry.PublishedParsed.UTC().Format(time.RFC3339)
				}
				budgetMin, budgetMax := extractBudget(desc)

				raw, err := json.Marshal(upworkSignal{
					Title:       entry.Title,
					Description: desc,
					BudgetMin:   budgetMin,
					BudgetMax:   budgetMax,
					Link:        entry.Link,
					PubDate:     pubDate,
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

		wait(ctx, s.delay)
		if ctx.Err() != nil {
			break
		}
	}

	s.log.Info().Int("items", items).Int("duplicates", dups).Msg("upwork collection completed")
	return completed(s.Type(), items, dups, nil, start)
}

// extractBudget returns the first two dollar amounts found, commas stripped
func extractBudget(description string) (min, max string) {
	matches := budgetPattern.FindAllStringSubmatch(description, 2)
	if len(matches) > 0 {
		min = strings.ReplaceAll(matches[0][1], ",", "")
	}
	if len(matches) > 1 {
		max = strings.ReplaceAll(matches[1][1], ",", "")
	}
	return min, max
}
