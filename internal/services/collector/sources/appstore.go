package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/iliebabcenco/big-collector/internal/adapters/httpc"
	"github.com/iliebabcenco/big-collector/internal/platform/logger"
	"github.com/iliebabcenco/big-collector/internal/services/collector/domain"
	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

const (
	appStoreMinReviewLen = 50
	appStoreMaxRating    = 3
)

// appStoreCategoryApps maps CATEGORY targets to well known app ids worth
// mining for complaints
var appStoreCategoryApps = map[string][]string{
	"Productivity":     {"1274495053", "904280696", "1150188240"},  // Things, Todoist, Notion
	"Business":         {"507874739", "1176895641", "883919818"},   // Slack, monday.com, Trello
	"Finance":          {"349179070", "1209657334", "310583154"},   // QuickBooks, Robinhood, Mint
	"Education":        {"906237743", "1247608645", "568903335"},   // Duolingo, Kahoot, Google Classroom
	"Health & Fitness": {"1069348216", "1089047252", "1059232953"}, // MyFitnessPal, Headspace, Noom
}

// AppStore mines low-rated App Store reviews via the public RSS feed
type AppStore struct {
	client  *httpc.Client
	signals sigdomain.IngestPort
	targets domain.TargetPort
	log     *logger.Logger
	baseURL string
}

// NewAppStore constructs the App Store source
func NewAppStore(d Deps, o Options) *AppStore {
	return &AppStore{
		client:  d.HTTP,
		signals: d.Signals,
		targets: d.Targets,
		log:     logger.Named("appstore"),
		baseURL: o.AppStoreBaseURL,
	}
}

// Type implements domain.Source
func (s *AppStore) Type() sigdomain.SourceType { return sigdomain.SourceAppStore }

type appStoreLabel struct {
	Label string `json:"label"`
}

type appStoreEntry struct {
	Author struct {
		Name appStoreLabel `json:"name"`
	} `json:"author"`
	Title   appStoreLabel `json:"title"`
	Content appStoreLabel `json:"content"`
	Rating  appStoreLabel `json:"im:rating"`
	Version appStoreLabel `json:"im:version"`
	Updated appStoreLabel `json:"updated"`
	ID      struct {
		Label      string `json:"label"`
		Attributes struct {
			IMID string `json:"im:id"`
		} `json:"attributes"`
	} `json:"id"`
}

type appStoreFeed struct {
	Feed struct {
		Entry []appStoreEntry `json:"entry"`
	} `json:"feed"`
}

type appStoreReview struct {
	Author    string `json:"author"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Rating    int    `json:"rating"`
	Version   string `json:"version"`
	Date      string `json:"date"`
	AppID     string `json:"appId"`
	SourceURL string `json:"source_url"`
}

// Collect implements domain.Source
func (s *AppStore) Collect(ctx context.Context, cfg domain.RunConfig) domain.Result {
	start := time.Now()
	items, dups := 0, 0
	maxItems := maxItemsOr(cfg)

	targets, err := s.targets.EnabledTargets(ctx, s.Type())
	if err != nil {
		return domain.Failed(s.Type(), items, dups, nil, time.Since(start), err)
	}

	s.log.Info().Int("targets", len(targets)).Int("max_items", maxItems).Msg("appstore collection started")

	for _, t := range targets {
		if ctx.Err() != nil || items >= maxItems {
			break
		}

		for _, appID := range s.resolveAppIDs(t) {
			if ctx.Err() != nil || items >= maxItems {
				break
			}

			feed, err := s.fetchReviews(ctx, appID)
			if err != nil {
				return domain.Failed(s.Type(), items, dups, nil, time.Since(start), err)
			}
			if len(feed.Feed.Entry) == 0 {
				s.log.Debug().Str("app_id", appID).Msg("no reviews")
				continue
			}

			for _, e := range feed.Feed.Entry {
				if items >= maxItems {
					break
				}
				if parseRating(e) > appStoreMaxRating {
					continue
				}
				if len(e.Content.Label) <= appStoreMinReviewLen {
					continue
				}

				sourceID := appID + "_" + reviewID(e)
				raw, err := json.Marshal(appStoreReview{
					Author:    e.Author.Name.Label,
					Title:     e.Title.Label,
					Content:   e.Content.Label,
					Rating:    parseRating(e),
					Version:   e.Version.Label,
					Date:      e.Updated.Label,
					AppID:     appID,
					SourceURL: "https://apps.apple.com/app/id" + appID,
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
	}

	s.log.Info().Int("items", items).Int("duplicates", dups).Msg("appstore collection completed")
	return completed(s.Type(), items, dups, nil, start)
}

func (s *AppStore) resolveAppIDs(t domain.Target) []string {
	if t.TargetType == "APP_ID" {
		return []string{t.TargetValue}
	}
	return appStoreCategoryApps[t.TargetValue]
}

func (s *AppStore) fetchReviews(ctx context.Context, appID string) (appStoreFeed, error) {
	url := fmt.Sprintf("%s/rss/customerreviews/id=%s/sortBy=mostRecent/json", s.baseURL, appID)
	body, err := s.client.Get(ctx, url, nil)
	if err != nil {
		return appStoreFeed{}, err
	}
	var feed appStoreFeed
	if err := json.Unmarshal(body, &feed); err != nil {
		return appStoreFeed{}, err
	}
	return feed, nil
}

// parseRating defaults to 5 on malformed feeds so the review is filtered out
func parseRating(e appStoreEntry) int {
	r, err := strconv.Atoi(e.Rating.Label)
	if err != nil {
		return 5
	}
	return r
}

func reviewID(e appStoreEntry) string {
	if e.ID.Attributes.IMID != "" {
		return e.ID.Attributes.IMID
	}
	if e.ID.Label != "" {
		return e.ID.Label
	}
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
