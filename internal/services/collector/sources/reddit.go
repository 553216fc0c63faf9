package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/iliebabcenco/big-collector/internal/adapters/httpc"
	"github.com/iliebabcenco/big-collector/internal/platform/logger"
	"github.com/iliebabcenco/big-collector/internal/services/collector/domain"
	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

const (
	redditLimit         = 100
	redditMaxPages      = 3
	redditMinScore      = 5
	redditMinSelftext   = 50
)

// Reddit pulls hot posts from complaint-heavy subreddits and keyword
// searches, keeping substantial selftext with real traction
type Reddit struct {
	client  *httpc.Client
	signals sigdomain.IngestPort
	targets domain.TargetPort
	log     *logger.Logger
	baseURL string
	delay   time.Duration // unauthenticated API allows ~100 req/min
}

// NewReddit constructs the Reddit source
func NewReddit(d Deps, o Options) *Reddit {
	return &Reddit{
		client:  d.HTTP,
		signals: d.Signals,
		targets: d.Targets,
		log:     logger.Named("reddit"),
		baseURL: o.RedditBaseURL,
		delay:   600 * time.Millisecond,
	}
}

// Type implements domain.Source
func (s *Reddit) Type() sigdomain.SourceType { return sigdomain.SourceReddit }

type redditListing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Selftext    string `json:"selftext"`
	Score       int    `json:"score"`
	Subreddit   string `json:"subreddit"`
	Permalink   string `json:"permalink"`
	Author      string `json:"author"`
	NumComments int    `json:"num_comments"`
}

type redditSignal struct {
	Title       string `json:"title"`
	Selftext    string `json:"selftext"`
	Score       int    `json:"score"`
	Subreddit   string `json:"subreddit"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	NumComments int    `json:"num_comments"`
}

// Collect implements domain.Source
func (s *Reddit) Collect(ctx context.Context, cfg domain.RunConfig) domain.Result {
	start := time.Now()
	items, dups := 0, 0
	cursor := cfg.LastCursor
	maxItems := maxItemsOr(cfg)

	targets, err := s.targets.EnabledTargets(ctx, s.Type())
	if err != nil {
		return domain.Failed(s.Type(), items, dups, cursor, time.Since(start), err)
	}

	s.log.Info().Int("targets", len(targets)).Int("max_items", maxItems).Msg("reddit collection started")

	for _, t := range targets {
		if ctx.Err() != nil || items >= maxItems {
			break
		}

		after := ""
		for page := 0; page < redditMaxPages && items < maxItems; page++ {
			listing, err := s.fetchListing(ctx, t, after)
			if err != nil {
				return domain.Failed(s.Type(), items, dups, cursor, time.Since(start), err)
			}
			if len(listing.Data.Children) == 0 {
				break
			}

			for _, child := range listing.Data.Children {
				if items >= maxItems {
					break
				}
				post := child.Data
				if post.Score < redditMinScore {
					continue
				}
				if len(post.Selftext) < redditMinSelftext {
					continue
				}

				raw, err := json.Marshal(redditSignal{
					Title:       post.Title,
					Selftext:    stripHTML(post.Selftext),
					Score:       post.Score,
					Subreddit:   post.Subreddit,
					URL:         "https://www.reddit.com" + post.Permalink,
					Author:      post.Author,
					NumComments: post.NumComments,
				})
				if err != nil {
					raw = []byte("{}")
				}

				inserted, err := s.signals.Ingest(ctx, s.Type(), post.ID, string(raw))
				if err != nil {
					return domain.Failed(s.Type(), items, dups, cursor, time.Since(start), err)
				}
				if !inserted {
					dups++
					continue
				}
				items++
			}

			after = listing.Data.After
			if after != "" {
				cursor = &after
			}
			if after == "" {
				break
			}

			wait(ctx, s.delay)
			if ctx.Err() != nil {
				break
			}
		}
	}

	s.log.Info().Int("items", items).Int("duplicates", dups).Msg("reddit collection completed")
	return completed(s.Type(), items, dups, cursor, start)
}

func (s *Reddit) fetchListing(ctx context.Context, t domain.Target, after string) (redditListing, error) {
	var u string
	if t.TargetType == "SUBREDDIT" {
		u = fmt.Sprintf("%s/r/%s/hot.json?limit=%d&t=year&raw_json=1", s.baseURL, t.TargetValue, redditLimit)
	} else {
		u = fmt.Sprintf("%s/search.json?limit=%d&t=year&raw_json=1&q=%s&sort=relevance",
			s.baseURL, redditLimit, url.QueryEscape(t.TargetValue))
	}
	if after != "" {
		u += "&after=" + url.QueryEscape(after)
	}

	body, err := s.client.Get(ctx, u, nil)
	if err != nil {
		return redditListing{}, err
	}
	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return redditListing{}, err
	}
	return listing, nil
}
