package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/iliebabcenco/big-collector/internal/adapters/httpc"
	"github.com/iliebabcenco/big-collector/internal/platform/logger"
	"github.com/iliebabcenco/big-collector/internal/services/collector/domain"
	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

const (
	hnMaxPages    = 5
	hnHitsPerPage = 50
)

// HackerNews searches Algolia for complaint-laden comments and Ask HN posts
type HackerNews struct {
	client  *httpc.Client
	signals sigdomain.IngestPort
	targets domain.TargetPort
	log     *logger.Logger
	baseURL string
}

// NewHackerNews constructs the Hacker News source
func NewHackerNews(d Deps, o Options) *HackerNews {
	return &HackerNews{
		client:  d.HTTP,
		signals: d.Signals,
		targets: d.Targets,
		log:     logger.Named("hackernews"),
		baseURL: o.HNBaseURL,
	}
}

// Type implements domain.Source
func (s *HackerNews) Type() sigdomain.SourceType { return sigdomain.SourceHackerNews }

type hnSearchResponse struct {
	Hits    []hnHit `json:"hits"`
	NbPages int     `json:"nbPages"`
}

type hnHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	StoryTitle  string `json:"story_title"`
	CommentText string `json:"comment_text"`
	Points      int    `json:"points"`
	URL         string `json:"url"`
	Author      string `json:"author"`
}

type hnSignal struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	Points    int    `json:"points"`
	URL       string `json:"url"`
	Author    string `json:"author"`
	SourceURL string `json:"source_url"`
}

// Collect implements domain.Source
func (s *HackerNews) Collect(ctx context.Context, cfg domain.RunConfig) domain.Result {
	start := time.Now()
	items, dups := 0, 0
	cursor := cfg.LastCursor
	maxItems := maxItemsOr(cfg)

	targets, err := s.targets.EnabledTargets(ctx, s.Type())
	if err != nil {
		return domain.Failed(s.Type(), items, dups, cursor, time.Since(start), err)
	}

	s.log.Info().Int("targets", len(targets)).Int("max_items", maxItems).Msg("hn collection started")

	for _, t := range targets {
		if ctx.Err() != nil || items >= maxItems {
			break
		}

		// KEYWORD targets sweep comments broadly, anything else mines Ask HN
		tags, numericFilters := "ask_hn", "points>10"
		if t.TargetType == "KEYWORD" {
			tags, numericFilters = "comment", "points>2"
		}

		for page := 0; page < hnMaxPages && items < maxItems; page++ {
			resp, err := s.fetchPage(ctx, t.TargetValue, tags, numericFilters, page)
			if err != nil {
				return domain.Failed(s.Type(), items, dups, cursor, time.Since(start), err)
			}
			if len(resp.Hits) == 0 {
				break
			}

			for _, hit := range resp.Hits {
				if items >= maxItems {
					break
				}
				if hit.CommentText == "" && hit.Title == "" {
					continue
				}

				title := hit.Title
				if title == "" {
					title = hit.StoryTitle
				}
				itemURL := hit.URL
				if itemURL == "" {
					itemURL = "https://news.ycombinator.com/item?id=" + hit.ObjectID
				}
				raw, err := json.Marshal(hnSignal{
					Title:     title,
					Text:      stripHTML(hit.CommentText),
					Points:    hit.Points,
					URL:       itemURL,
					Author:    hit.Author,
					SourceURL: "https://news.ycombinator.com/item?id=" + hit.ObjectID,
				})
				if err != nil {
					raw = []byte("{}")
				}

				inserted, err := s.signals.Ingest(ctx, s.Type(), hit.ObjectID, string(raw))
				if err != nil {
					return domain.Failed(s.Type(), items, dups, cursor, time.Since(start), err)
				}
				if !inserted {
					dups++
					continue
				}
				items++
			}

			c := strconv.Itoa(page + 1)
			cursor = &c
			if page+1 >= resp.NbPages {
				break
			}
		}
	}

	s.log.Info().Int("items", items).Int("duplicates", dups).Msg("hn collection completed")
	return completed(s.Type(), items, dups, cursor, start)
}

func (s *HackerNews) fetchPage(ctx context.Context, query, tags, numericFilters string, page int) (hnSearchResponse, error) {
	u := fmt.Sprintf("%s/api/v1/search?query=%s&tags=%s&numericFilters=%s&hitsPerPage=%d&page=%d",
		s.baseURL, url.QueryEscape(query), tags, url.QueryEscape(numericFilters), hnHitsPerPage, page)

	body, err := s.client.Get(ctx, u, nil)
	if err != nil {
		return hnSearchResponse{}, err
	}
	var resp hnSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return hnSearchResponse{}, err
	}
	return resp, nil
}
