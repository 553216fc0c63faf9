package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iliebabcenco/big-collector/internal/adapters/httpc"
	"github.com/iliebabcenco/big-collector/internal/platform/logger"
	"github.com/iliebabcenco/big-collector/internal/services/collector/domain"
	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

const (
	githubPerPage  = 30
	githubMaxPages = 3
	githubBodyMax  = 5000
)

// GitHub searches open issues with strong reaction counts. Pain shows up
// as long-lived feature requests people keep upvoting
type GitHub struct {
	client  *httpc.Client
	signals sigdomain.IngestPort
	targets domain.TargetPort
	log     *logger.Logger
	baseURL string
	token   string
	delay   time.Duration // between search pages, GitHub search is 10 req/min unauthenticated
}

// NewGitHub constructs the GitHub source
func NewGitHub(d Deps, o Options) *GitHub {
	return &GitHub{
		client:  d.HTTP,
		signals: d.Signals,
		targets: d.Targets,
		log:     logger.Named("github"),
		baseURL: o.GitHubBaseURL,
		token:   o.GitHubToken,
		delay:   2 * time.Second,
	}
}

// Type implements domain.Source
func (s *GitHub) Type() sigdomain.SourceType { return sigdomain.SourceGitHub }

type githubSearchResponse struct {
	Items []githubIssue `json:"items"`
}

type githubIssue struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	Comments      int    `json:"comments"`
	HTMLURL       string `json:"html_url"`
	RepositoryURL string `json:"repository_url"`
	Labels        []struct {
		Name string `json:"name"`
	} `json:"labels"`
	Reactions struct {
		TotalCount int `json:"total_count"`
		PlusOne    int `json:"+1"`
	} `json:"reactions"`
}

type githubSignal struct {
	Title            string   `json:"title"`
	Body             string   `json:"body"`
	Reactions        int      `json:"reactions"`
	ReactionsPlusOne int      `json:"reactions_plus_one"`
	Comments         int      `json:"comments"`
	Labels           []string `json:"labels"`
	Repo             string   `json:"repo"`
	URL              string   `json:"url"`
}

// Collect implements domain.Source
func (s *GitHub) Collect(ctx context.Context, cfg domain.RunConfig) domain.Result {
	start := time.Now()
	items, dups := 0, 0
	cursor := cfg.LastCursor
	maxItems := maxItemsOr(cfg)

	targets, err := s.targets.EnabledTargets(ctx, s.Type())
	if err != nil {
		return domain.Failed(s.Type(), items, dups, cursor, time.Since(start), err)
	}

	s.log.Info().Int("targets", len(targets)).Int("max_items", maxItems).Msg("github collection started")

	for _, t := range targets {
		if ctx.Err() != nil || items >= maxItems {
			break
		}

		query := buildGitHubQuery(t)
		s.log.Debug().Str("query", query).Msg("github searching")

		for page := 1; page <= githubMaxPages && items < maxItems; page++ {
			resp, err := s.fetchPage(ctx, query, page)
			if err != nil {
				return domain.Failed(s.Type(), items, dups, cursor, time.Since(start), err)
			}
			if len(resp.Items) == 0 {
				break
			}

			for _, issue := range resp.Items {
				if items >= maxItems {
					break
				}

				sourceID := strconv.FormatInt(issue.ID, 10)
				labels := make([]string, 0, len(issue.Labels))
				for _, l := range issue.Labels {
					labels = append(labels, l.Name)
				}
				raw, err := json.Marshal(githubSignal{
					Title:            issue.Title,
					Body:             truncate(issue.Body, githubBodyMax),
					Reactions:        issue.Reactions.TotalCount,
					ReactionsPlusOne: issue.Reactions.PlusOne,
					Comments:         issue.Comments,
					Labels:           labels,
					Repo:             repoNameOf(issue.RepositoryURL),
					URL:              issue.HTMLURL,
				})
				if err != nil {
					raw = []byte("{}")
				}

				inserted, err := s.signals.Ingest(ctx, s.Type(), sourceID, string(raw))
				if err != nil {
					return domain.Failed(s.Type(), items, dups, cursor, time.Since(start), err)
				}
				if !inserted {
					dups++
					continue
				}
				items++
			}

			c := strconv.Itoa(page)
			cursor = &c

			wait(ctx, s.delay)
			if ctx.Err() != nil {
				break
			}
		}
	}

	s.log.Info().Int("items", items).Int("duplicates", dups).Msg("github collection completed")
	return completed(s.Type(), items, dups, cursor, start)
}

func buildGitHubQuery(t domain.Target) string {
	v := t.TargetValue
	switch t.TargetType {
	case "LABEL":
		return `is:issue is:open label:"` + v + `" reactions:>10 sort:reactions-+1`
	case "TOPIC":
		return `is:issue is:open "` + v + `" reactions:>5 sort:reactions-+1`
	default:
		return `is:issue is:open "` + v + `"`
	}
}

func (s *GitHub) fetchPage(ctx context.Context, query string, page int) (githubSearchResponse, error) {
	u := fmt.Sprintf("%s/search/issues?q=%s&per_page=%d&page=%d",
		s.baseURL, url.QueryEscape(query), githubPerPage, page)

	hdr := http.Header{}
	hdr.Set("Accept", "application/vnd.github+json")
	if s.token != "" {
		hdr.Set("Authorization", "Bearer "+s.token)
	}

	body, err := s.client.Get(ctx, u, hdr)
	if err != nil {
		return githubSearchResponse{}, err
	}
	var resp githubSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return githubSearchResponse{}, err
	}
	return resp, nil
}

// repoNameOf turns https://api.github.com/repos/owner/name into owner/name
func repoNameOf(repositoryURL string) string {
	idx := strings.Index(repositoryURL, "/repos/")
	if idx < 0 {
		return repositoryURL
	}
	return repositoryURL[idx+len("/repos/"):]
}
