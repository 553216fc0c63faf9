package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/iliebabcenco/big-collector/internal/adapters/httpc"
	"github.com/iliebabcenco/big-collector/internal/platform/logger"
	"github.com/iliebabcenco/big-collector/internal/services/collector/domain"
	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

const (
	productHuntMinVotes = 20
	productHuntDelay    = 2100 * time.Millisecond // API allows ~450 requests per 15 min
)

// productHuntKeywords marks comments with constructive or negative
// sentiment, the ones that actually name a problem
var productHuntKeywords = []string{
	"wish", "need", "missing", "frustrat", "annoying", "hate", "problem",
	"difficult", "hard to", "can't", "doesn't", "won't", "broken",
	"alternative", "better", "improve", "should", "lack", "pain",
}

const productHuntPostsQuery = `query($topic: String!, $first: Int!) {
  posts(topic: $topic, first: $first, order: VOTES) {
    edges {
      node {
        id
        name
        tagline
        description
        url
        votesCount
        comments(first: 10) {
          edges {
            node {
              id
              body
              user {
                name
                username
              }
            }
          }
        }
        topics {
          name
        }
      }
    }
  }
}`

// ProductHunt mines comments on well voted launches per topic via GraphQL.
// Skips gracefully when no API token is configured
type ProductHunt struct {
	client  *httpc.Client
	signals sigdomain.IngestPort
	targets domain.TargetPort
	log     *logger.Logger
	apiURL  string
	token   string
	delay   time.Duration
}

// NewProductHunt constructs the Product Hunt source
func NewProductHunt(d Deps, o Options) *ProductHunt {
	return &ProductHunt{
		client:  d.HTTP,
		signals: d.Signals,
		targets: d.Targets,
		log:     logger.Named("producthunt"),
		apiURL:  o.ProductHuntURL,
		token:   o.ProductHuntToken,
		delay:   productHuntDelay,
	}
}

// Type implements domain.Source
func (s *ProductHunt) Type() sigdomain.SourceType { return sigdomain.SourceProductHunt }

type phResponse struct {
	Data struct {
		Posts struct {
			Edges []struct {
				Node phPost `json:"node"`
			} `json:"edges"`
		} `json:"posts"`
	} `json:"data"`
}

type phPost struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Tagline    string `json:"tagline"`
	URL        string `json:"url"`
	VotesCount int    `json:"votesCount"`
	Comments   struct {
		Edges []struct {
			Node phComment `json:"node"`
		} `json:"edges"`
	} `json:"comments"`
}

type phComment struct {
	ID   string `json:"id"`
	Body string `json:"body"`
	User struct {
		Name string `json:"name"`
	} `json:"user"`
}

type phSignal struct {
	ProductName   string `json:"product_name"`
	Tagline       string `json:"tagline"`
	VotesCount    int    `json:"votesCount"`
	CommentBody   string `json:"comment_body"`
	CommentAuthor string `json:"comment_author"`
	Topic         string `json:"topic"`
	ProductURL    string `json:"product_url"`
	SourceURL     string `json:"source_url"`
}

// Collect implements domain.Source
func (s *ProductHunt) Collect(ctx context.Context, cfg domain.RunConfig) domain.Result {
	start := time.Now()
	items, dups := 0, 0
	maxItems := maxItemsOr(cfg)

	if s.token == "" {
		s.log.Warn().Msg("producthunt token not configured, skipping collection")
		return completed(s.Type(), 0, 0, nil, start)
	}

	targets, err := s.targets.EnabledTargets(ctx, s.Type())
	if err != nil {
		return domain.Failed(s.Type(), items, dups, nil, time.Since(start), err)
	}

	s.log.Info().Int("targets", len(targets)).Int("max_items", maxItems).Msg("producthunt collection started")

	for _, t := range targets {
		if ctx.Err() != nil || items >= maxItems {
			break
		}

		topic := t.TargetValue
		resp, err := s.fetchPosts(ctx, topic, 20)
		if err != nil {
			return domain.Failed(s.Type(), items, dups, nil, time.Since(start), err)
		}

		for _, edge := range resp.Data.Posts.Edges {
			if items >= maxItems {
				break
			}
			post := edge.Node
			if post.VotesCount < productHuntMinVotes {
				continue
			}

			for _, ce := range post.Comments.Edges {
				if items >= maxItems {
					break
				}
				comment := ce.Node
				if comment.Body == "" || !hasConstructiveKeyword(comment.Body) {
					continue
				}

				sourceID := "ph_" + post.ID + "_" + comment.ID
				raw, err := json.Marshal(phSignal{
					ProductName:   post.Name,
					Tagline:       post.Tagline,
					VotesCount:    post.VotesCount,
					CommentBody:   comment.Body,
					CommentAuthor: comment.User.Name,
					Topic:         topic,
					ProductURL:    post.URL,
					SourceURL:     post.URL,
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

	s.log.Info().Int("items", items).Int("duplicates", dups).Msg("producthunt collection completed")
	return completed(s.Type(), items, dups, nil, start)
}

func hasConstructiveKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range productHuntKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (s *ProductHunt) fetchPosts(ctx context.Context, topic string, first int) (phResponse, error) {
	body, err := json.Marshal(map[string]any{
		"query":     productHuntPostsQuery,
		"variables": map[string]any{"topic": topic, "first": first},
	})
	if err != nil {
		return phResponse{}, err
	}

	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	hdr.Set("Authorization", "Bearer "+s.token)

	data, err := s.client.Do(ctx, http.MethodPost, s.apiURL+"/v2/api/graphql", hdr, body)
	if err != nil {
		return phResponse{}, err
	}
	var resp phResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return phResponse{}, err
	}
	return resp, nil
}
