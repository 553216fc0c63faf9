// Package llm wraps langchaingo models for extraction, dedup verification,
// scoring, brainstorming, and embeddings
package llm

import (
	"context"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/iliebabcenco/big-collector/internal/platform/config"
	perr "github.com/iliebabcenco/big-collector/internal/platform/errors"
	"github.com/iliebabcenco/big-collector/internal/platform/logger"
)

// Provider names accepted in config
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultEmbed     = "text-embedding-3-small"
	defaultDimension = 1536
)

// Config selects the provider and models used by the client
type Config struct {
	Provider   string
	Model      string
	APIKey     string
	OllamaHost string

	EmbedModel     string
	EmbedDimension int

	// BrainstormModel overrides Model for idea generation, empty means same model
	BrainstormModel string
}

// ConfigFromConf reads LLM_* env vars into a Config
func ConfigFromConf(cfg config.Conf) Config {
	c := cfg.Prefix("LLM_")
	return Config{
		Provider:        c.MayString("PROVIDER", ProviderOpenAI),
		Model:           c.MayString("MODEL", defaultModel),
		APIKey:          c.MayString("API_KEY", ""),
		OllamaHost:      c.MayString("OLLAMA_HOST", "http://localhost:11434"),
		EmbedModel:      c.MayString("EMBED_MODEL", defaultEmbed),
		EmbedDimension:  c.MayInt("EMBED_DIMENSION", defaultDimension),
		BrainstormModel: c.MayString("BRAINSTORM_MODEL", ""),
	}
}

// Configured reports whether the config can produce a usable client
// ollama needs no key, hosted providers do
func (c Config) Configured() bool {
	if c.Provider == ProviderOllama {
		return true
	}
	return c.APIKey != ""
}

// Client bundles a chat model and an embedder behind one handle
type Client struct {
	model      llms.Model
	brainstorm llms.Model
	embedder   embeddings.Embedder

	modelName string
	dimension int
	log       logger.Logger
}

// New builds a Client for the configured provider
// callers should check cfg.Configured() first and skip gracefully when false
func New(cfg Config) (*Client, error) {
	if !cfg.Configured() {
		return nil, perr.InvalidArgf("llm: provider %s requires an api key", cfg.Provider)
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = defaultEmbed
	}
	if cfg.EmbedDimension <= 0 {
		cfg.EmbedDimension = defaultDimension
	}

	model, err := newModel(cfg, cfg.Model)
	if err != nil {
		return nil, err
	}

	brainstorm := model
	if cfg.BrainstormModel != "" && cfg.BrainstormModel != cfg.Model {
		brainstorm, err = newModel(cfg, cfg.BrainstormModel)
		if err != nil {
			return nil, err
		}
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		model:      model,
		brainstorm: brainstorm,
		embedder:   embedder,
		modelName:  cfg.Model,
		dimension:  cfg.EmbedDimension,
		log:        *logger.Named("llm"),
	}, nil
}

func newModel(cfg Config, name string) (llms.Model, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		m, err := openai.New(openai.WithToken(cfg.APIKey), openai.WithModel(name))
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "llm: create openai model")
		}
		return m, nil
	case ProviderAnthropic:
		m, err := anthropic.New(anthropic.WithToken(cfg.APIKey), anthropic.WithModel(name))
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "llm: create anthropic model")
		}
		return m, nil
	case ProviderOllama:
		m, err := ollama.New(ollama.WithModel(name), ollama.WithServerURL(cfg.OllamaHost))
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "llm: create ollama model")
		}
		return m, nil
	default:
		return nil, perr.InvalidArgf("llm: unsupported provider %q", cfg.Provider)
	}
}

func newEmbedder(cfg Config) (embeddings.Embedder, error) {
	switch cfg.Provider {
	case ProviderOpenAI, ProviderAnthropic:
		// anthropic has no embeddings API; openai serves both cases
		llm, err := openai.New(openai.WithToken(cfg.APIKey), openai.WithEmbeddingModel(cfg.EmbedModel))
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "llm: create embedding client")
		}
		return embeddings.NewEmbedder(llm)
	case ProviderOllama:
		llm, err := ollama.New(ollama.WithModel(cfg.EmbedModel), ollama.WithServerURL(cfg.OllamaHost))
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "llm: create ollama embedding client")
		}
		return embeddings.NewEmbedder(llm)
	default:
		return nil, perr.InvalidArgf("llm: unsupported provider %q", cfg.Provider)
	}
}

// generate runs a system+user chat turn and returns the first choice
func (c *Client) generate(ctx context.Context, model llms.Model, system, user string, maxTokens int) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}
	resp, err := model.GenerateContent(ctx, messages, llms.WithMaxTokens(maxTokens))
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "llm: generate content")
	}
	if len(resp.Choices) == 0 {
		return "", perr.Unavailablef("llm: empty response")
	}
	return resp.Choices[0].Content, nil
}

// Model returns the chat model name
func (c *Client) Model() string { return c.modelName }

// Dimension returns the expected embedding dimension
func (c *Client) Dimension() int { return c.dimension }
