package llm

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

const (
	extractMaxTokens = 1000

	// ExtractionPromptName keys the database override for the extraction prompt
	ExtractionPromptName = "problem_extraction_v1"
)

const defaultExtractionPrompt = `You are a business problem extraction expert. Analyze the following raw text from an online source and extract any clear business problem that could be solved with a software product.

Return a JSON object with these fields:
- has_problem (boolean): true if a clear, actionable business problem is described
- title (string): concise problem title, 10-200 characters
- description (string): 2-3 sentence description of the problem
- problem_type (string): one of "workflow", "communication", "data", "compliance", "cost", "automation", "integration", "quality"
- industry (string): the industry affected
- target_customer (string): who experiences this problem
- pain_intensity (string): "high", "medium", or "low"
- monetization_potential (string): "high", "medium", or "low"
- monetization_model (string): one of "subscription", "usage_based", "freemium", "marketplace", "one_time"
- willingness_to_pay_signal (string): evidence that people would pay for a solution
- key_quotes (array of strings): 1-3 direct quotes from the text that evidence the problem
- source_url (string): URL from the source data if available, or empty string

If no clear business problem is found, return: {"has_problem": false}

IMPORTANT: Return ONLY valid JSON, no markdown or extra text.`

// sourceHints appends per-source guidance to the extraction prompt
var sourceHints = map[string]string{
	"APP_STORE":      "\nFocus on: negative reviews, missing features, broken workflows, frustrations. Rating <= 3 stars indicates real pain.",
	"GITHUB":         "\nFocus on: feature requests with many reactions suggest demand. Consider if this could be a standalone product vs just a feature.",
	"UPWORK":         "\nFocus on: the budget signals willingness-to-pay. Extract the automatable business problem behind the freelance request.",
	"HACKER_NEWS":    "\nFocus on: 'I wish there was...' and 'Ask HN' posts indicate unmet needs. Community upvotes signal demand.",
	"REDDIT":         "\nFocus on: complaints, wishlists, and 'someone should build' posts. Upvotes and comments indicate community interest.",
	"PRODUCT_HUNT":   "\nFocus on: constructive criticism and missing features in product comments. These reveal gaps in existing solutions.",
	"LLM_BRAINSTORM": "\nThis is an AI-generated problem brainstorm. Validate the problem is specific and actionable, not generic.",
}

// Extraction is the structured problem the model pulls out of a raw signal
type Extraction struct {
	HasProblem             bool     `json:"has_problem"`
	Title                  string   `json:"title" validate:"required,min=10,max=200"`
	Description            string   `json:"description" validate:"required"`
	ProblemType            string   `json:"problem_type" validate:"required"`
	Industry               string   `json:"industry"`
	TargetCustomer         string   `json:"target_customer"`
	PainIntensity          string   `json:"pain_intensity"`
	MonetizationPotential  string   `json:"monetization_potential"`
	MonetizationModel      string   `json:"monetization_model"`
	WillingnessToPaySignal string   `json:"willingness_to_pay_signal"`
	KeyQuotes              []string `json:"key_quotes"`
	SourceURL              string   `json:"source_url"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Valid reports whether the extraction carries enough to enter the vault
func (e Extraction) Valid() bool {
	if !e.HasProblem {
		return false
	}
	return validate.Struct(e) == nil
}

// PromptSource supplies an active override for a named prompt, "" means use the default
type PromptSource interface {
	ActivePrompt(ctx context.Context, name string) (string, error)
}

// Extract pulls a structured business problem out of raw signal text.
// A response the model flags as no-problem or that fails to parse yields
// Extraction{HasProblem: false} without an error
func (c *Client) Extract(ctx context.Context, prompts PromptSource, sourceType, rawText string) (Extraction, error) {
	system := defaultExtractionPrompt
	if prompts != nil {
		if p, err := prompts.ActivePrompt(ctx, ExtractionPromptName); err != nil {
			c.log.Warn().Err(err).Msg("prompt override lookup failed, using default")
		} else if p != "" {
			system = p
		}
	}
	system += sourceHints[sourceType]

	user := "Source: " + sourceType + "\n\nRaw text:\n" + rawText

	response, err := c.generate(ctx, c.model, system, user, extractMaxTokens)
	if err != nil {
		return Extraction{}, err
	}

	var out Extraction
	if uerr := json.Unmarshal([]byte(extractJSONObject(response)), &out); uerr != nil {
		c.log.Warn().Err(uerr).Msg("failed to parse extraction response")
		return Extraction{}, nil
	}
	return out, nil
}
