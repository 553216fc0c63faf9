package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

const brainstormMaxTokens = 4096

const brainstormPrompt = `You are a business problem analyst. Your task is to brainstorm real, specific business problems in a given industry that could be solved with software. Focus on problems that:
- Are experienced by real businesses or professionals
- Have clear pain points and willingness to pay
- Could be addressed with a SaaS or software product
- Are specific enough to build a product around

Return your response as a JSON array of problem objects. Each object must have these fields:
- title: A concise problem title (5-10 words)
- description: 2-3 sentence description of the problem
- target_customer: Who experiences this problem
- problem_type: One of "workflow", "communication", "data", "compliance", "cost", "automation"
- monetization_model: One of "subscription", "usage_based", "freemium", "marketplace"
- estimated_pain_intensity: One of "high", "medium", "low"

Return ONLY the JSON array, no other text.`

// Idea is one brainstormed problem; extra model fields are preserved in Raw
type Idea struct {
	Title                  string `json:"title"`
	Description            string `json:"description"`
	TargetCustomer         string `json:"target_customer"`
	ProblemType            string `json:"problem_type"`
	MonetizationModel      string `json:"monetization_model"`
	EstimatedPainIntensity string `json:"estimated_pain_intensity"`
}

// Brainstorm asks the model for 5-8 specific problems in an industry.
// An unparseable response returns nil ideas without an error so a single
// bad completion doesn't abort a multi-industry run
func (c *Client) Brainstorm(ctx context.Context, industry string) ([]Idea, error) {
	user := fmt.Sprintf("Generate 5-8 specific business problems in the %s industry that could be solved with software.", industry)

	response, err := c.generate(ctx, c.brainstorm, brainstormPrompt, user, brainstormMaxTokens)
	if err != nil {
		return nil, err
	}
	if response == "" {
		return nil, nil
	}

	var ideas []Idea
	if uerr := json.Unmarshal([]byte(extractJSONArray(response)), &ideas); uerr != nil {
		c.log.Warn().Err(uerr).Str("industry", industry).Msg("failed to parse brainstorm response")
		return nil, nil
	}
	return ideas, nil
}
