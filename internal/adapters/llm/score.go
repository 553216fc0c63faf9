package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

const scoreMaxTokens = 500

const scorePrompt = `You are a business opportunity scoring expert. Score the given business problem using the DPGTF framework.

Score each dimension on its specific scale:
- demand (0-25): Is there growing interest/market for this? Consider search trends, community interest, number of people affected.
- pain (0-25): How painful is this problem? Consider severity, frequency, workarounds, frustration level.
- gap (0-20): Is the market underserved? Consider existing solutions, their weaknesses, price gaps.
- timing (0-15): Is now the right time? Consider technology readiness, regulatory changes, behavioral shifts.
- feasibility (0-15): Can a small team build this? Consider technical complexity, required integrations, time to MVP.

Also provide a 1-sentence rationale for each score.

Return ONLY a JSON object with this structure:
{
  "demand": {"score": 0, "rationale": "..."},
  "pain": {"score": 0, "rationale": "..."},
  "gap": {"score": 0, "rationale": "..."},
  "timing": {"score": 0, "rationale": "..."},
  "feasibility": {"score": 0, "rationale": "..."}
}`

// Scores holds clamped DPGTF dimension scores, overall is their sum
type Scores struct {
	Demand      float64 `json:"demand"`
	Pain        float64 `json:"pain"`
	Gap         float64 `json:"gap"`
	Timing      float64 `json:"timing"`
	Feasibility float64 `json:"feasibility"`
	Overall     float64 `json:"overall"`
}

// ScoreInput describes the vault entry being scored
type ScoreInput struct {
	Title          string
	Description    string
	Industry       string
	TargetCustomer string
	ProblemType    string
	SourceCount    int
}

type dimensionScore struct {
	Score     int    `json:"score"`
	Rationale string `json:"rationale"`
}

type rawScores struct {
	Demand      dimensionScore `json:"demand"`
	Pain        dimensionScore `json:"pain"`
	Gap         dimensionScore `json:"gap"`
	Timing      dimensionScore `json:"timing"`
	Feasibility dimensionScore `json:"feasibility"`
}

// Score runs the DPGTF rubric over a problem and returns clamped scores
func (c *Client) Score(ctx context.Context, in ScoreInput) (Scores, error) {
	user := fmt.Sprintf(`Problem: %s
Description: %s
Industry: %s
Target Customer: %s
Problem Type: %s
Sources confirming this problem: %d
`, in.Title, in.Description, orUnknown(in.Industry), orUnknown(in.TargetCustomer), orUnknown(in.ProblemType), in.SourceCount)

	response, err := c.generate(ctx, c.model, scorePrompt, user, scoreMaxTokens)
	if err != nil {
		return Scores{}, err
	}

	var raw rawScores
	if uerr := json.Unmarshal([]byte(extractJSONObject(response)), &raw); uerr != nil {
		return Scores{}, fmt.Errorf("llm: parse scoring response: %w", uerr)
	}

	s := Scores{
		Demand:      clamp(raw.Demand.Score, 25),
		Pain:        clamp(raw.Pain.Score, 25),
		Gap:         clamp(raw.Gap.Score, 20),
		Timing:      clamp(raw.Timing.Score, 15),
		Feasibility: clamp(raw.Feasibility.Score, 15),
	}
	s.Overall = s.Demand + s.Pain + s.Gap + s.Timing + s.Feasibility
	return s, nil
}

func clamp(score, max int) float64 {
	if score < 0 {
		return 0
	}
	if score > max {
		return float64(max)
	}
	return float64(score)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
