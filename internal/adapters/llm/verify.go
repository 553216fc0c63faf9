package llm

import (
	"context"
	"fmt"
	"strings"
)

const verifyMaxTokens = 10

const verifyPrompt = `You are a deduplication expert. Given two business problems, determine if they describe the SAME core problem (even if worded differently) or if they are genuinely DIFFERENT problems.

Respond with ONLY one word: "DUPLICATE" or "DIFFERENT"`

// VerifyDuplicate asks the model whether two problems are the same core problem.
// Errors surface to the caller so borderline cases can default to not-duplicate
func (c *Client) VerifyDuplicate(ctx context.Context, titleA, descA, titleB, descB string) (bool, error) {
	user := fmt.Sprintf(`Problem A:
Title: %s
Description: %s

Problem B:
Title: %s
Description: %s

Are these the SAME problem or DIFFERENT problems?
`, titleA, descA, titleB, descB)

	response, err := c.generate(ctx, c.model, verifyPrompt, user, verifyMaxTokens)
	if err != nil {
		return false, err
	}
	dup := strings.Contains(strings.ToUpper(strings.TrimSpace(response)), "DUPLICATE")
	c.log.Debug().Str("title_a", titleA).Str("title_b", titleB).Bool("duplicate", dup).
		Msg("dedup verification")
	return dup, nil
}
