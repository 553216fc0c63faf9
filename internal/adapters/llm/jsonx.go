package llm

import "strings"

// Model output often wraps JSON in markdown fences; these helpers peel that off

// extractJSONObject returns the first JSON object embedded in a model response
func extractJSONObject(response string) string {
	trimmed := stripFences(response)
	if i := strings.IndexByte(trimmed, '{'); i >= 0 {
		return trimmed[i:]
	}
	return trimmed
}

// extractJSONArray returns the first JSON array embedded in a model response
func extractJSONArray(response string) string {
	trimmed := stripFences(response)
	if i := strings.IndexByte(trimmed, '['); i >= 0 {
		return trimmed[i:]
	}
	return trimmed
}

func stripFences(response string) string {
	trimmed := strings.TrimSpace(response)
	if i := strings.Index(trimmed, "```json"); i >= 0 {
		start := i + len("```json")
		if end := strings.Index(trimmed[start:], "```"); end > 0 {
			return strings.TrimSpace(trimmed[start : start+end])
		}
	} else if i := strings.Index(trimmed, "```"); i >= 0 {
		start := i + 3
		// skip a language tag on the fence line
		if nl := strings.IndexByte(trimmed[start:], '\n'); nl > 0 {
			start += nl + 1
		}
		if end := strings.Index(trimmed[start:], "```"); end > 0 {
			return strings.TrimSpace(trimmed[start : start+end])
		}
	}
	return trimmed
}
