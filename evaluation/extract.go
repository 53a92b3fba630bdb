package evaluation

import (
	"regexp"
	"strings"
)

var fencedJSONPattern = regexp.MustCompile("(?is)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON pulls a JSON object out of free-form model output. It tries a
// fenced code block first, then falls back to the span between the first
// '{' and the last '}'. This two-stage heuristic is an inherent property of
// unstructured upstream output, so it lives here as one pure, tested
// function.
func ExtractJSON(raw string) (string, bool) {
	if match := fencedJSONPattern.FindStringSubmatch(raw); match != nil {
		return match[1], true
	}

	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first != -1 && last > first {
		return raw[first : last+1], true
	}

	return "", false
}
