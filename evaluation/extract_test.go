package evaluation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reddygtvs/Archived-News-RAG/evaluation"
)

func TestExtractJSONFencedBlock(t *testing.T) {
	raw := "Here are the scores:\n```json\n{\"a\": 1}\n```\nHope that helps."

	payload, ok := evaluation.ExtractJSON(raw)

	require.True(t, ok)
	require.Equal(t, `{"a": 1}`, payload)
}

func TestExtractJSONFenceWithoutLanguageTag(t *testing.T) {
	raw := "```\n{\"a\": 1}\n```"

	payload, ok := evaluation.ExtractJSON(raw)

	require.True(t, ok)
	require.Equal(t, `{"a": 1}`, payload)
}

func TestExtractJSONUppercaseFence(t *testing.T) {
	raw := "```JSON\n{\"a\": 1}\n```"

	payload, ok := evaluation.ExtractJSON(raw)

	require.True(t, ok)
	require.Equal(t, `{"a": 1}`, payload)
}

func TestExtractJSONBraceSpanFallback(t *testing.T) {
	raw := `The evaluation is {"a": {"b": 2}} as requested.`

	payload, ok := evaluation.ExtractJSON(raw)

	require.True(t, ok)
	require.Equal(t, `{"a": {"b": 2}}`, payload)
}

func TestExtractJSONPrefersFenceOverBareBraces(t *testing.T) {
	raw := "{not json}\n```json\n{\"a\": 1}\n```"

	payload, ok := evaluation.ExtractJSON(raw)

	require.True(t, ok)
	require.Equal(t, `{"a": 1}`, payload)
}

func TestExtractJSONNoStructure(t *testing.T) {
	_, ok := evaluation.ExtractJSON("no json here at all")
	require.False(t, ok)
}

func TestExtractJSONUnbalancedBraces(t *testing.T) {
	_, ok := evaluation.ExtractJSON("} backwards {")
	require.False(t, ok)
}
