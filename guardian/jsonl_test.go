package guardian_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reddygtvs/Archived-News-RAG/guardian"
)

func sampleArticles() []guardian.Article {
	return []guardian.Article{
		{
			ID:                 "world/2015/jun/01/sample-one",
			WebTitle:           "Sample One",
			WebURL:             "https://www.theguardian.com/world/2015/jun/01/sample-one",
			WebPublicationDate: "2015-06-01T10:00:00Z",
			BodyText:           "First article body.",
		},
		{
			ID:                 "politics/2015/jul/12/sample-two",
			WebTitle:           "Sample Two",
			WebURL:             "https://www.theguardian.com/politics/2015/jul/12/sample-two",
			WebPublicationDate: "2015-07-12T08:30:00Z",
			BodyText:           "Second article body.",
		},
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "articles.jsonl")

	require.NoError(t, guardian.WriteJSONL(path, sampleArticles()))

	got, err := guardian.ReadJSONL(path, nil)
	require.NoError(t, err)
	require.Equal(t, sampleArticles(), got)
}

func TestReadJSONLSkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.jsonl")
	content := `{"id": "world/good-one", "webTitle": "Good", "webUrl": "u", "webPublicationDate": "2015-01-01T00:00:00Z", "bodyText": "body"}
this line is not json
{"id": "world/good-two", "webTitle": "Also good", "webUrl": "u", "webPublicationDate": "2015-02-01T00:00:00Z", "bodyText": "body"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var skipped []int
	got, err := guardian.ReadJSONL(path, func(line int, err error) {
		skipped = append(skipped, line)
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "world/good-one", got[0].ID)
	require.Equal(t, "world/good-two", got[1].ID)
	require.Equal(t, []int{2}, skipped)
}

func TestReadJSONLMissingFile(t *testing.T) {
	_, err := guardian.ReadJSONL(filepath.Join(t.TempDir(), "nope.jsonl"), nil)
	require.Error(t, err)
}
