package retrieval_test

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/reddygtvs/Archived-News-RAG/retrieval"
)

func scoredFixture(citation int, text string) retrieval.ScoredArticle {
	id := fmt.Sprintf("world/article-%d", citation)
	return retrieval.ScoredArticle{
		ID:          id,
		Title:       fmt.Sprintf("Title %d", citation),
		URL:         "https://example.com/" + id,
		Text:        text,
		PublishedAt: time.Date(2015, time.March, 14, 9, 30, 0, 0, time.UTC),
		MinDistance: 0.42,
		HitCount:    1,
		Citation:    citation,
	}
}

func TestAssembleContextEmptyInput(t *testing.T) {
	text, total := retrieval.AssembleContext(nil, 1000)
	require.Equal(t, "", text)
	require.Equal(t, 0, total)
}

func TestAssembleContextSegmentFormat(t *testing.T) {
	articles := []retrieval.ScoredArticle{scoredFixture(1, "Body one.")}

	text, total := retrieval.AssembleContext(articles, 1000)

	require.Equal(t, "[ARTICLE 1 START | URL: https://example.com/world/article-1 | DATE: 2015-03-14T09:30:00Z]\nBody one.\n[ARTICLE 1 END]", text)
	require.Equal(t, len(text), total)
}

func TestAssembleContextJoinsSegmentsWithSeparator(t *testing.T) {
	articles := []retrieval.ScoredArticle{
		scoredFixture(1, "Body one."),
		scoredFixture(2, "Body two."),
		scoredFixture(3, "Body three."),
	}

	text, total := retrieval.AssembleContext(articles, 1000)

	segments := strings.Split(text, retrieval.SegmentSeparator)
	require.Len(t, segments, 3)
	for i, segment := range segments {
		require.True(t, strings.HasPrefix(segment, fmt.Sprintf("[ARTICLE %d START", i+1)))
		require.True(t, strings.HasSuffix(segment, fmt.Sprintf("[ARTICLE %d END]", i+1)))
	}

	// The reported total excludes the separators.
	require.Equal(t, len(text)-2*len(retrieval.SegmentSeparator), total)
}

func TestAssembleContextTruncatesLongBodies(t *testing.T) {
	long := strings.Repeat("x", 200)
	articles := []retrieval.ScoredArticle{scoredFixture(1, long)}

	text, _ := retrieval.AssembleContext(articles, 50)

	require.Contains(t, text, strings.Repeat("x", 50)+retrieval.TruncationMarker)
	require.NotContains(t, text, strings.Repeat("x", 51))
}

func TestAssembleContextZeroCapDisablesTruncation(t *testing.T) {
	long := strings.Repeat("y", 200)
	articles := []retrieval.ScoredArticle{scoredFixture(1, long)}

	text, _ := retrieval.AssembleContext(articles, 0)

	require.Contains(t, text, long)
	require.NotContains(t, text, long+retrieval.TruncationMarker)
}

func TestAssembleContextTruncatesOnRuneBoundary(t *testing.T) {
	// Two-byte runes with a cap that lands mid-rune: the cut must back off
	// to the previous boundary instead of emitting a broken sequence.
	articles := []retrieval.ScoredArticle{scoredFixture(1, strings.Repeat("é", 30))}

	text, _ := retrieval.AssembleContext(articles, 5)

	require.True(t, utf8.ValidString(text))
	require.Contains(t, text, strings.Repeat("é", 2)+retrieval.TruncationMarker)
	require.NotContains(t, text, strings.Repeat("é", 3))
}

func TestSummarizePreviewStaysValidUTF8(t *testing.T) {
	long := strings.Repeat("日", 400)

	summaries := retrieval.Summarize([]retrieval.ScoredArticle{scoredFixture(1, long)})

	require.True(t, utf8.ValidString(summaries[0].Text))
	require.Equal(t, strings.Repeat("日", 166)+retrieval.TruncationMarker, summaries[0].Text)
}

func TestSummarizeTruncatesPreview(t *testing.T) {
	long := strings.Repeat("z", 600)
	articles := []retrieval.ScoredArticle{scoredFixture(1, long)}

	summaries := retrieval.Summarize(articles)

	require.Len(t, summaries, 1)
	require.Equal(t, strings.Repeat("z", 500)+retrieval.TruncationMarker, summaries[0].Text)
}

func TestSummarizeCarriesCitationAttributes(t *testing.T) {
	articles := []retrieval.ScoredArticle{scoredFixture(2, "Short body.")}

	summaries := retrieval.Summarize(articles)

	require.Len(t, summaries, 1)
	summary := summaries[0]
	require.Equal(t, "Short body.", summary.Text)
	require.Equal(t, "https://example.com/world/article-2", summary.Source)
	require.Equal(t, "Title 2", summary.Title)
	require.Equal(t, "2015-03-14T09:30:00Z", summary.Date)
	require.Equal(t, "world/article-2", summary.ArticleID)
	require.Equal(t, 0.42, summary.MinDistance)
}

func TestSummarizeMissingDate(t *testing.T) {
	article := scoredFixture(1, "Body.")
	article.PublishedAt = time.Time{}

	summaries := retrieval.Summarize([]retrieval.ScoredArticle{article})

	require.Equal(t, "N/A", summaries[0].Date)
}
