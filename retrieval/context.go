package retrieval

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// SegmentSeparator joins article segments in the generation context. It
	// is chosen so it cannot plausibly occur inside article body text.
	SegmentSeparator = "\n\n---\n\n"

	// TruncationMarker flags bodies cut at the per-article cap so the model
	// does not mistake truncated text for a complete article.
	TruncationMarker = "..."

	// previewChars bounds the client-facing snippet. Deliberately much
	// smaller than the generation cap; the two truncations serve different
	// consumers and must not be conflated.
	previewChars = 500
)

// Summary is the client-facing view of a ranked article: a short preview
// plus the attributes a frontend needs to render a citation list.
type Summary struct {
	Text        string  `json:"text"`
	Source      string  `json:"source"`
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	ArticleID   string  `json:"article_id"`
	MinDistance float64 `json:"min_distance"`
}

// AssembleContext renders ranked articles into one delimited text block for
// the generator prompt. Each segment carries the citation index, source URL
// and publication date in a header/footer pair; bodies longer than
// perArticleCap characters are cut and marked. The returned total is the
// sum of the segment lengths (separators excluded).
func AssembleContext(articles []ScoredArticle, perArticleCap int) (string, int) {
	if len(articles) == 0 {
		return "", 0
	}

	segments := make([]string, 0, len(articles))
	total := 0
	for _, article := range articles {
		body := article.Text
		if perArticleCap > 0 && len(body) > perArticleCap {
			body = cutAtRune(body, perArticleCap) + TruncationMarker
		}

		segment := fmt.Sprintf("[ARTICLE %d START | URL: %s | DATE: %s]\n%s\n[ARTICLE %d END]",
			article.Citation, article.URL, formatDate(article.PublishedAt), body, article.Citation)
		segments = append(segments, segment)
		total += len(segment)
	}

	return strings.Join(segments, SegmentSeparator), total
}

// Summarize produces the client-facing summaries for a ranked article list,
// in citation order.
func Summarize(articles []ScoredArticle) []Summary {
	summaries := make([]Summary, 0, len(articles))
	for _, article := range articles {
		preview := article.Text
		if len(preview) > previewChars {
			preview = cutAtRune(preview, previewChars) + TruncationMarker
		}

		summaries = append(summaries, Summary{
			Text:        preview,
			Source:      article.URL,
			Title:       article.Title,
			Date:        formatDate(article.PublishedAt),
			ArticleID:   article.ID,
			MinDistance: article.MinDistance,
		})
	}
	return summaries
}

// cutAtRune shortens text to at most max bytes without splitting a UTF-8
// sequence, so truncated bodies stay valid text.
func cutAtRune(text string, max int) string {
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max]
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format(time.RFC3339)
}
