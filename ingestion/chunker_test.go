package ingestion_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reddygtvs/Archived-News-RAG/ingestion"
)

func TestChunkTextEmpty(t *testing.T) {
	require.Nil(t, ingestion.ChunkText("", 512, 64))
	require.Nil(t, ingestion.ChunkText("   \n\t  ", 512, 64))
}

func TestChunkTextShorterThanWindow(t *testing.T) {
	chunks := ingestion.ChunkText("  a short article body  ", 512, 64)

	require.Equal(t, []string{"a short article body"}, chunks)
}

func TestChunkTextRespectsWindowSize(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta ", 100)

	chunks := ingestion.ChunkText(text, 128, 16)

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		require.LessOrEqual(t, len(chunk), 128, "chunk %d", i)
		require.NotEmpty(t, chunk)
	}
}

func TestChunkTextPrefersWordBoundaries(t *testing.T) {
	text := strings.Repeat("alpha ", 50)

	chunks := ingestion.ChunkText(text, 32, 4)

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks[:len(chunks)-1] {
		require.True(t, strings.HasSuffix(chunk, "alpha"), "chunk %d ends mid-word: %q", i, chunk)
	}
}

func TestChunkTextConsecutiveChunksOverlap(t *testing.T) {
	// Digits only, no spaces: boundaries land exactly at the window size and
	// the shared region is byte-identical.
	text := strings.Repeat("0123456789", 10)

	chunks := ingestion.ChunkText(text, 20, 4)

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-4:]
		require.True(t, strings.HasPrefix(chunks[i], tail), "chunk %d does not continue chunk %d", i, i-1)
	}
}

func TestChunkTextDefaults(t *testing.T) {
	text := strings.Repeat("x", 400)

	chunks := ingestion.ChunkText(text, 0, -1)

	// Defaults to a 512-character window, so this text fits in one chunk.
	require.Equal(t, []string{text}, chunks)
}

func TestChunkTextExcessiveOverlapDisabled(t *testing.T) {
	text := strings.Repeat("0123456789", 10)

	// An overlap of more than half the window would make the walk crawl;
	// it collapses to no overlap instead.
	chunks := ingestion.ChunkText(text, 20, 60)

	require.Len(t, chunks, 5)
	require.Equal(t, text[:20], chunks[0])
	require.Equal(t, text[20:40], chunks[1])
}
