package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reddygtvs/Archived-News-RAG/store"
)

func TestNewMetadataStoreNilMap(t *testing.T) {
	s := store.NewMetadataStore(nil)

	require.Zero(t, s.Len())
	_, ok := s.Lookup("missing")
	require.False(t, ok)
}

func TestMetadataStoreLookup(t *testing.T) {
	s := store.NewMetadataStore(map[string]store.ChunkMeta{
		"chunk-1": {ArticleID: "world/a", Position: 3},
	})

	require.Equal(t, 1, s.Len())

	meta, ok := s.Lookup("chunk-1")
	require.True(t, ok)
	require.Equal(t, "world/a", meta.ArticleID)
	require.Equal(t, 3, meta.Position)

	_, ok = s.Lookup("chunk-2")
	require.False(t, ok)
}

func TestNewArticleStoreNilMap(t *testing.T) {
	s := store.NewArticleStore(nil)

	require.Zero(t, s.Len())
	_, ok := s.Lookup("world/missing")
	require.False(t, ok)
}

func TestArticleStoreLookup(t *testing.T) {
	s := store.NewArticleStore(map[string]store.Article{
		"world/a": {ID: "world/a", Title: "Title A", URL: "https://example.com/a", Text: "Body."},
	})

	require.Equal(t, 1, s.Len())

	article, ok := s.Lookup("world/a")
	require.True(t, ok)
	require.Equal(t, "Title A", article.Title)

	_, ok = s.Lookup("world/b")
	require.False(t, ok)
}
