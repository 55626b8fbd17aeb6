//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage/internal/config"
	"github.com/docsage/docsage/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	db, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenMemoryStore(t *testing.T) {
	db := openTestStore(t)
	require.Equal(t, "libsql", db.Driver())
}

func TestReplaceDocumentAndSearch(t *testing.T) {
	ctx := context.Background()
	db := openTestStore(t)

	doc := core.Document{
		ID:         "doc-1",
		Path:       "manual.pdf",
		Pages:      2,
		IngestedAt: time.Now().UTC(),
	}
	require.NoError(t, db.ReplaceDocument(ctx, doc))

	chunks := []core.Chunk{
		{ID: "c1", DocumentID: "doc-1", Seq: 0, Page: 1, Content: "alpha", Embedding: []float32{1, 0, 0}},
		{ID: "c2", DocumentID: "doc-1", Seq: 1, Page: 1, Content: "beta", Embedding: []float32{0, 1, 0}},
		{ID: "c3", DocumentID: "doc-1", Seq: 2, Page: 2, Content: "gamma", Embedding: []float32{0.9, 0.1, 0}},
	}
	require.NoError(t, db.AddChunks(ctx, chunks))

	stored, err := db.GetDocument(ctx, "manual.pdf")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, 3, stored.ChunkCount)

	results, err := db.SimilaritySearch(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "c1", results[0].Chunk.ID)
	require.Equal(t, "c3", results[1].Chunk.ID)
	require.Greater(t, results[0].Score, results[1].Score)
}

func TestReplaceDocumentDropsStaleChunks(t *testing.T) {
	ctx := context.Background()
	db := openTestStore(t)

	doc := core.Document{ID: "doc-1", Path: "manual.pdf", Pages: 1, IngestedAt: time.Now().UTC()}
	require.NoError(t, db.ReplaceDocument(ctx, doc))
	require.NoError(t, db.AddChunks(ctx, []core.Chunk{
		{ID: "old", DocumentID: "doc-1", Seq: 0, Page: 1, Content: "stale", Embedding: []float32{1}},
	}))

	// Re-ingest the same path under a new document ID.
	doc2 := core.Document{ID: "doc-2", Path: "manual.pdf", Pages: 1, IngestedAt: time.Now().UTC()}
	require.NoError(t, db.ReplaceDocument(ctx, doc2))
	require.NoError(t, db.AddChunks(ctx, []core.Chunk{
		{ID: "fresh", DocumentID: "doc-2", Seq: 0, Page: 1, Content: "fresh", Embedding: []float32{1}},
	}))

	results, err := db.SimilaritySearch(ctx, []float32{1}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "fresh", results[0].Chunk.ID)
}

func TestConversationRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestStore(t)

	base := time.Now().UTC()
	turns := []core.Turn{
		{Role: core.RoleUser, Content: "first question", CreatedAt: base},
		{Role: core.RoleAssistant, Content: "first answer", CreatedAt: base.Add(time.Second)},
		{Role: core.RoleUser, Content: "second question", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, turn := range turns {
		require.NoError(t, db.SaveTurn(ctx, "conv-1", turn))
	}

	loaded, err := db.LoadRecentTurns(ctx, "conv-1", 2)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, "first answer", loaded[0].Content)
	require.Equal(t, "second question", loaded[1].Content)

	none, err := db.LoadRecentTurns(ctx, "conv-missing", 5)
	require.NoError(t, err)
	require.Empty(t, none)
}
