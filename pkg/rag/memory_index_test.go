package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoutgpt-be/internal/apperrors"
)

func chunk(docID string, idx int, vec []float32) IndexedChunk {
	return IndexedChunk{
		DocumentID:   docID,
		DocumentName: docID + ".pdf",
		ChunkIndex:   idx,
		Text:         "chunk text",
		Vector:       vec,
	}
}

func TestMemoryIndexRejectsBadDimension(t *testing.T) {
	_, err := NewMemoryIndex(0)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestMemoryIndexUpsertDimensionMismatch(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	require.NoError(t, err)

	err = idx.Upsert(context.Background(), []IndexedChunk{chunk("doc-a", 0, []float32{1, 0})})
	require.Error(t, err)
	assert.True(t, apperrors.IsDimensionMismatch(err))
}

func TestMemoryIndexSearchRanksByCosine(t *testing.T) {
	idx, err := NewMemoryIndex(2)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, []IndexedChunk{
		chunk("doc-a", 0, []float32{1, 0}),
		chunk("doc-a", 1, []float32{0, 1}),
		chunk("doc-b", 0, []float32{0.7, 0.7}),
	}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 2, Filters{})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "doc-a", hits[0].DocumentID)
	assert.Equal(t, 0, hits[0].ChunkIndex)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.Equal(t, "doc-b", hits[1].DocumentID)
}

func TestMemoryIndexTieBreakIsDeterministic(t *testing.T) {
	idx, err := NewMemoryIndex(2)
	require.NoError(t, err)

	ctx := context.Background()
	// Identical vectors, so scores tie exactly. Order must fall back to
	// chunk index then document id.
	require.NoError(t, idx.Upsert(ctx, []IndexedChunk{
		chunk("doc-b", 0, []float32{1, 0}),
		chunk("doc-a", 1, []float32{1, 0}),
		chunk("doc-a", 0, []float32{1, 0}),
	}))

	for run := 0; run < 10; run++ {
		hits, err := idx.Search(ctx, []float32{1, 0}, 3, Filters{})
		require.NoError(t, err)
		require.Len(t, hits, 3)
		assert.Equal(t, "doc-a", hits[0].DocumentID)
		assert.Equal(t, 0, hits[0].ChunkIndex)
		assert.Equal(t, "doc-b", hits[1].DocumentID)
		assert.Equal(t, 0, hits[1].ChunkIndex)
		assert.Equal(t, "doc-a", hits[2].DocumentID)
		assert.Equal(t, 1, hits[2].ChunkIndex)
	}
}

func TestMemoryIndexUpsertIsIdempotent(t *testing.T) {
	idx, err := NewMemoryIndex(2)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, []IndexedChunk{chunk("doc-a", 0, []float32{1, 0})}))
	require.NoError(t, idx.Upsert(ctx, []IndexedChunk{chunk("doc-a", 0, []float32{0, 1})}))

	hits, err := idx.Search(ctx, []float32{0, 1}, 10, Filters{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestMemoryIndexZeroVectorRanksLast(t *testing.T) {
	idx, err := NewMemoryIndex(2)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, []IndexedChunk{
		chunk("doc-a", 0, []float32{0, 0}),
		chunk("doc-b", 0, []float32{1, 0}),
	}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 2, Filters{})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "doc-b", hits[0].DocumentID)
	assert.Equal(t, 0.0, hits[1].Score)
}

func TestMemoryIndexFilters(t *testing.T) {
	idx, err := NewMemoryIndex(2)
	require.NoError(t, err)

	ctx := context.Background()
	zoning := chunk("doc-a", 0, []float32{1, 0})
	zoning.Metadata = map[string]interface{}{"category": "zoning"}
	deed := chunk("doc-b", 0, []float32{1, 0})
	deed.Metadata = map[string]interface{}{"category": "deed"}
	require.NoError(t, idx.Upsert(ctx, []IndexedChunk{zoning, deed}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 10, Filters{Category: "zoning"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-a", hits[0].DocumentID)

	hits, err = idx.Search(ctx, []float32{1, 0}, 10, Filters{DocumentIDs: []string{"doc-b"}})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-b", hits[0].DocumentID)
}

func TestMemoryIndexRemove(t *testing.T) {
	idx, err := NewMemoryIndex(2)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, []IndexedChunk{
		chunk("doc-a", 0, []float32{1, 0}),
		chunk("doc-a", 1, []float32{0, 1}),
		chunk("doc-b", 0, []float32{1, 0}),
	}))
	require.NoError(t, idx.Remove(ctx, "doc-a"))

	hits, err := idx.Search(ctx, []float32{1, 0}, 10, Filters{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-b", hits[0].DocumentID)
}

func TestSearchQueryDimensionMismatch(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	require.NoError(t, err)

	_, err = idx.Search(context.Background(), []float32{1, 0}, 5, Filters{})
	require.Error(t, err)
	assert.True(t, apperrors.IsDimensionMismatch(err))
}
