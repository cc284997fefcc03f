package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoutgpt-be/internal/apperrors"
	"scoutgpt-be/internal/entity"
	"scoutgpt-be/pkg/rag"
)

// seedChunk adds one chunk whose first vector component carries the score.
func seedChunk(store *fakeStore, documentId uuid.UUID, index int, weight float32) {
	store.chunks = append(store.chunks, &entity.DocumentChunk{
		Id:             uuid.New(),
		DocumentId:     documentId,
		ChunkIndex:     index,
		Content:        fmt.Sprintf("chunk %d", index),
		EmbeddingValue: []float32{weight, 0, 0, 0},
		CreatedAt:      time.Now(),
	})
}

func TestStoreIndexFiltersBeforeRanking(t *testing.T) {
	store := &fakeStore{}
	docA := uuid.New()
	docB := uuid.New()
	store.documents = append(store.documents,
		&entity.Document{Id: docA, Name: "Lease Agreement", Category: "lease"},
		&entity.Document{Id: docB, Name: "Zoning Report", Category: "zoning"},
	)

	// Every chunk of document A outranks document B's single chunk, so a
	// post-ranking filter over a small window would miss B entirely.
	for i := 0; i < 10; i++ {
		seedChunk(store, docA, i, 0.9)
	}
	seedChunk(store, docB, 0, 0.1)

	index, err := NewStoreIndex(&fakeFactory{store: store}, 4)
	require.NoError(t, err)

	ctx := context.Background()
	query := []float32{1, 0, 0, 0}

	hits, err := index.Search(ctx, query, 5, rag.Filters{DocumentIDs: []string{docB.String()}})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, docB.String(), hits[0].DocumentID)
	assert.Equal(t, "Zoning Report", hits[0].DocumentName)

	hits, err = index.Search(ctx, query, 5, rag.Filters{Category: "zoning"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, docB.String(), hits[0].DocumentID)
}

func TestStoreIndexUnfilteredRespectsLimit(t *testing.T) {
	store := &fakeStore{}
	docA := uuid.New()
	store.documents = append(store.documents, &entity.Document{Id: docA, Name: "Deed"})
	for i := 0; i < 10; i++ {
		seedChunk(store, docA, i, float32(10-i))
	}

	index, err := NewStoreIndex(&fakeFactory{store: store}, 4)
	require.NoError(t, err)

	hits, err := index.Search(context.Background(), []float32{1, 0, 0, 0}, 3, rag.Filters{})
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, 0, hits[0].ChunkIndex)
	assert.Equal(t, 1, hits[1].ChunkIndex)
	assert.Equal(t, 2, hits[2].ChunkIndex)
}

func TestStoreIndexRejectsWrongQueryDimension(t *testing.T) {
	index, err := NewStoreIndex(&fakeFactory{store: &fakeStore{}}, 4)
	require.NoError(t, err)

	_, err = index.Search(context.Background(), []float32{1, 0}, 5, rag.Filters{})
	require.Error(t, err)
	assert.True(t, apperrors.IsDimensionMismatch(err))
}

func TestStoreIndexMalformedDocumentFilterMatchesNothing(t *testing.T) {
	store := &fakeStore{}
	docA := uuid.New()
	store.documents = append(store.documents, &entity.Document{Id: docA, Name: "Deed"})
	seedChunk(store, docA, 0, 1)

	index, err := NewStoreIndex(&fakeFactory{store: store}, 4)
	require.NoError(t, err)

	hits, err := index.Search(context.Background(), []float32{1, 0, 0, 0}, 5, rag.Filters{DocumentIDs: []string{"not-a-uuid"}})
	require.NoError(t, err)
	assert.Empty(t, hits)
}
