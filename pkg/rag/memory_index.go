package rag

import (
	"context"
	"math"
	"sort"
	"sync"

	"scoutgpt-be/internal/apperrors"
)

const (
	DefaultTopK = 5
	MaxTopK     = 50
)

// MemoryIndex is an exact, full-scan in-memory Index. It backs local runs
// and tests; production deployments use the pgvector-backed store instead.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	chunks    map[chunkKey]IndexedChunk
}

type chunkKey struct {
	documentID string
	chunkIndex int
}

func NewMemoryIndex(dimension int) (*MemoryIndex, error) {
	if dimension <= 0 {
		return nil, apperrors.NewConfigurationError("dimension", "must be a positive integer")
	}
	return &MemoryIndex{
		dimension: dimension,
		chunks:    make(map[chunkKey]IndexedChunk),
	}, nil
}

func (idx *MemoryIndex) Dimension() int {
	return idx.dimension
}

// Upsert inserts or replaces chunks keyed by (document id, chunk index).
// Re-ingesting a document overwrites its prior vectors rather than
// duplicating them.
func (idx *MemoryIndex) Upsert(_ context.Context, chunks []IndexedChunk) error {
	for _, c := range chunks {
		if len(c.Vector) != idx.dimension {
			return apperrors.NewDimensionMismatch(idx.dimension, len(c.Vector))
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, c := range chunks {
		idx.chunks[chunkKey{c.DocumentID, c.ChunkIndex}] = c
	}
	return nil
}

func (idx *MemoryIndex) Remove(_ context.Context, documentID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for key := range idx.chunks {
		if key.documentID == documentID {
			delete(idx.chunks, key)
		}
	}
	return nil
}

func (idx *MemoryIndex) Search(_ context.Context, vector []float32, k int, filters Filters) ([]ScoredChunk, error) {
	if len(vector) != idx.dimension {
		return nil, apperrors.NewDimensionMismatch(idx.dimension, len(vector))
	}
	if k <= 0 {
		k = DefaultTopK
	}
	if k > MaxTopK {
		k = MaxTopK
	}

	var allowed map[string]struct{}
	if len(filters.DocumentIDs) > 0 {
		allowed = make(map[string]struct{}, len(filters.DocumentIDs))
		for _, id := range filters.DocumentIDs {
			allowed[id] = struct{}{}
		}
	}

	idx.mu.RLock()
	scored := make([]ScoredChunk, 0, len(idx.chunks))
	for _, c := range idx.chunks {
		if allowed != nil {
			if _, ok := allowed[c.DocumentID]; !ok {
				continue
			}
		}
		if filters.Category != "" {
			cat, _ := c.Metadata["category"].(string)
			if cat != filters.Category {
				continue
			}
		}
		scored = append(scored, ScoredChunk{
			DocumentID:   c.DocumentID,
			DocumentName: c.DocumentName,
			ChunkIndex:   c.ChunkIndex,
			Text:         c.Text,
			Page:         c.Page,
			Score:        CosineSimilarity(vector, c.Vector),
			Metadata:     c.Metadata,
		})
	}
	idx.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].ChunkIndex != scored[j].ChunkIndex {
			return scored[i].ChunkIndex < scored[j].ChunkIndex
		}
		return scored[i].DocumentID < scored[j].DocumentID
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// CosineSimilarity returns the cosine of the angle between two equal-length
// vectors. A zero-norm operand yields 0 so empty embeddings rank last.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
