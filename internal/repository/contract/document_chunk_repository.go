package contract

import (
	"context"

	"github.com/google/uuid"

	"scoutgpt-be/internal/entity"
	"scoutgpt-be/internal/repository/specification"
)

// ScoredDocumentChunk wraps DocumentChunk with its similarity score
type ScoredDocumentChunk struct {
	Chunk        *entity.DocumentChunk
	DocumentName string
	Similarity   float64 // 0.0 to 1.0 (1.0 = identical)
}

// ChunkSearchFilter narrows similarity search to a subset of the corpus
// before ranking happens. The zero value matches every chunk.
type ChunkSearchFilter struct {
	DocumentIDs []uuid.UUID
	Category    string
}

type DocumentChunkRepository interface {
	Create(ctx context.Context, chunk *entity.DocumentChunk) error
	// UpsertBulk inserts chunks, replacing any existing row with the same
	// (document_id, chunk_index) pair so re-ingestion stays idempotent.
	// Replacement revives soft-deleted rows.
	UpsertBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByDocumentId hard-deletes every chunk of a document.
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore ranks chunks by cosine similarity against the
	// query vector, restricted to the rows the filter admits. Ties break on
	// chunk index, then document id, so identical corpora always rank
	// identically.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, filter ChunkSearchFilter) ([]*ScoredDocumentChunk, error)
}
