package rag

import "context"

// IndexedChunk is one embedded chunk as stored in a retrieval index.
type IndexedChunk struct {
	DocumentID   string
	DocumentName string
	ChunkIndex   int
	Text         string
	Page         int
	Vector       []float32
	Metadata     map[string]interface{}
}

// ScoredChunk is one retrieval hit with its cosine similarity score.
type ScoredChunk struct {
	DocumentID   string                 `json:"document_id"`
	DocumentName string                 `json:"document_name"`
	ChunkIndex   int                    `json:"chunk_index"`
	Text         string                 `json:"text"`
	Page         int                    `json:"page,omitempty"`
	Score        float64                `json:"score"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// Filters narrows a search to a subset of the corpus. Zero value matches
// everything.
type Filters struct {
	DocumentIDs []string
	Category    string
}

// VectorSearcher answers nearest-neighbor queries by cosine similarity.
// Implementations must rank deterministically: score descending, then
// chunk index ascending, then document id ascending. Filters restrict the
// candidate set before ranking.
type VectorSearcher interface {
	Search(ctx context.Context, vector []float32, k int, filters Filters) ([]ScoredChunk, error)
	Dimension() int
}

// Index is a VectorSearcher that also owns chunk storage. Backends whose
// chunks are written elsewhere only need the search side.
type Index interface {
	VectorSearcher
	Upsert(ctx context.Context, chunks []IndexedChunk) error
	Remove(ctx context.Context, documentID string) error
}
