package rag

import (
	"context"
	"fmt"

	"scoutgpt-be/pkg/embedding"
)

// Searcher answers free-text queries with the most relevant chunks.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]ScoredChunk, error)
}

// Retriever embeds a query and ranks it against a vector index. It is the
// default Searcher behind the document search tool.
type Retriever struct {
	embedder  embedding.Provider
	index     VectorSearcher
	maxChunks int
}

func NewRetriever(embedder embedding.Provider, index VectorSearcher, maxChunks int) *Retriever {
	if maxChunks <= 0 {
		maxChunks = DefaultTopK
	}
	return &Retriever{embedder: embedder, index: index, maxChunks: maxChunks}
}

func (r *Retriever) Search(ctx context.Context, query string, maxResults int) ([]ScoredChunk, error) {
	if query == "" {
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = r.maxChunks
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 query vector, got %d", len(vectors))
	}

	return r.index.Search(ctx, vectors[0], maxResults, Filters{})
}
