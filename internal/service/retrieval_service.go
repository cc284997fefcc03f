package service

import (
	"context"

	"scoutgpt-be/internal/repository/unitofwork"
	"scoutgpt-be/pkg/embedding"
	"scoutgpt-be/pkg/rag"
)

// retrievalService is the pgvector-backed rag.Searcher behind the document
// search tool: a rag.Retriever running over the store index, so Postgres
// does the similarity ranking.
type retrievalService struct {
	retriever *rag.Retriever
}

func NewRetrievalService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	maxChunks int,
) (rag.Searcher, error) {
	index, err := NewStoreIndex(uowFactory, embeddingProvider.Dimension())
	if err != nil {
		return nil, err
	}
	return &retrievalService{
		retriever: rag.NewRetriever(embeddingProvider, index, maxChunks),
	}, nil
}

func (s *retrievalService) Search(ctx context.Context, query string, maxResults int) ([]rag.ScoredChunk, error) {
	return s.retriever.Search(ctx, query, maxResults)
}
