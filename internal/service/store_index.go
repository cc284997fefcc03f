package service

import (
	"context"

	"github.com/google/uuid"

	"scoutgpt-be/internal/apperrors"
	"scoutgpt-be/internal/repository/contract"
	"scoutgpt-be/internal/repository/unitofwork"
	"scoutgpt-be/pkg/rag"
)

// storeIndex is the pgvector-backed rag.VectorSearcher: chunks live in
// Postgres and similarity ranking happens in SQL with the same ordering
// contract as the in-memory index. Chunk writes stay with DocumentService
// so they share a transaction with the document row.
type storeIndex struct {
	uowFactory unitofwork.RepositoryFactory
	dimension  int
}

func NewStoreIndex(uowFactory unitofwork.RepositoryFactory, dimension int) (rag.VectorSearcher, error) {
	if dimension <= 0 {
		return nil, apperrors.NewConfigurationError("dimension", "must be a positive integer")
	}
	return &storeIndex{
		uowFactory: uowFactory,
		dimension:  dimension,
	}, nil
}

func (s *storeIndex) Dimension() int {
	return s.dimension
}

func (s *storeIndex) Search(ctx context.Context, vector []float32, k int, filters rag.Filters) ([]rag.ScoredChunk, error) {
	if len(vector) != s.dimension {
		return nil, apperrors.NewDimensionMismatch(s.dimension, len(vector))
	}
	if k <= 0 {
		k = rag.DefaultTopK
	}
	if k > rag.MaxTopK {
		k = rag.MaxTopK
	}

	// Filters become WHERE predicates so ranking only considers candidate
	// rows. A malformed document id can never match anything.
	filter := contract.ChunkSearchFilter{Category: filters.Category}
	if len(filters.DocumentIDs) > 0 {
		ids := make([]uuid.UUID, 0, len(filters.DocumentIDs))
		for _, raw := range filters.DocumentIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			return []rag.ScoredChunk{}, nil
		}
		filter.DocumentIDs = ids
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentChunkRepository().SearchSimilarWithScore(ctx, vector, k, filter)
	if err != nil {
		return nil, err
	}

	hits := make([]rag.ScoredChunk, 0, len(scored))
	for _, sc := range scored {
		hits = append(hits, rag.ScoredChunk{
			DocumentID:   sc.Chunk.DocumentId.String(),
			DocumentName: sc.DocumentName,
			ChunkIndex:   sc.Chunk.ChunkIndex,
			Text:         sc.Chunk.Content,
			Page:         sc.Chunk.Page,
			Score:        sc.Similarity,
		})
	}
	return hits, nil
}
