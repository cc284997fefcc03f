package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"scoutgpt-be/internal/apperrors"
	"scoutgpt-be/internal/dto"
	"scoutgpt-be/internal/entity"
	"scoutgpt-be/internal/pkg/logger"
	"scoutgpt-be/internal/tracer"
	"scoutgpt-be/internal/repository/specification"
	"scoutgpt-be/internal/repository/unitofwork"
	"scoutgpt-be/pkg/chunker"
	"scoutgpt-be/pkg/embedding"
	"scoutgpt-be/pkg/events"
	pktNats "scoutgpt-be/pkg/nats"
)

type IDocumentService interface {
	Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	List(ctx context.Context, q *dto.ListDocumentsQuery) ([]*dto.ShowDocumentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reindex(ctx context.Context, id uuid.UUID) error
	// ReindexNow re-chunks and re-embeds a stored document in place. It is
	// called by the reindex consumer, not by request handlers.
	ReindexNow(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	publisherService  IPublisherService
	eventPublisher    *pktNats.Publisher
	chunkSize         int
	chunkOverlap      int
	log               logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	chunkSize, chunkOverlap int,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		publisherService:  publisherService,
		eventPublisher:    eventPublisher,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
		log:               log,
	}
}

// Ingest chunks, embeds, and persists a document in one transaction.
// Embedding failures abort the whole ingestion so the corpus never holds
// a partially indexed document.
func (s *documentService) Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	ctx, span := tracer.Start(ctx, "document.ingest",
		attribute.String("document.name", req.Name),
	)
	defer span.End()

	pieces, err := chunker.Split(req.Content, s.chunkSize, s.chunkOverlap)
	if err != nil {
		return nil, err
	}
	chunker.AssignPages(pieces, req.PageOffsets)

	documentId := uuid.New()
	chunkEntities, err := s.embedChunks(ctx, documentId, pieces)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("document.chunks", len(chunkEntities)))

	pageCount := 0
	if len(pieces) > 0 {
		pageCount = len(req.PageOffsets) + 1
	}

	document := entity.Document{
		Id:          documentId,
		Name:        req.Name,
		ContentType: req.ContentType,
		Category:    req.Category,
		Content:     req.Content,
		PageOffsets: req.PageOffsets,
		PageCount:   pageCount,
		ChunkCount:  len(chunkEntities),
		CreatedAt:   time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}
	if err := uow.DocumentChunkRepository().UpsertBulk(ctx, chunkEntities); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewDocumentIngested(document.Id.String(), document.Name, document.ChunkCount))
	s.log.Info("document", "document ingested", map[string]interface{}{
		"document_id": document.Id.String(),
		"name":        document.Name,
		"chunks":      document.ChunkCount,
	})

	return &dto.IngestDocumentResponse{
		Id:         document.Id,
		Name:       document.Name,
		ChunkCount: document.ChunkCount,
		PageCount:  document.PageCount,
	}, nil
}

// embedChunks embeds all chunk texts in one batch and pairs the vectors
// back with their chunks. The batch either succeeds whole or fails whole.
func (s *documentService) embedChunks(ctx context.Context, documentId uuid.UUID, pieces []chunker.Chunk) ([]*entity.DocumentChunk, error) {
	if len(pieces) == 0 {
		return nil, nil
	}

	texts := make([]string, len(pieces))
	for i, p := range pieces {
		texts[i] = p.Text
	}

	vectors, err := s.embeddingProvider.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(pieces) {
		return nil, apperrors.NewEmbeddingUnavailable("batch", fmt.Errorf("expected %d vectors, got %d", len(pieces), len(vectors)))
	}

	want := s.embeddingProvider.Dimension()
	chunks := make([]*entity.DocumentChunk, len(pieces))
	for i, p := range pieces {
		if len(vectors[i]) != want {
			return nil, apperrors.NewDimensionMismatch(want, len(vectors[i]))
		}
		chunks[i] = &entity.DocumentChunk{
			Id:             uuid.New(),
			DocumentId:     documentId,
			ChunkIndex:     p.Index,
			Content:        p.Text,
			Page:           p.Page,
			EmbeddingValue: vectors[i],
			CreatedAt:      time.Now(),
		}
	}
	return chunks, nil
}

func (s *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, nil
	}
	return toShowDocumentResponse(document), nil
}

func (s *documentService) List(ctx context.Context, q *dto.ListDocumentsQuery) ([]*dto.ShowDocumentResponse, error) {
	specs := []specification.Specification{specification.OrderBy{Field: "created_at", Desc: true}}
	if q != nil {
		if q.Category != "" {
			specs = append(specs, specification.ByCategory{Category: q.Category})
		}
		if q.Name != "" {
			specs = append(specs, specification.ByNameLike{Name: q.Name})
		}
		if q.Limit > 0 {
			specs = append(specs, specification.Pagination{Limit: q.Limit, Offset: q.Offset})
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	documents, err := uow.DocumentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ShowDocumentResponse, len(documents))
	for i, d := range documents {
		out[i] = toShowDocumentResponse(d)
	}
	return out, nil
}

// Delete removes a document and its chunks together.
func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.publishEvent(ctx, events.NewDocumentDeleted(id.String()))
	return nil
}

// Reindex schedules a background re-chunk and re-embed, used after the
// chunking or embedding configuration changes.
func (s *documentService) Reindex(ctx context.Context, id uuid.UUID) error {
	msgJson, err := json.Marshal(dto.ReindexDocumentMessage{DocumentId: id})
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, msgJson)
}

func (s *documentService) ReindexNow(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if document == nil {
		return fmt.Errorf("document %s not found", id)
	}

	// Re-chunk the stored raw text so new chunking parameters apply cleanly.
	pieces, err := chunker.Split(document.Content, s.chunkSize, s.chunkOverlap)
	if err != nil {
		return err
	}
	chunker.AssignPages(pieces, document.PageOffsets)
	newChunks, err := s.embedChunks(ctx, id, pieces)
	if err != nil {
		return err
	}

	txUow := s.uowFactory.NewUnitOfWork(ctx)
	if err := txUow.Begin(ctx); err != nil {
		return err
	}
	defer txUow.Rollback()

	if err := txUow.DocumentChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := txUow.DocumentChunkRepository().UpsertBulk(ctx, newChunks); err != nil {
		return err
	}

	document.ChunkCount = len(newChunks)
	now := time.Now()
	document.UpdatedAt = &now
	if err := txUow.DocumentRepository().Update(ctx, document); err != nil {
		return err
	}
	if err := txUow.Commit(); err != nil {
		return err
	}

	s.publishEvent(ctx, events.NewDocumentReindexed(id.String(), len(newChunks)))
	return nil
}

// publishEvent is best effort: a down NATS must not fail the request.
func (s *documentService) publishEvent(ctx context.Context, evt events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.log.Warn("document", "failed to publish event", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}

func toShowDocumentResponse(d *entity.Document) *dto.ShowDocumentResponse {
	return &dto.ShowDocumentResponse{
		Id:          d.Id,
		Name:        d.Name,
		ContentType: d.ContentType,
		Category:    d.Category,
		PageCount:   d.PageCount,
		ChunkCount:  d.ChunkCount,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
