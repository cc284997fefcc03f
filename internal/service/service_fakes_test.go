package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"scoutgpt-be/internal/entity"
	"scoutgpt-be/internal/repository/contract"
	"scoutgpt-be/internal/repository/specification"
	"scoutgpt-be/internal/repository/unitofwork"
	"scoutgpt-be/pkg/llm"
)

// nopLogger satisfies logger.ILogger without writing anywhere.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeStore is the in-memory backing for all fake repositories. Writes go
// straight to the store; Begin/Commit/Rollback are counted so tests can
// assert transactional intent.
type fakeStore struct {
	mu        sync.Mutex
	documents []*entity.Document
	chunks    []*entity.DocumentChunk
	sessions  []*entity.ChatSession
	messages  []*entity.ChatMessage
	citations []*entity.ChatCitation

	begins    int
	commits   int
	rollbacks int

	createErr error
}

type fakeFactory struct {
	store *fakeStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: f.store}
}

type fakeUnitOfWork struct {
	store *fakeStore
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.begins++
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.commits++
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.rollbacks++
	return nil
}

func (u *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return &fakeDocumentRepo{store: u.store}
}

func (u *fakeUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return &fakeDocumentChunkRepo{store: u.store}
}

func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return &fakeChatSessionRepo{store: u.store}
}

func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return &fakeChatMessageRepo{store: u.store}
}

func (u *fakeUnitOfWork) ChatCitationRepository() contract.ChatCitationRepository {
	return &fakeChatCitationRepo{store: u.store}
}

// specMatch interprets the handful of specifications the services use.
type specMatch struct {
	id            *uuid.UUID
	documentID    *uuid.UUID
	chatSessionID *uuid.UUID
	category      string
	nameLike      string
	orderField    string
	orderDesc     bool
	limit         int
	offset        int
}

func interpretSpecs(specs []specification.Specification) specMatch {
	var m specMatch
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByID:
			id := v.ID
			m.id = &id
		case specification.ByDocumentID:
			id := v.DocumentID
			m.documentID = &id
		case specification.ByChatSessionID:
			id := v.ChatSessionID
			m.chatSessionID = &id
		case specification.ByCategory:
			m.category = v.Category
		case specification.ByNameLike:
			m.nameLike = v.Name
		case specification.Pagination:
			m.limit = v.Limit
			m.offset = v.Offset
		case specification.OrderBy:
			m.orderField = v.Field
			m.orderDesc = v.Desc
		}
	}
	return m
}

type fakeDocumentRepo struct {
	store *fakeStore
}

func (r *fakeDocumentRepo) Create(ctx context.Context, document *entity.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.createErr != nil {
		return r.store.createErr
	}
	copied := *document
	r.store.documents = append(r.store.documents, &copied)
	return nil
}

func (r *fakeDocumentRepo) Update(ctx context.Context, document *entity.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, d := range r.store.documents {
		if d.Id == document.Id {
			copied := *document
			r.store.documents[i] = &copied
			return nil
		}
	}
	return fmt.Errorf("document %s not found", document.Id)
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.documents[:0]
	for _, d := range r.store.documents {
		if d.Id != id {
			kept = append(kept, d)
		}
	}
	r.store.documents = kept
	return nil
}

func (r *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := interpretSpecs(specs)
	for _, d := range r.store.documents {
		if m.id == nil || d.Id == *m.id {
			copied := *d
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := interpretSpecs(specs)
	var out []*entity.Document
	for _, d := range r.store.documents {
		if m.category != "" && d.Category != m.category {
			continue
		}
		if m.nameLike != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(m.nameLike)) {
			continue
		}
		copied := *d
		out = append(out, &copied)
	}
	if m.orderField == "created_at" {
		sort.SliceStable(out, func(i, j int) bool {
			if m.orderDesc {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	if m.offset > 0 {
		if m.offset >= len(out) {
			out = nil
		} else {
			out = out[m.offset:]
		}
	}
	if m.limit > 0 && len(out) > m.limit {
		out = out[:m.limit]
	}
	return out, nil
}

func (r *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.documents)), nil
}

type fakeDocumentChunkRepo struct {
	store *fakeStore
}

func (r *fakeDocumentChunkRepo) Create(ctx context.Context, chunk *entity.DocumentChunk) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *chunk
	r.store.chunks = append(r.store.chunks, &copied)
	return nil
}

func (r *fakeDocumentChunkRepo) UpsertBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range chunks {
		replaced := false
		for i, existing := range r.store.chunks {
			if existing.DocumentId == c.DocumentId && existing.ChunkIndex == c.ChunkIndex {
				copied := *c
				r.store.chunks[i] = &copied
				replaced = true
				break
			}
		}
		if !replaced {
			copied := *c
			r.store.chunks = append(r.store.chunks, &copied)
		}
	}
	return nil
}

func (r *fakeDocumentChunkRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.chunks[:0]
	for _, c := range r.store.chunks {
		if c.Id != id {
			kept = append(kept, c)
		}
	}
	r.store.chunks = kept
	return nil
}

func (r *fakeDocumentChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.chunks[:0]
	for _, c := range r.store.chunks {
		if c.DocumentId != documentId {
			kept = append(kept, c)
		}
	}
	r.store.chunks = kept
	return nil
}

func (r *fakeDocumentChunkRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error) {
	chunks, err := r.FindAll(ctx, specs...)
	if err != nil || len(chunks) == 0 {
		return nil, err
	}
	return chunks[0], nil
}

func (r *fakeDocumentChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := interpretSpecs(specs)
	var out []*entity.DocumentChunk
	for _, c := range r.store.chunks {
		if m.documentID != nil && c.DocumentId != *m.documentID {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	if m.orderField == "chunk_index" {
		sort.SliceStable(out, func(i, j int) bool {
			if m.orderDesc {
				return out[i].ChunkIndex > out[j].ChunkIndex
			}
			return out[i].ChunkIndex < out[j].ChunkIndex
		})
	}
	return out, nil
}

func (r *fakeDocumentChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	chunks, err := r.FindAll(ctx, specs...)
	return int64(len(chunks)), err
}

// SearchSimilarWithScore mirrors the SQL path: filter first, rank the
// survivors by dot product, then cut to the limit.
func (r *fakeDocumentChunkRepo) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, filter contract.ChunkSearchFilter) ([]*contract.ScoredDocumentChunk, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	allowed := make(map[uuid.UUID]bool, len(filter.DocumentIDs))
	for _, id := range filter.DocumentIDs {
		allowed[id] = true
	}
	names := make(map[uuid.UUID]string, len(r.store.documents))
	categories := make(map[uuid.UUID]string, len(r.store.documents))
	for _, d := range r.store.documents {
		names[d.Id] = d.Name
		categories[d.Id] = d.Category
	}

	var scored []*contract.ScoredDocumentChunk
	for _, c := range r.store.chunks {
		if len(allowed) > 0 && !allowed[c.DocumentId] {
			continue
		}
		if filter.Category != "" && categories[c.DocumentId] != filter.Category {
			continue
		}
		var score float64
		for i := 0; i < len(embedding) && i < len(c.EmbeddingValue); i++ {
			score += float64(embedding[i]) * float64(c.EmbeddingValue[i])
		}
		copied := *c
		scored = append(scored, &contract.ScoredDocumentChunk{
			Chunk:        &copied,
			DocumentName: names[c.DocumentId],
			Similarity:   score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		if scored[i].Chunk.ChunkIndex != scored[j].Chunk.ChunkIndex {
			return scored[i].Chunk.ChunkIndex < scored[j].Chunk.ChunkIndex
		}
		return scored[i].Chunk.DocumentId.String() < scored[j].Chunk.DocumentId.String()
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

type fakeChatSessionRepo struct {
	store *fakeStore
}

func (r *fakeChatSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.createErr != nil {
		return r.store.createErr
	}
	copied := *session
	r.store.sessions = append(r.store.sessions, &copied)
	return nil
}

func (r *fakeChatSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, s := range r.store.sessions {
		if s.Id == session.Id {
			copied := *session
			r.store.sessions[i] = &copied
			return nil
		}
	}
	return fmt.Errorf("chat session %s not found", session.Id)
}

func (r *fakeChatSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.sessions[:0]
	for _, s := range r.store.sessions {
		if s.Id != id {
			kept = append(kept, s)
		}
	}
	r.store.sessions = kept
	return nil
}

func (r *fakeChatSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := interpretSpecs(specs)
	for _, s := range r.store.sessions {
		if m.id == nil || s.Id == *m.id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeChatSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := interpretSpecs(specs)
	out := make([]*entity.ChatSession, len(r.store.sessions))
	copy(out, r.store.sessions)
	if m.orderField == "created_at" {
		sort.SliceStable(out, func(i, j int) bool {
			if m.orderDesc {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out, nil
}

type fakeChatMessageRepo struct {
	store *fakeStore
}

func (r *fakeChatMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *message
	r.store.messages = append(r.store.messages, &copied)
	return nil
}

func (r *fakeChatMessageRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.messages[:0]
	for _, m := range r.store.messages {
		if m.ChatSessionId != sessionId {
			kept = append(kept, m)
		}
	}
	r.store.messages = kept
	return nil
}

func (r *fakeChatMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := interpretSpecs(specs)
	var out []*entity.ChatMessage
	for _, msg := range r.store.messages {
		if m.chatSessionID != nil && msg.ChatSessionId != *m.chatSessionID {
			continue
		}
		copied := *msg
		out = append(out, &copied)
	}
	if m.orderField == "created_at" {
		sort.SliceStable(out, func(i, j int) bool {
			if m.orderDesc {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out, nil
}

func (r *fakeChatMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	messages, err := r.FindAll(ctx, specs...)
	return int64(len(messages)), err
}

type fakeChatCitationRepo struct {
	store *fakeStore
}

func (r *fakeChatCitationRepo) CreateBulk(ctx context.Context, citations []*entity.ChatCitation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range citations {
		copied := *c
		r.store.citations = append(r.store.citations, &copied)
	}
	return nil
}

func (r *fakeChatCitationRepo) FindByMessageId(ctx context.Context, messageId uuid.UUID) ([]*entity.ChatCitation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.ChatCitation
	for _, c := range r.store.citations {
		if c.ChatMessageId == messageId {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeChatCitationRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	byMessage := make(map[uuid.UUID]bool)
	for _, m := range r.store.messages {
		if m.ChatSessionId == sessionId {
			byMessage[m.Id] = true
		}
	}
	kept := r.store.citations[:0]
	for _, c := range r.store.citations {
		if !byMessage[c.ChatMessageId] {
			kept = append(kept, c)
		}
	}
	r.store.citations = kept
	return nil
}

// fakeEmbedder returns deterministic vectors keyed by input order.
type fakeEmbedder struct {
	dim   int
	err   error
	wrong int // if > 0, vectors come back with this width instead of dim
	calls [][]string
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	width := f.dim
	if f.wrong > 0 {
		width = f.wrong
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, width)
		v[0] = float32(i + 1)
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int { return f.dim }

// capturingPublisher records everything published to the reindex topic.
type capturingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *capturingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

// scriptedProvider plays back canned completions and records every request.
type scriptedProvider struct {
	mu       sync.Mutex
	script   []*llm.Completion
	requests []llm.CompletionRequest
	err      error
}

func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	if len(p.script) == 0 {
		return &llm.Completion{Text: "", StopReason: llm.StopEndTurn}, nil
	}
	next := p.script[0]
	p.script = p.script[1:]
	return next, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }
