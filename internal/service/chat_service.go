package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"scoutgpt-be/internal/dto"
	"scoutgpt-be/internal/entity"
	"scoutgpt-be/internal/pkg/logger"
	"scoutgpt-be/internal/tracer"
	"scoutgpt-be/internal/repository/memory"
	"scoutgpt-be/internal/repository/specification"
	"scoutgpt-be/internal/repository/unitofwork"
	"scoutgpt-be/pkg/events"
	"scoutgpt-be/pkg/llm"
	pktNats "scoutgpt-be/pkg/nats"
	"scoutgpt-be/pkg/rag/orchestrator"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	maxTitleLength = 80
)

type IChatService interface {
	SendChat(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	orchestrator   *orchestrator.Orchestrator
	locks          *memory.ConversationLockRepository
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	orch *orchestrator.Orchestrator,
	locks *memory.ConversationLockRepository,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		orchestrator:   orch,
		locks:          locks,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

// SendChat answers one user message. Messages for the same session run
// strictly one at a time; concurrent sends to the same session queue on
// its lock.
func (s *chatService) SendChat(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	session, err := s.resolveSession(ctx, req)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "chat.send_message",
		attribute.String("chat.session_id", session.Id.String()),
	)
	defer span.End()

	lock := s.locks.Get(session.Id.String())
	lock.Lock()
	defer lock.Unlock()

	history, err := s.loadHistory(ctx, session.Id)
	if err != nil {
		return nil, err
	}

	reply, err := s.orchestrator.Run(ctx, history, req.Message)
	if err != nil {
		s.log.Error("chat", "assistant run failed", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("chat.tool_calls", reply.ToolCalls),
		attribute.String("chat.stop_reason", string(reply.StopReason)),
	)

	sent := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          RoleUser,
		Content:       req.Message,
		CreatedAt:     time.Now(),
	}
	answer := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          RoleAssistant,
		Content:       reply.Text,
		ToolCalls:     reply.ToolCalls,
		CreatedAt:     time.Now(),
	}

	var geometry map[string]interface{}
	if reply.Geometry != nil && len(reply.Geometry.Features) > 0 {
		geometry = map[string]interface{}{
			"type":     reply.Geometry.Type,
			"features": reply.Geometry.Features,
		}
		answer.Geometry = geometry
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, &sent); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &answer); err != nil {
		return nil, err
	}
	if err := s.persistCitations(ctx, uow, answer.Id, reply.Sources); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.NewChatCompleted(session.Id.String(), answer.Id.String(), reply.ToolCalls)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("chat", "failed to publish event", map[string]interface{}{
				"event": evt.EventType(),
				"error": err.Error(),
			})
		}
	}

	return &dto.SendChatResponse{
		ChatSessionId:    session.Id,
		ChatSessionTitle: session.Title,
		Sent: &dto.SendChatResponseChat{
			Id:        sent.Id,
			Content:   sent.Content,
			Role:      sent.Role,
			CreatedAt: sent.CreatedAt,
		},
		Reply: &dto.SendChatResponseChat{
			Id:        answer.Id,
			Content:   answer.Content,
			Role:      answer.Role,
			CreatedAt: answer.CreatedAt,
		},
		Sources:     reply.Sources,
		Geometry:    geometry,
		ToolCalls:   reply.ToolCalls,
		LoopBounded: reply.LoopBounded,
	}, nil
}

// resolveSession finds the session for a follow-up message or creates a
// new one titled from the first message.
func (s *chatService) resolveSession(ctx context.Context, req *dto.SendChatRequest) (*entity.ChatSession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if req.ChatSessionId != nil {
		session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: *req.ChatSessionId})
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, fmt.Errorf("chat session %s not found", req.ChatSessionId)
		}
		return session, nil
	}

	session := entity.ChatSession{
		Id:        uuid.New(),
		Title:     titleFromMessage(req.Message),
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// loadHistory replays prior turns as plain text. Tool traffic inside past
// turns is not replayed; the stored reply already reflects it.
func (s *chatService) loadHistory(ctx context.Context, sessionId uuid.UUID) ([]llm.Turn, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	turns := make([]llm.Turn, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleUser:
			turns = append(turns, llm.Turn{Role: llm.RoleUser, Text: m.Content})
		case RoleAssistant:
			turns = append(turns, llm.Turn{Role: llm.RoleAssistant, Text: m.Content})
		}
	}
	return turns, nil
}

func (s *chatService) persistCitations(ctx context.Context, uow unitofwork.UnitOfWork, messageId uuid.UUID, sources []string) error {
	if len(sources) == 0 {
		return nil
	}
	citations := make([]*entity.ChatCitation, len(sources))
	for i, src := range sources {
		citations[i] = &entity.ChatCitation{
			Id:            uuid.New(),
			ChatMessageId: messageId,
			Source:        src,
			CreatedAt:     time.Now(),
		}
	}
	return uow.ChatCitationRepository().CreateBulk(ctx, citations)
}

func (s *chatService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, m := range messages {
		item := &dto.GetChatHistoryResponse{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
		if m.Role == RoleAssistant {
			citations, err := uow.ChatCitationRepository().FindByMessageId(ctx, m.Id)
			if err != nil {
				return nil, err
			}
			for _, c := range citations {
				item.Sources = append(item.Sources, c.Source)
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *chatService) GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	out := make([]*dto.GetAllSessionsResponse, len(sessions))
	for i, session := range sessions {
		out[i] = &dto.GetAllSessionsResponse{
			Id:        session.Id,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		}
	}
	return out, nil
}

func (s *chatService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatCitationRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.locks.Delete(sessionId.String())
	return nil
}

func titleFromMessage(message string) string {
	runes := []rune(message)
	if len(runes) <= maxTitleLength {
		return message
	}
	return string(runes[:maxTitleLength]) + "..."
}
