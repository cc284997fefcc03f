package contract

import (
	"context"

	"github.com/google/uuid"

	"scoutgpt-be/internal/entity"
	"scoutgpt-be/internal/repository/specification"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Update(ctx context.Context, session *entity.ChatSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
}

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type ChatCitationRepository interface {
	CreateBulk(ctx context.Context, citations []*entity.ChatCitation) error
	FindByMessageId(ctx context.Context, messageId uuid.UUID) ([]*entity.ChatCitation, error)
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
}
