package mapper

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"scoutgpt-be/internal/entity"
	"scoutgpt-be/internal/model"
)

type ChatSessionMapper struct{}

func NewChatSessionMapper() *ChatSessionMapper {
	return &ChatSessionMapper{}
}

func (m *ChatSessionMapper) ToEntity(e *model.ChatSession) *entity.ChatSession {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:        e.Id,
		Title:     e.Title,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: e.DeletedAt.Valid,
	}
}

func (m *ChatSessionMapper) ToModel(e *entity.ChatSession) *model.ChatSession {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.ChatSession{
		Id:        e.Id,
		Title:     e.Title,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *ChatSessionMapper) ToEntities(sessions []*model.ChatSession) []*entity.ChatSession {
	entities := make([]*entity.ChatSession, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ToEntity(s)
	}
	return entities
}

type ChatMessageMapper struct{}

func NewChatMessageMapper() *ChatMessageMapper {
	return &ChatMessageMapper{}
}

func (m *ChatMessageMapper) ToEntity(e *model.ChatMessage) *entity.ChatMessage {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	var geometry map[string]interface{}
	if len(e.Geometry) > 0 {
		_ = json.Unmarshal(e.Geometry, &geometry)
	}

	return &entity.ChatMessage{
		Id:            e.Id,
		ChatSessionId: e.ChatSessionId,
		Role:          e.Role,
		Content:       e.Content,
		Geometry:      geometry,
		ToolCalls:     e.ToolCalls,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     e.DeletedAt.Valid,
	}
}

func (m *ChatMessageMapper) ToModel(e *entity.ChatMessage) *model.ChatMessage {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	var geometry datatypes.JSON
	if e.Geometry != nil {
		if raw, err := json.Marshal(e.Geometry); err == nil {
			geometry = raw
		}
	}

	return &model.ChatMessage{
		Id:            e.Id,
		ChatSessionId: e.ChatSessionId,
		Role:          e.Role,
		Content:       e.Content,
		Geometry:      geometry,
		ToolCalls:     e.ToolCalls,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

func (m *ChatMessageMapper) ToEntities(messages []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(messages))
	for i, msg := range messages {
		entities[i] = m.ToEntity(msg)
	}
	return entities
}

type ChatCitationMapper struct{}

func NewChatCitationMapper() *ChatCitationMapper {
	return &ChatCitationMapper{}
}

func (m *ChatCitationMapper) ToEntity(e *model.ChatCitation) *entity.ChatCitation {
	if e == nil {
		return nil
	}
	return &entity.ChatCitation{
		Id:            e.Id,
		ChatMessageId: e.ChatMessageId,
		DocumentId:    e.DocumentId,
		Source:        e.Source,
		CreatedAt:     e.CreatedAt,
	}
}

func (m *ChatCitationMapper) ToModel(e *entity.ChatCitation) *model.ChatCitation {
	if e == nil {
		return nil
	}
	return &model.ChatCitation{
		Id:            e.Id,
		ChatMessageId: e.ChatMessageId,
		DocumentId:    e.DocumentId,
		Source:        e.Source,
		CreatedAt:     e.CreatedAt,
	}
}

func (m *ChatCitationMapper) ToEntities(citations []*model.ChatCitation) []*entity.ChatCitation {
	entities := make([]*entity.ChatCitation, len(citations))
	for i, c := range citations {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
