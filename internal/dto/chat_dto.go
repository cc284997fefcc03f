package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type SendChatRequest struct {
	ChatSessionId *uuid.UUID `json:"chat_session_id,omitempty"`
	Message       string     `json:"message" validate:"required"`
}

type SendChatResponseChat struct {
	Id        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatResponse struct {
	ChatSessionId    uuid.UUID              `json:"chat_session_id"`
	ChatSessionTitle string                 `json:"title"`
	Sent             *SendChatResponseChat  `json:"sent"`
	Reply            *SendChatResponseChat  `json:"reply"`
	Sources          []string               `json:"sources,omitempty"`
	Geometry         map[string]interface{} `json:"geometry,omitempty"`
	ToolCalls        int                    `json:"tool_calls"`
	LoopBounded      bool                   `json:"loop_bounded,omitempty"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Sources   []string  `json:"sources,omitempty"`
}
