package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatCitation struct {
	Id            uuid.UUID
	ChatMessageId uuid.UUID
	DocumentId    *uuid.UUID
	Source        string
	CreatedAt     time.Time
}
