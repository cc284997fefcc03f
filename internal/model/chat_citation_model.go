package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatCitation struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatMessageId uuid.UUID  `gorm:"type:uuid;not null;index"`
	DocumentId    *uuid.UUID `gorm:"type:uuid;index"`
	Source        string     `gorm:"type:varchar(512);not null"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
}

func (ChatCitation) TableName() string {
	return "chat_citations"
}
