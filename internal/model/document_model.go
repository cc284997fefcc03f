package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Document struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string         `gorm:"type:varchar(255);not null"`
	ContentType string         `gorm:"type:varchar(100)"`
	Category    string         `gorm:"type:varchar(100);index"`
	Content     string         `gorm:"type:text"` // raw extracted text, kept so reindexing re-chunks the original
	PageOffsets datatypes.JSON `gorm:"type:jsonb"`
	PageCount   int            `gorm:"default:0"`
	ChunkCount  int            `gorm:"default:0"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
