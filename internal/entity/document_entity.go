package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id          uuid.UUID
	Name        string
	ContentType string
	Category    string
	Content     string
	PageOffsets []int
	PageCount   int
	ChunkCount  int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
