package dto

import (
	"time"

	"github.com/google/uuid"
)

type IngestDocumentRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	ContentType string `json:"content_type,omitempty"`
	Category    string `json:"category,omitempty" validate:"max=100"`
	Content     string `json:"content" validate:"required"`
	// PageOffsets holds the rune offset where each page after the first
	// begins, so chunks can carry page numbers for citations.
	PageOffsets []int `json:"page_offsets,omitempty"`
}

type IngestDocumentResponse struct {
	Id         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ChunkCount int       `json:"chunk_count"`
	PageCount  int       `json:"page_count"`
}

// ListDocumentsQuery narrows the document listing. Zero values list
// everything, newest first.
type ListDocumentsQuery struct {
	Category string
	Name     string
	Limit    int
	Offset   int
}

type ShowDocumentResponse struct {
	Id          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	ContentType string     `json:"content_type,omitempty"`
	Category    string     `json:"category,omitempty"`
	PageCount   int        `json:"page_count"`
	ChunkCount  int        `json:"chunk_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type ReindexDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
