package mapper

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"scoutgpt-be/internal/entity"
	"scoutgpt-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(e *model.Document) *entity.Document {
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

	var pageOffsets []int
	if len(e.PageOffsets) > 0 {
		_ = json.Unmarshal(e.PageOffsets, &pageOffsets)
	}

	return &entity.Document{
		Id:          e.Id,
		Name:        e.Name,
		ContentType: e.ContentType,
		Category:    e.Category,
		Content:     e.Content,
		PageOffsets: pageOffsets,
		PageCount:   e.PageCount,
		ChunkCount:  e.ChunkCount,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   e.DeletedAt.Valid,
	}
}

func (m *DocumentMapper) ToModel(e *entity.Document) *model.Document {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	var pageOffsets datatypes.JSON
	if len(e.PageOffsets) > 0 {
		if raw, err := json.Marshal(e.PageOffsets); err == nil {
			pageOffsets = raw
		}
	}

	return &model.Document{
		Id:          e.Id,
		Name:        e.Name,
		ContentType: e.ContentType,
		Category:    e.Category,
		Content:     e.Content,
		PageOffsets: pageOffsets,
		PageCount:   e.PageCount,
		ChunkCount:  e.ChunkCount,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *DocumentMapper) ToEntities(documents []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(documents))
	for i, d := range documents {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
