package implementation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"scoutgpt-be/internal/entity"
	"scoutgpt-be/internal/mapper"
	"scoutgpt-be/internal/model"
	"scoutgpt-be/internal/repository/contract"
)

type ChatCitationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatCitationMapper
}

func NewChatCitationRepository(db *gorm.DB) contract.ChatCitationRepository {
	return &ChatCitationRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatCitationMapper(),
	}
}

func (r *ChatCitationRepositoryImpl) CreateBulk(ctx context.Context, citations []*entity.ChatCitation) error {
	if len(citations) == 0 {
		return nil
	}
	models := make([]*model.ChatCitation, len(citations))
	for i, c := range citations {
		models[i] = r.mapper.ToModel(c)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*citations[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ChatCitationRepositoryImpl) FindByMessageId(ctx context.Context, messageId uuid.UUID) ([]*entity.ChatCitation, error) {
	var models []*model.ChatCitation
	err := r.db.WithContext(ctx).
		Where("chat_message_id = ?", messageId).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChatCitationRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	subQuery := r.db.Table("chat_messages").Select("id").Where("chat_session_id = ?", sessionId)
	return r.db.WithContext(ctx).Where("chat_message_id IN (?)", subQuery).Delete(&model.ChatCitation{}).Error
}
