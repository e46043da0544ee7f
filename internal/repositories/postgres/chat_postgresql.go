package postgres

import (
	"context"

	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/SAP-F-2025/tutor-service/internal/repositories"
	"gorm.io/gorm"
)

type ChatPostgreSQL struct {
	db *gorm.DB
}

func NewChatPostgreSQL(db *gorm.DB) repositories.ChatRepository {
	return &ChatPostgreSQL{db: db}
}

func (c ChatPostgreSQL) Append(ctx context.Context, messages ...*models.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	return c.db.WithContext(ctx).Create(messages).Error
}

func (c ChatPostgreSQL) Recent(ctx context.Context, studentID string, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	if err := c.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
