package postgres

import (
	"context"

	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/SAP-F-2025/tutor-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

func (p ProgressPostgreSQL) Get(ctx context.Context, studentID string) (*models.ProgressRecord, error) {
	var record models.ProgressRecord
	if err := p.db.WithContext(ctx).Where("student_id = ?", studentID).First(&record).Error; err != nil {
		return nil, translateError(err)
	}
	return &record, nil
}

func (p ProgressPostgreSQL) Save(ctx context.Context, record *models.ProgressRecord) error {
	return p.db.WithContext(ctx).Save(record).Error
}

func (p ProgressPostgreSQL) Reset(ctx context.Context, studentID string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := p.getDB(tx).Where("student_id = ?", studentID).Delete(&models.UnlockedAchievement{}).Error; err != nil {
			return err
		}
		return p.getDB(tx).Where("student_id = ?", studentID).Delete(&models.ProgressRecord{}).Error
	})
}

func (p ProgressPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

type AchievementPostgreSQL struct {
	db *gorm.DB
}

func NewAchievementPostgreSQL(db *gorm.DB) repositories.AchievementRepository {
	return &AchievementPostgreSQL{db: db}
}

func (a AchievementPostgreSQL) ListUnlocked(ctx context.Context, studentID string) ([]models.UnlockedAchievement, error) {
	var unlocked []models.UnlockedAchievement
	if err := a.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("unlocked_at ASC").
		Find(&unlocked).Error; err != nil {
		return nil, err
	}
	return unlocked, nil
}

func (a AchievementPostgreSQL) Unlock(ctx context.Context, unlocked []models.UnlockedAchievement) error {
	if len(unlocked) == 0 {
		return nil
	}
	return a.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&unlocked).Error
}
