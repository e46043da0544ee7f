package postgres

import (
	"context"

	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/SAP-F-2025/tutor-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &StudentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (s StudentPostgreSQL) GetByID(ctx context.Context, id string) (*models.StudentMetrics, error) {
	var student models.StudentMetrics
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&student).Error; err != nil {
		return nil, translateError(err)
	}
	return &student, nil
}

func (s StudentPostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]models.StudentMetrics, error) {
	var students []models.StudentMetrics
	if len(ids) == 0 {
		return students, nil
	}
	if err := s.db.WithContext(ctx).Unscoped().Where("id IN ?", ids).Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (s StudentPostgreSQL) List(ctx context.Context, filters repositories.StudentFilters) ([]*models.StudentMetrics, int64, error) {
	var students []*models.StudentMetrics
	var total int64

	query := s.db.WithContext(ctx).Model(&models.StudentMetrics{})
	query = s.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset,
		"name", "engagement_score", "avg_quiz_score", "created_at")

	if err := query.Find(&students).Error; err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (s StudentPostgreSQL) ListAll(ctx context.Context, teacherID string) ([]models.StudentMetrics, error) {
	var students []models.StudentMetrics
	query := s.db.WithContext(ctx).Order("name ASC")
	if teacherID != "" {
		query = query.Where("teacher_id = ?", teacherID)
	}
	if err := query.Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (s StudentPostgreSQL) Upsert(ctx context.Context, students []*models.StudentMetrics) error {
	if len(students) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "students.teacher_id = excluded.teacher_id"},
			}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "engagement_score", "avg_quiz_score", "weakest_topic",
				"risk_level", "risk_factors", "updated_at", "deleted_at",
			}),
		}).CreateInBatches(students, 100).Error
	})
}

func (s StudentPostgreSQL) UpdateRisk(ctx context.Context, id string, level models.RiskLevel, factors datatypes.JSON) error {
	result := s.db.WithContext(ctx).Model(&models.StudentMetrics{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"risk_level":   level,
			"risk_factors": factors,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (s StudentPostgreSQL) applyFilters(query *gorm.DB, filters repositories.StudentFilters) *gorm.DB {
	if filters.TeacherID != "" {
		query = query.Where("teacher_id = ?", filters.TeacherID)
	}
	if filters.RiskLevel != nil {
		query = query.Where("risk_level = ?", *filters.RiskLevel)
	}
	if filters.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filters.Search+"%")
	}
	return query
}
