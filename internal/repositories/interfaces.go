package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/tutor-service/internal/models"
	"gorm.io/datatypes"
)

// ErrNotFound is returned by every repository when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type StudentFilters struct {
	TeacherID string            `json:"teacher_id"`
	RiskLevel *models.RiskLevel `json:"risk_level"`
	Search    string            `json:"search"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
	SortBy    string            `json:"sort_by"`    // "name", "engagement_score", "avg_quiz_score", "created_at"
	SortOrder string            `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORIES =====

type StudentRepository interface {
	GetByID(ctx context.Context, id string) (*models.StudentMetrics, error)
	// GetByIDs returns the stored students among ids, soft-deleted ones included.
	GetByIDs(ctx context.Context, ids []string) ([]models.StudentMetrics, error)
	List(ctx context.Context, filters StudentFilters) ([]*models.StudentMetrics, int64, error)
	// ListAll returns the full roster of a teacher, or every student when teacherID is empty.
	ListAll(ctx context.Context, teacherID string) ([]models.StudentMetrics, error)
	// Upsert inserts or replaces students keyed by id. An existing row is only
	// replaced when it belongs to the same teacher.
	Upsert(ctx context.Context, students []*models.StudentMetrics) error
	UpdateRisk(ctx context.Context, id string, level models.RiskLevel, factors datatypes.JSON) error
}

type ProgressRepository interface {
	Get(ctx context.Context, studentID string) (*models.ProgressRecord, error)
	Save(ctx context.Context, record *models.ProgressRecord) error
	// Reset removes the progress row and every unlocked achievement of the student.
	Reset(ctx context.Context, studentID string) error
}

type AchievementRepository interface {
	ListUnlocked(ctx context.Context, studentID string) ([]models.UnlockedAchievement, error)
	// Unlock stores achievements; ids already stored for the student are ignored.
	Unlock(ctx context.Context, unlocked []models.UnlockedAchievement) error
}

type ChatRepository interface {
	Append(ctx context.Context, messages ...*models.ChatMessage) error
	// Recent returns up to limit latest messages, oldest first.
	Recent(ctx context.Context, studentID string, limit int) ([]models.ChatMessage, error)
}

// Repository groups every store the services need.
type Repository interface {
	Student() StudentRepository
	Progress() ProgressRepository
	Achievement() AchievementRepository
	Chat() ChatRepository
	Ping(ctx context.Context) error
}
