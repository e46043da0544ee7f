package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/SAP-F-2025/tutor-service/internal/progress"
	"github.com/SAP-F-2025/tutor-service/internal/repositories"
)

// Clock returns the current time; injected so day boundaries are testable.
type Clock func() time.Time

// ===== ADVISOR =====

type AdvisorService interface {
	PredictRisk(ctx context.Context, req *RiskRequest) (*models.RiskPrediction, error)
	PredictStudentRisk(ctx context.Context, studentID string) (*StudentRiskResponse, error)
	LearningPath(ctx context.Context, req *LearningPathRequest) (models.LearningPath, error)
	GenerateQuiz(ctx context.Context, req *QuizRequest) (*QuizResult, error)
	DailyInsight(ctx context.Context, teacherID string) (*models.DailyInsight, error)
	Chat(ctx context.Context, studentID string, req *ChatRequest) (*models.ChatReply, error)
}

type RiskRequest struct {
	EngagementScore float64 `json:"engagement_score" validate:"min=0,max=100"`
	AvgQuizScore    float64 `json:"avg_quiz_score" validate:"min=0,max=100"`
	WeakestTopic    string  `json:"weakest_topic" validate:"max=200"`
}

type StudentRiskResponse struct {
	StudentID  string                `json:"student_id"`
	Name       string                `json:"name"`
	Prediction models.RiskPrediction `json:"prediction"`
}

type LearningPathRequest struct {
	StudentID string `json:"student_id"`
	Topic     string `json:"topic" validate:"required,max=200"`
}

type QuizRequest struct {
	Topic      string `json:"topic" validate:"required,max=200"`
	Difficulty string `json:"difficulty" validate:"omitempty,difficulty"`
	Count      int    `json:"count" validate:"min=0,max=50"`
}

// QuizResult carries a notice only when the questions came from the built-in bank.
type QuizResult struct {
	Questions []models.QuizQuestion `json:"questions"`
	Notice    string                `json:"notice,omitempty"`
}

type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// ===== PROGRESS =====

type ProgressService interface {
	GetProgress(ctx context.Context, studentID string) (*ProgressResponse, error)
	AddXP(ctx context.Context, studentID string, req *AddXPRequest) (*XPResponse, error)
	CompleteModule(ctx context.Context, studentID string, req *CompleteModuleRequest) (*ModuleResponse, error)
	RecordLogin(ctx context.Context, studentID string) (*LoginResponse, error)
	CheckAndUnlock(ctx context.Context, studentID string) ([]string, error)
	ListAchievements(ctx context.Context, studentID string) ([]AchievementStatus, error)
	Catalog() []progress.Achievement
	ResetProgress(ctx context.Context, studentID, adminID string) error
}

type AddXPRequest struct {
	Amount int    `json:"amount" validate:"min=0,max=10000"`
	Reason string `json:"reason" validate:"max=200"`
}

type CompleteModuleRequest struct {
	ModuleType models.ModuleType `json:"module_type" validate:"required,module_type"`
	ModuleID   string            `json:"module_id" validate:"max=100"`
	XP         int               `json:"xp" validate:"min=0,max=10000"`
}

type ProgressResponse struct {
	models.ProgressRecord
	LevelProgress progress.LevelProgress `json:"level_progress"`
	Achievements  []string               `json:"achievements"`
}

type XPResponse struct {
	progress.XPResult
	NewAchievements []string `json:"new_achievements"`
}

type ModuleResponse struct {
	Record          models.ProgressRecord `json:"progress"`
	XP              progress.XPResult     `json:"xp"`
	NewAchievements []string              `json:"new_achievements"`
}

type LoginResponse struct {
	progress.StreakResult
	NewAchievements []string `json:"new_achievements"`
}

type AchievementStatus struct {
	progress.Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// ===== ROSTER =====

type RosterService interface {
	Import(ctx context.Context, file io.Reader, filename, teacherID string) (*models.RosterImportResult, error)
	Export(ctx context.Context, teacherID string) ([]byte, error)
	List(ctx context.Context, filters repositories.StudentFilters) (*StudentListResponse, error)
	// Get loads a student; a non-empty teacherID must own the student.
	Get(ctx context.Context, id, teacherID string) (*models.StudentMetrics, error)
}

type StudentListResponse struct {
	Students []*models.StudentMetrics `json:"students"`
	Total    int64                    `json:"total"`
	Limit    int                      `json:"limit"`
	Offset   int                      `json:"offset"`
}
