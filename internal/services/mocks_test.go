package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/tutor-service/internal/mlclient"
	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/SAP-F-2025/tutor-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
)

var errMLDown = errors.New("ml api unreachable")

// ===== REPOSITORY MOCKS =====

type MockStudentRepository struct{ mock.Mock }

func (m *MockStudentRepository) GetByID(ctx context.Context, id string) (*models.StudentMetrics, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*models.StudentMetrics), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStudentRepository) GetByIDs(ctx context.Context, ids []string) ([]models.StudentMetrics, error) {
	args := m.Called(ctx, ids)
	students, _ := args.Get(0).([]models.StudentMetrics)
	return students, args.Error(1)
}

func (m *MockStudentRepository) List(ctx context.Context, filters repositories.StudentFilters) ([]*models.StudentMetrics, int64, error) {
	args := m.Called(ctx, filters)
	students, _ := args.Get(0).([]*models.StudentMetrics)
	return students, args.Get(1).(int64), args.Error(2)
}

func (m *MockStudentRepository) ListAll(ctx context.Context, teacherID string) ([]models.StudentMetrics, error) {
	args := m.Called(ctx, teacherID)
	students, _ := args.Get(0).([]models.StudentMetrics)
	return students, args.Error(1)
}

func (m *MockStudentRepository) Upsert(ctx context.Context, students []*models.StudentMetrics) error {
	return m.Called(ctx, students).Error(0)
}

func (m *MockStudentRepository) UpdateRisk(ctx context.Context, id string, level models.RiskLevel, factors datatypes.JSON) error {
	return m.Called(ctx, id, level, factors).Error(0)
}

type MockProgressRepository struct{ mock.Mock }

func (m *MockProgressRepository) Get(ctx context.Context, studentID string) (*models.ProgressRecord, error) {
	args := m.Called(ctx, studentID)
	if r := args.Get(0); r != nil {
		return r.(*models.ProgressRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProgressRepository) Save(ctx context.Context, record *models.ProgressRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockProgressRepository) Reset(ctx context.Context, studentID string) error {
	return m.Called(ctx, studentID).Error(0)
}

type MockAchievementRepository struct{ mock.Mock }

func (m *MockAchievementRepository) ListUnlocked(ctx context.Context, studentID string) ([]models.UnlockedAchievement, error) {
	args := m.Called(ctx, studentID)
	unlocked, _ := args.Get(0).([]models.UnlockedAchievement)
	return unlocked, args.Error(1)
}

func (m *MockAchievementRepository) Unlock(ctx context.Context, unlocked []models.UnlockedAchievement) error {
	return m.Called(ctx, unlocked).Error(0)
}

type MockChatRepository struct{ mock.Mock }

func (m *MockChatRepository) Append(ctx context.Context, messages ...*models.ChatMessage) error {
	return m.Called(ctx, messages).Error(0)
}

func (m *MockChatRepository) Recent(ctx context.Context, studentID string, limit int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, studentID, limit)
	msgs, _ := args.Get(0).([]models.ChatMessage)
	return msgs, args.Error(1)
}

type MockRepository struct {
	students     *MockStudentRepository
	progress     *MockProgressRepository
	achievements *MockAchievementRepository
	chat         *MockChatRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		students:     &MockStudentRepository{},
		progress:     &MockProgressRepository{},
		achievements: &MockAchievementRepository{},
		chat:         &MockChatRepository{},
	}
}

func (m *MockRepository) Student() repositories.StudentRepository         { return m.students }
func (m *MockRepository) Progress() repositories.ProgressRepository       { return m.progress }
func (m *MockRepository) Achievement() repositories.AchievementRepository { return m.achievements }
func (m *MockRepository) Chat() repositories.ChatRepository               { return m.chat }
func (m *MockRepository) Ping(context.Context) error                      { return nil }

// ===== ML CLIENT FAKE =====

// fakeML answers every call with the configured value, or err when set.
type fakeML struct {
	err error

	chatReply  string
	prediction models.RiskPrediction
	path       models.LearningPath
	questions  []models.QuizQuestion
	insight    models.DailyInsight
	scored     []models.StudentMetrics

	uploads int
}

func (f *fakeML) Chat(context.Context, mlclient.ChatRequest) (string, error) {
	return f.chatReply, f.err
}

func (f *fakeML) PredictRisk(context.Context, mlclient.RiskRequest) (models.RiskPrediction, error) {
	return f.prediction, f.err
}

func (f *fakeML) LearningPath(context.Context, mlclient.PathRequest) (models.LearningPath, error) {
	return f.path, f.err
}

func (f *fakeML) GenerateQuiz(context.Context, mlclient.QuizRequest) ([]models.QuizQuestion, error) {
	return f.questions, f.err
}

func (f *fakeML) DailyInsight(context.Context, []models.StudentMetrics) (models.DailyInsight, error) {
	return f.insight, f.err
}

func (f *fakeML) UploadRoster(_ context.Context, _ string, file io.Reader) ([]models.StudentMetrics, error) {
	f.uploads++
	_, _ = io.Copy(io.Discard, file)
	return f.scored, f.err
}

func testLogger(component string) *ServiceLogger {
	return NewServiceLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), LogConfig{
		Service:   "tutor-service",
		Component: component,
	})
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
