package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/tutor-service/internal/cache"
	"github.com/SAP-F-2025/tutor-service/internal/events"
	"github.com/SAP-F-2025/tutor-service/internal/fallback"
	"github.com/SAP-F-2025/tutor-service/internal/metrics"
	"github.com/SAP-F-2025/tutor-service/internal/mlclient"
	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/SAP-F-2025/tutor-service/internal/progress"
	"github.com/SAP-F-2025/tutor-service/internal/repositories"
	"github.com/SAP-F-2025/tutor-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	defaultQuizCount  = 5
	chatHistoryWindow = 20
)

type AdvisorConfig struct {
	InsightCacheTTL time.Duration
	Location        *time.Location
	Now             Clock
}

type advisorService struct {
	repo      repositories.Repository
	ml        mlclient.API
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *ServiceLogger
	validator *validator.Validator
	cfg       AdvisorConfig
}

func NewAdvisorService(
	repo repositories.Repository,
	ml mlclient.API,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *ServiceLogger,
	validator *validator.Validator,
	cfg AdvisorConfig,
) AdvisorService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cacheService == nil {
		cacheService = cache.NewNoopCache()
	}
	return &advisorService{
		repo:      repo,
		ml:        ml,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		cfg:       cfg,
	}
}

// fellBack logs and counts a remote failure before the caller serves the local answer.
func (s *advisorService) fellBack(ctx context.Context, operation string, cause error) {
	s.logger.LogFallback(ctx, operation, cause)
	metrics.RecordFallback(operation)
}

func (s *advisorService) PredictRisk(ctx context.Context, req *RiskRequest) (*models.RiskPrediction, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	prediction := s.predict(ctx, "", req.EngagementScore, req.AvgQuizScore, req.WeakestTopic)
	return &prediction, nil
}

func (s *advisorService) predict(ctx context.Context, studentID string, engagement, quiz float64, topic string) models.RiskPrediction {
	prediction, err := s.ml.PredictRisk(ctx, mlclient.RiskRequest{
		StudentID:       studentID,
		EngagementScore: engagement,
		AvgQuizScore:    quiz,
		WeakestTopic:    topic,
	})
	if err != nil {
		s.fellBack(ctx, "predict_risk", err)
		return fallback.Classify(engagement, quiz)
	}
	return prediction
}

func (s *advisorService) PredictStudentRisk(ctx context.Context, studentID string) (*StudentRiskResponse, error) {
	op := s.logger.WithOperation(ctx, "predict_student_risk", studentID)

	student, err := s.repo.Student().GetByID(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			err = ErrStudentNotFound
		} else {
			err = fmt.Errorf("load student %s: %w", studentID, err)
		}
		op.LogResult(studentID, "student", err)
		return nil, err
	}

	prediction := s.predict(ctx, student.ID, student.EngagementScore, student.AvgQuizScore, student.WeakestTopic)

	factors, err := json.Marshal(prediction.Factors)
	if err == nil {
		err = s.repo.Student().UpdateRisk(ctx, student.ID, prediction.RiskLevel, datatypes.JSON(factors))
	}
	if err != nil {
		s.logger.LogPersistenceFailure(ctx, "store_risk", student.ID, err)
	}

	if prediction.RiskLevel == models.RiskHigh && s.publisher != nil {
		if err := s.publisher.PublishEvent(ctx, events.NewStudentAtRiskEvent(*student, prediction)); err != nil {
			s.logger.LogPersistenceFailure(ctx, "publish_at_risk", student.ID, err)
		}
	}

	op.LogResult(studentID, "student", nil)
	return &StudentRiskResponse{
		StudentID:  student.ID,
		Name:       student.Name,
		Prediction: prediction,
	}, nil
}

func (s *advisorService) LearningPath(ctx context.Context, req *LearningPathRequest) (models.LearningPath, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	path, err := s.ml.LearningPath(ctx, mlclient.PathRequest{StudentID: req.StudentID, Topic: req.Topic})
	if err != nil {
		s.fellBack(ctx, "learning_path", err)
		return fallback.BuildPath(req.Topic), nil
	}
	return path, nil
}

func (s *advisorService) GenerateQuiz(ctx context.Context, req *QuizRequest) (*QuizResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = string(models.DifficultyIntermediate)
	}
	count := req.Count
	if count == 0 {
		count = defaultQuizCount
	}

	questions, err := s.ml.GenerateQuiz(ctx, mlclient.QuizRequest{Topic: req.Topic, Difficulty: difficulty, Count: count})
	if err != nil {
		s.fellBack(ctx, "generate_quiz", err)
		return &QuizResult{
			Questions: fallback.GenerateQuiz(req.Topic, difficulty, count),
			Notice:    fallback.DefaultQuestionsNotice,
		}, nil
	}
	return &QuizResult{Questions: questions}, nil
}

// DailyInsight is cached per teacher and calendar day. An empty teacherID covers every student.
func (s *advisorService) DailyInsight(ctx context.Context, teacherID string) (*models.DailyInsight, error) {
	day := s.cfg.Now().In(s.cfg.Location).Format(progress.DateLayout)
	key := cache.InsightKey(teacherID, day)

	var cached models.DailyInsight
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Info(ctx, "Insight cache unavailable", "key", key, "error", err)
	}

	students, err := s.repo.Student().ListAll(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	local := fallback.Summarize(students)
	insight, err := s.ml.DailyInsight(ctx, students)
	if err != nil {
		s.fellBack(ctx, "daily_insight", err)
		insight = local
	} else {
		insight.TotalStudents = local.TotalStudents
		insight.AvgEngagement = local.AvgEngagement
		insight.AvgQuiz = local.AvgQuiz
		insight.HighRiskCount = local.HighRiskCount
	}

	if err := s.cache.Set(ctx, key, insight, s.cfg.InsightCacheTTL); err != nil {
		s.logger.Info(ctx, "Insight not cached", "key", key, "error", err)
	}
	return &insight, nil
}

func (s *advisorService) Chat(ctx context.Context, studentID string, req *ChatRequest) (*models.ChatReply, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	history, err := s.repo.Chat().Recent(ctx, studentID, chatHistoryWindow)
	if err != nil {
		s.logger.LogPersistenceFailure(ctx, "load_chat_history", studentID, err)
	}
	turns := make([]mlclient.ChatTurn, 0, len(history))
	for _, m := range history {
		turns = append(turns, mlclient.ChatTurn{Role: m.Role, Content: m.Content})
	}

	now := s.cfg.Now()
	source := "ml"
	var reply models.ChatReply
	text, err := s.ml.Chat(ctx, mlclient.ChatRequest{StudentID: studentID, Message: req.Message, History: turns})
	if err != nil {
		s.fellBack(ctx, "chat", err)
		reply = fallback.Respond(req.Message, now)
		source = "fallback"
	} else {
		reply = models.ChatReply{Text: text, Timestamp: now}
	}

	meta, _ := json.Marshal(map[string]string{"source": source})
	userMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Role:      models.ChatRoleUser,
		Content:   req.Message,
		CreatedAt: now,
	}
	assistantMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Role:      models.ChatRoleAssistant,
		Content:   reply.Text,
		CreatedAt: now.Add(time.Millisecond),
		Metadata:  datatypes.JSON(meta),
	}
	if err := s.repo.Chat().Append(ctx, userMsg, assistantMsg); err != nil {
		s.logger.LogPersistenceFailure(ctx, "store_chat", studentID, err)
	}

	return &reply, nil
}
