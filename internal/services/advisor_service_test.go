package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/tutor-service/internal/cache"
	"github.com/SAP-F-2025/tutor-service/internal/events"
	"github.com/SAP-F-2025/tutor-service/internal/fallback"
	"github.com/SAP-F-2025/tutor-service/internal/metrics"
	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/SAP-F-2025/tutor-service/internal/repositories"
	"github.com/SAP-F-2025/tutor-service/internal/validator"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var advisorNow = time.Date(2026, 10, 17, 23, 30, 0, 0, time.UTC)

// memoryCache is a map-backed cache.CacheService that round-trips through JSON like Redis does.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	b, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

type advisorFixture struct {
	svc       AdvisorService
	repo      *MockRepository
	ml        *fakeML
	cache     *memoryCache
	publisher *events.MockEventPublisher
}

func newAdvisorFixture(cfg AdvisorConfig) *advisorFixture {
	f := &advisorFixture{
		repo:      newMockRepository(),
		ml:        &fakeML{},
		cache:     newMemoryCache(),
		publisher: events.NewMockEventPublisher(nil),
	}
	if cfg.Now == nil {
		cfg.Now = fixedClock(advisorNow)
	}
	f.svc = NewAdvisorService(f.repo, f.ml, f.cache, f.publisher, testLogger("advisor"), validator.New(), cfg)
	return f
}

func riskLevel(l models.RiskLevel) *models.RiskLevel { return &l }

func TestAdvisorService_PredictRisk_UsesML(t *testing.T) {
	f := newAdvisorFixture(AdvisorConfig{})
	f.ml.prediction = models.RiskPrediction{RiskLevel: models.RiskMedium, Confidence: 91, Analysis: "from model"}

	got, err := f.svc.PredictRisk(context.Background(), &RiskRequest{EngagementScore: 55, AvgQuizScore: 60})

	require.NoError(t, err)
	assert.Equal(t, f.ml.prediction, *got)
}

func TestAdvisorService_PredictRisk_FallsBackWhenMLDown(t *testing.T) {
	f := newAdvisorFixture(AdvisorConfig{})
	f.ml.err = errMLDown
	before := testutil.ToFloat64(metrics.FallbackCounter.WithLabelValues("predict_risk"))

	got, err := f.svc.PredictRisk(context.Background(), &RiskRequest{EngagementScore: 20, AvgQuizScore: 30})

	require.NoError(t, err)
	assert.Equal(t, fallback.Classify(20, 30), *got)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.FallbackCounter.WithLabelValues("predict_risk")))
}

func TestAdvisorService_PredictRisk_RejectsOutOfRangeScores(t *testing.T) {
	f := newAdvisorFixture(AdvisorConfig{})

	_, err := f.svc.PredictRisk(context.Background(), &RiskRequest{EngagementScore: 150, AvgQuizScore: 60})

	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestAdvisorService_PredictStudentRisk_NotFound(t *testing.T) {
	f := newAdvisorFixture(AdvisorConfig{})
	f.repo.students.On("GetByID", mock.Anything, "missing").Return(nil, repositories.ErrNotFound)

	_, err := f.svc.PredictStudentRisk(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestAdvisorService_PredictStudentRisk_HighRiskStoresAndPublishes(t *testing.T) {
	f := newAdvisorFixture(AdvisorConfig{})
	student := &models.StudentMetrics{ID: "s1", Name: "Ada", EngagementScore: 20, AvgQuizScore: 30, TeacherID: "t1"}
	f.ml.err = errMLDown
	expected := fallback.Classify(20, 30)
	require.Equal(t, models.RiskHigh, expected.RiskLevel)

	f.repo.students.On("GetByID", mock.Anything, "s1").Return(student, nil)
	f.repo.students.On("UpdateRisk", mock.Anything, "s1", models.RiskHigh, mock.Anything).Return(nil)

	got, err := f.svc.PredictStudentRisk(context.Background(), "s1")

	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, expected, got.Prediction)
	f.repo.students.AssertExpectations(t)

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventStudentAtRisk, published[0].Type)
	assert.Equal(t, "s1", published[0].StudentID)
}

func TestAdvisorService_PredictStudentRisk_StoreFailureStillAnswers(t *testing.T) {
	f := newAdvisorFixture(AdvisorConfig{})
	f.ml.prediction = models.RiskPrediction{RiskLevel: models.RiskLow, Confidence: 80}
	f.repo.students.On("GetByID", mock.Anything, "s1").Return(&models.StudentMetrics{ID: "s1", Name: "Ada"}, nil)
	f.repo.students.On("UpdateRisk", mock.Anything, "s1", models.RiskLow, mock.Anything).Return(errors.New("read-only transaction"))

	got, err := f.svc.PredictStudentRisk(context.Background(), "s1")

	require.NoError(t, err)
	assert.Equal(t, models.RiskLow, got.Prediction.RiskLevel)
	assert.Empty(t, f.publisher.GetPublishedEvents())
}

func TestAdvisorService_LearningPath(t *testing.T) {
	t.Run("ml path", func(t *testing.T) {
		f := newAdvisorFixture(AdvisorConfig{})
		f.ml.path = models.LearningPath{{Step: 1, Topic: "Model step", Type: models.StepVideo, Duration: "10 min"}}

		got, err := f.svc.LearningPath(context.Background(), &LearningPathRequest{Topic: "derivatives"})

		require.NoError(t, err)
		assert.Equal(t, f.ml.path, got)
	})

	t.Run("fallback path", func(t *testing.T) {
		f := newAdvisorFixture(AdvisorConfig{})
		f.ml.err = errMLDown

		got, err := f.svc.LearningPath(context.Background(), &LearningPathRequest{Topic: "derivatives"})

		require.NoError(t, err)
		assert.Equal(t, fallback.BuildPath("derivatives"), got)
	})

	t.Run("topic required", func(t *testing.T) {
		f := newAdvisorFixture(AdvisorConfig{})

		_, err := f.svc.LearningPath(context.Background(), &LearningPathRequest{})

		assert.True(t, IsValidation(err))
	})
}

func TestAdvisorService_GenerateQuiz(t *testing.T) {
	t.Run("ml questions carry no notice", func(t *testing.T) {
		f := newAdvisorFixture(AdvisorConfig{})
		f.ml.questions = []models.QuizQuestion{{Question: "2+2?", Options: []string{"3", "4"}, Correct: "4"}}

		got, err := f.svc.GenerateQuiz(context.Background(), &QuizRequest{Topic: "arithmetic", Count: 1})

		require.NoError(t, err)
		assert.Equal(t, f.ml.questions, got.Questions)
		assert.Empty(t, got.Notice)
	})

	t.Run("fallback defaults count and difficulty", func(t *testing.T) {
		f := newAdvisorFixture(AdvisorConfig{})
		f.ml.err = errMLDown

		got, err := f.svc.GenerateQuiz(context.Background(), &QuizRequest{Topic: "derivatives"})

		require.NoError(t, err)
		assert.Equal(t, fallback.GenerateQuiz("derivatives", "intermediate", defaultQuizCount), got.Questions)
		assert.Equal(t, fallback.DefaultQuestionsNotice, got.Notice)
	})

	t.Run("unknown difficulty rejected", func(t *testing.T) {
		f := newAdvisorFixture(AdvisorConfig{})

		_, err := f.svc.GenerateQuiz(context.Background(), &QuizRequest{Topic: "derivatives", Difficulty: "expert"})

		assert.True(t, IsValidation(err))
	})
}

func TestAdvisorService_DailyInsight_FallbackAndCache(t *testing.T) {
	f := newAdvisorFixture(AdvisorConfig{InsightCacheTTL: time.Hour})
	f.ml.err = errMLDown
	roster := []models.StudentMetrics{
		{ID: "a", EngagementScore: 80, AvgQuizScore: 90, RiskLevel: riskLevel(models.RiskLow)},
		{ID: "b", EngagementScore: 30, AvgQuizScore: 40, RiskLevel: riskLevel(models.RiskHigh)},
	}
	f.repo.students.On("ListAll", mock.Anything, "t1").Return(roster, nil).Once()

	first, err := f.svc.DailyInsight(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, fallback.Summarize(roster), *first)

	second, err := f.svc.DailyInsight(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, first.Insight, second.Insight)
	assert.Equal(t, first.HighRiskCount, second.HighRiskCount)

	f.repo.students.AssertNumberOfCalls(t, "ListAll", 1)
}

func TestAdvisorService_DailyInsight_LocalAggregatesWin(t *testing.T) {
	f := newAdvisorFixture(AdvisorConfig{})
	f.ml.insight = models.DailyInsight{Insight: "Model says hi", FocusTopic: "Limits", TotalStudents: 99}
	roster := []models.StudentMetrics{{ID: "a", EngagementScore: 50, AvgQuizScore: 70}}
	f.repo.students.On("ListAll", mock.Anything, "").Return(roster, nil)

	got, err := f.svc.DailyInsight(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, "Model says hi", got.Insight)
	assert.Equal(t, "Limits", got.FocusTopic)
	assert.Equal(t, 1, got.TotalStudents)
	assert.InDelta(t, 50, got.AvgEngagement, 1e-9)
	assert.InDelta(t, 70, got.AvgQuiz, 1e-9)
}

func TestAdvisorService_DailyInsight_KeyedByLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	f := newAdvisorFixture(AdvisorConfig{Location: loc})
	f.ml.err = errMLDown
	f.repo.students.On("ListAll", mock.Anything, "t1").Return([]models.StudentMetrics{}, nil)

	_, err := f.svc.DailyInsight(context.Background(), "t1")
	require.NoError(t, err)

	// 23:30 UTC on the 17th is already the 18th in UTC+9
	var cached models.DailyInsight
	assert.NoError(t, f.cache.Get(context.Background(), cache.InsightKey("t1", "2026-10-18"), &cached))
}

func TestAdvisorService_DailyInsight_RosterErrorReturned(t *testing.T) {
	f := newAdvisorFixture(AdvisorConfig{})
	f.repo.students.On("ListAll", mock.Anything, "t1").Return(nil, errors.New("too many connections"))

	_, err := f.svc.DailyInsight(context.Background(), "t1")

	assert.Error(t, err)
}

func TestAdvisorService_Chat_FallbackPersistsBothTurns(t *testing.T) {
	f := newAdvisorFixture(AdvisorConfig{})
	f.ml.err = errMLDown
	f.repo.chat.On("Recent", mock.Anything, "s1", chatHistoryWindow).Return([]models.ChatMessage{
		{Role: models.ChatRoleUser, Content: "hi"},
	}, nil)

	var stored []*models.ChatMessage
	f.repo.chat.On("Append", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).([]*models.ChatMessage)
	}).Return(nil)

	reply, err := f.svc.Chat(context.Background(), "s1", &ChatRequest{Message: "What is a derivative?"})

	require.NoError(t, err)
	assert.Equal(t, fallback.Respond("What is a derivative?", advisorNow), *reply)

	require.Len(t, stored, 2)
	assert.Equal(t, models.ChatRoleUser, stored[0].Role)
	assert.Equal(t, "What is a derivative?", stored[0].Content)
	assert.Equal(t, models.ChatRoleAssistant, stored[1].Role)
	assert.Equal(t, reply.Text, stored[1].Content)
	assert.JSONEq(t, `{"source":"fallback"}`, string(stored[1].Metadata))
	assert.NotEqual(t, stored[0].ID, stored[1].ID)
}

func TestAdvisorService_Chat_MLReplyAndHistoryFailure(t *testing.T) {
	f := newAdvisorFixture(AdvisorConfig{})
	f.ml.chatReply = "A derivative measures change."
	f.repo.chat.On("Recent", mock.Anything, "s1", chatHistoryWindow).Return(nil, errors.New("timeout"))
	f.repo.chat.On("Append", mock.Anything, mock.Anything).Return(errors.New("timeout"))

	reply, err := f.svc.Chat(context.Background(), "s1", &ChatRequest{Message: "derivative?"})

	require.NoError(t, err)
	assert.Equal(t, "A derivative measures change.", reply.Text)
	assert.Equal(t, advisorNow, reply.Timestamp)
}

func TestAdvisorService_Chat_EmptyMessageRejected(t *testing.T) {
	f := newAdvisorFixture(AdvisorConfig{})

	_, err := f.svc.Chat(context.Background(), "s1", &ChatRequest{})

	assert.True(t, IsValidation(err))
}
