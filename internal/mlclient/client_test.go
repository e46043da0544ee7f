package mlclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/", APIKey: "secret", Timeout: 2 * time.Second})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestChat_SendsHistoryAndAuth(t *testing.T) {
	var got ChatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, map[string]string{"response": "Try the power rule."})
	})

	reply, err := c.Chat(context.Background(), ChatRequest{
		StudentID: "s1",
		Message:   "help with x^2",
		History:   []ChatTurn{{Role: models.ChatRoleUser, Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "Try the power rule.", reply)
	assert.Equal(t, "help with x^2", got.Message)
	require.Len(t, got.History, 1)
}

func TestChat_EmptyReply(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"response": "  "})
	})

	_, err := c.Chat(context.Background(), ChatRequest{Message: "x"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNon2xxReturnsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	})

	_, err := c.PredictRisk(context.Background(), RiskRequest{EngagementScore: 40, AvgQuizScore: 50})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "/predict-risk", apiErr.Endpoint)
	assert.Equal(t, "model overloaded", apiErr.Body)
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url, Timeout: time.Second})
	_, err := c.LearningPath(context.Background(), PathRequest{Topic: "limits"})

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestPredictRisk(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req RiskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 42.0, req.EngagementScore)
		writeJSON(w, models.RiskPrediction{RiskLevel: models.RiskHigh, Confidence: 91, Analysis: "model says so"})
	})

	pred, err := c.PredictRisk(context.Background(), RiskRequest{EngagementScore: 42, AvgQuizScore: 30})

	require.NoError(t, err)
	assert.Equal(t, models.RiskHigh, pred.RiskLevel)
	assert.Equal(t, 91, pred.Confidence)
	assert.NotNil(t, pred.Factors)
}

func TestPredictRisk_UnknownLevel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"risk_level": "Severe", "confidence": 50})
	})

	_, err := c.PredictRisk(context.Background(), RiskRequest{})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestLearningPath_RejectsBadNumbering(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"path": []models.LearningStep{
			{Step: 1, Topic: "a", Type: models.StepVideo, Duration: "5 min"},
			{Step: 3, Topic: "b", Type: models.StepQuiz, Duration: "5 min"},
		}})
	})

	_, err := c.LearningPath(context.Background(), PathRequest{Topic: "x"})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGenerateQuiz(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req QuizRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, QuizRequest{Topic: "limits", Difficulty: "advanced", Count: 1}, req)
		writeJSON(w, map[string]interface{}{"questions": []models.QuizQuestion{
			{ID: 1, Question: "lim x->0 sin x / x?", Options: []string{"0", "1"}, Correct: "1"},
		}})
	})

	qs, err := c.GenerateQuiz(context.Background(), QuizRequest{Topic: "limits", Difficulty: "advanced", Count: 1})

	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "1", qs[0].Correct)
}

func TestGenerateQuiz_InvalidQuestion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"questions": []models.QuizQuestion{
			{ID: 1, Question: "?", Options: []string{"a", "b"}, Correct: "c"},
		}})
	})

	_, err := c.GenerateQuiz(context.Background(), QuizRequest{Topic: "x", Count: 1})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDailyInsight_EmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.DailyInsight(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestDailyInsight_MalformedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})

	_, err := c.DailyInsight(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestUploadRoster_Multipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)

		assert.Equal(t, "roster.csv", header.Filename)
		assert.Equal(t, "name\nAda\n", string(content))
		writeJSON(w, map[string]interface{}{"students": []models.StudentMetrics{{ID: "s1", Name: "Ada"}}})
	})

	students, err := c.UploadRoster(context.Background(), "roster.csv", strings.NewReader("name\nAda\n"))

	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Ada", students[0].Name)
}
