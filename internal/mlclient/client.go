// Package mlclient talks to the remote machine-learning API that powers the
// tutor chat, risk model, learning paths, quizzes and the daily insight.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/SAP-F-2025/tutor-service/internal/metrics"
	"github.com/SAP-F-2025/tutor-service/internal/models"
)

const (
	pathChat         = "/chat"
	pathPredictRisk  = "/predict-risk"
	pathLearningPath = "/learning-path"
	pathGenerateQuiz = "/generate-quiz"
	pathDailyInsight = "/daily-insight"
	pathUpload       = "/upload"

	maxErrorBody = 4 << 10
)

var (
	// ErrEmptyResponse is returned when the API answered 2xx without usable content.
	ErrEmptyResponse = errors.New("ml api returned an empty result")
	// ErrMalformedResponse is returned when the payload decodes but breaks the model's invariants.
	ErrMalformedResponse = errors.New("ml api returned a malformed result")
)

// APIError is a non-2xx answer from the ML API.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ml api %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// API is what the advisor and roster services need from the ML backend.
type API interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	PredictRisk(ctx context.Context, req RiskRequest) (models.RiskPrediction, error)
	LearningPath(ctx context.Context, req PathRequest) (models.LearningPath, error)
	GenerateQuiz(ctx context.Context, req QuizRequest) ([]models.QuizQuestion, error)
	DailyInsight(ctx context.Context, students []models.StudentMetrics) (models.DailyInsight, error)
	UploadRoster(ctx context.Context, filename string, file io.Reader) ([]models.StudentMetrics, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type ChatTurn struct {
	Role    models.ChatRole `json:"role"`
	Content string          `json:"content"`
}

type ChatRequest struct {
	StudentID string     `json:"student_id,omitempty"`
	Message   string     `json:"message"`
	History   []ChatTurn `json:"history,omitempty"`
}

type RiskRequest struct {
	StudentID       string  `json:"student_id,omitempty"`
	EngagementScore float64 `json:"engagement_score"`
	AvgQuizScore    float64 `json:"avg_quiz_score"`
	WeakestTopic    string  `json:"weakest_topic,omitempty"`
}

type PathRequest struct {
	StudentID string `json:"student_id,omitempty"`
	Topic     string `json:"topic"`
}

type QuizRequest struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	var resp struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, pathChat, req, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Response) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Response, nil
}

func (c *Client) PredictRisk(ctx context.Context, req RiskRequest) (models.RiskPrediction, error) {
	var resp models.RiskPrediction
	if err := c.postJSON(ctx, pathPredictRisk, req, &resp); err != nil {
		return models.RiskPrediction{}, err
	}
	switch resp.RiskLevel {
	case models.RiskLow, models.RiskMedium, models.RiskHigh:
	case "":
		return models.RiskPrediction{}, ErrEmptyResponse
	default:
		return models.RiskPrediction{}, fmt.Errorf("%w: risk level %q", ErrMalformedResponse, resp.RiskLevel)
	}
	if resp.Factors == nil {
		resp.Factors = []models.RiskFactor{}
	}
	return resp, nil
}

func (c *Client) LearningPath(ctx context.Context, req PathRequest) (models.LearningPath, error) {
	var resp struct {
		Path models.LearningPath `json:"path"`
	}
	if err := c.postJSON(ctx, pathLearningPath, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Path) == 0 {
		return nil, ErrEmptyResponse
	}
	if !resp.Path.Valid() {
		return nil, fmt.Errorf("%w: steps not numbered 1..n", ErrMalformedResponse)
	}
	return resp.Path, nil
}

func (c *Client) GenerateQuiz(ctx context.Context, req QuizRequest) ([]models.QuizQuestion, error) {
	var resp struct {
		Questions []models.QuizQuestion `json:"questions"`
	}
	if err := c.postJSON(ctx, pathGenerateQuiz, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Questions) == 0 {
		return nil, ErrEmptyResponse
	}
	for i, q := range resp.Questions {
		if !q.Valid() {
			return nil, fmt.Errorf("%w: question %d", ErrMalformedResponse, i+1)
		}
	}
	return resp.Questions, nil
}

func (c *Client) DailyInsight(ctx context.Context, students []models.StudentMetrics) (models.DailyInsight, error) {
	req := struct {
		Students []models.StudentMetrics `json:"students"`
	}{Students: students}

	var resp models.DailyInsight
	if err := c.postJSON(ctx, pathDailyInsight, req, &resp); err != nil {
		return models.DailyInsight{}, err
	}
	if strings.TrimSpace(resp.Insight) == "" {
		return models.DailyInsight{}, ErrEmptyResponse
	}
	return resp, nil
}

// UploadRoster sends the raw roster file and returns the students the model scored.
func (c *Client) UploadRoster(ctx context.Context, filename string, file io.Reader) ([]models.StudentMetrics, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("buffer roster upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var resp struct {
		Students []models.StudentMetrics `json:"students"`
	}
	if err := c.do(ctx, pathUpload, mw.FormDataContentType(), &body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Students) == 0 {
		return nil, ErrEmptyResponse
	}
	return resp.Students, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	return c.do(ctx, path, "application/json", bytes.NewReader(payload), out)
}

func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader, out interface{}) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveMLRequest(path, err, time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ml api %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &APIError{Endpoint: path, StatusCode: res.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyResponse
		}
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, path, err)
	}
	return nil
}
