package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/tutor-service/internal/auth"
	"github.com/SAP-F-2025/tutor-service/internal/services"
	"github.com/SAP-F-2025/tutor-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AdvisorHandler struct {
	BaseHandler
	advisorService services.AdvisorService
}

func NewAdvisorHandler(advisorService services.AdvisorService, logger utils.Logger) *AdvisorHandler {
	return &AdvisorHandler{
		BaseHandler:    NewBaseHandler(logger),
		advisorService: advisorService,
	}
}

// PredictRisk classifies ad-hoc scores.
// @Router /advisor/risk [post]
func (h *AdvisorHandler) PredictRisk(c *gin.Context) {
	var req services.RiskRequest
	if !h.bindJSON(c, &req) {
		return
	}

	prediction, err := h.advisorService.PredictRisk(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, prediction)
}

// PredictStudentRisk classifies a stored student and records the result.
// @Router /advisor/students/{id}/risk [post]
func (h *AdvisorHandler) PredictStudentRisk(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, "Predicting student risk", "student_id", id)

	res, err := h.advisorService.PredictStudentRisk(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Router /advisor/learning-path [post]
func (h *AdvisorHandler) LearningPath(c *gin.Context) {
	var req services.LearningPathRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.StudentID == "" {
		req.StudentID = c.GetString(auth.UserIDKey)
	}

	path, err := h.advisorService.LearningPath(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

// @Router /advisor/quiz [post]
func (h *AdvisorHandler) GenerateQuiz(c *gin.Context) {
	var req services.QuizRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quiz, err := h.advisorService.GenerateQuiz(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// Chat answers the calling student's message.
// @Router /advisor/chat [post]
func (h *AdvisorHandler) Chat(c *gin.Context) {
	var req services.ChatRequest
	if !h.bindJSON(c, &req) {
		return
	}

	reply, err := h.advisorService.Chat(c.Request.Context(), c.GetString(auth.UserIDKey), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// DailyInsight summarises the caller's roster for today.
// @Router /advisor/insight [get]
func (h *AdvisorHandler) DailyInsight(c *gin.Context) {
	insight, err := h.advisorService.DailyInsight(c.Request.Context(), teacherScope(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, insight)
}
