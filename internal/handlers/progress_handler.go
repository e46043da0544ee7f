package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/tutor-service/internal/auth"
	"github.com/SAP-F-2025/tutor-service/internal/services"
	"github.com/SAP-F-2025/tutor-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

// @Router /students/{id}/progress [get]
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	res, err := h.progressService.GetProgress(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Router /students/{id}/xp [post]
func (h *ProgressHandler) AddXP(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	var req services.AddXPRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.progressService.AddXP(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Router /students/{id}/modules [post]
func (h *ProgressHandler) CompleteModule(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	var req services.CompleteModuleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.progressService.CompleteModule(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Router /students/{id}/login [post]
func (h *ProgressHandler) RecordLogin(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	res, err := h.progressService.RecordLogin(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Router /students/{id}/achievements/check [post]
func (h *ProgressHandler) CheckAchievements(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	newly, err := h.progressService.CheckAndUnlock(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"new_achievements": newly})
}

// @Router /students/{id}/achievements [get]
func (h *ProgressHandler) ListAchievements(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	statuses, err := h.progressService.ListAchievements(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"achievements": statuses})
}

// @Router /achievements [get]
func (h *ProgressHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"achievements": h.progressService.Catalog()})
}

// ResetProgress wipes a student's XP, streak and achievements. Admin only.
// @Router /students/{id}/progress/reset [post]
func (h *ProgressHandler) ResetProgress(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	adminID := c.GetString(auth.UserIDKey)
	h.LogRequest(c, "Resetting student progress", "student_id", id)

	if err := h.progressService.ResetProgress(c.Request.Context(), id, adminID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Progress reset"})
}
