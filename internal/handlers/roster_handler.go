package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/tutor-service/internal/auth"
	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/SAP-F-2025/tutor-service/internal/repositories"
	"github.com/SAP-F-2025/tutor-service/internal/services"
	"github.com/SAP-F-2025/tutor-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	maxRosterUploadBytes = 10 << 20
	xlsxContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type RosterHandler struct {
	BaseHandler
	rosterService services.RosterService
}

func NewRosterHandler(rosterService services.RosterService, logger utils.Logger) *RosterHandler {
	return &RosterHandler{
		BaseHandler:   NewBaseHandler(logger),
		rosterService: rosterService,
	}
}

// ListStudents lists the caller's roster with optional risk_level and search filters.
// @Router /students [get]
func (h *RosterHandler) ListStudents(c *gin.Context) {
	filters := repositories.StudentFilters{
		TeacherID: teacherScope(c),
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Limit:     parseIntQuery(c, "limit", 50),
		Offset:    parseIntQuery(c, "offset", 0),
	}
	if risk := c.Query("risk_level"); risk != "" {
		level := models.RiskLevel(risk)
		filters.RiskLevel = &level
	}

	res, err := h.rosterService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Router /students/{id} [get]
func (h *RosterHandler) GetStudent(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	student, err := h.rosterService.Get(c.Request.Context(), id, teacherScope(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

// RequireOwnedStudent stops teachers from reaching students outside their roster.
// Students and admins pass through; RequireSelfOrStaff already covers students.
func (h *RosterHandler) RequireOwnedStudent(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok || user.Role != models.RoleTeacher {
			c.Next()
			return
		}
		if _, err := h.rosterService.Get(c.Request.Context(), c.Param(param), user.ID); err != nil {
			h.handleServiceError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ImportRoster accepts a CSV or XLSX upload in the "file" form field.
// @Router /roster/import [post]
func (h *RosterHandler) ImportRoster(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRosterUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "A roster file is required", err, err.Error())
		return
	}
	file, err := header.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Could not read uploaded file", err)
		return
	}
	defer file.Close()

	teacherID := c.GetString(auth.UserIDKey)
	h.LogRequest(c, "Importing roster", "file_name", header.Filename, "size", header.Size)

	result, err := h.rosterService.Import(c.Request.Context(), file, header.Filename, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Status == models.ImportValidationFailed {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

// @Router /roster/export [get]
func (h *RosterHandler) ExportRoster(c *gin.Context) {
	data, err := h.rosterService.Export(c.Request.Context(), teacherScope(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("roster_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
