package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/tutor-service/internal/auth"
	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/gin-gonic/gin"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

func parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}

// teacherScope is the roster a caller may see: their own for teachers,
// the ?teacher_id query (or everything) for admins. Students get no teacher
// scope; routes they reach are already limited to their own id.
func teacherScope(c *gin.Context) string {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return ""
	}
	switch user.Role {
	case models.RoleAdmin:
		return c.Query("teacher_id")
	case models.RoleTeacher:
		return user.ID
	default:
		return ""
	}
}
