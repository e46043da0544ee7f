package events

import (
	"time"

	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/google/uuid"
)

type EventType string

const (
	EventLevelUp             EventType = "progress.level_up"
	EventAchievementUnlocked EventType = "progress.achievement_unlocked"
	EventStreakReset         EventType = "progress.streak_reset"
	EventProgressReset       EventType = "progress.reset"

	EventStudentAtRisk  EventType = "student.at_risk"
	EventRosterImported EventType = "roster.imported"
)

const (
	eventSource  = "tutor-service"
	eventVersion = "1.0"
)

// Event is the envelope for everything this service publishes.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	StudentID string                 `json:"student_id,omitempty"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type LevelUpEvent struct {
	OldLevel int `json:"old_level"`
	NewLevel int `json:"new_level"`
	XP       int `json:"xp"`
}

type AchievementUnlockedEvent struct {
	AchievementIDs []string  `json:"achievement_ids"`
	UnlockedAt     time.Time `json:"unlocked_at"`
}

type StreakResetEvent struct {
	PreviousStreak int    `json:"previous_streak"`
	LastLoginDate  string `json:"last_login_date"`
}

type StudentAtRiskEvent struct {
	StudentName string              `json:"student_name"`
	TeacherID   string              `json:"teacher_id,omitempty"`
	RiskLevel   models.RiskLevel    `json:"risk_level"`
	Confidence  int                 `json:"confidence"`
	Factors     []models.RiskFactor `json:"factors"`
}

type RosterImportedEvent struct {
	TeacherID     string `json:"teacher_id"`
	FileName      string `json:"file_name"`
	ImportedCount int    `json:"imported_count"`
	ErrorCount    int    `json:"error_count"`
}

func newEvent(eventType EventType, studentID string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		StudentID: studentID,
		Data:      data,
	}
}

func NewLevelUpEvent(studentID string, oldLevel, newLevel, xp int) *Event {
	return newEvent(EventLevelUp, studentID, LevelUpEvent{
		OldLevel: oldLevel,
		NewLevel: newLevel,
		XP:       xp,
	})
}

func NewAchievementUnlockedEvent(studentID string, ids []string, at time.Time) *Event {
	return newEvent(EventAchievementUnlocked, studentID, AchievementUnlockedEvent{
		AchievementIDs: ids,
		UnlockedAt:     at,
	})
}

func NewStreakResetEvent(studentID string, previous int, lastLogin string) *Event {
	return newEvent(EventStreakReset, studentID, StreakResetEvent{
		PreviousStreak: previous,
		LastLoginDate:  lastLogin,
	})
}

func NewProgressResetEvent(studentID, resetBy string) *Event {
	e := newEvent(EventProgressReset, studentID, nil)
	e.Metadata = map[string]interface{}{"reset_by": resetBy}
	return e
}

func NewStudentAtRiskEvent(student models.StudentMetrics, prediction models.RiskPrediction) *Event {
	return newEvent(EventStudentAtRisk, student.ID, StudentAtRiskEvent{
		StudentName: student.Name,
		TeacherID:   student.TeacherID,
		RiskLevel:   prediction.RiskLevel,
		Confidence:  prediction.Confidence,
		Factors:     prediction.Factors,
	})
}

func NewRosterImportedEvent(teacherID, fileName string, imported, failed int) *Event {
	return newEvent(EventRosterImported, "", RosterImportedEvent{
		TeacherID:     teacherID,
		FileName:      fileName,
		ImportedCount: imported,
		ErrorCount:    failed,
	})
}
