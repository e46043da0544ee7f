package models

import "time"

type ModuleType string

const (
	ModuleVideo    ModuleType = "video"
	ModuleQuiz     ModuleType = "quiz"
	ModuleExercise ModuleType = "exercise"
)

// ProgressRecord holds the XP/level/streak counters for one student.
// LastLoginDate is a calendar day formatted as 2006-01-02, empty before the first login.
type ProgressRecord struct {
	StudentID     string `json:"student_id" gorm:"primaryKey;size:64"`
	XP            int    `json:"xp" gorm:"not null;default:0"`
	Level         int    `json:"level" gorm:"not null;default:1"`
	Streak        int    `json:"streak" gorm:"not null;default:0"`
	LastLoginDate string `json:"last_login_date" gorm:"size:10"`

	VideosCompleted    int `json:"videos_completed" gorm:"default:0"`
	QuizzesCompleted   int `json:"quizzes_completed" gorm:"default:0"`
	ExercisesCompleted int `json:"exercises_completed" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProgressRecord) TableName() string {
	return "student_progress"
}

// NewProgressRecord returns the starting record for a student with no history.
func NewProgressRecord(studentID string) *ProgressRecord {
	return &ProgressRecord{
		StudentID: studentID,
		Level:     1,
	}
}

// ModulesCompleted is the total across all module types.
func (p ProgressRecord) ModulesCompleted() int {
	return p.VideosCompleted + p.QuizzesCompleted + p.ExercisesCompleted
}

type UnlockedAchievement struct {
	StudentID     string    `json:"student_id" gorm:"primaryKey;size:64"`
	AchievementID string    `json:"achievement_id" gorm:"primaryKey;size:64"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

func (UnlockedAchievement) TableName() string {
	return "student_achievements"
}
