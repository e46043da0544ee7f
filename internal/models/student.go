package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// StudentMetrics is the per-student performance snapshot consumed by risk
// classification and the daily insight.
type StudentMetrics struct {
	ID              string     `json:"id" gorm:"primaryKey;size:64"`
	Name            string     `json:"name" gorm:"not null;size:200" validate:"required,max=200"`
	EngagementScore float64    `json:"engagement_score" gorm:"not null" validate:"min=0,max=100"`
	AvgQuizScore    float64    `json:"avg_quiz_score" gorm:"not null" validate:"min=0,max=100"`
	WeakestTopic    string     `json:"weakest_topic" gorm:"size:200"`
	RiskLevel       *RiskLevel `json:"risk_level,omitempty" gorm:"size:10;index" validate:"omitempty,risk_level"`

	// Last prediction factors, kept so the teacher view can show why.
	RiskFactors datatypes.JSON `json:"risk_factors,omitempty" gorm:"type:jsonb"`

	TeacherID string         `json:"teacher_id" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (StudentMetrics) TableName() string {
	return "students"
}

// HasRisk reports whether the snapshot carries the given risk level.
func (s StudentMetrics) HasRisk(level RiskLevel) bool {
	return s.RiskLevel != nil && *s.RiskLevel == level
}

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

type RiskFactor struct {
	Factor   string   `json:"factor"`
	Severity Severity `json:"severity"`
	Value    float64  `json:"value"`
}

type RiskPrediction struct {
	RiskLevel  RiskLevel    `json:"risk_level"`
	Confidence int          `json:"confidence"`
	Analysis   string       `json:"analysis"`
	Factors    []RiskFactor `json:"factors"`
}
