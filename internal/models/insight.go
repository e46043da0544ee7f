package models

type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
)

type Trend struct {
	Metric string         `json:"metric"`
	Value  string         `json:"value"`
	Trend  TrendDirection `json:"trend"`
}

type Recommendation struct {
	Priority string `json:"priority"`
	Action   string `json:"action"`
	Impact   string `json:"impact"`
}

type DailyInsight struct {
	Insight         string           `json:"insight"`
	Trends          []Trend          `json:"trends"`
	FocusTopic      string           `json:"focus_topic"`
	Recommendations []Recommendation `json:"recommendations"`

	// Roster aggregates the insight was built from
	TotalStudents int     `json:"total_students"`
	AvgEngagement float64 `json:"avg_engagement"`
	AvgQuiz       float64 `json:"avg_quiz"`
	HighRiskCount int     `json:"high_risk_count"`
}
