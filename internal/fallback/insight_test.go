package fallback

import (
	"testing"

	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func student(engagement, quiz float64, level models.RiskLevel) models.StudentMetrics {
	s := models.StudentMetrics{EngagementScore: engagement, AvgQuizScore: quiz}
	if level != "" {
		s.RiskLevel = &level
	}
	return s
}

func TestSummarize_EmptyRoster(t *testing.T) {
	var insight models.DailyInsight
	require.NotPanics(t, func() { insight = Summarize(nil) })

	assert.Equal(t, 0.0, insight.AvgEngagement)
	assert.Equal(t, 0.0, insight.AvgQuiz)
	assert.Equal(t, 0, insight.HighRiskCount)
	assert.Equal(t, 0, insight.TotalStudents)
	assert.Contains(t, insight.Insight, "engagement is below target")
	require.Len(t, insight.Trends, 3)
	assert.Equal(t, models.TrendDown, insight.Trends[2].Trend)
}

func TestSummarize_HighRiskAlert(t *testing.T) {
	roster := []models.StudentMetrics{
		student(30, 40, models.RiskHigh),
		student(35, 45, models.RiskHigh),
		student(80, 85, models.RiskLow),
		student(75, 70, models.RiskMedium),
		student(90, 95, ""),
	}

	insight := Summarize(roster)

	assert.Equal(t, 2, insight.HighRiskCount)
	assert.Equal(t, "Alert: 2 students (40%) are at high risk. Consider scheduling small-group intervention sessions this week.", insight.Insight)
}

func TestSummarize_EngagementWarning(t *testing.T) {
	roster := []models.StudentMetrics{
		student(50, 80, models.RiskLow),
		student(55, 90, models.RiskLow),
		student(60, 85, models.RiskLow),
	}

	insight := Summarize(roster)

	assert.InDelta(t, 55.0, insight.AvgEngagement, 0.001)
	assert.Contains(t, insight.Insight, "engagement is below target")
}

func TestSummarize_SteadyPerformance(t *testing.T) {
	roster := []models.StudentMetrics{
		student(80, 72.4, models.RiskLow),
		student(70, 80, models.RiskMedium),
	}

	insight := Summarize(roster)

	assert.Contains(t, insight.Insight, "average quiz score of 76%")
	assert.Equal(t, placeholderFocusTopic, insight.FocusTopic)
	require.Len(t, insight.Recommendations, 1)
}

func TestSummarize_Trends(t *testing.T) {
	roster := []models.StudentMetrics{
		student(70, 75, models.RiskHigh),
		student(70, 75, models.RiskHigh),
		student(70, 75, models.RiskHigh),
		student(70, 75, models.RiskLow),
		student(70, 75, models.RiskLow),
		student(70, 75, models.RiskLow),
		student(70, 75, models.RiskLow),
		student(70, 75, models.RiskLow),
		student(70, 75, models.RiskLow),
		student(70, 75, models.RiskLow),
		student(70, 75, models.RiskLow),
	}

	insight := Summarize(roster)

	assert.Equal(t, []models.Trend{
		{Metric: "Class Average", Value: "75%", Trend: models.TrendUp},
		{Metric: "Engagement", Value: "70%", Trend: models.TrendUp},
		{Metric: "At Risk", Value: "3 students", Trend: models.TrendUp},
	}, insight.Trends)
}

func TestSummarize_AtRiskTrendIsInverted(t *testing.T) {
	roster := []models.StudentMetrics{
		student(50, 50, models.RiskHigh),
		student(90, 90, models.RiskLow),
		student(90, 90, models.RiskLow),
		student(90, 90, models.RiskLow),
		student(90, 90, models.RiskLow),
		student(90, 90, models.RiskLow),
		student(90, 90, models.RiskLow),
	}

	insight := Summarize(roster)

	assert.Equal(t, "At Risk", insight.Trends[2].Metric)
	assert.Equal(t, models.TrendDown, insight.Trends[2].Trend)
}
