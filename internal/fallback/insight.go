package fallback

import (
	"fmt"
	"math"

	"github.com/SAP-F-2025/tutor-service/internal/models"
)

const (
	highRiskShareAlert   = 0.3
	engagementWarnBelow  = 60.0
	classAverageUpAbove  = 70.0
	engagementUpAbove    = 65.0
	atRiskFavorableBelow = 3

	// No topic inference is done without the ML service.
	placeholderFocusTopic = "Quadratic Equations"
)

// Summarize turns a roster snapshot into a short insight with trends.
// An empty roster yields zero averages rather than an error.
func Summarize(students []models.StudentMetrics) models.DailyInsight {
	total := len(students)
	divisor := float64(total)
	if total == 0 {
		divisor = 1
	}

	var sumEngagement, sumQuiz float64
	highRisk := 0
	for _, s := range students {
		sumEngagement += s.EngagementScore
		sumQuiz += s.AvgQuizScore
		if s.HasRisk(models.RiskHigh) {
			highRisk++
		}
	}
	avgEngagement := sumEngagement / divisor
	avgQuiz := sumQuiz / divisor

	var text string
	switch {
	case float64(highRisk) > highRiskShareAlert*float64(total):
		text = fmt.Sprintf(
			"Alert: %d students (%.0f%%) are at high risk. Consider scheduling small-group intervention sessions this week.",
			highRisk, math.Round(float64(highRisk)/divisor*100))
	case avgEngagement < engagementWarnBelow:
		text = "Class engagement is below target. Consider adding interactive activities and shorter practice sets to boost participation."
	default:
		text = fmt.Sprintf(
			"The class is performing steadily with an average quiz score of %.0f%%. Keep the current pace and introduce stretch problems.",
			math.Round(avgQuiz))
	}

	atRiskTrend := models.TrendUp
	if highRisk < atRiskFavorableBelow {
		atRiskTrend = models.TrendDown
	}

	return models.DailyInsight{
		Insight: text,
		Trends: []models.Trend{
			{Metric: "Class Average", Value: fmt.Sprintf("%.0f%%", math.Round(avgQuiz)), Trend: direction(avgQuiz > classAverageUpAbove)},
			{Metric: "Engagement", Value: fmt.Sprintf("%.0f%%", math.Round(avgEngagement)), Trend: direction(avgEngagement > engagementUpAbove)},
			{Metric: "At Risk", Value: fmt.Sprintf("%d students", highRisk), Trend: atRiskTrend},
		},
		FocusTopic: placeholderFocusTopic,
		Recommendations: []models.Recommendation{
			{
				Priority: "high",
				Action:   "Review the weakest topics with at-risk students in a small-group session",
				Impact:   "Could raise the class average by 5-10%",
			},
		},
		TotalStudents: total,
		AvgEngagement: avgEngagement,
		AvgQuiz:       avgQuiz,
		HighRiskCount: highRisk,
	}
}

func direction(up bool) models.TrendDirection {
	if up {
		return models.TrendUp
	}
	return models.TrendDown
}
