package fallback

import (
	"fmt"

	"github.com/SAP-F-2025/tutor-service/internal/models"
)

const (
	highRiskBelow   = 55.0
	mediumRiskBelow = 75.0

	highRiskConfidence   = 85
	mediumRiskConfidence = 75
	lowRiskConfidence    = 80

	quizLowBelow       = 60.0
	quizAverageBelow   = 75.0
	engageLowBelow     = 50.0
	engageAverageBelow = 70.0
)

// Classify maps engagement and quiz scores to a coarse risk category.
// Scores are expected in [0,100] but are not clamped. NaN inputs fail every
// threshold comparison and therefore classify as Low with no factors.
func Classify(engagementScore, avgQuizScore float64) models.RiskPrediction {
	combined := (engagementScore + avgQuizScore) / 2

	pred := models.RiskPrediction{
		RiskLevel:  models.RiskLow,
		Confidence: lowRiskConfidence,
		Factors:    []models.RiskFactor{},
	}
	switch {
	case combined < highRiskBelow:
		pred.RiskLevel = models.RiskHigh
		pred.Confidence = highRiskConfidence
	case combined < mediumRiskBelow:
		pred.RiskLevel = models.RiskMedium
		pred.Confidence = mediumRiskConfidence
	}

	if f, ok := scoreFactor(avgQuizScore, quizLowBelow, quizAverageBelow,
		"Low quiz performance", "Below average quiz scores"); ok {
		pred.Factors = append(pred.Factors, f)
	}
	if f, ok := scoreFactor(engagementScore, engageLowBelow, engageAverageBelow,
		"Low engagement", "Below average engagement"); ok {
		pred.Factors = append(pred.Factors, f)
	}

	pred.Analysis = fmt.Sprintf(
		"Based on an engagement score of %.0f%% and an average quiz score of %.0f%%, this student is at %s risk of falling behind.",
		engagementScore, avgQuizScore, pred.RiskLevel)

	return pred
}

func scoreFactor(score, lowBelow, averageBelow float64, lowName, averageName string) (models.RiskFactor, bool) {
	switch {
	case score < lowBelow:
		return models.RiskFactor{Factor: lowName, Severity: models.SeverityHigh, Value: score}, true
	case score < averageBelow:
		return models.RiskFactor{Factor: averageName, Severity: models.SeverityMedium, Value: score}, true
	}
	return models.RiskFactor{}, false
}

