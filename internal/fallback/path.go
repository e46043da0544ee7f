package fallback

import "github.com/SAP-F-2025/tutor-service/internal/models"

var calculusPath = models.LearningPath{
	{Step: 1, Topic: "Limits and Continuity Review", Type: models.StepVideo, Duration: "15 min"},
	{Step: 2, Topic: "Introduction to Derivatives", Type: models.StepVideo, Duration: "20 min"},
	{Step: 3, Topic: "Derivative Rules Practice", Type: models.StepQuiz, Duration: "10 min"},
	{Step: 4, Topic: "Chain Rule Applications", Type: models.StepExercise, Duration: "25 min"},
	{Step: 5, Topic: "Calculus Mastery Check", Type: models.StepQuiz, Duration: "15 min"},
}

var algebraPath = models.LearningPath{
	{Step: 1, Topic: "Factoring Fundamentals", Type: models.StepVideo, Duration: "15 min"},
	{Step: 2, Topic: "The Quadratic Formula Explained", Type: models.StepVideo, Duration: "20 min"},
	{Step: 3, Topic: "Solving Quadratics Quiz", Type: models.StepQuiz, Duration: "10 min"},
	{Step: 4, Topic: "Completing the Square", Type: models.StepExercise, Duration: "25 min"},
	{Step: 5, Topic: "Algebra Mastery Check", Type: models.StepQuiz, Duration: "15 min"},
}

var pathRules = []rule[models.LearningPath]{
	{match: containsAny("derivative", "calculus"), pick: constant(calculusPath)},
	{match: containsAny("quadratic", "algebra"), pick: constant(algebraPath)},
}

// BuildPath returns the 5-step remedial template for a weak topic.
// The returned slice is a fresh copy and may be modified by the caller.
func BuildPath(topic string) models.LearningPath {
	path := firstMatch(pathRules, topic, genericPath)
	out := make(models.LearningPath, len(path))
	copy(out, path)
	return out
}

func genericPath(topic string) models.LearningPath {
	return models.LearningPath{
		{Step: 1, Topic: "Introduction to " + topic, Type: models.StepVideo, Duration: "15 min"},
		{Step: 2, Topic: "Core Concepts Walkthrough", Type: models.StepVideo, Duration: "20 min"},
		{Step: 3, Topic: topic + " Practice Quiz", Type: models.StepQuiz, Duration: "10 min"},
		{Step: 4, Topic: "Guided Problem Solving", Type: models.StepExercise, Duration: "25 min"},
		{Step: 5, Topic: "Mastery Check", Type: models.StepQuiz, Duration: "15 min"},
	}
}
