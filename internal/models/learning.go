package models

type StepType string

const (
	StepVideo    StepType = "video"
	StepQuiz     StepType = "quiz"
	StepExercise StepType = "exercise"
)

type LearningStep struct {
	Step     int      `json:"step"`
	Topic    string   `json:"topic"`
	Type     StepType `json:"type"`
	Duration string   `json:"duration"`
}

// LearningPath is an ordered, non-empty sequence of steps numbered 1..n.
type LearningPath []LearningStep

// Valid reports whether the path is non-empty and numbered sequentially from 1.
func (p LearningPath) Valid() bool {
	if len(p) == 0 {
		return false
	}
	for i, s := range p {
		if s.Step != i+1 {
			return false
		}
	}
	return true
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

type QuizQuestion struct {
	ID          int      `json:"id"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     string   `json:"correct"`
	Explanation string   `json:"explanation,omitempty"`
}

// Valid checks that options are distinct, at least two, and contain the answer.
func (q QuizQuestion) Valid() bool {
	if len(q.Options) < 2 {
		return false
	}
	seen := make(map[string]struct{}, len(q.Options))
	found := false
	for _, o := range q.Options {
		if _, dup := seen[o]; dup {
			return false
		}
		seen[o] = struct{}{}
		if o == q.Correct {
			found = true
		}
	}
	return found
}
