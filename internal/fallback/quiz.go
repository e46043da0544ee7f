package fallback

import (
	"strings"

	"github.com/SAP-F-2025/tutor-service/internal/models"
)

// DefaultQuestionsNotice is shown to students when a quiz came from the
// built-in bank instead of the generator.
const DefaultQuestionsNotice = "Using default questions"

type bankEntry struct {
	difficulty  models.Difficulty
	question    string
	options     []string
	correct     string
	explanation string
}

type questionBank struct {
	key     string
	entries []bankEntry
}

// questionBanks is searched in declaration order; the first key found wins.
var questionBanks = []questionBank{
	{
		key: "derivatives",
		entries: []bankEntry{
			{models.DifficultyBeginner, "What is the derivative of x²?", []string{"x", "2x", "x²", "2"}, "2x",
				"By the power rule, d/dx[xⁿ] = n·xⁿ⁻¹, so d/dx[x²] = 2x."},
			{models.DifficultyBeginner, "What is the derivative of a constant, such as 7?", []string{"7", "1", "0", "x"}, "0",
				"A constant does not change, so its rate of change is 0."},
			{models.DifficultyBeginner, "What is the derivative of 3x?", []string{"3", "3x", "x", "0"}, "3",
				"The derivative of c·x is the constant c."},
			{models.DifficultyIntermediate, "What is the derivative of sin(x)?", []string{"cos(x)", "-cos(x)", "-sin(x)", "tan(x)"}, "cos(x)",
				"The derivative of sin(x) is cos(x)."},
			{models.DifficultyIntermediate, "What is the derivative of eˣ?", []string{"x·eˣ⁻¹", "eˣ", "ln(x)", "1"}, "eˣ",
				"eˣ is its own derivative."},
			{models.DifficultyAdvanced, "What is the derivative of sin(x²)?", []string{"cos(x²)", "2x·cos(x²)", "2x·sin(x²)", "-cos(x²)"}, "2x·cos(x²)",
				"By the chain rule, the outer derivative cos(x²) is multiplied by the inner derivative 2x."},
			{models.DifficultyAdvanced, "What is the derivative of ln(3x)?", []string{"3/x", "1/x", "1/(3x)", "ln(3)"}, "1/x",
				"d/dx[ln(3x)] = 3/(3x) = 1/x."},
		},
	},
	{
		key: "quadratic equations",
		entries: []bankEntry{
			{models.DifficultyBeginner, "What are the solutions of x² = 9?", []string{"3 only", "-3 only", "3 and -3", "9"}, "3 and -3",
				"Both 3² and (-3)² equal 9."},
			{models.DifficultyBeginner, "What is the standard form of a quadratic equation?", []string{"ax + b = 0", "ax² + bx + c = 0", "y = mx + b", "a/x = c"}, "ax² + bx + c = 0",
				"A quadratic has a squared term as its highest power."},
			{models.DifficultyIntermediate, "Solve x² - 5x + 6 = 0.", []string{"x = 2, 3", "x = -2, -3", "x = 1, 6", "x = -1, -6"}, "x = 2, 3",
				"It factors as (x - 2)(x - 3) = 0."},
			{models.DifficultyIntermediate, "What is the discriminant of x² + 4x + 4?", []string{"0", "4", "8", "16"}, "0",
				"b² - 4ac = 16 - 16 = 0, so there is one repeated root."},
			{models.DifficultyAdvanced, "How many real roots does x² + x + 1 = 0 have?", []string{"0", "1", "2", "Infinitely many"}, "0",
				"The discriminant 1 - 4 = -3 is negative."},
		},
	},
	{
		key: "trigonometry",
		entries: []bankEntry{
			{models.DifficultyBeginner, "What is sin(90°)?", []string{"0", "1", "-1", "1/2"}, "1",
				"On the unit circle, 90° is the point (0, 1)."},
			{models.DifficultyBeginner, "What is cos(0°)?", []string{"0", "1", "-1", "√2/2"}, "1",
				"On the unit circle, 0° is the point (1, 0)."},
			{models.DifficultyIntermediate, "Which identity is always true?", []string{"sin²θ + cos²θ = 1", "sinθ + cosθ = 1", "tanθ = cosθ/sinθ", "sin2θ = 2sinθ"}, "sin²θ + cos²θ = 1",
				"This is the Pythagorean identity."},
			{models.DifficultyAdvanced, "What is the period of tan(x)?", []string{"π/2", "π", "2π", "4π"}, "π",
				"tan(x) repeats every π radians."},
		},
	},
}

var defaultBank = questionBank{
	key: "default",
	entries: []bankEntry{
		{models.DifficultyBeginner, "What is 7 × 8?", []string{"54", "56", "64", "48"}, "56",
			"7 × 8 = 56."},
		{models.DifficultyBeginner, "What is 15 + 27?", []string{"32", "42", "41", "52"}, "42",
			"15 + 27 = 42."},
		{models.DifficultyIntermediate, "What is 144 ÷ 12?", []string{"11", "12", "13", "14"}, "12",
			"12 × 12 = 144."},
		{models.DifficultyIntermediate, "What is 25% of 80?", []string{"15", "20", "25", "40"}, "20",
			"One quarter of 80 is 20."},
		{models.DifficultyAdvanced, "What is 2⁵?", []string{"10", "16", "25", "32"}, "32",
			"2 × 2 × 2 × 2 × 2 = 32."},
	},
}

var bankRules = func() []rule[questionBank] {
	rules := make([]rule[questionBank], 0, len(questionBanks))
	for _, b := range questionBanks {
		rules = append(rules, rule[questionBank]{match: matchesBankKey(b.key), pick: constant(b)})
	}
	return rules
}()

// matchesBankKey matches when the topic mentions the whole key.
func matchesBankKey(key string) func(string) bool {
	return func(topic string) bool {
		return strings.Contains(strings.ToLower(topic), key)
	}
}

// GenerateQuiz picks count questions for topic from the built-in bank.
//
// "intermediate" disables difficulty filtering. When the filtered list is
// short, the unfiltered bank is walked once from the start to pad the quiz,
// so the same question may appear twice. Output ids are renumbered 1..n.
func GenerateQuiz(topic, difficulty string, count int) []models.QuizQuestion {
	if count <= 0 {
		return []models.QuizQuestion{}
	}

	bank := firstMatch(bankRules, topic, constant(defaultBank))
	want := models.Difficulty(strings.ToLower(strings.TrimSpace(difficulty)))

	selected := make([]bankEntry, 0, count)
	for _, e := range bank.entries {
		if len(selected) == count {
			break
		}
		if want == models.DifficultyIntermediate || e.difficulty == want {
			selected = append(selected, e)
		}
	}
	for _, e := range bank.entries {
		if len(selected) == count {
			break
		}
		selected = append(selected, e)
	}

	quiz := make([]models.QuizQuestion, len(selected))
	for i, e := range selected {
		quiz[i] = models.QuizQuestion{
			ID:          i + 1,
			Question:    e.question,
			Options:     append([]string(nil), e.options...),
			Correct:     e.correct,
			Explanation: e.explanation,
		}
	}
	return quiz
}
