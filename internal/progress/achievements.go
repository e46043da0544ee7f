package progress

import "github.com/SAP-F-2025/tutor-service/internal/models"

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`

	unlocked func(models.ProgressRecord) bool
}

// Catalog lists every achievement in evaluation order.
var Catalog = []Achievement{
	{ID: "first_module", Title: "First Steps", Description: "Complete your first learning module", Icon: "footprints",
		unlocked: func(p models.ProgressRecord) bool { return p.ModulesCompleted() >= 1 }},
	{ID: "quiz_rookie", Title: "Quiz Rookie", Description: "Complete 5 quizzes", Icon: "clipboard-check",
		unlocked: func(p models.ProgressRecord) bool { return p.QuizzesCompleted >= 5 }},
	{ID: "video_buff", Title: "Video Buff", Description: "Watch 10 lesson videos", Icon: "play-circle",
		unlocked: func(p models.ProgressRecord) bool { return p.VideosCompleted >= 10 }},
	{ID: "problem_solver", Title: "Problem Solver", Description: "Finish 10 practice exercises", Icon: "puzzle",
		unlocked: func(p models.ProgressRecord) bool { return p.ExercisesCompleted >= 10 }},
	{ID: "streak_3", Title: "On a Roll", Description: "Log in 3 days in a row", Icon: "flame",
		unlocked: func(p models.ProgressRecord) bool { return p.Streak >= 3 }},
	{ID: "streak_7", Title: "Week Warrior", Description: "Log in 7 days in a row", Icon: "calendar-check",
		unlocked: func(p models.ProgressRecord) bool { return p.Streak >= 7 }},
	{ID: "streak_30", Title: "Unstoppable", Description: "Log in 30 days in a row", Icon: "trophy",
		unlocked: func(p models.ProgressRecord) bool { return p.Streak >= 30 }},
	{ID: "xp_500", Title: "Rising Star", Description: "Earn 500 XP", Icon: "star",
		unlocked: func(p models.ProgressRecord) bool { return p.XP >= 500 }},
	{ID: "xp_1000", Title: "Math Enthusiast", Description: "Earn 1000 XP", Icon: "sparkles",
		unlocked: func(p models.ProgressRecord) bool { return p.XP >= 1000 }},
	{ID: "level_5", Title: "Level 5 Scholar", Description: "Reach level 5", Icon: "graduation-cap",
		unlocked: func(p models.ProgressRecord) bool { return LevelForXP(p.XP) >= 5 }},
}

// FindAchievement looks an achievement up by id.
func FindAchievement(id string) (Achievement, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// CheckAchievements returns, in catalog order, the ids whose condition holds
// for snapshot and which are not in unlocked. Ids already unlocked are never
// evaluated again.
func CheckAchievements(snapshot models.ProgressRecord, unlocked map[string]bool) []string {
	newly := []string{}
	for _, a := range Catalog {
		if unlocked[a.ID] {
			continue
		}
		if a.unlocked(snapshot) {
			newly = append(newly, a.ID)
		}
	}
	return newly
}
