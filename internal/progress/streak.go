package progress

import (
	"time"

	"github.com/SAP-F-2025/tutor-service/internal/models"
)

const DateLayout = "2006-01-02"

type StreakResult struct {
	OldStreak int  `json:"old_streak"`
	Streak    int  `json:"streak"`
	Continued bool `json:"continued"`
	Unchanged bool `json:"unchanged"`
}

// UpdateStreak applies a login on today's calendar day (in today's location).
// A login the day after the last one extends the streak, a repeat login on the
// same day changes nothing, anything else restarts the streak at 1.
func UpdateStreak(record *models.ProgressRecord, today time.Time) StreakResult {
	day := today.Format(DateLayout)
	yesterday := today.AddDate(0, 0, -1).Format(DateLayout)

	res := StreakResult{OldStreak: record.Streak}
	switch record.LastLoginDate {
	case day:
		res.Unchanged = true
	case yesterday:
		record.Streak++
		res.Continued = true
	default:
		record.Streak = 1
	}
	record.LastLoginDate = day

	res.Streak = record.Streak
	return res
}
