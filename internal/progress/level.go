// Package progress implements the XP, level, streak and achievement rules for
// students. It only computes; persistence lives in the services layer.
package progress

import "github.com/SAP-F-2025/tutor-service/internal/models"

const xpPerLevel = 100

// LevelThreshold is the XP at which the given level is cleared.
func LevelThreshold(level int) int {
	return level * xpPerLevel
}

// LevelForXP returns the largest level L with LevelThreshold(L-1) <= xp.
func LevelForXP(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/xpPerLevel + 1
}

type LevelProgress struct {
	Level          int     `json:"level"`
	XP             int     `json:"xp"`
	CurrentLevelXP int     `json:"current_level_xp"`
	NextLevelXP    int     `json:"next_level_xp"`
	Progress       float64 `json:"progress"`
}

// ProgressForXP reports where xp sits inside its level window.
func ProgressForXP(xp int) LevelProgress {
	level := LevelForXP(xp)
	current := LevelThreshold(level - 1)
	next := LevelThreshold(level)
	return LevelProgress{
		Level:          level,
		XP:             xp,
		CurrentLevelXP: current,
		NextLevelXP:    next,
		Progress:       float64(xp-current) / float64(next-current),
	}
}

type XPResult struct {
	OldXP     int  `json:"old_xp"`
	NewXP     int  `json:"new_xp"`
	OldLevel  int  `json:"old_level"`
	NewLevel  int  `json:"new_level"`
	LeveledUp bool `json:"leveled_up"`
}

// AddXP credits amount to the record and recomputes its level.
// Negative amounts are treated as zero; XP never decreases here.
func AddXP(record *models.ProgressRecord, amount int) XPResult {
	if amount < 0 {
		amount = 0
	}
	res := XPResult{OldXP: record.XP, OldLevel: record.Level}

	record.XP += amount
	record.Level = LevelForXP(record.XP)

	res.NewXP = record.XP
	res.NewLevel = record.Level
	res.LeveledUp = res.NewLevel > res.OldLevel
	return res
}

// CompleteModule bumps the counter for the module type.
// It reports false for an unknown type and leaves the record untouched.
func CompleteModule(record *models.ProgressRecord, moduleType models.ModuleType) bool {
	switch moduleType {
	case models.ModuleVideo:
		record.VideosCompleted++
	case models.ModuleQuiz:
		record.QuizzesCompleted++
	case models.ModuleExercise:
		record.ExercisesCompleted++
	default:
		return false
	}
	return true
}
