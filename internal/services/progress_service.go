package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/tutor-service/internal/events"
	"github.com/SAP-F-2025/tutor-service/internal/metrics"
	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/SAP-F-2025/tutor-service/internal/progress"
	"github.com/SAP-F-2025/tutor-service/internal/repositories"
	"github.com/SAP-F-2025/tutor-service/internal/validator"
)

type progressService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *ServiceLogger
	validator *validator.Validator
	now       Clock
	loc       *time.Location
}

func NewProgressService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	logger *ServiceLogger,
	validator *validator.Validator,
	now Clock,
	loc *time.Location,
) ProgressService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &progressService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		now:       now,
		loc:       loc,
	}
}

// loaded is a progress record plus whether it may be written back. A record
// that could not be read is served but never saved over the stored one.
type loaded struct {
	record   *models.ProgressRecord
	writable bool
}

func (s *progressService) load(ctx context.Context, studentID string) loaded {
	record, err := s.repo.Progress().Get(ctx, studentID)
	switch {
	case err == nil:
		return loaded{record: record, writable: true}
	case repositories.IsNotFoundError(err):
		return loaded{record: models.NewProgressRecord(studentID), writable: true}
	default:
		s.logger.LogPersistenceFailure(ctx, "load_progress", studentID, err)
		return loaded{record: models.NewProgressRecord(studentID)}
	}
}

func (s *progressService) save(ctx context.Context, l loaded) {
	if !l.writable {
		return
	}
	if err := s.repo.Progress().Save(ctx, l.record); err != nil {
		s.logger.LogPersistenceFailure(ctx, "save_progress", l.record.StudentID, err)
	}
}

func (s *progressService) unlockedSet(ctx context.Context, studentID string) ([]models.UnlockedAchievement, map[string]bool, error) {
	unlocked, err := s.repo.Achievement().ListUnlocked(ctx, studentID)
	if err != nil {
		s.logger.LogPersistenceFailure(ctx, "list_achievements", studentID, err)
		return nil, nil, err
	}
	set := make(map[string]bool, len(unlocked))
	for _, u := range unlocked {
		set[u.AchievementID] = true
	}
	return unlocked, set, nil
}

func (s *progressService) GetProgress(ctx context.Context, studentID string) (*ProgressResponse, error) {
	l := s.load(ctx, studentID)
	unlocked, _, _ := s.unlockedSet(ctx, studentID)

	ids := make([]string, 0, len(unlocked))
	for _, u := range unlocked {
		ids = append(ids, u.AchievementID)
	}

	return &ProgressResponse{
		ProgressRecord: *l.record,
		LevelProgress:  progress.ProgressForXP(l.record.XP),
		Achievements:   ids,
	}, nil
}

func (s *progressService) AddXP(ctx context.Context, studentID string, req *AddXPRequest) (*XPResponse, error) {
	op := s.logger.WithOperation(ctx, "add_xp", studentID)
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(studentID, "progress", err)
		return nil, err
	}

	l := s.load(ctx, studentID)
	res := s.applyXP(ctx, l.record, req.Amount)
	s.save(ctx, l)

	newly := s.checkAndUnlock(ctx, l.record)
	op.LogResult(studentID, "progress", nil)

	return &XPResponse{XPResult: res, NewAchievements: newly}, nil
}

func (s *progressService) CompleteModule(ctx context.Context, studentID string, req *CompleteModuleRequest) (*ModuleResponse, error) {
	op := s.logger.WithOperation(ctx, "complete_module", studentID)
	if err := s.validator.Validate(req); err != nil {
		op.LogResult(studentID, "progress", err)
		return nil, err
	}

	l := s.load(ctx, studentID)
	if !progress.CompleteModule(l.record, req.ModuleType) {
		err := NewValidationError("module_type", "must be a valid module type (video, quiz, exercise)", req.ModuleType)
		op.LogResult(studentID, "progress", err)
		return nil, err
	}
	res := s.applyXP(ctx, l.record, req.XP)
	s.save(ctx, l)

	newly := s.checkAndUnlock(ctx, l.record)
	op.LogResult(studentID, "progress", nil)

	return &ModuleResponse{Record: *l.record, XP: res, NewAchievements: newly}, nil
}

func (s *progressService) RecordLogin(ctx context.Context, studentID string) (*LoginResponse, error) {
	l := s.load(ctx, studentID)
	previousLogin := l.record.LastLoginDate

	res := progress.UpdateStreak(l.record, s.now().In(s.loc))
	s.save(ctx, l)

	if !res.Continued && !res.Unchanged && res.OldStreak > 1 {
		s.publish(ctx, events.NewStreakResetEvent(studentID, res.OldStreak, previousLogin))
	}

	newly := s.checkAndUnlock(ctx, l.record)
	s.logger.Info(ctx, "Login recorded", "student_id", studentID, "streak", res.Streak, "continued", res.Continued)

	return &LoginResponse{StreakResult: res, NewAchievements: newly}, nil
}

func (s *progressService) CheckAndUnlock(ctx context.Context, studentID string) ([]string, error) {
	l := s.load(ctx, studentID)
	return s.checkAndUnlock(ctx, l.record), nil
}

func (s *progressService) ListAchievements(ctx context.Context, studentID string) ([]AchievementStatus, error) {
	unlocked, _, _ := s.unlockedSet(ctx, studentID)
	at := make(map[string]time.Time, len(unlocked))
	for _, u := range unlocked {
		at[u.AchievementID] = u.UnlockedAt
	}

	out := make([]AchievementStatus, 0, len(progress.Catalog))
	for _, a := range progress.Catalog {
		status := AchievementStatus{Achievement: a}
		if t, ok := at[a.ID]; ok {
			status.Unlocked = true
			status.UnlockedAt = &t
		}
		out = append(out, status)
	}
	return out, nil
}

func (s *progressService) Catalog() []progress.Achievement {
	out := make([]progress.Achievement, len(progress.Catalog))
	copy(out, progress.Catalog)
	return out
}

// ResetProgress is the only path on which XP decreases. Unlike the other
// operations its storage errors are returned.
func (s *progressService) ResetProgress(ctx context.Context, studentID, adminID string) error {
	op := s.logger.WithOperation(ctx, "reset_progress", adminID)
	if err := s.repo.Progress().Reset(ctx, studentID); err != nil {
		err = fmt.Errorf("reset progress for %s: %w", studentID, err)
		op.LogResult(studentID, "progress", err)
		return err
	}
	s.publish(ctx, events.NewProgressResetEvent(studentID, adminID))
	op.LogResult(studentID, "progress", nil)
	return nil
}

func (s *progressService) applyXP(ctx context.Context, record *models.ProgressRecord, amount int) progress.XPResult {
	res := progress.AddXP(record, amount)
	metrics.XPAwarded.Add(float64(res.NewXP - res.OldXP))
	if res.LeveledUp {
		s.publish(ctx, events.NewLevelUpEvent(record.StudentID, res.OldLevel, res.NewLevel, res.NewXP))
	}
	return res
}

// checkAndUnlock stores and announces every achievement newly satisfied by record.
// Without a readable unlocked set nothing is evaluated.
func (s *progressService) checkAndUnlock(ctx context.Context, record *models.ProgressRecord) []string {
	_, set, err := s.unlockedSet(ctx, record.StudentID)
	if err != nil {
		s.logger.Info(ctx, "Achievement check skipped", "student_id", record.StudentID)
		return []string{}
	}
	newly := progress.CheckAchievements(*record, set)
	if len(newly) == 0 {
		return newly
	}

	now := s.now()
	rows := make([]models.UnlockedAchievement, 0, len(newly))
	for _, id := range newly {
		rows = append(rows, models.UnlockedAchievement{
			StudentID:     record.StudentID,
			AchievementID: id,
			UnlockedAt:    now,
		})
		metrics.AchievementsUnlocked.WithLabelValues(id).Inc()
	}
	if err := s.repo.Achievement().Unlock(ctx, rows); err != nil {
		s.logger.LogPersistenceFailure(ctx, "unlock_achievements", record.StudentID, err)
	}
	s.publish(ctx, events.NewAchievementUnlockedEvent(record.StudentID, newly, now))
	return newly
}

func (s *progressService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.LogPersistenceFailure(ctx, "publish_"+string(event.Type), event.StudentID, err)
	}
}
