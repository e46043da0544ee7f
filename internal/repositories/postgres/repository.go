package postgres

import (
	"context"

	"github.com/SAP-F-2025/tutor-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db          *gorm.DB
	student     repositories.StudentRepository
	progress    repositories.ProgressRepository
	achievement repositories.AchievementRepository
	chat        repositories.ChatRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:          db,
		student:     NewStudentPostgreSQL(db),
		progress:    NewProgressPostgreSQL(db),
		achievement: NewAchievementPostgreSQL(db),
		chat:        NewChatPostgreSQL(db),
	}
}

func (r *Repository) Student() repositories.StudentRepository         { return r.student }
func (r *Repository) Progress() repositories.ProgressRepository       { return r.progress }
func (r *Repository) Achievement() repositories.AchievementRepository { return r.achievement }
func (r *Repository) Chat() repositories.ChatRepository               { return r.chat }

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
