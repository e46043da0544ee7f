package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/tutor-service/internal/cache"
	"github.com/SAP-F-2025/tutor-service/internal/events"
	"github.com/SAP-F-2025/tutor-service/internal/mlclient"
	"github.com/SAP-F-2025/tutor-service/internal/repositories"
	"github.com/SAP-F-2025/tutor-service/internal/validator"
)

// ServiceManager hands the handler layer every service built over one set of
// dependencies.
type ServiceManager interface {
	Advisor() AdvisorService
	Progress() ProgressService
	Roster() RosterService
}

type Dependencies struct {
	Repo      repositories.Repository
	ML        mlclient.API
	Cache     cache.CacheService
	Publisher events.EventPublisher
	Logger    *slog.Logger
	Validator *validator.Validator

	Location        *time.Location
	InsightCacheTTL time.Duration
	Now             Clock
	EnableDebug     bool
}

type serviceManager struct {
	advisor  AdvisorService
	progress ProgressService
	roster   RosterService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NewMockEventPublisher(deps.Logger)
	}
	logger := func(component string) *ServiceLogger {
		return NewServiceLogger(deps.Logger, LogConfig{
			Service:     "tutor-service",
			Component:   component,
			EnableDebug: deps.EnableDebug,
		})
	}

	return &serviceManager{
		advisor: NewAdvisorService(deps.Repo, deps.ML, deps.Cache, deps.Publisher, logger("advisor"), deps.Validator, AdvisorConfig{
			InsightCacheTTL: deps.InsightCacheTTL,
			Location:        deps.Location,
			Now:             deps.Now,
		}),
		progress: NewProgressService(deps.Repo, deps.Publisher, logger("progress"), deps.Validator, deps.Now, deps.Location),
		roster:   NewRosterService(deps.Repo, deps.ML, deps.Cache, deps.Publisher, logger("roster"), deps.Validator),
	}
}

func (m *serviceManager) Advisor() AdvisorService   { return m.advisor }
func (m *serviceManager) Progress() ProgressService { return m.progress }
func (m *serviceManager) Roster() RosterService     { return m.roster }
