package main

import (
	"github.com/bugnest/backend/internal/config"
	"github.com/bugnest/backend/internal/handlers"
	"github.com/bugnest/backend/internal/models"
	"github.com/bugnest/backend/internal/services"
	"github.com/bugnest/backend/internal/utils"
	"github.com/bugnest/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const logRetentionDays = 30

// appServices holds all initialized services and handlers needed by the
// application.
type appServices struct {
	db          *gorm.DB
	logService  *services.SystemLogService
	notifier    services.Notifier
	worker      *services.NotifyWorker
	logCleanup  *cron.Cron
	authHandler *handlers.AuthHandler
	userHandler *handlers.UserHandler
	projHandler *handlers.ProjectHandler
	memHandler  *handlers.ProjectMemberHandler
	bugHandler  *handlers.BugHandler
	logHandler  *handlers.SystemLogHandler
}

// bootstrap initializes all application dependencies: database, services,
// schedulers, notification delivery.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	emailService := services.NewEmailService(&cfg.Email)

	// Invite notifications go through Redis when it is enabled, otherwise
	// they are sent on a goroutine straight from the request path.
	var notifier services.Notifier
	var worker *services.NotifyWorker
	if cfg.Redis.Enabled {
		async, err := services.NewAsyncNotifier(&cfg.Redis)
		if err != nil {
			logger.Warnf("Redis unavailable, falling back to direct delivery: %v", err)
			notifier = services.NewSyncNotifier(emailService)
		} else {
			notifier = async
			worker = services.NewNotifyWorker(&cfg.Redis, emailService)
			worker.Start()
		}
	} else {
		notifier = services.NewSyncNotifier(emailService)
	}

	logService := services.NewSystemLogService(db)
	logCleanup := services.StartCleanupScheduler(db, logRetentionDays)

	authHandler := handlers.NewAuthHandler(db, cfg)
	if err := authHandler.SeedDefaultUsers(); err != nil {
		logger.Warnf("Failed to seed default users: %v", err)
	}

	userService := services.NewUserService(db, emailService)
	projectService := services.NewProjectService(db)
	membershipService := services.NewMembershipService(db, notifier)
	bugService := services.NewBugService(db)

	return &appServices{
		db:          db,
		logService:  logService,
		notifier:    notifier,
		worker:      worker,
		logCleanup:  logCleanup,
		authHandler: authHandler,
		userHandler: handlers.NewUserHandler(userService),
		projHandler: handlers.NewProjectHandler(db, projectService),
		memHandler:  handlers.NewProjectMemberHandler(db, membershipService),
		bugHandler:  handlers.NewBugHandler(db, bugService),
		logHandler:  handlers.NewSystemLogHandler(logService),
	}
}

// shutdown gracefully stops background workers and schedulers.
func (s *appServices) shutdown() {
	if s.logCleanup != nil {
		s.logCleanup.Stop()
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	if closer, ok := s.notifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Warnf("Failed to close notifier: %v", err)
		}
	}
	logger.Info().Msg("Background workers stopped")
}
