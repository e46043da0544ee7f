package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/tutor-service/internal/auth"
	"github.com/SAP-F-2025/tutor-service/internal/cache"
	"github.com/SAP-F-2025/tutor-service/internal/config"
	"github.com/SAP-F-2025/tutor-service/internal/handlers"
	"github.com/SAP-F-2025/tutor-service/internal/metrics"
	"github.com/SAP-F-2025/tutor-service/internal/mlclient"
	"github.com/SAP-F-2025/tutor-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/tutor-service/internal/services"
	"github.com/SAP-F-2025/tutor-service/internal/utils"
	"github.com/SAP-F-2025/tutor-service/internal/validator"
	"github.com/SAP-F-2025/tutor-service/pkg"
	"github.com/gin-gonic/gin"

	_ "time/tzdata"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := pkg.Migrate(db); err != nil {
		return err
	}
	repo := postgres.NewRepository(db)

	cacheService := cache.NewNoopCache()
	if redisClient, err := pkg.NewRedisClient(ctx, cfg); err != nil {
		logger.Warn("Redis unavailable, insight caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, logger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	ml := mlclient.New(mlclient.Config{
		BaseURL: cfg.MLAPIURL,
		APIKey:  cfg.MLAPIKey,
		Timeout: cfg.MLAPITimeout,
	})

	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:            repo,
		ML:              ml,
		Cache:           cacheService,
		Publisher:       publisher,
		Logger:          logger,
		Validator:       validator.New(),
		Location:        loc,
		InsightCacheTTL: cfg.InsightCacheTTL,
		EnableDebug:     !cfg.IsProduction(),
	})

	authMiddleware := auth.DevMiddleware()
	if cfg.Auth.Enabled {
		authMiddleware = auth.Middleware(auth.NewCasdoorVerifier(cfg.Auth))
	} else {
		logger.Warn("Token verification disabled, trusting identity headers")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Init()

	appLogger := utils.NewSlogLogger(logger)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		utils.RequestID(),
		utils.LoggerMiddleware(appLogger),
		metrics.MetricsMiddleware(),
	)
	handlers.NewHandlerManager(serviceManager, appLogger, authMiddleware, repo).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting tutor service", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	return nil
}
