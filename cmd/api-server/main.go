package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/http-api/handler"
	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/service"
	"yamdb/internal/http-api/validation"
	"yamdb/internal/logging"
	"yamdb/internal/mailer"
	"yamdb/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Setup structured logging
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	logger.Info("starting_api_server", "env", cfg.GoEnv, "addr", cfg.HTTPAddr())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validation.Register(); err != nil {
		log.Fatalf("could not register validators: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	db, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("database_unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db.Gorm, logger); err != nil {
		logger.Error("migration_failed", "error", err)
		os.Exit(1)
	}

	// Repositories
	tx := repository.NewTransactor(db.Gorm)
	userRepo := repository.NewUserRepository(db.Gorm)
	categoryRepo := repository.NewCategoryRepository(db.Gorm)
	genreRepo := repository.NewGenreRepository(db.Gorm)
	titleRepo := repository.NewTitleRepository(db.Gorm)
	reviewRepo := repository.NewReviewRepository(db.Gorm)
	commentRepo := repository.NewCommentRepository(db.Gorm)

	// Services
	services := handler.Services{
		Auth:       service.NewAuthService(userRepo, mailer.New(cfg, logger), cfg),
		Users:      service.NewUserService(userRepo),
		Categories: service.NewCategoryService(categoryRepo),
		Genres:     service.NewGenreService(genreRepo),
		Titles:     service.NewTitleService(tx, titleRepo, categoryRepo, genreRepo),
		Reviews:    service.NewReviewService(tx, reviewRepo, titleRepo),
		Comments:   service.NewCommentService(tx, commentRepo, reviewRepo),
		UserLoader: userRepo,
	}

	routerCfg := handler.RouterConfig{
		Logger:            logger,
		CORSOrigins:       cfg.CORSOrigins,
		PrometheusEnabled: cfg.PrometheusEnabled,
		DB:                db.SQL,
	}

	// Rate limiting on /auth: shared through Redis when configured
	if cfg.AuthRateLimit > 0 {
		var limiter ratelimit.Limiter
		if cfg.RedisURL != "" {
			rdb, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPassword)
			if err != nil {
				logger.Error("redis_unavailable", "error", err)
				os.Exit(1)
			}
			defer rdb.Close()
			limiter = ratelimit.NewRedisLimiter(rdb, "yamdb:auth", cfg.AuthRateLimit)
		} else {
			limiter = ratelimit.NewLocalLimiter(cfg.AuthRateLimit)
		}
		routerCfg.AuthLimit = middleware.RateLimit(limiter, logger)
	}

	router := handler.NewRouter(routerCfg, services)

	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler.StripTrailingSlash(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		logger.Info("http_server_listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("received_shutdown_signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown_failed", "error", err)
		}
		logger.Info("server_stopped_gracefully")
	case err := <-errChan:
		logger.Error("server_error", "error", err.Error())
		os.Exit(1)
	}
}
