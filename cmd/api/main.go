package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/correspondence-service/internal/api/http"
	"github.com/spec-kit/correspondence-service/internal/api/http/handlers"
	"github.com/spec-kit/correspondence-service/internal/auth"
	"github.com/spec-kit/correspondence-service/internal/config"
	"github.com/spec-kit/correspondence-service/internal/events"
	"github.com/spec-kit/correspondence-service/internal/observability"
	"github.com/spec-kit/correspondence-service/internal/persistence"
	"github.com/spec-kit/correspondence-service/internal/repository"
	"github.com/spec-kit/correspondence-service/internal/service"
	"github.com/spec-kit/correspondence-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	divisionRepo := repository.NewDivisionRepository(pool)
	correspondenceRepo := repository.NewCorrespondenceRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	activityRepo := repository.NewActivityLogRepository(pool)
	slaRuleRepo := repository.NewSLARuleRepository(pool)
	emailRepo := repository.NewEmailNotificationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(cfg.Auth, userRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	correspondenceService := service.NewCorrespondenceService(service.CorrespondenceDependencies{
		CorrespondenceRepo: correspondenceRepo,
		CommentRepo:        commentRepo,
		ActivityRepo:       activityRepo,
		SLARuleRepo:        slaRuleRepo,
		Dispatcher:         dispatcher,
		Cache:              redis,
		CacheTTL:           cfg.Notification.StatsCacheTTL(),
		Logger:             logger,
	})
	directoryService := service.NewDirectoryService(userRepo, departmentRepo, divisionRepo)

	notificationService := service.NewNotificationService(dispatcher, correspondenceRepo, emailRepo, logger, cfg.Notification)
	worker.StartNotificationWorker(ctx, notificationService, cfg.Notification.DispatchInterval(), logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Correspondence: handlers.NewCorrespondenceHandler(correspondenceService),
		Directory:      handlers.NewDirectoryHandler(directoryService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
