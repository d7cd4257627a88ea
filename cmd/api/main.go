package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/iiitdCrypto/crypto-resource-manager/internal/api/http"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/api/http/handlers"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/auth"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/config"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/events"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/observability"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/persistence"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/repository"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/service"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/worker"
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

	// Schema bootstrap gates traffic: an unreachable database is fatal,
	// the process must not serve requests without its store.
	if err := persistence.EnsureCatalog(ctx, cfg.Postgres, logger); err != nil {
		logger.Fatal("database server unreachable",
			zap.Error(err),
			zap.String("host", cfg.Postgres.Host),
			zap.String("hint", "check that postgres is running, credentials are correct, and the network/firewall allows the connection"))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres",
			zap.Error(err),
			zap.String("database", cfg.Postgres.Database),
			zap.String("hint", "check that postgres is running, credentials are correct, and the network/firewall allows the connection"))
	}
	defer pg.Close()

	if cfg.Postgres.RunBootstrap {
		bootstrapper := persistence.NewBootstrapper(pg.PoolHandle(), logger, cfg.Postgres.SchemaPath)
		if err := bootstrapper.Run(ctx); err != nil {
			logger.Fatal("schema bootstrap failed", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	permRepo := repository.NewPermissionRepository(pool)
	otpStore := persistence.NewOTPStore(redis, time.Duration(cfg.Auth.OTPTTLMinutes)*time.Minute)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		OTPStore:   otpStore,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	contentService := service.NewContentService(service.ContentDependencies{
		ArticleRepo:   repository.NewArticleRepository(pool),
		EventRepo:     repository.NewEventRepository(pool),
		ResourceRepo:  repository.NewResourceRepository(pool),
		ProfessorRepo: repository.NewProfessorRepository(pool),
		ProjectRepo:   repository.NewProjectRepository(pool),
	})

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(),
		Admin:          handlers.NewAdminHandler(auditRepo, permRepo, metrics),
		Articles:       handlers.NewArticlesHandler(contentService),
		Events:         handlers.NewEventsHandler(contentService),
		Resources:      handlers.NewResourcesHandler(contentService),
		Professors:     handlers.NewProfessorsHandler(contentService),
		Projects:       handlers.NewProjectsHandler(contentService),
		AuthMiddleware: authMiddleware,
		Grants:         permRepo,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
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
