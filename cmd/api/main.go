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

	httptransport "github.com/depositdefenders/accounts-service/internal/api/http"
	"github.com/depositdefenders/accounts-service/internal/api/http/handlers"
	"github.com/depositdefenders/accounts-service/internal/auth"
	"github.com/depositdefenders/accounts-service/internal/config"
	"github.com/depositdefenders/accounts-service/internal/events"
	"github.com/depositdefenders/accounts-service/internal/mail"
	"github.com/depositdefenders/accounts-service/internal/observability"
	"github.com/depositdefenders/accounts-service/internal/payment"
	"github.com/depositdefenders/accounts-service/internal/persistence"
	"github.com/depositdefenders/accounts-service/internal/repository"
	"github.com/depositdefenders/accounts-service/internal/service"
	"github.com/depositdefenders/accounts-service/internal/worker"
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	contentRepo := repository.NewContentRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	payments := payment.NewStripeProvider(cfg.Stripe)
	sender := mail.NewResendSender(cfg.Email, time.Duration(cfg.Auth.ResetTokenTTLMinutes)*time.Minute)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
		Payments:          payments,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	contentService := service.NewContentService(contentRepo, redis.Client, cfg.Content.CacheTTL(), logger)
	notificationService := service.NewNotificationService(dispatcher, sender, logger)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg.App.IsProduction()),
		Content:        handlers.NewContentHandler(contentService),
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
