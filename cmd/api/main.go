package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/realtime"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/seed"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		store repository.Store
		pg    *persistence.Postgres
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		store = memory.NewStore()
	default:
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
			if _, err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pg.PoolHandle())
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var broker realtime.Broker = realtime.NewLocalBroker()
	if redis.Available {
		broker = realtime.NewRedisBroker(redis.Client)
	}

	metrics := observability.NewMetrics()
	policy, err := auth.NewRolePolicy(logger)
	if err != nil {
		logger.Fatal("failed to build role policy", zap.Error(err))
	}
	dispatcher := events.NewInMemoryDispatcher(logger)

	authService := service.NewAuthService(cfg.Auth, store, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:      store,
		Policy:     policy,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	commentService := service.NewCommentService(store, policy, dispatcher, logger)
	voteService := service.NewVoteService(store, dispatcher)
	promotionService := service.NewPromotionService(store, policy, dispatcher, logger)
	categoryService := service.NewCategoryService(store, policy)
	userService := service.NewUserService(store, policy, logger)
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Broker:     broker,
		Metrics:    metrics,
		Logger:     logger,
		Config:     cfg.Notification,
	})
	worker.StartNotificationWorker(notificationService, logger)

	if cfg.Seed.OnStart {
		if err := store.Ready(); err != nil {
			logger.Warn("skipping seed: store not ready", zap.Error(err))
		} else if err := runSeed(ctx, cfg, store, logger); err != nil {
			logger.Fatal("failed to seed", zap.Error(err))
		}
	}

	cookie := auth.CookieSettings{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(handlers.HealthDependencies{
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			Store:       store,
			Postgres:    pg,
			Redis:       redis,
			Metrics:     metrics,
		}),
		Users:          handlers.NewUsersHandler(authService, cookie),
		Profile:        handlers.NewProfileHandler(authService, promotionService),
		Tickets:        handlers.NewTicketsHandler(ticketService, voteService),
		Comments:       handlers.NewCommentsHandler(commentService, ticketService),
		Categories:     handlers.NewCategoriesHandler(categoryService),
		Admin:          handlers.NewAdminHandler(userService, promotionService),
		Notifications:  handlers.NewNotificationsHandler(notificationService, logger),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store, cookie.Name),
		Policy:         policy,
		Store:          store,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func runSeed(ctx context.Context, cfg *config.Config, store repository.Store, logger *zap.Logger) error {
	data, err := seed.Load(cfg.Seed.File)
	if err != nil {
		return err
	}
	opts := seed.Options{
		BcryptCost: cfg.Auth.BcryptCost,
		SkipUsers:  !seed.UsersAllowed(cfg.App.IsProduction(), cfg.Seed.File),
	}
	result, err := seed.Apply(ctx, store, data, opts, logger)
	if err != nil {
		return err
	}
	if result.UsersSkipped {
		logger.Warn("built-in seed accounts are not created in production; set SEED_FILE to seed users")
	}
	return nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
