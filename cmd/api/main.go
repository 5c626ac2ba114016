// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/library-backend/internal/activation"
	"github.com/carterperez-dev/templates/library-backend/internal/admin"
	"github.com/carterperez-dev/templates/library-backend/internal/auth"
	"github.com/carterperez-dev/templates/library-backend/internal/catalog"
	"github.com/carterperez-dev/templates/library-backend/internal/config"
	"github.com/carterperez-dev/templates/library-backend/internal/core"
	"github.com/carterperez-dev/templates/library-backend/internal/feedback"
	"github.com/carterperez-dev/templates/library-backend/internal/health"
	"github.com/carterperez-dev/templates/library-backend/internal/lending"
	"github.com/carterperez-dev/templates/library-backend/internal/mail"
	"github.com/carterperez-dev/templates/library-backend/internal/metrics"
	"github.com/carterperez-dev/templates/library-backend/internal/middleware"
	"github.com/carterperez-dev/templates/library-backend/internal/server"
	"github.com/carterperez-dev/templates/library-backend/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		return err
	}
	if telemetry.Enabled() {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	if cfg.Database.AutoMigrate {
		if err := migrateUp(cfg.Database.URL, logger); err != nil {
			return err
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	recorder := metrics.New()
	recorder.GaugeFunc("db_open_connections", "Open database connections.",
		func() float64 { return float64(db.Stats().OpenConnections) })

	smtpSender, err := mail.NewSMTPSender(cfg.Mail)
	if err != nil {
		return err
	}
	dispatcher := mail.NewDispatcher(smtpSender, mail.DispatcherConfig{
		Async:     cfg.Mail.Async,
		Workers:   cfg.Mail.Workers,
		QueueSize: cfg.Mail.QueueSize,
	}, logger, recorder)

	clock := core.SystemClock{}

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, logger)
	userHandler := user.NewHandler(userSvc)

	activationSvc := activation.NewService(
		activation.NewRepository(db.DB),
		userSvc,
		dispatcher,
		clock,
		cfg.Activation.URL,
		logger,
		recorder,
	)

	authSvc := auth.NewService(
		auth.NewRepository(db.DB),
		jwtManager,
		userSvc,
		activationSvc,
		auth.NewBlacklist(redis),
		logger,
	)
	authHandler := auth.NewHandler(authSvc)

	catalogSvc := catalog.NewService(db.DB, logger)
	catalogHandler := catalog.NewHandler(catalogSvc)

	lendingSvc := lending.NewService(
		lending.NewRepository(db.DB),
		catalogSvc,
		clock,
		logger,
		recorder,
	)
	lendingHandler := lending.NewHandler(lendingSvc)

	feedbackSvc := feedback.NewService(
		feedback.NewRepository(db.DB),
		catalogSvc,
		logger,
	)
	feedbackHandler := feedback.NewHandler(feedbackSvc)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Books:      catalogSvc,
		Loans:      lendingSvc,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	globalLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.Every(
			cfg.RateLimit.Window,
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
		),
		FailOpen: true,
		Logger:   logger,
	})
	defer globalLimiter.Close()

	borrowLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.Every(
			cfg.LendingRateLimit.Window,
			cfg.LendingRateLimit.Requests,
			cfg.LendingRateLimit.Burst,
		),
		KeyFunc:  middleware.KeyByUserAndEndpoint,
		FailOpen: true,
		Logger:   logger,
	})
	defer borrowLimiter.Close()

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing(telemetry.Tracer))
	router.Use(middleware.Logger(logger))
	router.Use(recorder.Middleware)
	router.Use(globalLimiter.Handler)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Handle("/metrics", recorder.Handler())
	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	librarianOnly := middleware.RequireLibrarian
	adminOnly := middleware.RequireAdmin

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)

		r.Route("/books", func(r chi.Router) {
			r.Use(authenticator)
			catalogHandler.RegisterRoutes(r, librarianOnly)
			lendingHandler.RegisterRoutes(r, librarianOnly, borrowLimiter.Handler)
		})

		feedbackHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator, librarianOnly)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, librarianOnly, adminOnly)
	})

	errChan := make(chan error, 1)
	healthHandler.SetReady(true)

	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Error("mail dispatcher close error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func migrateUp(databaseURL string, logger *slog.Logger) error {
	migrator, err := core.NewMigrator(databaseURL, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("migrator close error", "error", closeErr)
		}
	}()

	return migrator.Up()
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
