package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/PennQuinnDad/college-quest/config"
	"github.com/PennQuinnDad/college-quest/internal/handlers"
	appctx "github.com/PennQuinnDad/college-quest/pkg/context"
	"github.com/PennQuinnDad/college-quest/pkg/database"
	"github.com/PennQuinnDad/college-quest/pkg/health"
	"github.com/PennQuinnDad/college-quest/pkg/middleware"
	"github.com/PennQuinnDad/college-quest/pkg/redis"
	"github.com/PennQuinnDad/college-quest/pkg/repositories"
	"github.com/PennQuinnDad/college-quest/pkg/tracing"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, sync := newLogger(cfg)
	defer sync()

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (ectologger.Logger, func()) {
	zapCfg := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	zapLogger, err := zapCfg.Build()
	if err != nil {
		zapLogger, _ = zap.NewProduction()
	}

	return zapadapter.NewZapEctoLogger(zapLogger, nil), func() { _ = zapLogger.Sync() }
}

func run(cfg *config.Config, logger ectologger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.TracingEnabled,
		ServiceName: cfg.AppName,
		Endpoint:    cfg.TracingOTLPEndpoint,
		Protocol:    cfg.TracingOTLPProtocol,
		Insecure:    cfg.TracingOTLPInsecure,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	db, err := database.Connect(ctx, database.Config{
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := database.MigrationDriver(db)
	if err != nil {
		return err
	}
	migrations := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
	})
	if err := migrations.Migrate(cfg.DatabaseName, driver); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	collegeRepo := repositories.NewCollegeRepository(db, logger, cfg.MaxRowsPerQuery)
	schoolRepo := repositories.NewSchoolRepository(db, logger, cfg.MaxRowsPerQuery)
	favoriteRepo := repositories.NewFavoriteRepository(db, logger)
	folderRepo := repositories.NewFolderRepository(db, logger)
	allowedEmailRepo := repositories.NewAllowedEmailRepository(db, logger)
	profileRepo := repositories.NewProfileRepository(db, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(echomiddleware.Recover())
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))

	if redisClient != nil {
		limiter := redis.NewRateLimiter(redisClient, "")
		window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
		e.Use(middleware.RateLimit(logger, limiter, int64(cfg.RateLimitRequests), window))
	}

	checker := health.NewChecker(db, redisClient, cfg.AppName)
	checker.RegisterRoutes(e)

	authMiddleware, err := buildAuth(cfg, logger, allowedEmailRepo, profileRepo)
	if err != nil {
		return err
	}

	public := e.Group("/api/v1")
	handlers.NewCollegeHandler(collegeRepo, schoolRepo, cfg.SimilarityCandidatePoolSize, cfg.SimilarityMaxResults).RegisterRoutes(public)
	handlers.NewSchoolHandler(schoolRepo).RegisterRoutes(public)

	authed := e.Group("/api/v1", authMiddleware)
	handlers.NewFavoriteHandler(favoriteRepo).RegisterRoutes(authed)
	handlers.NewFolderHandler(folderRepo).RegisterRoutes(authed)
	handlers.NewMeHandler(profileRepo).RegisterRoutes(authed)

	admin := e.Group("/api/v1/admin", middleware.AdminGate(cfg.AdminToken, authMiddleware, middleware.Admin(logger, cfg.AdminToken, profileRepo)))
	handlers.NewAdminHandler(collegeRepo, schoolRepo, allowedEmailRepo).RegisterRoutes(admin)

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Port).Infof("Starting %s on port %d", cfg.AppName, cfg.Port)
		checker.SetReady(true)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func buildAuth(cfg *config.Config, logger ectologger.Logger, allowList middleware.AllowListChecker, profiles middleware.ProfileRecorder) (echo.MiddlewareFunc, error) {
	if cfg.AuthEnabled {
		return middleware.NewAuthentication(logger, cfg.AuthIssuerURL, cfg.AuthClientID, allowList, profiles)
	}

	// Local development only. Every request runs as a fixed user.
	logger.Warn("Authentication is disabled")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := appctx.SetUserID(c.Request().Context(), "local-dev")
			ctx = appctx.SetUserEmail(ctx, "local-dev@localhost")
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}, nil
}
