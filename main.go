package main

import (
	"context"
	"errors"
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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/renning22/fmcp/config"
	"github.com/renning22/fmcp/internal/handlers"
	"github.com/renning22/fmcp/internal/repositories/session"
	"github.com/renning22/fmcp/internal/services/training"
	"github.com/renning22/fmcp/pkg/health"
	"github.com/renning22/fmcp/pkg/middleware"
	"github.com/renning22/fmcp/pkg/redis"
	"github.com/renning22/fmcp/pkg/render"
	"github.com/renning22/fmcp/pkg/startup"
	"github.com/renning22/fmcp/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("server stopped with error")
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) (ectologger.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zapConfig.Level = level

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return zapadapter.NewZapEctoLogger(zapLogger.With(zap.String("app", cfg.AppName)), nil), nil
}

func run(cfg config.Config, logger ectologger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := health.NewChecker(cfg.Version)
	deps := startup.NewStartup(logger, cfg.StartupMaxAttempts)

	if cfg.TracingEnabled {
		deps.AddDependency(tracing.NewProvider(tracing.ProviderConfig{
			ServiceName: cfg.AppName,
			Endpoint:    cfg.OTLPEndpoint,
			Protocol:    cfg.OTLPProtocol,
			Insecure:    cfg.OTLPInsecure,
		}, logger))
	}

	var repo session.SessionRepository
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		client := redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		deps.AddDependency(client)
		repo = session.NewRedisRepository(client, cfg.RedisKeyPrefix, cfg.SessionTTL, cfg.SessionLockTimeout, logger)
	default:
		repo = session.NewMemoryRepository(cfg.SessionTTL, logger)
	}

	checker.AddCheck("session_store", repo)

	if err := deps.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := deps.Stop(stopCtx); err != nil {
			logger.WithError(err).Error("failed to stop dependencies")
		}
	}()

	renderer, err := render.New(cfg.AppName)
	if err != nil {
		return err
	}

	svc := training.NewService(repo, cfg.SessionLockTimeout, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	if cfg.TracingEnabled {
		e.Use(otelecho.Middleware(cfg.AppName))
	}
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	checker.RegisterRoutes(e)
	if cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
	handlers.NewPageHandler(svc).RegisterRoutes(e)
	handlers.NewAPIHandler(svc).RegisterRoutes(e.Group("/api/v1"))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           e,
		ReadTimeout:       time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("%s listening on %s (session store: %s)", cfg.AppName, server.Addr, cfg.SessionStore)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	checker.SetReady(true)

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
