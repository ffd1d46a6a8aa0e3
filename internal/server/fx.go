// Package server builds the landing service's dependencies and runs its HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/vera-landing/internal/api"
	"github.com/JakeFAU/vera-landing/internal/channel/telegram"
	"github.com/JakeFAU/vera-landing/internal/clock/system"
	"github.com/JakeFAU/vera-landing/internal/config"
	"github.com/JakeFAU/vera-landing/internal/dispatcher"
	"github.com/JakeFAU/vera-landing/internal/logging"
	"github.com/JakeFAU/vera-landing/internal/metrics"
	"github.com/JakeFAU/vera-landing/internal/telemetry"
)

// App contains the application's dependencies.
type App struct {
	cfg            config.Config
	logger         *zap.Logger
	apiServer      *api.Server
	dispatch       *dispatcher.Dispatcher
	telegram       *telegram.Client
	tracerShutdown func(context.Context) error
}

// NewApp creates an App with the given configuration and logger.
func NewApp(cfg config.Config, logger *zap.Logger) *App {
	// Only non-sensitive fields are logged.
	type sanitizedConfig struct {
		ServerPort     int      `json:"server_port"`
		SiteURL        string   `json:"site_url"`
		Channels       []string `json:"channels"`
		FallbackActive bool     `json:"fallback_active"`
		RateLimited    bool     `json:"rate_limited"`
	}
	logger.Info("creating application", zap.Any("config", sanitizedConfig{
		ServerPort:     cfg.Server.Port,
		SiteURL:        cfg.Site.URL,
		Channels:       cfg.Dispatch.Channels,
		FallbackActive: cfg.FallbackActive(),
		RateLimited:    cfg.RateLimit.Enabled,
	}))
	return &App{cfg: cfg, logger: logger}
}

// Build creates the application's dependencies.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}

	if cfg.Dispatch.InternalToken == "" {
		cfg.Dispatch.InternalToken = uuid.NewString()
	}
	app := NewApp(cfg, logger)

	if cfg.Telemetry.TracingEnabled {
		tp, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			return nil, fmt.Errorf("tracer init failed: %w", err)
		}
		app.tracerShutdown = tp.Shutdown
	}
	metrics.Init()

	httpClient := telemetry.HTTPClient()
	clock := system.New()

	app.telegram = telegram.New(telegram.Config{
		BaseURL:  cfg.Telegram.APIBaseURL,
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		Timeout:  config.Seconds(cfg.Telegram.TimeoutSeconds),
	}, httpClient)
	if !app.telegram.Configured() {
		logger.Warn("telegram credentials missing, /api/lead will answer 500")
	}

	app.dispatch, err = dispatcher.Build(cfg, dispatcher.Deps{
		Logger:     logger,
		HTTPClient: httpClient,
		Clock:      clock,
	})
	if err != nil {
		return nil, fmt.Errorf("dispatcher init failed: %w", err)
	}

	app.apiServer = api.NewServer(cfg, app.dispatch, app.telegram, clock, logger)
	return app, nil
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Dispatcher returns the lead dispatcher.
func (a *App) Dispatcher() *dispatcher.Dispatcher {
	return a.dispatch
}

// Handler returns the HTTP handler of the API server.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// Run serves HTTP until ctx is canceled or a termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown initiated")
	case err, ok := <-serveErr:
		if ok {
			a.logger.Error("http server error", zap.Error(err))
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(a.cfg))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}

	if err := a.Close(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Close flushes logs and stops tracing.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Warn("tracer shutdown failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	a.logger.Info("shutdown complete")
	// Sync on stderr-backed loggers reports EINVAL on some platforms.
	_ = a.logger.Sync()
	return errors.Join(errs...)
}

func shutdownTimeout(cfg config.Config) time.Duration {
	if cfg.Server.ShutdownSeconds <= 0 {
		return 10 * time.Second
	}
	return config.Seconds(cfg.Server.ShutdownSeconds)
}
