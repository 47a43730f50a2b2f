package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"netmobcli/internal/config"
	"netmobcli/internal/dataprocessing"
	"netmobcli/internal/exporter"
	"netmobcli/internal/files"
	"netmobcli/internal/infrastructure"
	"netmobcli/internal/services"
	"netmobcli/internal/store"
	handlers "netmobcli/internal/transport/http"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	Files         *files.Manager
	Discovery     *files.Discovery
	Store         store.Store
	Services      *ServiceContainer
	Router        *chi.Mux
	Server        *http.Server

	startTime time.Time
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Matching *services.MatchingService
	Traffic  *services.TrafficService
	Health   *services.HealthService
}

// NewApplication wires every component from cfg. The caller owns the
// returned application and must Close it.
func NewApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		startTime:     time.Now(),
	}

	if err := app.initializeServices(ctx); err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	logger.InfoContext(ctx, "Application initialized",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("store", cfg.Store.Driver),
		slog.String("kind", cfg.Traffic.Kind),
		slog.String("level", cfg.Traffic.Level))

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices(ctx context.Context) error {
	metrics, err := infrastructure.NewPipelineMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	a.Metrics = metrics

	if err := infrastructure.RegisterSystemMetrics(a.OTelProviders.Meter, a.startTime); err != nil {
		return fmt.Errorf("failed to register system metrics: %w", err)
	}

	a.Files = files.NewManager(a.Paths, a.Logger)
	a.Discovery = files.NewDiscovery(a.Paths.DataDir)

	st, err := store.Open(ctx, a.Config.Store, a.Paths, a.Files)
	if err != nil {
		return err
	}
	a.Store = st

	matching := services.NewMatchingService(
		a.Config.Matching,
		services.NewGeoJSONLayers(a.Paths, a.Config.Matching),
		st,
		metrics,
		a.OTelProviders.Tracer,
		a.Logger,
	)

	registry := matching.Registry()
	csvWriter := exporter.NewCSVWriter(a.Paths, a.Logger)
	traffic, err := services.NewTrafficService(a.Config.Traffic, services.TrafficDeps{
		Loader:     dataprocessing.NewFileLoader(a.Paths, registry, a.Logger),
		Aggregator: dataprocessing.NewAggregator(a.Paths, a.Files, registry, a.Config.Traffic.Workers, a.Logger),
		Writer:     csvWriter,
		Metrics:    metrics,
		Tracer:     a.OTelProviders.Tracer,
		Logger:     a.Logger,
	})
	if err != nil {
		return err
	}

	a.Services = &ServiceContainer{
		Matching: matching,
		Traffic:  traffic,
		Health:   services.NewHealthService(config.AppVersion, a.Paths, registry, a.Logger),
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	a.Router = handlers.NewRouter(a.Config.Server, handlers.RouterDeps{
		Health:         a.Services.Health,
		Correspondence: a.Services.Matching,
		Metrics:        a.Metrics,
		Tracer:         a.OTelProviders.Tracer,
		Prometheus:     a.OTelProviders.PrometheusHTTP,
		Logger:         a.Logger,
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts the HTTP server in the background. A listen failure cancels
// ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting server",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.performStartupHealthCheck(ctx)

	a.Logger.InfoContext(ctx, "Server started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the server
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "Server stopped")
	return nil
}

// Run serves until SIGINT, SIGTERM or cancellation of ctx.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
	}

	return a.Stop(ctx)
}

// Close releases the store and flushes telemetry. It is safe to call on a
// partially initialized application.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown telemetry: %w", err))
		}
	}
	return errors.Join(errs...)
}

// performStartupHealthCheck logs readiness problems without failing startup.
func (a *Application) performStartupHealthCheck(ctx context.Context) {
	status := a.Services.Health.ReadinessCheck(ctx)
	if status.Status != "ready" {
		a.Logger.WarnContext(ctx, "Startup readiness check reported problems",
			slog.String("status", status.Status))
	}
}
