package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"bnfcli/internal/config"
	"bnfcli/internal/dataprocessing"
	apierrors "bnfcli/internal/errors"
	"bnfcli/internal/exporter"
	"bnfcli/internal/infrastructure"
	customMiddleware "bnfcli/internal/middleware"
	handlers "bnfcli/internal/transport/http"
	"bnfcli/pkg/contracts"
)

// Application represents the web service container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Processor     *dataprocessing.Processor
}

// NewApplication wires the web service from cfg.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("version", contracts.Version),
		slog.Int("port", cfg.Server.Port))

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewPipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	rules, err := dataprocessing.RulesFromConfig(cfg.Strategy)
	if err != nil {
		return nil, fmt.Errorf("invalid strategy: %w", err)
	}

	processor := dataprocessing.NewProcessor(rules,
		dataprocessing.WithStrictTime(cfg.Loader.StrictTime),
		dataprocessing.WithTracer(providers.Tracer),
		dataprocessing.WithMetrics(metrics),
		dataprocessing.WithLogger(logger),
	)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(providers.Tracer, providers.Meter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP instrumentation: %w", err)
	}

	errorHandler := apierrors.NewErrorHandler(logger, false)
	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Processor:     processor,
	}

	app.Router = handlers.NewRouter(handlers.RouterDeps{
		Config:         cfg.Server,
		Logger:         logger,
		ErrorHandler:   errorHandler,
		Analyze:        handlers.NewAnalyzeHandler(processor, exporter.NewExporter(nil, cfg.Output.BOMPrefix, logger), logger, errorHandler),
		Health:         handlers.NewHealthHandler(logger),
		Metrics:        providers.MetricsHandler(),
		OTelMiddleware: otelMiddleware,
	})

	app.createServer()
	return app, nil
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "Server listening", slog.String("address", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run listens on the configured port until SIGINT or SIGTERM.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}
