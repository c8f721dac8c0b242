package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/therapy-booking/internal/api/router"
	"github.com/wolfman30/therapy-booking/internal/app/bootstrap"
	appconfig "github.com/wolfman30/therapy-booking/internal/config"
	"github.com/wolfman30/therapy-booking/internal/http/handlers"
	"github.com/wolfman30/therapy-booking/pkg/logging"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting therapy-booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"persistence", cfg.PersistenceBackend,
	)

	ctx := context.Background()
	handler, cleanup, err := buildHandler(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildHandler wires persistence, the booking engine and the router.
func buildHandler(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, func(), error) {
	loadAWS := awsLoader(cfg)

	backend, err := bootstrap.BuildPersistence(ctx, cfg, loadAWS, logger)
	if err != nil {
		return nil, nil, err
	}

	registry, metricsHandler := setupMetrics()
	engine, err := bootstrap.BuildEngine(ctx, bootstrap.EngineDeps{
		Config:     cfg,
		Port:       backend.Port,
		Registerer: registry,
		LoadAWS:    loadAWS,
		Logger:     logger,
	})
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	h := router.New(&router.Config{
		Logger:             logger,
		Catalog:            handlers.NewCatalogHandler(engine.Catalog, engine.Matcher, logger),
		Booking:            handlers.NewBookingHandler(engine.Drafts, engine.Catalog, engine.Booking, logger),
		Appointments:       handlers.NewAppointmentsHandler(engine.Appointments, engine.Booking, engine.Clock, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		HealthCheck:        backend.Health,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})
	return h, backend.Close, nil
}

// awsLoader memoizes the AWS config so S3, SES and DynamoDB share one load.
func awsLoader(cfg *appconfig.Config) bootstrap.AWSConfigLoader {
	var (
		loaded bool
		awsCfg aws.Config
		err    error
	)
	return func(ctx context.Context) (aws.Config, error) {
		if !loaded {
			awsCfg, err = bootstrap.LoadAWSConfig(ctx, cfg)
			loaded = true
		}
		return awsCfg, err
	}
}

func setupMetrics() (*prometheus.Registry, http.Handler) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
