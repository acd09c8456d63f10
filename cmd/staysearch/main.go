package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"gopkg.in/yaml.v3"

	"staysearch/internal/domain"
	apihttp "staysearch/internal/http"
	"staysearch/internal/observability"
	"staysearch/internal/pipeline"
	"staysearch/internal/storage"
)

func main() {
	logger := observability.NewLogger(observability.ConfigFromEnv())

	configPath := flag.String("config", "", "path to YAML config file")
	addrFlag := flag.String("addr", "", "listen address (host:port), overrides config")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		logger.Error("config error", "error", err)
		os.Exit(1)
	}
	if *addrFlag != "" {
		cfg.Addr = *addrFlag
	}

	sentryEnabled := false
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			Environment:      envOr("SENTRY_ENVIRONMENT", "production"),
			Release:          envOr("APP_VERSION", "dev"),
			AttachStacktrace: true,
		})
		if err != nil {
			logger.Warn("sentry initialization failed", "error", err)
		} else {
			logger.Info("sentry initialized",
				"environment", envOr("SENTRY_ENVIRONMENT", "production"),
				"release", envOr("APP_VERSION", "dev"),
			)
			sentryEnabled = true
		}
	}

	// Select storage based on build tags and env (see store_*.go in this package).
	store := selectStore(logger, cfg.Limits())

	if cfg.SeedFile != "" {
		n, err := seedProperties(context.Background(), store, cfg.SeedFile)
		if err != nil {
			logger.Error("seeding failed", "file", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
		logger.Info("seeded properties", "file", cfg.SeedFile, "count", n)
	}

	metricsCfg := observability.MetricsConfigFromEnv()
	var metrics *observability.Metrics
	if metricsCfg.Enabled {
		metrics = observability.NewMetrics(metricsCfg)
		logger.Info("metrics enabled",
			"namespace", metricsCfg.Namespace,
			"version", metricsCfg.Version,
		)
	} else {
		logger.Info("metrics disabled")
	}

	pl := pipeline.New(store)
	if metrics != nil {
		pl.WithInstrumentation(metrics)
	}

	mux := http.NewServeMux()
	srv := apihttp.NewServer(mux, pl, store, logger, metrics)
	srv.RegisterRoutes()

	handler := apihttp.ApplyMiddlewares(
		mux,
		apihttp.RequestIDMiddleware(),
		apihttp.LoggingMiddleware(logger),
	)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("staysearch listening", "addr", cfg.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	}

	logger.Info("shutting down server", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	} else {
		logger.Info("server stopped gracefully")
	}

	if err := store.Close(); err != nil {
		logger.Error("error closing store", "error", err)
	}

	if sentryEnabled {
		sentry.Flush(2 * time.Second)
	}

	logger.Info("shutdown complete")
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// seedProperties loads listings from a YAML file into the store. Returns the
// number created.
func seedProperties(ctx context.Context, store storage.Store, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var listings []domain.CreateProperty
	if err := yaml.Unmarshal(data, &listings); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}
	for i, l := range listings {
		if _, err := store.CreateProperty(ctx, l); err != nil {
			return i, fmt.Errorf("create property %q: %w", l.Name, err)
		}
	}
	return len(listings), nil
}
