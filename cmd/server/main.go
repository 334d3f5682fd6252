// Package main runs the holder analytics HTTP API:
// - /api/v1/{buyers,sellers,entrants,behavior,timing}
// - /health, /status, /metrics
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"holder-flow/internal/analytics"
	"holder-flow/internal/api"
	"holder-flow/internal/cache"
	"holder-flow/internal/config"
	"holder-flow/internal/logger"
	"holder-flow/internal/observability"
	"holder-flow/internal/storage/backend"
)

func main() {
	// Parse flags; flags override the config file and environment
	configPath := flag.String("config", os.Getenv("HOLDERFLOW_CONFIG"), "Path to YAML config file (optional)")
	addr := flag.String("addr", "", "HTTP listen address (overrides server.addr)")
	driver := flag.String("driver", "", "Storage driver: memory, postgres, sqlite (overrides storage.driver)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides logging.level)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Default("server").Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *driver != "" {
		cfg.Storage.Driver = *driver
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		logger.Default("server").Fatalf("Invalid config: %v", err)
	}

	log := logger.New(os.Stdout, "server", cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, err := backend.Open(ctx, cfg.Storage, observability.DefaultMetrics, log.With("storage"))
	if err != nil {
		log.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	// Optional result cache
	var resultCache api.ResultCache
	if cfg.Cache.Enabled {
		c, err := cache.NewRedis(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.TTL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer c.Close()
		resultCache = c
		log.Infof("Caching results in redis at %s for %s", cfg.Cache.Addr, cfg.Cache.TTL)
	}

	service := analytics.New(analytics.Options{
		Snapshots: stores.Snapshots,
		Holders:   stores.Holders,
		Config:    analytics.FromSettings(cfg.Analytics),
		Logger:    log.With("analytics"),
	})

	handler := api.New(api.Options{
		Service:         service,
		Cache:           resultCache,
		Status:          stores.Status,
		Logger:          log.With("api"),
		DefaultPageSize: cfg.Server.DefaultPageSize,
		MaxPageSize:     cfg.Server.MaxPageSize,
		Timeout:         cfg.Server.WriteTimeout,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     log.Std(),
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sig := <-sigCh
		log.Infof("Received signal %v, initiating graceful shutdown...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		go func() {
			// Wait for second signal for immediate shutdown
			select {
			case sig := <-sigCh:
				log.Warnf("Received second signal %v, forcing immediate shutdown", sig)
				os.Exit(1)
			case <-shutdownCtx.Done():
			}
		}()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Graceful shutdown failed: %v", err)
		}
		cancel()
	}()

	log.Infof("Starting HTTP server on %s (storage=%s, snapshots=%s)", cfg.Server.Addr, cfg.Storage.Driver, cfg.Storage.SnapshotSource)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(cfg.Server.ShutdownTimeout + time.Second):
		log.Warnf("Shutdown timed out")
	}
	log.Infof("Shutdown complete")
}
