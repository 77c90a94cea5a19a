// Package main provides the entry point for keyline-server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/keyline-io/keyline/internal/core/service"
	"github.com/keyline-io/keyline/internal/infra/buildinfo"
	"github.com/keyline-io/keyline/internal/infra/confloader"
	"github.com/keyline-io/keyline/internal/infra/shutdown"
	"github.com/keyline-io/keyline/internal/server/config"
	"github.com/keyline-io/keyline/internal/server/httpserver"
	"github.com/keyline-io/keyline/internal/server/kvserver"
	"github.com/keyline-io/keyline/internal/storage/memory"
	"github.com/keyline-io/keyline/internal/telemetry/logger"
	"github.com/keyline-io/keyline/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse command line flags
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	// Show version and exit
	if *showVersion {
		fmt.Printf("keyline-server %s\n", buildinfo.String())
		return nil
	}

	// Load configuration
	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize logger
	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting keyline-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)

	// Metrics registry, with build info exposed as a metric
	registry := metric.Global()
	registry.MustRegister(metric.NewCollector(info.Version, info.Commit))

	// Store and key-value service
	store := memory.New().RegisterMetrics(registry.Prometheus())
	svc := service.NewKeyValService(store)

	// Wire server
	kvSrv := kvserver.New(&kvserver.Config{
		Addr:            cfg.Server.Addr,
		UnixSocket:      cfg.Server.UnixSocket,
		ReadBufferBytes: cfg.Server.ReadBufferBytes,
		MaxConns:        cfg.Server.MaxConns,
		PerIPRate:       cfg.Limits.PerIPRate,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
	}, svc, log, registry)

	if err := kvSrv.Start(context.Background()); err != nil {
		return fmt.Errorf("start wire server: %w", err)
	}

	wireAddr := ""
	if a := kvSrv.Addr(); a != nil {
		wireAddr = a.String()
	}
	log.Info("wire server listening",
		"addr", wireAddr,
		"unix_socket", cfg.Server.UnixSocket)

	// Setup graceful shutdown
	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	// Admin HTTP server (health, stats, purge, metrics)
	var adminServer *httpserver.Server
	if cfg.Admin.Enabled {
		router := httpserver.NewRouter(&httpserver.RouterConfig{
			Store:            store,
			Sessions:         kvSrv,
			Metrics:          registry,
			Logger:           log,
			AllowList:        cfg.Admin.AllowList,
			RateLimit:        cfg.Admin.RateLimit,
			EnableRequestLog: true,
		})
		adminServer = httpserver.New(cfg.Admin.Addr, router)

		go func() {
			log.Info("admin server listening", "addr", cfg.Admin.Addr)

			if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("admin server error", "error", err)
				shutdownHandler.Trigger()
			}
		}()
	}

	// Watch the config file so log level changes apply without a restart
	var watcher *confloader.Watcher
	if *configFile != "" {
		watcher, err = watchLogLevel(*configFile, log)
		if err != nil {
			log.Warn("config watch unavailable", "error", err)
		}
	}

	// Register shutdown hooks in startup order; the handler runs them
	// in reverse, so the store closes last.
	shutdownHandler.OnShutdown(func(context.Context) error {
		return store.Close()
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down wire server")
		return kvSrv.Shutdown(ctx)
	})
	if adminServer != nil {
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down admin server")
			return adminServer.Shutdown(ctx)
		})
	}
	if watcher != nil {
		shutdownHandler.OnShutdown(func(context.Context) error {
			return watcher.Stop()
		})
	}

	// Wait for shutdown signal
	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	// Start with defaults
	cfg := config.Default()

	// Create loader with optional config file
	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)

	// Load and unmarshal
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	// Set as default logger
	logger.SetDefault(log)

	return log, nil
}

// watchLogLevel re-reads the config file on change and applies the log
// level. Other settings still require a restart.
func watchLogLevel(configFile string, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Watch(configFile); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload skipped", "path", path, "error", err)
			return
		}

		logger.SetLevel(cfg.Log.Level)
		log.Info("log level applied", "level", cfg.Log.Level)
	})

	watcher.StartAsync()
	return watcher, nil
}
