package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/domainsuffixes/internal/api"
	"github.com/domainsuffixes/internal/config"
	"github.com/domainsuffixes/internal/feed"
	"github.com/domainsuffixes/internal/logging"
	"github.com/domainsuffixes/internal/service"
	"github.com/domainsuffixes/internal/version"
)

func main() {
	// Command line flags
	var (
		configPath  = flag.String("config", "", "Path to configuration file (defaults when empty)")
		host        = flag.String("host", "", "HTTP server host (overrides config)")
		port        = flag.Int("port", 0, "HTTP server port (overrides config)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("suffixd %s\n", version.GetFullVersionInfo())
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	if err := logging.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	logging.Info("suffixd starting",
		slog.String("version", version.GetFullVersionInfo()),
		slog.String("config", *configPath))

	store, err := cfg.Snapshot.OpenStore()
	if err != nil {
		logging.Fatal("Failed to open snapshot store", logging.Err(err))
	}
	if store != nil {
		defer store.Close()
		logging.Info("Snapshot store opened",
			slog.String("backend", cfg.Snapshot.Backend),
			logging.File(cfg.Snapshot.Path),
			logging.Duration("max_age", cfg.Snapshot.MaxAge))
	} else {
		logging.Info("Snapshots are disabled")
	}

	loader := feed.NewLoader(cfg.Feeds.Source(), cfg.Feeds.LoaderConfig())
	svc := service.New(loader, cfg.Snapshot.Manager(store), cfg.Refresh.ServiceConfig())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := svc.Init(ctx); err != nil {
		logging.Fatal("Failed to build suffix registry", logging.Err(err))
	}

	refreshDone := make(chan struct{})
	go func() {
		defer close(refreshDone)
		if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error("Refresh loop stopped", logging.Err(err))
		}
	}()

	apiServer := api.New(svc)
	apiServer.EnableReload(cfg.Server.EnableReload)
	apiServer.SetHealthChecker(&serverHealthChecker{
		svc:       svc,
		store:     store,
		backend:   cfg.Snapshot.Backend,
		startTime: time.Now(),
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           apiServer.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		base := "http://" + cfg.Server.Addr()
		logging.Info("Server starting", slog.String("address", base))
		logging.Info("Available endpoints:")
		logging.Infof("    %s/api/health  - Health check", base)
		logging.Infof("    %s/api/tld     - Effective suffix of ?host=", base)
		logging.Infof("    %s/api/parse   - Full decomposition of ?host=", base)
		logging.Infof("    %s/api/tlds    - Known top-level domains", base)
		logging.Infof("    %s/api/stats   - Registry statistics", base)
		if cfg.Server.EnableReload {
			logging.Infof("    %s/api/reload  - Rebuild from feeds (POST)", base)
		}

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("Server failed to start", logging.Err(err))
		}
	}()

	<-ctx.Done()
	logging.Info("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown timed out, forcing close", logging.Err(err))
		if err := server.Close(); err != nil {
			logging.Error("Server force close error", logging.Err(err))
		}
	}
	<-refreshDone

	logging.Info("Server stopped")
}
