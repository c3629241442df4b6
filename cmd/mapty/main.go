package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mapty "github.com/claude/mapty"
	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/config"
	"github.com/claude/mapty/internal/form"
	"github.com/claude/mapty/internal/geo"
	"github.com/claude/mapty/internal/mapview"
	maptymcp "github.com/claude/mapty/internal/mcp"
	"github.com/claude/mapty/internal/metrics"
	"github.com/claude/mapty/internal/server"
	"github.com/claude/mapty/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run postgres migrations and exit")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.Log.SlogLevel()
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	log.Info("Mapty starting", "version", Version, "storage", cfg.Storage.Backend)

	if *migrateOnly {
		if cfg.Storage.Backend != config.BackendPostgres {
			log.Info("migrate-only: nothing to migrate", "backend", cfg.Storage.Backend)
			return
		}
		if err := storage.RunMigrations(cfg.Storage.Database.DSN()); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")
		return
	}

	// Open storage
	ctx := context.Background()
	slot, err := cfg.Storage.Open(ctx)
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	store := storage.NewWorkoutStore(slot, log)
	defer store.Close()
	log.Info("storage opened")

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewManager(metrics.Namespace, reg)

	// Wire the app
	surface := mapview.NewStateSurface()
	view := mapview.New(surface, cfg.Map.Options())
	formCtl := form.New(cfg.Form.RestoreDelay)
	controller := app.New(store, view, formCtl, m, log)
	defer controller.Close()

	// Load the stored list now so API and MCP clients see it before a page
	// reports its position.
	if err := controller.Start(ctx, geo.Denied("no page connected")); err != nil && !errors.Is(err, app.ErrGeolocationUnavailable) {
		log.Error("failed to load workouts", "error", err)
		os.Exit(1)
	}

	srv := server.New(controller, surface, m, cfg.Auth.APIKey, log)
	if cfg.Metrics.Enabled {
		srv.EnableMetrics(reg)
	}

	mcpSrv := maptymcp.New(maptymcp.NewLocal(controller), Version, log)
	srv.MountMCP(mcpserver.NewStreamableHTTPServer(mcpSrv))

	// Serve embedded frontend
	webFS, err := fs.Sub(mapty.WebFS, "web")
	if err != nil {
		log.Error("failed to load embedded frontend", "error", err)
		os.Exit(1)
	}
	srv.SetFrontend(webFS)

	// Start server: tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
