package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/config"
	"github.com/claude/mapty/internal/form"
	"github.com/claude/mapty/internal/geo"
	"github.com/claude/mapty/internal/mapview"
	maptymcp "github.com/claude/mapty/internal/mcp"
	"github.com/claude/mapty/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	serverURL := flag.String("server", "", "base URL of a running mapty server; empty opens storage directly")
	apiKey := flag.String("api-key", os.Getenv("MAPTY_AUTH_API_KEY"), "API key for the remote server")
	flag.Parse()

	// stdout carries the protocol, logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds maptymcp.DataSource
	if *serverURL != "" {
		ds = maptymcp.NewHTTPClient(*serverURL).WithAPIKey(*apiKey)
		log.Info("mapty-mcp remote mode", "server", *serverURL)
	} else {
		controller, closeFn, err := openLocal(*configPath, log)
		if err != nil {
			log.Error("failed to open local data", "error", err)
			os.Exit(1)
		}
		defer closeFn()
		ds = maptymcp.NewLocal(controller)
		log.Info("mapty-mcp local mode")
	}

	s := maptymcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("stdio server stopped", "error", err)
		os.Exit(1)
	}
}

// openLocal builds a mapless controller over the configured storage.
func openLocal(path string, log *slog.Logger) (*app.Controller, func(), error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	ctx := context.Background()
	slot, err := cfg.Storage.Open(ctx)
	if err != nil {
		return nil, nil, err
	}
	store := storage.NewWorkoutStore(slot, log)

	controller := app.New(store, mapview.New(mapview.NewStateSurface(), cfg.Map.Options()), form.New(0), nil, log)
	err = controller.Start(ctx, geo.Denied("no map in MCP mode"))
	if err != nil && !errors.Is(err, app.ErrGeolocationUnavailable) {
		_ = store.Close()
		return nil, nil, err
	}

	return controller, func() {
		controller.Close()
		_ = store.Close()
	}, nil
}
