package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/config"
	"github.com/claude/mapty/internal/form"
	"github.com/claude/mapty/internal/geo"
	"github.com/claude/mapty/internal/mapview"
	"github.com/claude/mapty/internal/storage"
	"github.com/spf13/cobra"
)

var (
	controller *app.Controller
	store      *storage.WorkoutStore
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "mapty-cli",
	Short: "Manage mapty workouts from the terminal",
	Long: `Read and record mapty workouts directly against the configured storage.

Examples:
  mapty-cli list
  mapty-cli add running --lat 40.7128 --lng -74.0060 --distance 5 --duration 25 --cadence 180
  mapty-cli export --format gpx --output workouts.gpx
  mapty-cli reset --confirm`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		slot, err := cfg.Storage.Open(ctxOf(cmd))
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		return open(ctxOf(cmd), slot)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeAll()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")
}

// open builds a mapless controller over slot and loads the stored list.
func open(ctx context.Context, slot storage.Slot) error {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store = storage.NewWorkoutStore(slot, log)
	controller = app.New(store, mapview.New(mapview.NewStateSurface(), mapview.DefaultOptions()), form.New(0), nil, log)

	err := controller.Start(ctx, geo.Denied("terminal session"))
	if err != nil && !errors.Is(err, app.ErrGeolocationUnavailable) {
		_ = closeAll()
		return fmt.Errorf("failed to load workouts: %w", err)
	}
	if w := controller.Snapshot().Warning; w != "" {
		fmt.Println(w)
	}
	return nil
}

func closeAll() error {
	if controller != nil {
		controller.Close()
		controller = nil
	}
	if store != nil {
		err := store.Close()
		store = nil
		return err
	}
	return nil
}

// ctxOf returns the command context, which is nil when RunE is called directly.
func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
