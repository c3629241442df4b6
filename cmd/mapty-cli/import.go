package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/mapty/internal/importer"
	"github.com/claude/mapty/internal/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:     "import <file or dir>...",
	Aliases: []string{"i"},
	Short:   "Import workouts from JSON backups or GPX tracks",
	Long: `Import workouts from JSON backups (see 'mapty-cli export --format json')
or GPX tracks. A directory imports every .json and .gpx file in it.
Workouts already in the list are skipped.

A GPX track becomes one workout at its first point. Its distance and
duration come from the track; cycling elevation gain is the total climb.

Examples:
  mapty-cli import backup.json
  mapty-cli import ride.gpx
  mapty-cli import run.gpx --type running --cadence 170
  mapty-cli import ~/tracks --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts importer.TrackOptions
		if t, _ := cmd.Flags().GetString("type"); t != "" {
			kind, err := models.ParseKind(t)
			if err != nil {
				return err
			}
			opts.Kind = kind
		}
		opts.Cadence, _ = cmd.Flags().GetFloat64("cadence")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		stats, err := importer.New(controller, log, dryRun, opts).Import(ctxOf(cmd), args...)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		out := cmd.OutOrStdout()
		verb := "Imported"
		if dryRun {
			verb = "Would import"
		}
		color.Green("✓ %s %d workouts", verb, stats.WorkoutsImported)
		fmt.Fprintf(out, "  files: %d read, %d skipped, %d failed\n", stats.FilesProcessed, stats.FilesSkipped, stats.FilesErrored)
		fmt.Fprintf(out, "  workouts: %d duplicated, %d rejected\n", stats.WorkoutsDuplicated, stats.WorkoutsRejected)
		for _, r := range stats.Rejected {
			fmt.Fprintln(out, "  "+color.New(color.Faint).Sprint(r))
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringP("type", "t", "", "workout type for GPX tracks (default cycling)")
	importCmd.Flags().Float64P("cadence", "c", 0, "cadence in steps/min for running tracks")
	importCmd.Flags().Bool("dry-run", false, "validate without saving")
	rootCmd.AddCommand(importCmd)
}
