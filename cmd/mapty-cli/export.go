package main

import (
	"fmt"
	"io"
	"os"

	"github.com/claude/mapty/internal/export"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Aliases: []string{"e"},
	Short:   "Export workouts as GeoJSON, GPX or JSON",
	Long: `Export every workout.

Examples:
  mapty-cli export --format geojson
  mapty-cli export --format gpx --output workouts.gpx
  mapty-cli export --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, _ := cmd.Flags().GetString("format")
		format, err := export.ParseFormat(f)
		if err != nil {
			return err
		}

		var out io.Writer = cmd.OutOrStdout()
		path, _ := cmd.Flags().GetString("output")
		if path != "" {
			file, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer file.Close()
			out = file
		}

		workouts := controller.Workouts()
		if err := export.Write(out, format, workouts); err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}
		if path != "" {
			color.Green("✓ Exported %d workouts to %s", len(workouts), path)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", "geojson", "output format (geojson, gpx, json)")
	exportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
