package main

import (
	"errors"
	"fmt"

	"github.com/claude/mapty/internal/form"
	"github.com/claude/mapty/internal/models"
	"github.com/claude/mapty/internal/ui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:     "add <type> --lat <latitude> --lng <longitude>",
	Aliases: []string{"a"},
	Short:   "Record a workout at a location",
	Long: `Record a running or cycling workout at a location.

Distance (km), duration (min) and, for running, cadence (steps/min) must be
positive numbers. Cycling elevation gain (m) may be negative.

Examples:
  mapty-cli add running --lat 40.7128 --lng -74.0060 --distance 5 --duration 25 --cadence 180
  mapty-cli add cycling --lat 38.72 --lng -9.14 --distance 20 --duration 60 --elevation -40`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := models.ParseKind(args[0])
		if err != nil {
			return err
		}

		lat, err := coordinateFlag(cmd, "lat")
		if err != nil {
			return err
		}
		lng, err := coordinateFlag(cmd, "lng")
		if err != nil {
			return err
		}

		raw := form.RawFields{}
		raw.Distance, _ = cmd.Flags().GetString("distance")
		raw.Duration, _ = cmd.Flags().GetString("duration")
		raw.Cadence, _ = cmd.Flags().GetString("cadence")
		raw.Elevation, _ = cmd.Flags().GetString("elevation")

		w, _, err := controller.Record(ctxOf(cmd), models.Coordinates{Lat: lat, Lng: lng}, kind, raw)
		var invalid *form.InvalidInputError
		if errors.As(err, &invalid) {
			return fmt.Errorf("%s (%s)", invalid.Warning(), invalid.Field)
		}
		if err != nil {
			return fmt.Errorf("failed to record workout: %w", err)
		}

		color.Green("✓ Recorded %s", w.Description)
		fmt.Fprintln(cmd.OutOrStdout(), "  "+ui.FormatMetrics(w))
		return nil
	},
}

// coordinateFlag reads a coordinate flag that has no usable default.
func coordinateFlag(cmd *cobra.Command, name string) (float64, error) {
	if !cmd.Flags().Changed(name) {
		return 0, fmt.Errorf("--%s is required", name)
	}
	return cmd.Flags().GetFloat64(name)
}

func init() {
	addCmd.Flags().StringP("distance", "d", "", "distance in km")
	addCmd.Flags().StringP("duration", "m", "", "duration in minutes")
	addCmd.Flags().StringP("cadence", "c", "", "cadence in steps/min (running)")
	addCmd.Flags().StringP("elevation", "e", "", "elevation gain in meters (cycling)")
	addCmd.Flags().Float64("lat", 0, "latitude in degrees")
	addCmd.Flags().Float64("lng", 0, "longitude in degrees")

	rootCmd.AddCommand(addCmd)
}
