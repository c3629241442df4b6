// Package ui formats workouts for terminal output.
package ui

import (
	"fmt"
	"strconv"

	"github.com/claude/mapty/internal/models"
	"github.com/fatih/color"
)

// FormatWorkout renders one workout as a single line.
func FormatWorkout(w *models.Workout) string {
	if w == nil {
		return color.New(color.Faint).Sprint("(invalid workout)")
	}

	title := w.Kind.Emoji() + " " + w.Description
	switch w.Kind {
	case models.KindRunning:
		title = color.GreenString(title)
	case models.KindCycling:
		title = color.YellowString(title)
	}

	return fmt.Sprintf("%s  %s  %s  %s",
		title,
		FormatMetrics(w),
		color.New(color.Faint).Sprintf("(%.4f, %.4f)", w.Coords.Lat, w.Coords.Lng),
		color.New(color.Faint).Sprint(shortID(w.ID)))
}

// FormatMetrics renders distance, duration and the type-specific values.
func FormatMetrics(w *models.Workout) string {
	s := fmt.Sprintf("%s km  %s min", num(w.Distance), num(w.Duration))
	switch {
	case w.Running != nil:
		s += fmt.Sprintf("  %.1f min/km  %s spm", w.Running.Pace, num(w.Running.Cadence))
	case w.Cycling != nil:
		s += fmt.Sprintf("  %.1f km/h  %s m", w.Cycling.Speed, num(w.Cycling.ElevationGain))
	}
	return s
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}
