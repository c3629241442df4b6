// Package export writes the workout list in interchange formats.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/claude/mapty/internal/geojson"
	"github.com/claude/mapty/internal/models"
	"github.com/claude/mapty/internal/storage"
	"github.com/tkrajina/gpxgo/gpx"
)

// Format is an export format name.
type Format string

const (
	FormatGeoJSON Format = "geojson"
	FormatGPX     Format = "gpx"
	FormatJSON    Format = "json"
)

// Creator is written into GPX files.
const Creator = "mapty"

// ParseFormat parses a format name. Empty means GeoJSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatGeoJSON, nil
	case FormatGeoJSON, FormatGPX, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatGPX:
		return "application/gpx+xml"
	case FormatGeoJSON:
		return "application/geo+json"
	}
	return "application/json"
}

// Filename returns the download name for f.
func (f Format) Filename() string {
	return "workouts." + string(f)
}

// Write encodes workouts to w in format f.
func Write(w io.Writer, f Format, workouts []*models.Workout) error {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatGeoJSON:
		data, err = geojson.FromWorkouts(workouts).ToJSONIndent()
	case FormatGPX:
		data, err = GPX(workouts)
	case FormatJSON:
		data, err = storage.EncodeWorkouts(workouts)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
	if err != nil {
		return fmt.Errorf("encoding %s export: %w", f, err)
	}
	_, err = w.Write(data)
	return err
}

// GPX returns a GPX 1.1 document with one waypoint per workout.
func GPX(workouts []*models.Workout) ([]byte, error) {
	doc := &gpx.GPX{
		Version: "1.1",
		Creator: Creator,
		Name:    "Workouts",
	}
	for _, w := range workouts {
		doc.Waypoints = append(doc.Waypoints, gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  w.Coords.Lat,
				Longitude: w.Coords.Lng,
			},
			Timestamp:   w.CreatedAt.UTC(),
			Name:        w.Description,
			Description: summary(w),
			Type:        string(w.Kind),
		})
	}
	return doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
}

func summary(w *models.Workout) string {
	s := fmt.Sprintf("%g km in %g min", w.Distance, w.Duration)
	switch {
	case w.Running != nil:
		s += fmt.Sprintf(", %.1f min/km, %g spm", w.Running.Pace, w.Running.Cadence)
	case w.Cycling != nil:
		s += fmt.Sprintf(", %.1f km/h, %g m", w.Cycling.Speed, w.Cycling.ElevationGain)
	}
	return s
}
