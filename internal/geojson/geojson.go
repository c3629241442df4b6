// Package geojson builds GeoJSON FeatureCollections for workouts and markers.
package geojson

import (
	"encoding/json"
	"time"

	"github.com/claude/mapty/internal/models"
)

// FeatureCollection represents a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature represents a GeoJSON Feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry represents a GeoJSON Point geometry.
type Geometry struct {
	Type        string           `json:"type"`
	Coordinates PointCoordinates `json:"coordinates"`
}

// PointCoordinates represents [longitude, latitude] for a Point.
type PointCoordinates [2]float64

// NewCollection returns an empty FeatureCollection with a non-nil feature slice.
func NewCollection() *FeatureCollection {
	return &FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

// Point builds a Point feature. GeoJSON orders coordinates lng, lat.
func Point(c models.Coordinates, props map[string]any) Feature {
	if props == nil {
		props = map[string]any{}
	}
	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: PointCoordinates{c.Lng, c.Lat},
		},
		Properties: props,
	}
}

// FromWorkouts converts workouts to Point features carrying the list fields.
func FromWorkouts(workouts []*models.Workout) *FeatureCollection {
	fc := NewCollection()
	for _, w := range workouts {
		props := map[string]any{
			"id":          w.ID,
			"type":        string(w.Kind),
			"description": w.Description,
			"distance":    models.OrNil(w.Distance),
			"duration":    models.OrNil(w.Duration),
			"created_at":  w.CreatedAt.Format(time.RFC3339),
		}
		switch w.Kind {
		case models.KindRunning:
			props["cadence"] = models.OrNil(w.Running.Cadence)
			props["pace"] = models.OrNil(w.Running.Pace)
		case models.KindCycling:
			props["elevation_gain"] = models.OrNil(w.Cycling.ElevationGain)
			props["speed"] = models.OrNil(w.Cycling.Speed)
		}
		fc.Features = append(fc.Features, Point(w.Coords, props))
	}
	return fc
}

// ToJSON serializes a FeatureCollection to JSON.
func (fc *FeatureCollection) ToJSON() ([]byte, error) {
	return json.Marshal(fc)
}

// ToJSONIndent serializes a FeatureCollection to indented JSON.
func (fc *FeatureCollection) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(fc, "", "  ")
}
