package mcp

import (
	"time"

	"github.com/claude/mapty/internal/models"
)

// KindSummary aggregates one workout type.
type KindSummary struct {
	Count         int     `json:"count"`
	DistanceKM    float64 `json:"distance_km"`
	DurationMin   float64 `json:"duration_min"`
	AvgPace       float64 `json:"avg_pace_min_per_km,omitempty"`
	AvgSpeed      float64 `json:"avg_speed_kmh,omitempty"`
	AvgCadence    float64 `json:"avg_cadence_spm,omitempty"`
	ElevationGain float64 `json:"elevation_gain_m,omitempty"`
}

// Summary is the workout_summary tool result.
type Summary struct {
	Start   time.Time    `json:"start"`
	End     time.Time    `json:"end"`
	Total   int          `json:"total"`
	Running *KindSummary `json:"running,omitempty"`
	Cycling *KindSummary `json:"cycling,omitempty"`
}

// Summarize totals workouts per type. Average pace and speed are computed
// from the summed distance and duration, not averaged per workout.
func Summarize(workouts []*models.Workout, start, end time.Time) Summary {
	s := Summary{Start: start, End: end, Total: len(workouts)}
	var cadenceSum float64
	var cadenceN int

	for _, w := range workouts {
		var k *KindSummary
		switch w.Kind {
		case models.KindRunning:
			if s.Running == nil {
				s.Running = &KindSummary{}
			}
			k = s.Running
			if w.Running != nil && models.IsFinite(w.Running.Cadence) {
				cadenceSum += w.Running.Cadence
				cadenceN++
			}
		case models.KindCycling:
			if s.Cycling == nil {
				s.Cycling = &KindSummary{}
			}
			k = s.Cycling
			if w.Cycling != nil && models.IsFinite(w.Cycling.ElevationGain) {
				k.ElevationGain += w.Cycling.ElevationGain
			}
		default:
			continue
		}
		k.Count++
		k.DistanceKM += w.Distance
		k.DurationMin += w.Duration
	}

	if r := s.Running; r != nil && r.DistanceKM > 0 {
		r.AvgPace = models.Pace(r.DistanceKM, r.DurationMin)
	}
	if r := s.Running; r != nil && cadenceN > 0 {
		r.AvgCadence = cadenceSum / float64(cadenceN)
	}
	if c := s.Cycling; c != nil && c.DurationMin > 0 {
		c.AvgSpeed = models.Speed(c.DistanceKM, c.DurationMin)
	}
	return s
}
