package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/claude/mapty/internal/models"
)

// record is the persisted shape of one workout. The layout is flat like
// the page's localStorage entries. Those spelled the location "coordes",
// which is still read.
type record struct {
	Type        string      `json:"type"`
	ID          string      `json:"id"`
	Date        time.Time   `json:"date"`
	Clicks      int         `json:"clicks"`
	Coords      *[2]float64 `json:"coords,omitempty"` // lat, lng
	Coordes     *[2]float64 `json:"coordes,omitempty"`
	Distance    float64     `json:"distance"`
	Duration    float64     `json:"duration"`
	Description string      `json:"description"`

	Cadence       *float64 `json:"cadence,omitempty"`
	Pace          *float64 `json:"pace,omitempty"`
	ElevationGain *float64 `json:"elevationGain,omitempty"`
	Speed         *float64 `json:"speed,omitempty"`
}

// EncodeWorkouts serializes workouts as a JSON array in insertion order.
// Non-finite numbers are written as null.
func EncodeWorkouts(workouts []*models.Workout) ([]byte, error) {
	out := make([]record, 0, len(workouts))
	for _, w := range workouts {
		r := record{
			Type:        string(w.Kind),
			ID:          w.ID,
			Date:        w.CreatedAt,
			Clicks:      w.Clicks,
			Coords:      &[2]float64{w.Coords.Lat, w.Coords.Lng},
			Distance:    finiteOrZero(w.Distance),
			Duration:    finiteOrZero(w.Duration),
			Description: w.Description,
		}
		switch {
		case w.Running != nil:
			r.Cadence = finite(w.Running.Cadence)
			r.Pace = finite(w.Running.Pace)
		case w.Cycling != nil:
			r.ElevationGain = finite(w.Cycling.ElevationGain)
			r.Speed = finite(w.Cycling.Speed)
		}
		out = append(out, r)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encoding workouts: %w", err)
	}
	return data, nil
}

// DecodeWorkouts parses a persisted blob and rehydrates every record into a
// typed workout with its derived field recomputed. Any structural problem
// is reported as ErrCorruptPersistedState.
func DecodeWorkouts(data []byte) ([]*models.Workout, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPersistedState, err)
	}
	if records == nil {
		return nil, fmt.Errorf("%w: not a workout list", ErrCorruptPersistedState)
	}

	workouts := make([]*models.Workout, 0, len(records))
	for i, r := range records {
		coords := r.Coords
		if coords == nil {
			coords = r.Coordes
		}
		if coords == nil {
			return nil, fmt.Errorf("%w: record %d has no coordinates", ErrCorruptPersistedState, i)
		}
		stored := models.Workout{
			ID:          r.ID,
			Kind:        models.Kind(r.Type),
			CreatedAt:   r.Date,
			Coords:      models.Coordinates{Lat: coords[0], Lng: coords[1]},
			Distance:    r.Distance,
			Duration:    r.Duration,
			Description: r.Description,
			Clicks:      r.Clicks,
		}
		switch stored.Kind {
		case models.KindRunning:
			stored.Running = &models.Running{Cadence: orNaN(r.Cadence)}
		case models.KindCycling:
			stored.Cycling = &models.Cycling{ElevationGain: orNaN(r.ElevationGain)}
		}
		w, err := models.Rehydrate(stored)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrCorruptPersistedState, i, err)
		}
		workouts = append(workouts, w)
	}
	return workouts, nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func finiteOrZero(v float64) float64 {
	if p := finite(v); p != nil {
		return *p
	}
	return 0
}

// orNaN reads a missing variant input as NaN, like an undefined field in
// arithmetic.
func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
