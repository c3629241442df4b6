package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind tags the workout variant.
type Kind string

const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
)

var (
	// ErrUnknownKind is returned for a tag other than running or cycling.
	ErrUnknownKind = errors.New("unknown workout type")
	// ErrVariantMismatch is returned when the variant payload does not match the tag.
	ErrVariantMismatch = errors.New("workout payload does not match its type")
)

// ParseKind parses a workout type as submitted by the form.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindRunning:
		return KindRunning, nil
	case KindCycling:
		return KindCycling, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Title returns the capitalized type name used in descriptions.
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Emoji returns the marker and list icon for the type.
func (k Kind) Emoji() string {
	if k == KindRunning {
		return "🏃‍♂️"
	}
	return "🚴‍♀️"
}

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ValidateCoordinates checks if latitude and longitude are within valid ranges.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return fmt.Errorf("coordinates cannot be NaN")
	}
	if math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return fmt.Errorf("coordinates cannot be infinite")
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

// Running holds the running-only inputs and the derived pace.
type Running struct {
	Cadence float64 `json:"cadence"` // steps/min
	Pace    float64 `json:"pace"`    // min/km
}

// Cycling holds the cycling-only inputs and the derived speed.
type Cycling struct {
	ElevationGain float64 `json:"elevation_gain"` // m, may be negative
	Speed         float64 `json:"speed"`          // km/h
}

// Workout is a single logged session. Exactly one of Running or Cycling is
// set, matching Kind.
type Workout struct {
	ID          string      `json:"id"`
	Kind        Kind        `json:"type"`
	CreatedAt   time.Time   `json:"created_at"`
	Coords      Coordinates `json:"coords"`
	Distance    float64     `json:"distance"` // km
	Duration    float64     `json:"duration"` // min
	Description string      `json:"description"`
	Clicks      int         `json:"clicks"`
	Running     *Running    `json:"running,omitempty"`
	Cycling     *Cycling    `json:"cycling,omitempty"`
}

// newID is swapped in tests that need stable IDs.
var newID = func() string {
	return uuid.Must(uuid.NewV7()).String()
}

// now is swapped in tests that need a fixed creation time.
var now = time.Now

// NewRunning creates a running workout with pace and description derived.
// Inputs are not validated; NaN flows through into Pace.
func NewRunning(c Coordinates, distance, duration, cadence float64) *Workout {
	w := &Workout{
		ID:        newID(),
		Kind:      KindRunning,
		CreatedAt: now(),
		Coords:    c,
		Distance:  distance,
		Duration:  duration,
		Running:   &Running{Cadence: cadence},
	}
	derive(w)
	return w
}

// NewCycling creates a cycling workout with speed and description derived.
func NewCycling(c Coordinates, distance, duration, elevationGain float64) *Workout {
	w := &Workout{
		ID:        newID(),
		Kind:      KindCycling,
		CreatedAt: now(),
		Coords:    c,
		Distance:  distance,
		Duration:  duration,
		Cycling:   &Cycling{ElevationGain: elevationGain},
	}
	derive(w)
	return w
}

// New dispatches on kind. metric is cadence for running and elevation gain
// for cycling.
func New(kind Kind, c Coordinates, distance, duration, metric float64) (*Workout, error) {
	switch kind {
	case KindRunning:
		return NewRunning(c, distance, duration, metric), nil
	case KindCycling:
		return NewCycling(c, distance, duration, metric), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Rehydrate re-tags stored workout data and runs it through the same
// derivation used at creation. Stored derived values are discarded.
func Rehydrate(stored Workout) (*Workout, error) {
	w := stored
	switch w.Kind {
	case KindRunning:
		if w.Running == nil || w.Cycling != nil {
			return nil, fmt.Errorf("%w: %s %s", ErrVariantMismatch, w.Kind, w.ID)
		}
		r := *w.Running
		w.Running = &r
	case KindCycling:
		if w.Cycling == nil || w.Running != nil {
			return nil, fmt.Errorf("%w: %s %s", ErrVariantMismatch, w.Kind, w.ID)
		}
		c := *w.Cycling
		w.Cycling = &c
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, w.Kind)
	}
	derive(&w)
	return &w, nil
}

// derive computes the variant's derived field and the description.
func derive(w *Workout) {
	switch w.Kind {
	case KindRunning:
		w.Running.Pace = Pace(w.Distance, w.Duration)
	case KindCycling:
		w.Cycling.Speed = Speed(w.Distance, w.Duration)
	}
	w.Description = Describe(w.Kind, w.CreatedAt)
}

// Pace returns minutes per km.
func Pace(distance, duration float64) float64 {
	return duration / distance
}

// Speed returns km per hour.
func Speed(distance, duration float64) float64 {
	return distance / (duration / 60)
}

// Describe returns e.g. "Running on April 15".
func Describe(kind Kind, t time.Time) string {
	return fmt.Sprintf("%s on %s %d", kind.Title(), t.Month(), t.Day())
}

// Click records one interaction with the workout's list row.
func (w *Workout) Click() {
	w.Clicks++
}

// Metric returns the variant input: cadence or elevation gain.
func (w *Workout) Metric() float64 {
	if w.Running != nil {
		return w.Running.Cadence
	}
	if w.Cycling != nil {
		return w.Cycling.ElevationGain
	}
	return 0
}

// Derived returns the variant's derived value: pace or speed.
func (w *Workout) Derived() float64 {
	if w.Running != nil {
		return w.Running.Pace
	}
	if w.Cycling != nil {
		return w.Cycling.Speed
	}
	return 0
}

// Clone returns a deep copy of w.
func (w *Workout) Clone() *Workout {
	c := *w
	if w.Running != nil {
		r := *w.Running
		c.Running = &r
	}
	if w.Cycling != nil {
		cy := *w.Cycling
		c.Cycling = &cy
	}
	return &c
}
