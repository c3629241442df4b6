package models

import (
	"encoding/json"
	"math"
)

// Number is a float64 that encodes NaN and ±Inf as null.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if !IsFinite(f) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// OrNil returns v, or nil when v is not finite. Used for map-typed payloads.
func OrNil(v float64) any {
	if !IsFinite(v) {
		return nil
	}
	return v
}

func (r Running) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Cadence Number `json:"cadence"`
		Pace    Number `json:"pace"`
	}{Number(r.Cadence), Number(r.Pace)})
}

func (c Cycling) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ElevationGain Number `json:"elevation_gain"`
		Speed         Number `json:"speed"`
	}{Number(c.ElevationGain), Number(c.Speed)})
}

type workoutJSON Workout

func (w Workout) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		workoutJSON
		Distance Number `json:"distance"`
		Duration Number `json:"duration"`
	}{workoutJSON(w), Number(w.Distance), Number(w.Duration)})
}
