package models

import (
	"encoding/json"
	"math"
	"testing"
)

// TestMarshalNonFiniteAsNull verifies a workout with a missing cadence and a
// zero distance still encodes, with the non-finite numbers as null.
func TestMarshalNonFiniteAsNull(t *testing.T) {
	run := NewRunning(Coordinates{Lat: 1, Lng: 2}, 0, 25, math.NaN())

	data, err := json.Marshal(run)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["id"] != run.ID || got["type"] != "running" {
		t.Errorf("envelope fields lost: %s", data)
	}
	if got["distance"] != 0.0 || got["duration"] != 25.0 {
		t.Errorf("distance/duration = %v/%v", got["distance"], got["duration"])
	}
	running, ok := got["running"].(map[string]any)
	if !ok {
		t.Fatalf("running payload missing: %s", data)
	}
	if running["cadence"] != nil || running["pace"] != nil {
		t.Errorf("non-finite values should be null: %s", data)
	}
	if _, dup := got["Distance"]; dup {
		t.Errorf("unexpected field: %s", data)
	}
}

func TestMarshalCyclingNegativeInfinity(t *testing.T) {
	ride := NewCycling(Coordinates{}, -10, 0, -5)

	data, err := json.Marshal([]*Workout{ride})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got []struct {
		Cycling struct {
			ElevationGain *float64 `json:"elevation_gain"`
			Speed         *float64 `json:"speed"`
		} `json:"cycling"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got[0].Cycling.Speed != nil {
		t.Errorf("speed = %v, want null", *got[0].Cycling.Speed)
	}
	if got[0].Cycling.ElevationGain == nil || *got[0].Cycling.ElevationGain != -5 {
		t.Errorf("elevation gain = %v, want -5", got[0].Cycling.ElevationGain)
	}
}
