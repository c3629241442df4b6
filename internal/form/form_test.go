package form

import (
	"errors"
	"testing"
	"time"

	"github.com/claude/mapty/internal/models"
)

// TestShowAtFocusesDistance verifies ShowAt reveals the form, stores the
// pending location and focuses the distance input.
func TestShowAtFocusesDistance(t *testing.T) {
	f := New(DefaultRestoreDelay)
	if f.State().Visible {
		t.Fatal("new form should be hidden")
	}

	f.ShowAt(models.Coordinates{Lat: 40.7, Lng: -74.0})

	s := f.State()
	if !s.Visible {
		t.Error("form should be visible after ShowAt")
	}
	if s.Focus != FieldDistance {
		t.Errorf("focus = %q, want %q", s.Focus, FieldDistance)
	}
	pending, ok := f.Pending()
	if !ok || pending.Lat != 40.7 || pending.Lng != -74.0 {
		t.Errorf("pending = %+v, %v; want (40.7,-74.0)", pending, ok)
	}
}

// TestToggleFieldForType verifies cadence and elevation swap visibility.
func TestToggleFieldForType(t *testing.T) {
	f := New(0)
	s := f.State()
	if !s.CadenceVisible || s.ElevationVisible {
		t.Fatalf("default should show cadence only: %+v", s)
	}

	f.ToggleFieldForType(models.KindCycling)
	s = f.State()
	if s.CadenceVisible || !s.ElevationVisible {
		t.Errorf("cycling should show elevation only: %+v", s)
	}

	f.ToggleFieldForType(models.KindRunning)
	s = f.State()
	if !s.CadenceVisible || s.ElevationVisible {
		t.Errorf("running should show cadence only: %+v", s)
	}
}

// TestValidateRejectsNonPositiveDuration covers running {5, -3, 10}.
func TestValidateRejectsNonPositiveDuration(t *testing.T) {
	f := New(0)
	f.ShowAt(models.Coordinates{Lat: 1, Lng: 2})

	_, err := f.ExtractAndValidate(models.KindRunning, RawFields{Distance: "5", Duration: "-3", Cadence: "10"})
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want *InvalidInputError", err)
	}
	if invalid.Field != FieldDuration {
		t.Errorf("field = %q, want %q", invalid.Field, FieldDuration)
	}
	if invalid.Warning() != WarningMessage {
		t.Errorf("warning = %q", invalid.Warning())
	}
	if _, ok := f.Pending(); !ok {
		t.Error("invalid submission must not clear the pending location")
	}
	if got := f.State().Values.Duration; got != "-3" {
		t.Errorf("typed values should be kept, duration = %q", got)
	}
}

// TestValidateAcceptsNegativeElevation documents that cycling elevation may
// be negative while every other number must be positive.
func TestValidateAcceptsNegativeElevation(t *testing.T) {
	in, err := Validate(models.KindCycling, RawFields{Distance: "10", Duration: "30", Elevation: "-5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.ElevationGain != -5 || in.Distance != 10 || in.Duration != 30 {
		t.Errorf("input = %+v", in)
	}
}

func TestValidateTable(t *testing.T) {
	cases := []struct {
		name  string
		kind  models.Kind
		raw   RawFields
		field Field // empty means valid
	}{
		{"running ok", models.KindRunning, RawFields{Distance: "5", Duration: "25", Cadence: "180"}, ""},
		{"running zero cadence", models.KindRunning, RawFields{Distance: "5", Duration: "25", Cadence: "0"}, FieldCadence},
		{"running blank cadence", models.KindRunning, RawFields{Distance: "5", Duration: "25"}, FieldCadence},
		{"running junk distance", models.KindRunning, RawFields{Distance: "five", Duration: "25", Cadence: "180"}, FieldDistance},
		{"running infinite duration", models.KindRunning, RawFields{Distance: "5", Duration: "Inf", Cadence: "180"}, FieldDuration},
		{"cycling ok", models.KindCycling, RawFields{Distance: "20", Duration: "60", Elevation: "300"}, ""},
		{"cycling blank elevation", models.KindCycling, RawFields{Distance: "20", Duration: "60"}, ""},
		{"cycling junk elevation", models.KindCycling, RawFields{Distance: "20", Duration: "60", Elevation: "up"}, FieldElevation},
		{"cycling zero distance", models.KindCycling, RawFields{Distance: "0", Duration: "60", Elevation: "1"}, FieldDistance},
		{"cycling ignores cadence", models.KindCycling, RawFields{Distance: "20", Duration: "60", Cadence: "junk"}, ""},
		{"unknown type", models.Kind("rowing"), RawFields{Distance: "1", Duration: "1"}, FieldType},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Validate(c.kind, c.raw)
			if c.field == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var invalid *InvalidInputError
			if !errors.As(err, &invalid) {
				t.Fatalf("error = %v, want *InvalidInputError", err)
			}
			if invalid.Field != c.field {
				t.Errorf("field = %q, want %q", invalid.Field, c.field)
			}
		})
	}
}

// TestHideClearsAndRestoresLayout verifies Hide clears inputs, hides the
// form, and brings the grid layout back after the delay.
func TestHideClearsAndRestoresLayout(t *testing.T) {
	f := New(10 * time.Millisecond)
	defer f.Close()

	f.ShowAt(models.Coordinates{Lat: 1, Lng: 1})
	_, _ = f.ExtractAndValidate(models.KindRunning, RawFields{Distance: "5", Duration: "25", Cadence: "180"})
	f.Hide()

	s := f.State()
	if s.Visible {
		t.Error("form should be hidden")
	}
	if s.Values != (RawFields{}) {
		t.Errorf("values not cleared: %+v", s.Values)
	}
	if s.Layout != LayoutNone {
		t.Errorf("layout right after hide = %q, want %q", s.Layout, LayoutNone)
	}
	if _, ok := f.Pending(); ok {
		t.Error("pending location should be cleared")
	}

	deadline := time.Now().Add(2 * time.Second)
	for f.State().Layout != LayoutGrid {
		if time.Now().After(deadline) {
			t.Fatal("layout was never restored to grid")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestShowAtCancelsRestore verifies reopening the form right away keeps the
// grid layout and is not affected by the earlier timer.
func TestShowAtCancelsRestore(t *testing.T) {
	f := New(time.Hour)
	defer f.Close()

	f.Hide()
	f.ShowAt(models.Coordinates{})
	if got := f.State().Layout; got != LayoutGrid {
		t.Errorf("layout = %q, want %q", got, LayoutGrid)
	}
}

func TestInputBuild(t *testing.T) {
	c := models.Coordinates{Lat: 3, Lng: 4}
	w := Input{Kind: models.KindCycling, Distance: 10, Duration: 30, ElevationGain: -5}.Build(c)
	if w.Kind != models.KindCycling || w.Cycling.Speed != 20 || w.Coords != c {
		t.Errorf("built workout = %+v", w)
	}
}
