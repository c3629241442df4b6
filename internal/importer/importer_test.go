package importer

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/mapty/internal/models"
	"github.com/claude/mapty/internal/storage"
)

// fakeSink remembers IDs like the controller does.
type fakeSink struct {
	seen map[string]bool
	got  []*models.Workout
	err  error
}

func (s *fakeSink) Import(_ context.Context, workouts []*models.Workout) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	n := 0
	for _, w := range workouts {
		if s.seen[w.ID] {
			continue
		}
		s.seen[w.ID] = true
		s.got = append(s.got, w)
		n++
	}
	return n, nil
}

// sampleTrack is three points heading north, ten minutes apart, climbing
// 10 m then dropping 5 m.
const sampleTrack = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk>
    <name>Morning ride</name>
    <trkseg>
      <trkpt lat="38.7000" lon="-9.1400"><ele>10</ele><time>2025-05-04T07:00:00Z</time></trkpt>
      <trkpt lat="38.7100" lon="-9.1400"><ele>20</ele><time>2025-05-04T07:10:00Z</time></trkpt>
      <trkpt lat="38.7200" lon="-9.1400"><ele>15</ele><time>2025-05-04T07:20:00Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestParseTrackCycling(t *testing.T) {
	w, err := ParseTrack([]byte(sampleTrack), TrackOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w.Kind != models.KindCycling || w.Cycling == nil {
		t.Fatalf("kind = %q, want cycling", w.Kind)
	}
	if w.Coords.Lat != 38.70 || w.Coords.Lng != -9.14 {
		t.Errorf("coords = %+v, want first point", w.Coords)
	}
	// 0.02 degrees of latitude is about 2.22 km.
	if math.Abs(w.Distance-2.22) > 0.05 {
		t.Errorf("distance = %.3f km, want ~2.22", w.Distance)
	}
	if w.Duration != 20 {
		t.Errorf("duration = %v min, want 20", w.Duration)
	}
	if w.Cycling.ElevationGain != 10 {
		t.Errorf("elevation gain = %v, want 10", w.Cycling.ElevationGain)
	}
	if !w.CreatedAt.Equal(time.Date(2025, 5, 4, 7, 0, 0, 0, time.UTC)) {
		t.Errorf("created = %v, want track start", w.CreatedAt)
	}
	if w.Description != "Cycling on May 4" {
		t.Errorf("description = %q", w.Description)
	}
	if math.Abs(w.Cycling.Speed-w.Distance*3) > 1e-9 {
		t.Errorf("speed = %v, want distance*3", w.Cycling.Speed)
	}
}

func TestParseTrackRunningUsesCadence(t *testing.T) {
	w, err := ParseTrack([]byte(sampleTrack), TrackOptions{Kind: models.KindRunning, Cadence: 172})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Running == nil || w.Running.Cadence != 172 {
		t.Fatalf("running = %+v", w.Running)
	}
	if math.Abs(w.Running.Pace-20/w.Distance) > 1e-9 {
		t.Errorf("pace = %v", w.Running.Pace)
	}
}

func TestParseTrackErrors(t *testing.T) {
	onePoint := `<gpx version="1.1" creator="t"><trk><trkseg>
<trkpt lat="1" lon="1"><time>2025-01-01T00:00:00Z</time></trkpt>
</trkseg></trk></gpx>`
	if _, err := ParseTrack([]byte(onePoint), TrackOptions{}); !errors.Is(err, ErrNoTrack) {
		t.Errorf("one point: error = %v, want ErrNoTrack", err)
	}

	untimed := `<gpx version="1.1" creator="t"><trk><trkseg>
<trkpt lat="1" lon="1"></trkpt><trkpt lat="1.01" lon="1"></trkpt>
</trkseg></trk></gpx>`
	if _, err := ParseTrack([]byte(untimed), TrackOptions{}); !errors.Is(err, ErrNoTimestamps) {
		t.Errorf("untimed: error = %v, want ErrNoTimestamps", err)
	}

	if _, err := ParseTrack([]byte("not xml"), TrackOptions{}); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	c := models.Coordinates{Lat: 1, Lng: 1}
	tests := []struct {
		name    string
		w       *models.Workout
		wantErr bool
	}{
		{"running ok", models.NewRunning(c, 5, 25, 180), false},
		{"running zero cadence", models.NewRunning(c, 5, 25, 0), true},
		{"cycling downhill", models.NewCycling(c, 10, 30, -40), false},
		{"cycling zero duration", models.NewCycling(c, 10, 0, 1), true},
		{"bad coords", models.NewRunning(models.Coordinates{Lat: 91}, 5, 25, 180), true},
		{"nan distance", models.NewRunning(c, math.NaN(), 25, 180), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.w)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestImportDirectory reads a backup and a track from one directory, skips
// other files and counts duplicates and rejects.
func TestImportDirectory(t *testing.T) {
	dir := t.TempDir()
	c := models.Coordinates{Lat: 40.7, Lng: -74}
	run := models.NewRunning(c, 5, 25, 180)
	bad := models.NewRunning(c, 5, 25, 0)

	backup, err := storage.EncodeWorkouts([]*models.Workout{run, run, bad})
	if err != nil {
		t.Fatal(err)
	}
	write := func(name string, data []byte) {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("a_backup.json", backup)
	write("b_ride.gpx", []byte(sampleTrack))
	write("c_notes.txt", []byte("ignored"))
	write("d_broken.json", []byte("{"))

	sink := &fakeSink{}
	stats, err := New(sink, nil, false, TrackOptions{}).Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.FilesProcessed != 2 || stats.FilesErrored != 1 {
		t.Errorf("files processed/errored = %d/%d, want 2/1", stats.FilesProcessed, stats.FilesErrored)
	}
	if stats.WorkoutsRead != 4 {
		t.Errorf("read = %d, want 4", stats.WorkoutsRead)
	}
	if stats.WorkoutsImported != 2 || stats.WorkoutsDuplicated != 1 || stats.WorkoutsRejected != 1 {
		t.Errorf("imported/duplicated/rejected = %d/%d/%d, want 2/1/1",
			stats.WorkoutsImported, stats.WorkoutsDuplicated, stats.WorkoutsRejected)
	}
	if len(sink.got) != 2 || sink.got[0].ID != run.ID || sink.got[1].Kind != models.KindCycling {
		t.Errorf("sink got %+v", sink.got)
	}
}

func TestImportDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ride.gpx")
	if err := os.WriteFile(path, []byte(sampleTrack), 0o644); err != nil {
		t.Fatal(err)
	}

	sink := &fakeSink{}
	stats, err := New(sink, nil, true, TrackOptions{}).Import(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if stats.WorkoutsImported != 1 {
		t.Errorf("imported = %d, want 1", stats.WorkoutsImported)
	}
	if len(sink.got) != 0 {
		t.Error("dry run must not write")
	}
}

func TestImportSinkError(t *testing.T) {
	sink := &fakeSink{err: errors.New("disk full")}
	imp := New(sink, nil, false, TrackOptions{})
	err := imp.Add(context.Background(), []*models.Workout{models.NewRunning(models.Coordinates{}, 1, 1, 1)})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestImportMissingPath(t *testing.T) {
	_, err := New(&fakeSink{}, nil, false, TrackOptions{}).Import(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Error("expected error for missing path")
	}
}

func TestParseUnsupported(t *testing.T) {
	if _, err := Parse("route.kml", nil, TrackOptions{}); err == nil {
		t.Error("expected error for .kml")
	}
}
