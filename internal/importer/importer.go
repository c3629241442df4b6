// Package importer reads workout backups and GPS tracks into the workout list.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/claude/mapty/internal/form"
	"github.com/claude/mapty/internal/models"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int `json:"files_processed"`
	FilesSkipped   int `json:"files_skipped"`
	FilesErrored   int `json:"files_errored"`

	WorkoutsRead       int `json:"workouts_read"`
	WorkoutsImported   int `json:"workouts_imported"`
	WorkoutsDuplicated int `json:"workouts_duplicated"`
	WorkoutsRejected   int `json:"workouts_rejected"`

	Rejected []string `json:"rejected,omitempty"`
}

// Sink receives validated workouts. It returns how many were new.
type Sink interface {
	Import(ctx context.Context, workouts []*models.Workout) (int, error)
}

// Importer reads .json backups and .gpx tracks and hands them to a Sink.
type Importer struct {
	sink   Sink
	log    *slog.Logger
	dryRun bool
	track  TrackOptions
	stats  Stats
}

// New creates a new Importer. track applies to GPX files.
func New(sink Sink, log *slog.Logger, dryRun bool, track TrackOptions) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{sink: sink, log: log, dryRun: dryRun, track: track}
}

// Import processes every path. Directories are searched one level deep for
// .json and .gpx files, in name order.
func (imp *Importer) Import(ctx context.Context, paths ...string) (*Stats, error) {
	files, err := expand(paths)
	if err != nil {
		return &imp.stats, err
	}

	var batch []*models.Workout
	for _, f := range files {
		workouts, err := imp.readFile(f)
		if err != nil {
			imp.log.Warn("import failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		if len(workouts) == 0 {
			imp.stats.FilesSkipped++
			continue
		}
		imp.stats.FilesProcessed++
		batch = append(batch, workouts...)
	}

	if err := imp.Add(ctx, batch); err != nil {
		return &imp.stats, err
	}
	return &imp.stats, nil
}

// Add validates workouts and passes the valid ones to the sink.
func (imp *Importer) Add(ctx context.Context, workouts []*models.Workout) error {
	imp.stats.WorkoutsRead += len(workouts)

	valid := make([]*models.Workout, 0, len(workouts))
	for _, w := range workouts {
		if err := Validate(w); err != nil {
			imp.stats.WorkoutsRejected++
			imp.stats.Rejected = append(imp.stats.Rejected, fmt.Sprintf("%s: %v", w.ID, err))
			continue
		}
		valid = append(valid, w)
	}

	if imp.dryRun || len(valid) == 0 {
		imp.stats.WorkoutsImported += len(valid)
		return nil
	}

	added, err := imp.sink.Import(ctx, valid)
	if err != nil {
		return fmt.Errorf("importing workouts: %w", err)
	}
	imp.stats.WorkoutsImported += added
	imp.stats.WorkoutsDuplicated += len(valid) - added
	imp.log.Info("import complete", "imported", added, "duplicated", len(valid)-added, "rejected", imp.stats.WorkoutsRejected)
	return nil
}

// Stats returns the counts so far.
func (imp *Importer) Stats() Stats {
	return imp.stats
}

func (imp *Importer) readFile(path string) ([]*models.Workout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data, imp.track)
}

// Parse decodes data by the file extension of name.
func Parse(name string, data []byte, track TrackOptions) ([]*models.Workout, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return ParseBackup(data)
	case ".gpx":
		w, err := ParseTrack(data, track)
		if err != nil {
			return nil, err
		}
		return []*models.Workout{w}, nil
	}
	return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(name))
}

// Validate applies the form's rules to a workout that did not come
// through the form, plus a coordinate range check.
func Validate(w *models.Workout) error {
	if err := models.ValidateCoordinates(w.Coords.Lat, w.Coords.Lng); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	raw := form.RawFields{Distance: f(w.Distance), Duration: f(w.Duration)}
	switch w.Kind {
	case models.KindRunning:
		raw.Cadence = f(w.Metric())
	case models.KindCycling:
		raw.Elevation = f(w.Metric())
	}
	_, err := form.Validate(w.Kind, raw)
	return err
}

func expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		var found []string
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if !e.IsDir() && (ext == ".json" || ext == ".gpx") {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
