package importer

import (
	"errors"
	"fmt"
	"time"

	"github.com/claude/mapty/internal/models"
	"github.com/tkrajina/gpxgo/gpx"
)

// ErrNoTrack is returned for GPX files with fewer than two points.
var ErrNoTrack = errors.New("the GPX file does not contain valid GPS points")

// ErrNoTimestamps is returned when a track's points carry no usable time.
var ErrNoTimestamps = errors.New("the GPX track has no timestamps")

// TrackOptions fill in what a GPS track cannot tell.
type TrackOptions struct {
	Kind    models.Kind // defaults to cycling
	Cadence float64     // steps/min, required for running
}

// ParseTrack summarizes a GPX track as one workout: it is pinned at the
// first point, distance is the 2D path length, duration spans the first and
// last timestamp, and cycling elevation gain sums the climbs.
func ParseTrack(data []byte, opts TrackOptions) (*models.Workout, error) {
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing gpx: %w", err)
	}

	var (
		points   []gpx.GPXPoint
		meters   float64
		climb    float64
		start    time.Time
		end      time.Time
		previous *gpx.GPXPoint
	)

	process := func(p *gpx.GPXPoint) {
		if previous != nil {
			meters += previous.Distance2D(&p.Point)
			if previous.Elevation.NotNull() && p.Elevation.NotNull() {
				if d := p.Elevation.Value() - previous.Elevation.Value(); d > 0 {
					climb += d
				}
			}
		}
		if !p.Timestamp.IsZero() {
			if start.IsZero() {
				start = p.Timestamp
			}
			end = p.Timestamp
		}
		pCopy := *p
		previous = &pCopy
		points = append(points, pCopy)
	}

	for _, track := range g.Tracks {
		for _, segment := range track.Segments {
			for i := range segment.Points {
				process(&segment.Points[i])
			}
		}
	}
	if len(points) == 0 {
		for _, route := range g.Routes {
			for i := range route.Points {
				process(&route.Points[i])
			}
		}
	}

	if len(points) < 2 {
		return nil, ErrNoTrack
	}
	if start.IsZero() || !end.After(start) {
		return nil, ErrNoTimestamps
	}

	kind := opts.Kind
	if kind == "" {
		kind = models.KindCycling
	}
	metric := climb
	if kind == models.KindRunning {
		metric = opts.Cadence
	}

	at := models.Coordinates{Lat: points[0].Latitude, Lng: points[0].Longitude}
	w, err := models.New(kind, at, meters/1000, end.Sub(start).Minutes(), metric)
	if err != nil {
		return nil, err
	}
	w.CreatedAt = start
	return models.Rehydrate(*w)
}
