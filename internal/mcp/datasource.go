package mcp

import (
	"context"
	"strconv"
	"time"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/form"
	"github.com/claude/mapty/internal/models"
)

// LogRequest is a workout to record at a given location.
type LogRequest struct {
	Kind          models.Kind
	At            models.Coordinates
	Distance      float64
	Duration      float64
	Cadence       float64
	ElevationGain float64
}

// raw renders the numbers the way the form submits them.
func (r LogRequest) raw() form.RawFields {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return form.RawFields{
		Distance:  f(r.Distance),
		Duration:  f(r.Duration),
		Cadence:   f(r.Cadence),
		Elevation: f(r.ElevationGain),
	}
}

// DataSource abstracts the data layer for MCP tools. Both Local (in-process
// controller) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListWorkouts(ctx context.Context, start, end time.Time, kind models.Kind) ([]*models.Workout, error)
	GetWorkout(ctx context.Context, id string) (*models.Workout, error)
	LogWorkout(ctx context.Context, req LogRequest) (*models.Workout, error)
}

// Local serves MCP tools from an in-process controller.
type Local struct {
	app *app.Controller
}

// Compile-time check: *Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal wraps a started controller.
func NewLocal(a *app.Controller) *Local {
	return &Local{app: a}
}

func (l *Local) ListWorkouts(_ context.Context, start, end time.Time, kind models.Kind) ([]*models.Workout, error) {
	return filterWorkouts(l.app.Workouts(), start, end, kind), nil
}

func (l *Local) GetWorkout(_ context.Context, id string) (*models.Workout, error) {
	return l.app.Get(id)
}

func (l *Local) LogWorkout(ctx context.Context, req LogRequest) (*models.Workout, error) {
	w, _, err := l.app.Record(ctx, req.At, req.Kind, req.raw())
	return w, err
}

// filterWorkouts keeps workouts created within [start, end] of the given
// kind. An empty kind keeps both.
func filterWorkouts(workouts []*models.Workout, start, end time.Time, kind models.Kind) []*models.Workout {
	out := make([]*models.Workout, 0, len(workouts))
	for _, w := range workouts {
		if kind != "" && w.Kind != kind {
			continue
		}
		if w.CreatedAt.Before(start) || w.CreatedAt.After(end) {
			continue
		}
		out = append(out, w)
	}
	return out
}
