// Package app coordinates the workout list, the entry form, the map and
// persistence. Every operation is serialized behind one mutex.
package app

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"sync"

	"github.com/claude/mapty/internal/form"
	"github.com/claude/mapty/internal/geo"
	"github.com/claude/mapty/internal/mapview"
	"github.com/claude/mapty/internal/metrics"
	"github.com/claude/mapty/internal/models"
	"github.com/claude/mapty/internal/storage"
	"github.com/claude/mapty/internal/view"
)

var (
	// ErrGeolocationUnavailable is returned by Start when the position
	// request fails. The controller stays usable without a map.
	ErrGeolocationUnavailable = errors.New("could not get your position")
	// ErrNoPendingLocation is returned by Submit when no map click opened
	// the form.
	ErrNoPendingLocation = errors.New("no location selected on the map")
	// ErrWorkoutNotFound is returned for an unknown workout id.
	ErrWorkoutNotFound = errors.New("workout not found")
	// ErrInvalidLocation is returned by Record for out-of-range coordinates.
	ErrInvalidLocation = errors.New("invalid location")
)

// CorruptStateWarning is surfaced after the stored list had to be discarded.
const CorruptStateWarning = "Saved workouts could not be read and were discarded."

// Phase is the controller's interaction state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseFormOpen Phase = "form_open"
)

// State is what the page needs besides the map and the rows.
type State struct {
	Phase          Phase      `json:"phase"`
	Form           form.State `json:"form"`
	MapInitialized bool       `json:"map_initialized"`
	Started        bool       `json:"started"`
	Warning        string     `json:"warning,omitempty"`
	GeoError       string     `json:"geo_error,omitempty"`
	Count          int        `json:"count"`
}

// Controller owns the in-memory workout list.
type Controller struct {
	mu       sync.Mutex
	store    *storage.WorkoutStore
	mapView  *mapview.MapView
	form     *form.Controller
	metrics  *metrics.Manager
	log      *slog.Logger
	workouts []*models.Workout
	phase    Phase
	started  bool
	warning  string
	geoErr   string
}

// New returns an idle controller. Call Start before serving requests.
func New(store *storage.WorkoutStore, mapView *mapview.MapView, formCtl *form.Controller, m *metrics.Manager, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	if m == nil {
		m = metrics.NewTestManager()
	}
	return &Controller{
		store:    store,
		mapView:  mapView,
		form:     formCtl,
		metrics:  m,
		log:      log,
		workouts: []*models.Workout{},
		phase:    PhaseIdle,
	}
}

// Start replays the stored workouts and asks locator for the position once.
// On success the map is created around it and a marker is placed for every
// loaded workout. On failure the controller stays mapless, the list is
// still available, and the error wraps ErrGeolocationUnavailable. Start may
// be called again, e.g. after a page reload: the form is closed, the phase
// goes back to idle and the map is rebuilt.
func (c *Controller) Start(ctx context.Context, locator geo.Locator) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form.Hide()
	c.phase = PhaseIdle
	c.warning = ""

	workouts, err := c.store.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrCorruptPersistedState):
		c.metrics.CounterCorruptState.Inc()
		c.warning = CorruptStateWarning
	case err != nil:
		return err
	}
	c.workouts = workouts
	c.started = true
	c.metrics.GaugePersistedWorkouts.Set(float64(len(workouts)))
	c.log.Info("loaded workouts", "count", len(workouts))

	c.mapView.Teardown()
	c.geoErr = ""

	pos, err := locator.CurrentPosition(ctx)
	if err != nil {
		c.geoErr = ErrGeolocationUnavailable.Error()
		c.log.Warn("geolocation failed", "error", err)
		return fmt.Errorf("%w: %w", ErrGeolocationUnavailable, err)
	}

	if err := c.mapView.Initialize(pos, c.HandleMapClick); err != nil {
		c.geoErr = ErrGeolocationUnavailable.Error()
		return fmt.Errorf("%w: %w", ErrGeolocationUnavailable, err)
	}
	for _, w := range c.workouts {
		if err := c.mapView.PlaceMarker(w); err != nil {
			return fmt.Errorf("placing marker for %s: %w", w.ID, err)
		}
	}
	return nil
}

// HandleMapClick opens the form at the clicked location. A later click
// replaces the pending location.
func (c *Controller) HandleMapClick(at models.Coordinates) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form.ShowAt(at)
	c.phase = PhaseFormOpen
}

// ToggleType switches which variant field the form shows.
func (c *Controller) ToggleType(kind models.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.ToggleFieldForType(kind)
}

// Submit validates raw, and on success records the workout at the pending
// location, places its marker, renders its row and hides the form. An
// invalid submission returns *form.InvalidInputError and changes nothing
// besides keeping the typed values.
func (c *Controller) Submit(ctx context.Context, kind models.Kind, raw form.RawFields) (*models.Workout, template.HTML, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending, ok := c.form.Pending()
	if !ok {
		return nil, "", ErrNoPendingLocation
	}

	in, err := c.form.ExtractAndValidate(kind, raw)
	if err != nil {
		c.metrics.CounterInvalidSubmissions.Inc()
		return nil, "", err
	}

	w, row, err := c.commit(ctx, in.Build(pending))
	if err != nil {
		return nil, "", err
	}
	c.form.Hide()
	c.phase = PhaseIdle
	return w, row, nil
}

// Record validates and records a workout at the given location without
// going through the form. The marker is placed only if the map exists.
func (c *Controller) Record(ctx context.Context, at models.Coordinates, kind models.Kind, raw form.RawFields) (*models.Workout, template.HTML, error) {
	if err := models.ValidateCoordinates(at.Lat, at.Lng); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidLocation, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	in, err := form.Validate(kind, raw)
	if err != nil {
		c.metrics.CounterInvalidSubmissions.Inc()
		return nil, "", err
	}
	return c.commit(ctx, in.Build(at))
}

// commit persists the list with w appended, then updates memory. A failed
// save leaves the in-memory list unchanged.
func (c *Controller) commit(ctx context.Context, w *models.Workout) (*models.Workout, template.HTML, error) {
	next := make([]*models.Workout, len(c.workouts), len(c.workouts)+1)
	copy(next, c.workouts)
	next = append(next, w)

	if err := c.store.Save(ctx, next); err != nil {
		return nil, "", err
	}
	c.workouts = next
	c.metrics.CounterWorkoutsCreated.WithLabelValues(string(w.Kind)).Inc()
	c.metrics.GaugePersistedWorkouts.Set(float64(len(next)))

	if c.mapView.Initialized() {
		if err := c.mapView.PlaceMarker(w); err != nil {
			c.log.Warn("placing marker", "id", w.ID, "error", err)
		}
	}
	row, err := view.RenderRow(w)
	if err != nil {
		return nil, "", err
	}
	c.log.Info("workout recorded", "id", w.ID, "type", w.Kind, "distance", w.Distance, "duration", w.Duration)
	return w.Clone(), row, nil
}

// Import appends the workouts whose IDs are not in the list yet, keeping
// their creation time and click count. The list is saved once and the
// number of new workouts is returned.
func (c *Controller) Import(ctx context.Context, workouts []*models.Workout) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool, len(c.workouts)+len(workouts))
	for _, w := range c.workouts {
		seen[w.ID] = true
	}

	next := make([]*models.Workout, len(c.workouts), len(c.workouts)+len(workouts))
	copy(next, c.workouts)
	var added []*models.Workout
	for _, w := range workouts {
		if w == nil || seen[w.ID] {
			continue
		}
		seen[w.ID] = true
		w = w.Clone()
		next = append(next, w)
		added = append(added, w)
	}
	if len(added) == 0 {
		return 0, nil
	}

	if err := c.store.Save(ctx, next); err != nil {
		return 0, err
	}
	c.workouts = next
	c.metrics.GaugePersistedWorkouts.Set(float64(len(next)))

	for _, w := range added {
		c.metrics.CounterWorkoutsCreated.WithLabelValues(string(w.Kind)).Inc()
		if c.mapView.Initialized() {
			if err := c.mapView.PlaceMarker(w); err != nil {
				c.log.Warn("placing marker", "id", w.ID, "error", err)
			}
		}
	}
	c.log.Info("workouts imported", "count", len(added))
	return len(added), nil
}

// Focus pans the map to the workout and counts the interaction. The click
// count reaches storage only with the next full write.
func (c *Controller) Focus(id string) (*models.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := c.find(id)
	if w == nil {
		return nil, fmt.Errorf("%w: %s", ErrWorkoutNotFound, id)
	}
	if err := c.mapView.PanTo(w.Coords, true); err != nil {
		return nil, err
	}
	w.Click()
	return w.Clone(), nil
}

// Workouts returns copies of all workouts in insertion order.
func (c *Controller) Workouts() []*models.Workout {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*models.Workout, len(c.workouts))
	for i, w := range c.workouts {
		out[i] = w.Clone()
	}
	return out
}

// Get returns a copy of the workout with id.
func (c *Controller) Get(id string) (*models.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := c.find(id)
	if w == nil {
		return nil, fmt.Errorf("%w: %s", ErrWorkoutNotFound, id)
	}
	return w.Clone(), nil
}

// Rows renders the list, newest first.
func (c *Controller) Rows() (template.HTML, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return view.RenderRows(c.workouts)
}

// Snapshot returns the current controller state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Phase:          c.phase,
		Form:           c.form.State(),
		MapInitialized: c.mapView.Initialized(),
		Started:        c.started,
		Warning:        c.warning,
		GeoError:       c.geoErr,
		Count:          len(c.workouts),
	}
}

// Reset deletes every stored workout, hides the form and removes the map.
// The page must reload and call Start again.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	c.workouts = []*models.Workout{}
	c.form.Hide()
	c.mapView.Teardown()
	c.phase = PhaseIdle
	c.started = false
	c.warning = ""
	c.geoErr = ""

	c.metrics.CounterResets.Inc()
	c.metrics.GaugePersistedWorkouts.Set(0)
	c.log.Info("all workouts cleared")
	return nil
}

// Close stops background timers.
func (c *Controller) Close() {
	c.form.Close()
}

func (c *Controller) find(id string) *models.Workout {
	for _, w := range c.workouts {
		if w.ID == id {
			return w
		}
	}
	return nil
}
