// Package form holds the server-side state of the workout entry form.
package form

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/claude/mapty/internal/models"
)

// Field names a form input.
type Field string

const (
	FieldType      Field = "type"
	FieldDistance  Field = "distance"
	FieldDuration  Field = "duration"
	FieldCadence   Field = "cadence"
	FieldElevation Field = "elevation"
)

// Layout values for the form's CSS display.
const (
	LayoutGrid = "grid"
	LayoutNone = "none"
)

// DefaultRestoreDelay is how long the form stays at display:none after Hide.
const DefaultRestoreDelay = time.Second

// WarningMessage is shown to the user for any rejected submission.
const WarningMessage = "Input has to be a positive number!"

// RawFields are the numeric inputs as typed by the user.
type RawFields struct {
	Distance  string `json:"distance"`
	Duration  string `json:"duration"`
	Cadence   string `json:"cadence"`
	Elevation string `json:"elevation"`
}

// Input is a validated submission.
type Input struct {
	Kind          models.Kind
	Distance      float64
	Duration      float64
	Cadence       float64
	ElevationGain float64
}

// Build creates the workout at c.
func (in Input) Build(c models.Coordinates) *models.Workout {
	if in.Kind == models.KindCycling {
		return models.NewCycling(c, in.Distance, in.Duration, in.ElevationGain)
	}
	return models.NewRunning(c, in.Distance, in.Duration, in.Cadence)
}

// State is a snapshot of the form as the page should render it.
type State struct {
	Visible          bool                `json:"visible"`
	Layout           string              `json:"layout"`
	Pending          *models.Coordinates `json:"pending,omitempty"`
	Type             models.Kind         `json:"type"`
	CadenceVisible   bool                `json:"cadence_visible"`
	ElevationVisible bool                `json:"elevation_visible"`
	Focus            Field               `json:"focus,omitempty"`
	Values           RawFields           `json:"values"`
}

// Controller is safe for concurrent use.
type Controller struct {
	mu           sync.Mutex
	state        State
	restoreDelay time.Duration
	restore      *time.Timer
}

// New returns a hidden form set up for running.
func New(restoreDelay time.Duration) *Controller {
	if restoreDelay < 0 {
		restoreDelay = 0
	}
	return &Controller{
		restoreDelay: restoreDelay,
		state: State{
			Layout:         LayoutGrid,
			Type:           models.KindRunning,
			CadenceVisible: true,
		},
	}
}

// ShowAt reveals the form and remembers c as the pending target.
func (f *Controller) ShowAt(c models.Coordinates) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopRestore()
	pending := c
	f.state.Pending = &pending
	f.state.Visible = true
	f.state.Layout = LayoutGrid
	f.state.Focus = FieldDistance
}

// Pending returns the location the next workout will be recorded at.
func (f *Controller) Pending() (models.Coordinates, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.Pending == nil {
		return models.Coordinates{}, false
	}
	return *f.state.Pending, true
}

// ToggleFieldForType shows cadence for running and elevation for cycling.
func (f *Controller) ToggleFieldForType(kind models.Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state.Type = kind
	f.state.CadenceVisible = kind != models.KindCycling
	f.state.ElevationVisible = kind == models.KindCycling
}

// ExtractAndValidate parses raw for kind. Distance, duration and, for
// running, cadence must be finite and strictly positive. Cycling elevation
// only has to be finite: downhill rides are allowed to log a negative gain.
// The raw values are kept so an invalid submission can be corrected.
func (f *Controller) ExtractAndValidate(kind models.Kind, raw RawFields) (Input, error) {
	f.mu.Lock()
	f.state.Values = raw
	f.mu.Unlock()

	return Validate(kind, raw)
}

type check struct {
	field    Field
	value    float64
	positive bool
}

// Validate is ExtractAndValidate without touching form state.
func Validate(kind models.Kind, raw RawFields) (Input, error) {
	in := Input{
		Kind:     kind,
		Distance: parseNumber(raw.Distance),
		Duration: parseNumber(raw.Duration),
	}

	required := []check{
		{FieldDistance, in.Distance, true},
		{FieldDuration, in.Duration, true},
	}

	switch kind {
	case models.KindRunning:
		in.Cadence = parseNumber(raw.Cadence)
		required = append(required, check{FieldCadence, in.Cadence, true})
	case models.KindCycling:
		in.ElevationGain = parseNumber(raw.Elevation)
		required = append(required, check{FieldElevation, in.ElevationGain, false})
	default:
		return Input{}, &InvalidInputError{Field: FieldType, Reason: "unknown workout type " + strconv.Quote(string(kind))}
	}

	for _, r := range required {
		if !isFinite(r.value) {
			return Input{}, &InvalidInputError{Field: r.field, Reason: "not a finite number"}
		}
	}
	for _, r := range required {
		if r.positive && r.value <= 0 {
			return Input{}, &InvalidInputError{Field: r.field, Reason: "must be positive"}
		}
	}
	return in, nil
}

// Hide clears the inputs and hides the form. The layout goes back to grid
// after the restore delay.
func (f *Controller) Hide() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state.Values = RawFields{}
	f.state.Visible = false
	f.state.Pending = nil
	f.state.Focus = ""
	f.state.Layout = LayoutNone

	f.stopRestore()
	var t *time.Timer
	t = time.AfterFunc(f.restoreDelay, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.restore != t {
			return
		}
		f.state.Layout = LayoutGrid
		f.restore = nil
	})
	f.restore = t
}

// State returns a copy of the current form state.
func (f *Controller) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.state
	if s.Pending != nil {
		p := *s.Pending
		s.Pending = &p
	}
	return s
}

// Close stops a pending layout restore.
func (f *Controller) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopRestore()
}

func (f *Controller) stopRestore() {
	if f.restore != nil {
		f.restore.Stop()
		f.restore = nil
	}
}

// parseNumber mirrors unary plus on a form value: blank is 0 and anything
// unparseable is NaN.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
