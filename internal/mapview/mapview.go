// Package mapview drives the map-rendering collaborator: it places workout
// markers, recenters the view and forwards clicks.
package mapview

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/claude/mapty/internal/models"
)

// ErrNotInitialized is returned by map operations before Initialize.
var ErrNotInitialized = errors.New("map is not initialized")

// PopupOptions mirror the options the page passes to the popup renderer.
type PopupOptions struct {
	MaxWidth     int    `json:"maxWidth"`
	MinWidth     int    `json:"minWidth"`
	AutoClose    bool   `json:"autoClose"`
	CloseOnClick bool   `json:"closeOnClick"`
	ClassName    string `json:"className"`
}

// Marker is a point on the map with a bound popup.
type Marker struct {
	ID        string             `json:"id"`
	At        models.Coordinates `json:"at"`
	Popup     PopupOptions       `json:"popup"`
	Content   string             `json:"content"`
	PopupOpen bool               `json:"popup_open"`
}

// ViewOptions control how the view moves to a new center.
type ViewOptions struct {
	Animate     bool          `json:"animate"`
	PanDuration time.Duration `json:"pan_duration"`
}

// Surface is the map-rendering collaborator.
type Surface interface {
	Create(center models.Coordinates, zoom int) error
	AddTileLayer(urlTemplate, attribution string)
	OnClick(fn func(models.Coordinates))
	AddMarker(m Marker)
	SetView(center models.Coordinates, zoom int, opts ViewOptions)
	Remove()
}

// Options configure the view.
type Options struct {
	Zoom        int
	TileURL     string
	Attribution string
	PanDuration time.Duration
	MaxWidth    int
	MinWidth    int
}

// DefaultOptions match the page's Leaflet setup.
func DefaultOptions() Options {
	return Options{
		Zoom:        13,
		TileURL:     "https://{s}.tile.openstreetmap.fr/hot/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		PanDuration: time.Second,
		MaxWidth:    250,
		MinWidth:    100,
	}
}

// MapView wraps a Surface.
type MapView struct {
	mu          sync.Mutex
	surface     Surface
	opts        Options
	initialized bool
}

// New returns an uninitialized view over surface.
func New(surface Surface, opts Options) *MapView {
	if opts.Zoom == 0 {
		opts.Zoom = DefaultOptions().Zoom
	}
	return &MapView{surface: surface, opts: opts}
}

// Initialize creates the map at center with the configured zoom, adds the
// tile layer and registers onClick for map clicks.
func (v *MapView) Initialize(center models.Coordinates, onClick func(models.Coordinates)) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.surface.Create(center, v.opts.Zoom); err != nil {
		return fmt.Errorf("creating map surface: %w", err)
	}
	v.surface.AddTileLayer(v.opts.TileURL, v.opts.Attribution)
	if onClick != nil {
		v.surface.OnClick(onClick)
	}
	v.initialized = true
	return nil
}

// Initialized reports whether Initialize has succeeded.
func (v *MapView) Initialized() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.initialized
}

// PlaceMarker adds a marker for w with its popup opened.
func (v *MapView) PlaceMarker(w *models.Workout) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return ErrNotInitialized
	}
	v.surface.AddMarker(Marker{
		ID: w.ID,
		At: w.Coords,
		Popup: PopupOptions{
			MaxWidth:     v.opts.MaxWidth,
			MinWidth:     v.opts.MinWidth,
			AutoClose:    false,
			CloseOnClick: false,
			ClassName:    string(w.Kind) + "-popup",
		},
		Content:   w.Kind.Emoji() + " " + w.Description,
		PopupOpen: true,
	})
	return nil
}

// PanTo recenters the view on c at the configured zoom.
func (v *MapView) PanTo(c models.Coordinates, animate bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return ErrNotInitialized
	}
	opts := ViewOptions{Animate: animate}
	if animate {
		opts.PanDuration = v.opts.PanDuration
	}
	v.surface.SetView(c, v.opts.Zoom, opts)
	return nil
}

// Teardown removes the map. The view can be initialized again afterwards.
func (v *MapView) Teardown() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.initialized {
		v.surface.Remove()
	}
	v.initialized = false
}
