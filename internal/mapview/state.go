package mapview

import (
	"errors"
	"sync"

	"github.com/claude/mapty/internal/geojson"
	"github.com/claude/mapty/internal/models"
)

// TileLayer is the base layer the page should load.
type TileLayer struct {
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// Snapshot is what the page needs to draw the map.
type Snapshot struct {
	Created bool                       `json:"created"`
	Center  models.Coordinates         `json:"center"`
	Zoom    int                        `json:"zoom"`
	View    ViewOptions                `json:"view"`
	Tiles   *TileLayer                 `json:"tiles,omitempty"`
	Markers *geojson.FeatureCollection `json:"markers"`
	// Version increases on every change so the page can skip redraws.
	Version uint64 `json:"version"`
}

// StateSurface keeps the map state in memory and lets the page mirror it.
// Clicks reported by the page are dispatched with Click.
type StateSurface struct {
	mu      sync.Mutex
	created bool
	center  models.Coordinates
	zoom    int
	view    ViewOptions
	tiles   *TileLayer
	markers []Marker
	onClick func(models.Coordinates)
	version uint64
}

var _ Surface = (*StateSurface)(nil)

// NewStateSurface returns a surface with no map created.
func NewStateSurface() *StateSurface {
	return &StateSurface{}
}

func (s *StateSurface) Create(center models.Coordinates, zoom int) error {
	if err := models.ValidateCoordinates(center.Lat, center.Lng); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.created = true
	s.center = center
	s.zoom = zoom
	s.view = ViewOptions{}
	s.tiles = nil
	s.markers = nil
	s.onClick = nil
	s.version++
	return nil
}

func (s *StateSurface) AddTileLayer(urlTemplate, attribution string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiles = &TileLayer{URL: urlTemplate, Attribution: attribution}
	s.version++
}

func (s *StateSurface) OnClick(fn func(models.Coordinates)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClick = fn
}

func (s *StateSurface) AddMarker(m Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = append(s.markers, m)
	s.version++
}

func (s *StateSurface) SetView(center models.Coordinates, zoom int, opts ViewOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = center
	s.zoom = zoom
	s.view = opts
	s.version++
}

func (s *StateSurface) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = false
	s.tiles = nil
	s.markers = nil
	s.onClick = nil
	s.version++
}

// Click dispatches a map click reported by the page. The handler runs
// outside the surface lock.
func (s *StateSurface) Click(c models.Coordinates) error {
	if err := models.ValidateCoordinates(c.Lat, c.Lng); err != nil {
		return err
	}

	s.mu.Lock()
	created, fn := s.created, s.onClick
	s.mu.Unlock()

	if !created {
		return ErrNotInitialized
	}
	if fn == nil {
		return errors.New("no click handler registered")
	}
	fn(c)
	return nil
}

// Markers returns a copy of the placed markers.
func (s *StateSurface) Markers() []Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Marker, len(s.markers))
	copy(out, s.markers)
	return out
}

// Snapshot returns the current map state with markers as GeoJSON points.
func (s *StateSurface) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	fc := geojson.NewCollection()
	for _, m := range s.markers {
		fc.Features = append(fc.Features, geojson.Point(m.At, map[string]any{
			"id":         m.ID,
			"content":    m.Content,
			"popup":      m.Popup,
			"popup_open": m.PopupOpen,
		}))
	}

	snap := Snapshot{
		Created: s.created,
		Center:  s.center,
		Zoom:    s.zoom,
		View:    s.view,
		Markers: fc,
		Version: s.version,
	}
	if s.tiles != nil {
		t := *s.tiles
		snap.Tiles = &t
	}
	return snap
}
