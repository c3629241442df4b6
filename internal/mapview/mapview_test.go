package mapview

import (
	"errors"
	"testing"
	"time"

	"github.com/claude/mapty/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationsBeforeInitialize(t *testing.T) {
	v := New(NewStateSurface(), DefaultOptions())

	w := models.NewRunning(models.Coordinates{Lat: 1, Lng: 1}, 5, 25, 180)
	assert.ErrorIs(t, v.PlaceMarker(w), ErrNotInitialized)
	assert.ErrorIs(t, v.PanTo(models.Coordinates{}, true), ErrNotInitialized)
	assert.False(t, v.Initialized())
}

func TestInitializeCreatesMapWithTilesAndClickHandler(t *testing.T) {
	surface := NewStateSurface()
	v := New(surface, DefaultOptions())

	var clicked []models.Coordinates
	center := models.Coordinates{Lat: 38.72, Lng: -9.14}
	require.NoError(t, v.Initialize(center, func(c models.Coordinates) {
		clicked = append(clicked, c)
	}))
	require.True(t, v.Initialized())

	snap := surface.Snapshot()
	assert.True(t, snap.Created)
	assert.Equal(t, center, snap.Center)
	assert.Equal(t, 13, snap.Zoom)
	require.NotNil(t, snap.Tiles)
	assert.Contains(t, snap.Tiles.Attribution, "OpenStreetMap")

	require.NoError(t, surface.Click(models.Coordinates{Lat: 40.7, Lng: -74.0}))
	require.Len(t, clicked, 1)
	assert.Equal(t, 40.7, clicked[0].Lat)
}

func TestPlaceMarkerBindsOpenPopup(t *testing.T) {
	surface := NewStateSurface()
	v := New(surface, DefaultOptions())
	require.NoError(t, v.Initialize(models.Coordinates{}, nil))

	ride := models.NewCycling(models.Coordinates{Lat: 40.7, Lng: -74.0}, 10, 30, 100)
	require.NoError(t, v.PlaceMarker(ride))

	markers := surface.Markers()
	require.Len(t, markers, 1)
	m := markers[0]
	assert.Equal(t, ride.ID, m.ID)
	assert.Equal(t, ride.Coords, m.At)
	assert.True(t, m.PopupOpen)
	assert.Equal(t, PopupOptions{MaxWidth: 250, MinWidth: 100, ClassName: "cycling-popup"}, m.Popup)
	assert.Equal(t, "🚴‍♀️ "+ride.Description, m.Content)

	snap := surface.Snapshot()
	require.Len(t, snap.Markers.Features, 1)
	assert.Equal(t, ride.ID, snap.Markers.Features[0].Properties["id"])
}

func TestPanToUsesConfiguredZoomAndDuration(t *testing.T) {
	surface := NewStateSurface()
	opts := DefaultOptions()
	opts.Zoom = 15
	v := New(surface, opts)
	require.NoError(t, v.Initialize(models.Coordinates{}, nil))

	target := models.Coordinates{Lat: 51.5, Lng: -0.12}
	require.NoError(t, v.PanTo(target, true))

	snap := surface.Snapshot()
	assert.Equal(t, target, snap.Center)
	assert.Equal(t, 15, snap.Zoom)
	assert.Equal(t, ViewOptions{Animate: true, PanDuration: time.Second}, snap.View)
}

func TestTeardownClearsSurface(t *testing.T) {
	surface := NewStateSurface()
	v := New(surface, DefaultOptions())
	require.NoError(t, v.Initialize(models.Coordinates{}, func(models.Coordinates) {}))
	require.NoError(t, v.PlaceMarker(models.NewRunning(models.Coordinates{}, 1, 1, 1)))

	v.Teardown()

	assert.False(t, v.Initialized())
	assert.Empty(t, surface.Markers())
	assert.False(t, surface.Snapshot().Created)
	assert.True(t, errors.Is(surface.Click(models.Coordinates{}), ErrNotInitialized))
}

func TestCreateRejectsInvalidCenter(t *testing.T) {
	v := New(NewStateSurface(), DefaultOptions())
	assert.Error(t, v.Initialize(models.Coordinates{Lat: 200}, nil))
	assert.False(t, v.Initialized())
}

func TestSnapshotVersionAdvances(t *testing.T) {
	surface := NewStateSurface()
	before := surface.Snapshot().Version
	require.NoError(t, surface.Create(models.Coordinates{}, 13))
	assert.Greater(t, surface.Snapshot().Version, before)
}
