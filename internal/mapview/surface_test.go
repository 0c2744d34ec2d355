package mapview

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/storemap/internal/catalog"
	"github.com/joeblew999/storemap/internal/filter"
	"github.com/joeblew999/storemap/internal/icon"
	"github.com/joeblew999/storemap/internal/service"
	"github.com/joeblew999/storemap/internal/zoom"
)

func newSurface(t *testing.T) (*Surface, *filter.State, *icon.Factory) {
	t.Helper()
	c, _, err := catalog.Default()
	require.NoError(t, err)
	state := filter.New(c)
	f := icon.NewFactory(0)
	return New(DefaultConfig(), state, f), state, f
}

func TestMount_InitialZoomByViewport(t *testing.T) {
	wide, _, _ := newSurface(t)
	require.NoError(t, wide.Mount(service.NewEventBus(), service.Viewport{Width: 1280, Height: 800}))
	assert.Equal(t, 6.0, wide.Zoom())
	assert.Equal(t, orb.Point{2.4, 46.6}, wide.Center())
	assert.Equal(t, Active, wide.Phase())

	narrow, _, _ := newSurface(t)
	require.NoError(t, narrow.Mount(service.NewEventBus(), service.Viewport{Width: 390, Height: 844}))
	assert.Equal(t, 5.0, narrow.Zoom())
}

func TestMount_Once(t *testing.T) {
	s, _, _ := newSurface(t)
	bus := service.NewEventBus()
	require.NoError(t, s.Mount(bus, service.Viewport{}))
	assert.ErrorIs(t, s.Mount(bus, service.Viewport{}), ErrAlreadyMounted)
	assert.Equal(t, 2, bus.Len())

	s.Unmount()
	assert.ErrorIs(t, s.Mount(bus, service.Viewport{}), ErrUnmounted)
	assert.Zero(t, bus.Len())
}

func TestEvents_TrackZoomAndMove(t *testing.T) {
	s, state, _ := newSurface(t)
	bus := service.NewEventBus()
	require.NoError(t, s.Mount(bus, service.Viewport{Width: 1024}))

	bus.Publish(service.Event{Kind: service.ZoomEnd, Zoom: 9})
	assert.Equal(t, 9.0, s.Zoom())
	assert.InDelta(t, zoom.Scale(9, state.Settings().ZoomScale), s.Scale(), 1e-12)

	// repeated events leave the same state
	bus.Publish(service.Event{Kind: service.ZoomEnd, Zoom: 9})
	assert.Equal(t, 9.0, s.Zoom())

	bus.Publish(service.Event{Kind: service.MoveEnd, Center: orb.Point{4.85, 45.76}, Zoom: 11})
	assert.Equal(t, orb.Point{4.85, 45.76}, s.Center())
	assert.Equal(t, 11.0, s.Zoom())

	bus.Publish(service.Event{Kind: service.MoveEnd, Center: orb.Point{500, 45}, Zoom: math.NaN()})
	assert.Equal(t, orb.Point{4.85, 45.76}, s.Center())
	assert.Equal(t, 11.0, s.Zoom())

	bus.Publish(service.Event{Kind: service.ZoomEnd, Zoom: 30})
	assert.Equal(t, 18.0, s.Zoom())
}

func TestEvents_IgnoredUnlessActive(t *testing.T) {
	s, _, _ := newSurface(t)
	s.OnZoomEnd(12)
	assert.Equal(t, 6.0, s.Zoom())

	bus := service.NewEventBus()
	require.NoError(t, s.Mount(bus, service.Viewport{}))
	s.Unmount()
	bus.Publish(service.Event{Kind: service.ZoomEnd, Zoom: 12})
	s.OnZoomEnd(12)
	assert.Equal(t, 6.0, s.Zoom())
}

func TestScale_FollowsSensitivity(t *testing.T) {
	s, state, _ := newSurface(t)
	require.NoError(t, s.Mount(service.NewEventBus(), service.Viewport{}))
	s.OnZoomEnd(14)

	state.SetZoomScale(0)
	assert.Equal(t, 1.0, s.Scale())
	assert.Equal(t, "scale(1.0000)", s.View().Transform)

	state.SetZoomScale(1)
	assert.Equal(t, 2.5, s.Scale())
}

func TestMarkers(t *testing.T) {
	s, state, f := newSurface(t)
	_, err := s.Markers()
	assert.ErrorIs(t, err, ErrNotActive)

	require.NoError(t, s.Mount(service.NewEventBus(), service.Viewport{}))
	markers, err := s.Markers()
	require.NoError(t, err)
	require.Len(t, markers, state.Catalog().Len())
	assert.Equal(t, 1, f.Len())

	for i, m := range markers {
		st := state.Catalog().Stores()[i]
		assert.Equal(t, st.ID, m.StoreID)
		assert.Equal(t, LatLng{Lat: st.Lat, Lng: st.Lng}, m.Position)
		assert.Equal(t, icon.OutcomeOf(st.HasCageEggs), m.Icon.Outcome)
		assert.Equal(t, 1.0, m.Opacity)
	}

	// a zoom change rescales without building new icons
	again, err := s.Markers()
	require.NoError(t, err)
	s.OnZoomEnd(12)
	zoomed, err := s.Markers()
	require.NoError(t, err)
	assert.Same(t, again[0].Icon, zoomed[0].Icon)
	assert.NotEqual(t, again[0].Transform, zoomed[0].Transform)
	assert.Equal(t, 1, f.Len())

	state.ToggleEnseigne("auchan")
	state.ToggleCageFilter(filter.OnlyNoCage)
	markers, err = s.Markers()
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, icon.Free, markers[0].Icon.Outcome)

	s.Unmount()
	assert.Zero(t, f.Len())
}

func TestPopup(t *testing.T) {
	s, _, _ := newSurface(t)
	pal := icon.DefaultPalette()
	labels := DefaultLabels()

	caged := s.Popup(catalog.Store{Name: "A", Address: "1 rue", HasCageEggs: true, ReferenceCount: 3, PhotoURL: "https://example.org/a.jpg"})
	assert.Equal(t, icon.Cage, caged.Outcome)
	assert.Equal(t, pal.CageFill, caged.Color)
	assert.Equal(t, labels.Cage, caged.Label)
	assert.Equal(t, 3, caged.ReferenceCount)
	assert.Equal(t, labels.References, caged.ReferenceLabel)
	assert.Equal(t, labels.Photo, caged.PhotoLabel)

	free := s.Popup(catalog.Store{Name: "B", Address: "2 rue"})
	assert.Equal(t, pal.FreeFill, free.Color)
	assert.Equal(t, labels.Free, free.Label)
	assert.Zero(t, free.ReferenceCount)
	assert.Empty(t, free.ReferenceLabel)
	assert.Empty(t, free.PhotoURL)
	assert.Empty(t, free.PhotoLabel)

	_, ok := s.PopupFor("nope")
	assert.False(t, ok)
}

func TestPopup_CustomPalette(t *testing.T) {
	c, _, err := catalog.Default()
	require.NoError(t, err)
	pal := icon.DefaultPalette()
	pal.CageFill = "#ff00ff"
	s := New(DefaultConfig(), filter.New(c), icon.NewFactory(0), WithPalette(pal))

	p := s.Popup(catalog.Store{HasCageEggs: true})
	assert.Equal(t, "#ff00ff", p.Color)
	assert.Equal(t, pal, s.Palette())
}
