// Package mapview holds the server side of an interactive map viewport:
// its lifecycle, the tracked view and the markers it renders.
package mapview

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/joeblew999/storemap/internal/filter"
	"github.com/joeblew999/storemap/internal/icon"
	"github.com/joeblew999/storemap/internal/service"
	"github.com/joeblew999/storemap/internal/zoom"
)

var (
	ErrAlreadyMounted = errors.New("map surface already mounted")
	ErrUnmounted      = errors.New("map surface unmounted")
	ErrNotActive      = errors.New("map surface not active")
)

// Phase is the lifecycle stage of a Surface.
type Phase int

const (
	Uninitialized Phase = iota
	Initializing
	Active
	Unmounted
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Active:
		return "active"
	case Unmounted:
		return "unmounted"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Config fixes the initial view and the tile layer.
type Config struct {
	Center      orb.Point   // lon/lat
	WideZoom    float64     // initial zoom on wide viewports
	NarrowZoom  float64     // initial zoom below Breakpoint
	Breakpoint  int         // viewport width separating narrow from wide
	MinZoom     float64
	MaxZoom     float64
	TileURL     string
	Attribution string
	Zoom        zoom.Config // marker scaling
}

// DefaultTileURL is the OpenStreetMap raster tile template.
const DefaultTileURL = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"

// DefaultConfig centers metropolitan France.
func DefaultConfig() Config {
	return Config{
		Center:      orb.Point{2.4, 46.6},
		WideZoom:    6,
		NarrowZoom:  5,
		Breakpoint:  768,
		MinZoom:     4,
		MaxZoom:     18,
		TileURL:     DefaultTileURL,
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		Zoom:        zoom.DefaultConfig(),
	}
}

// InitialZoom picks the default zoom for a viewport.
func (c Config) InitialZoom(vp service.Viewport) float64 {
	if vp.Narrow(c.Breakpoint) {
		return c.NarrowZoom
	}
	return c.WideZoom
}

// LatLng is a coordinate in the order the map engine expects.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func latLng(p orb.Point) LatLng { return LatLng{Lat: p.Lat(), Lng: p.Lon()} }

// View is the serialisable state of the viewport.
type View struct {
	Phase           string  `json:"phase"`
	Center          LatLng  `json:"center"`
	Zoom            float64 `json:"zoom"`
	MinZoom         float64 `json:"minZoom"`
	MaxZoom         float64 `json:"maxZoom"`
	Scale           float64 `json:"scale"`
	Transform       string  `json:"transform"`
	TransformOrigin string  `json:"transformOrigin"`
	TileURL         string  `json:"tileUrl"`
	Attribution     string  `json:"attribution"`
}

// Marker is one rendered store.
type Marker struct {
	StoreID   string     `json:"id"`
	Position  LatLng     `json:"position"`
	Icon      *icon.Icon `json:"icon"`
	Opacity   float64    `json:"opacity"`
	Transform string     `json:"transform"`
	Popup     Popup      `json:"popup"`
}

// Surface tracks one mounted map. It is not safe for concurrent use.
type Surface struct {
	cfg     Config
	state   *filter.State
	icons   *icon.Factory
	palette icon.Palette
	labels  Labels

	phase   Phase
	center  orb.Point
	zoom    float64
	release []func()
}

// Option customises a Surface.
type Option func(*Surface)

// WithPalette sets the colors shared by icons and popups.
func WithPalette(p icon.Palette) Option {
	return func(s *Surface) { s.palette = p }
}

// WithLabels sets the popup texts.
func WithLabels(l Labels) Option {
	return func(s *Surface) { s.labels = l }
}

// New creates an unmounted surface rendering state with icons from f.
func New(cfg Config, state *filter.State, f *icon.Factory, opts ...Option) *Surface {
	s := &Surface{
		cfg:     cfg,
		state:   state,
		icons:   f,
		palette: icon.DefaultPalette(),
		labels:  DefaultLabels(),
		center:  cfg.Center,
		zoom:    cfg.WideZoom,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phase returns the lifecycle stage.
func (s *Surface) Phase() Phase { return s.phase }

// Palette returns the colors used by markers and popups.
func (s *Surface) Palette() icon.Palette { return s.palette }

// Mount initialises the view for vp and starts tracking zoom and move
// events published on bus. A surface mounts once.
func (s *Surface) Mount(bus *service.EventBus, vp service.Viewport) error {
	switch s.phase {
	case Initializing, Active:
		return ErrAlreadyMounted
	case Unmounted:
		return ErrUnmounted
	}

	s.phase = Initializing
	s.center = s.cfg.Center
	s.zoom = s.clampZoom(s.cfg.InitialZoom(vp))

	s.release = append(s.release,
		bus.Subscribe(service.ZoomEnd, func(e service.Event) { s.OnZoomEnd(e.Zoom) }),
		bus.Subscribe(service.MoveEnd, func(e service.Event) { s.OnMoveEnd(e.Center, e.Zoom) }),
	)
	s.phase = Active
	return nil
}

// OnZoomEnd records the zoom reached by the map engine.
func (s *Surface) OnZoomEnd(z float64) {
	if s.phase != Active || !finite(z) {
		return
	}
	s.zoom = s.clampZoom(z)
}

// OnMoveEnd records the center and zoom after a pan. Invalid coordinates
// are ignored.
func (s *Surface) OnMoveEnd(center orb.Point, z float64) {
	if s.phase != Active {
		return
	}
	if finite(center.Lon()) && finite(center.Lat()) &&
		math.Abs(center.Lat()) <= 90 && math.Abs(center.Lon()) <= 180 {
		s.center = center
	}
	if finite(z) {
		s.zoom = s.clampZoom(z)
	}
}

// Zoom returns the tracked zoom level.
func (s *Surface) Zoom() float64 { return s.zoom }

// Center returns the tracked center.
func (s *Surface) Center() orb.Point { return s.center }

// Scale returns the marker multiplier for the current zoom and the
// configured zoom sensitivity.
func (s *Surface) Scale() float64 {
	return s.cfg.Zoom.Scale(s.zoom, s.state.Settings().ZoomScale)
}

// View returns the viewport state.
func (s *Surface) View() View {
	scale := s.Scale()
	return View{
		Phase:           s.phase.String(),
		Center:          latLng(s.center),
		Zoom:            s.zoom,
		MinZoom:         s.cfg.MinZoom,
		MaxZoom:         s.cfg.MaxZoom,
		Scale:           scale,
		Transform:       zoom.Transform(scale),
		TransformOrigin: zoom.TransformOrigin,
		TileURL:         s.cfg.TileURL,
		Attribution:     s.cfg.Attribution,
	}
}

// Markers renders one marker per filtered store, in catalog order.
func (s *Surface) Markers() ([]Marker, error) {
	if s.phase != Active {
		return nil, ErrNotActive
	}
	settings := s.state.Settings()
	pair, err := s.icons.CreateIconPair(icon.ParamsFrom(settings, s.palette))
	if err != nil {
		return nil, fmt.Errorf("marker icons: %w", err)
	}

	transform := zoom.Transform(s.Scale())
	stores := s.state.FilteredStores()
	out := make([]Marker, 0, len(stores))
	for _, st := range stores {
		out = append(out, Marker{
			StoreID:   st.ID,
			Position:  LatLng{Lat: st.Lat, Lng: st.Lng},
			Icon:      pair.For(st.HasCageEggs),
			Opacity:   settings.Opacity,
			Transform: transform,
			Popup:     s.Popup(st),
		})
	}
	return out, nil
}

// Unmount detaches the listeners and drops the icon cache. It is safe to
// call more than once.
func (s *Surface) Unmount() {
	for _, release := range s.release {
		release()
	}
	s.release = nil
	if s.phase != Unmounted {
		s.icons.Purge()
	}
	s.phase = Unmounted
}

func (s *Surface) clampZoom(z float64) float64 {
	return min(max(z, s.cfg.MinZoom), s.cfg.MaxZoom)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
