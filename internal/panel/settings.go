package panel

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/joeblew999/storemap/internal/filter"
	"github.com/joeblew999/storemap/internal/service"
)

// Control names a settings panel input. The names match the settings signals.
type Control string

const (
	ControlStyle       Control = "markerStyle"
	ControlSize        Control = "markerSize"
	ControlOpacity     Control = "markerOpacity"
	ControlOutline     Control = "outlineMode"
	ControlStrokeWidth Control = "strokeWidth"
	ControlZoomScale   Control = "zoomScale"
)

// Controls lists the inputs in display order.
var Controls = []Control{ControlStyle, ControlSize, ControlOpacity, ControlOutline, ControlStrokeWidth, ControlZoomScale}

// Choice is one option of a select input.
type Choice struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// SettingsView is what the settings panel displays.
type SettingsView struct {
	filter.Settings
	Styles     []Choice `json:"styles"`
	Outlines   []Choice `json:"outlines"`
	MinSize    int      `json:"minSize"`
	MaxSize    int      `json:"maxSize"`
	ShowStroke bool     `json:"showStroke"`
	Narrow     bool     `json:"narrow"`
	Collapsed  bool     `json:"collapsed"`
}

// StyleLabels and OutlineLabels name the select options.
var (
	StyleLabels = map[filter.MarkerStyle]string{
		filter.StyleCircle:              "Cercle",
		filter.StyleIllustrated:         "Illustré",
		filter.StyleIllustratedNoBorder: "Illustré sans bordure",
		filter.StyleIllustratedInverted: "Illustré inversé",
	}
	OutlineLabels = map[filter.OutlineMode]string{
		filter.OutlineNone:   "Aucun",
		filter.OutlineStroke: "Trait",
		filter.OutlineShadow: "Ombre",
	}
)

// SettingsPanel binds the styling inputs to a filter.State.
type SettingsPanel struct {
	state  *filter.State
	layout layout
}

// NewSettingsPanel creates a settings panel collapsing below breakpoint.
func NewSettingsPanel(state *filter.State, breakpoint int) *SettingsPanel {
	return &SettingsPanel{state: state, layout: layout{breakpoint: breakpoint}}
}

// Mount starts following viewport resizes.
func (p *SettingsPanel) Mount(bus *service.EventBus, vp service.Viewport) error {
	return p.layout.mount(bus, vp)
}

// Unmount stops following viewport resizes.
func (p *SettingsPanel) Unmount() { p.layout.unmount() }

// Mounted reports whether the resize listener is registered.
func (p *SettingsPanel) Mounted() bool { return p.layout.mounted() }

// Toggle expands or collapses the panel on narrow viewports.
func (p *SettingsPanel) Toggle() { p.layout.toggle() }

// Collapsed reports whether the panel is folded away.
func (p *SettingsPanel) Collapsed() bool { return p.layout.collapsed }

// Set forwards a raw input value to the matching setter. Numeric values
// outside their range are clamped by the state.
func (p *SettingsPanel) Set(c Control, value string) error {
	set, err := p.setter(c, value)
	if err != nil {
		return err
	}
	set()
	return nil
}

// SetAll forwards a submitted form. Every value is checked before any is
// applied, so a rejected form leaves the settings unchanged.
func (p *SettingsPanel) SetAll(form map[Control]string) error {
	for c := range form {
		if !slices.Contains(Controls, c) {
			return fmt.Errorf("%w: %q", ErrUnknownControl, c)
		}
	}
	setters := make([]func(), 0, len(form))
	for _, c := range Controls {
		value, ok := form[c]
		if !ok {
			continue
		}
		set, err := p.setter(c, value)
		if err != nil {
			return err
		}
		setters = append(setters, set)
	}
	for _, set := range setters {
		set()
	}
	return nil
}

func (p *SettingsPanel) setter(c Control, value string) (func(), error) {
	switch c {
	case ControlStyle:
		s, ok := filter.ParseMarkerStyle(value)
		if !ok {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidValue, c, value)
		}
		return func() { p.state.SetMarkerStyle(s) }, nil
	case ControlOutline:
		m, ok := filter.ParseOutlineMode(value)
		if !ok {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidValue, c, value)
		}
		return func() { p.state.SetOutlineMode(m) }, nil
	case ControlSize, ControlOpacity, ControlStrokeWidth, ControlZoomScale:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidValue, c, value)
		}
		return func() { p.setNumber(c, v) }, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownControl, c)
}

func (p *SettingsPanel) setNumber(c Control, v float64) {
	switch c {
	case ControlSize:
		// clamp before converting so huge inputs do not overflow
		v = min(max(v, filter.MinMarkerSize), filter.MaxMarkerSize)
		p.state.SetMarkerSize(int(math.Round(v)))
	case ControlOpacity:
		p.state.SetMarkerOpacity(v)
	case ControlStrokeWidth:
		p.state.SetStrokeWidth(v)
	case ControlZoomScale:
		p.state.SetZoomScale(v)
	}
}

// Apply forwards a whole settings form. Unknown enum values are left unchanged.
func (p *SettingsPanel) Apply(s filter.Settings) {
	p.state.SetMarkerStyle(s.Style)
	p.state.SetMarkerSize(s.Size)
	p.state.SetMarkerOpacity(s.Opacity)
	p.state.SetOutlineMode(s.Outline)
	p.state.SetStrokeWidth(s.StrokeWidth)
	p.state.SetZoomScale(s.ZoomScale)
}

// View returns the panel content.
func (p *SettingsPanel) View() SettingsView {
	s := p.state.Settings()
	v := SettingsView{
		Settings:   s,
		MinSize:    filter.MinMarkerSize,
		MaxSize:    filter.MaxMarkerSize,
		ShowStroke: s.Outline == filter.OutlineStroke,
		Narrow:     p.layout.narrow,
		Collapsed:  p.layout.collapsed,
	}
	for _, st := range filter.MarkerStyles {
		v.Styles = append(v.Styles, Choice{Value: string(st), Label: StyleLabels[st], Active: st == s.Style})
	}
	for _, m := range filter.OutlineModes {
		v.Outlines = append(v.Outlines, Choice{Value: string(m), Label: OutlineLabels[m], Active: m == s.Outline})
	}
	return v
}
