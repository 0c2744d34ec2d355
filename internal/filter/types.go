// Package filter holds the map's filter and styling selections and derives
// the visible store list from them.
package filter

// CageFilter restricts stores by survey outcome.
type CageFilter string

const (
	All        CageFilter = "all"
	OnlyCage   CageFilter = "cage"
	OnlyNoCage CageFilter = "no-cage"
)

// Valid reports whether f is a known value.
func (f CageFilter) Valid() bool {
	switch f {
	case All, OnlyCage, OnlyNoCage:
		return true
	}
	return false
}

// ParseCageFilter returns the filter named v.
func ParseCageFilter(v string) (CageFilter, bool) {
	f := CageFilter(v)
	return f, f.Valid()
}

// Match reports whether a store with the given outcome passes the filter.
func (f CageFilter) Match(hasCageEggs bool) bool {
	switch f {
	case OnlyCage:
		return hasCageEggs
	case OnlyNoCage:
		return !hasCageEggs
	}
	return true
}

// MarkerStyle is the visual family of a map pin.
type MarkerStyle string

const (
	StyleCircle              MarkerStyle = "circle"
	StyleIllustrated         MarkerStyle = "illustrated"
	StyleIllustratedNoBorder MarkerStyle = "illustrated-no-border"
	StyleIllustratedInverted MarkerStyle = "illustrated-inverted"
)

// MarkerStyles lists every style in display order.
var MarkerStyles = []MarkerStyle{StyleCircle, StyleIllustrated, StyleIllustratedNoBorder, StyleIllustratedInverted}

// Valid reports whether s is a known style.
func (s MarkerStyle) Valid() bool {
	switch s {
	case StyleCircle, StyleIllustrated, StyleIllustratedNoBorder, StyleIllustratedInverted:
		return true
	}
	return false
}

// ParseMarkerStyle returns the style named v.
func ParseMarkerStyle(v string) (MarkerStyle, bool) {
	s := MarkerStyle(v)
	return s, s.Valid()
}

// Illustrated reports whether s uses the pre-made image assets.
func (s MarkerStyle) Illustrated() bool {
	return s == StyleIllustrated || s == StyleIllustratedNoBorder || s == StyleIllustratedInverted
}

// OutlineMode is how a marker boundary is drawn.
type OutlineMode string

const (
	OutlineNone   OutlineMode = "none"
	OutlineStroke OutlineMode = "stroke"
	OutlineShadow OutlineMode = "shadow"
)

// OutlineModes lists every outline mode in display order.
var OutlineModes = []OutlineMode{OutlineNone, OutlineStroke, OutlineShadow}

// Valid reports whether m is a known outline mode.
func (m OutlineMode) Valid() bool {
	switch m {
	case OutlineNone, OutlineStroke, OutlineShadow:
		return true
	}
	return false
}

// ParseOutlineMode returns the outline mode named v.
func ParseOutlineMode(v string) (OutlineMode, bool) {
	m := OutlineMode(v)
	return m, m.Valid()
}

// Marker size bounds, in pixels of height.
const (
	MinMarkerSize = 10
	MaxMarkerSize = 60
)

// Settings are the styling parameters of the markers.
type Settings struct {
	Style       MarkerStyle `json:"markerStyle" enum:"circle,illustrated,illustrated-no-border,illustrated-inverted" doc:"Marker style"`
	Size        int         `json:"markerSize" minimum:"10" maximum:"60" doc:"Marker height in pixels"`
	Opacity     float64     `json:"markerOpacity" minimum:"0" maximum:"1" doc:"Marker opacity"`
	Outline     OutlineMode `json:"outlineMode" enum:"none,stroke,shadow" doc:"Marker outline"`
	StrokeWidth float64     `json:"strokeWidth" minimum:"0" maximum:"1" doc:"Stroke width, used by the stroke outline"`
	ZoomScale   float64     `json:"zoomScale" minimum:"0" maximum:"1" doc:"Zoom-adaptive scaling sensitivity, 0 disables it"`
}

// DefaultSettings returns the settings a freshly mounted map starts with.
func DefaultSettings() Settings {
	return Settings{
		Style:       StyleIllustrated,
		Size:        32,
		Opacity:     1,
		Outline:     OutlineNone,
		StrokeWidth: 0.5,
		ZoomScale:   0.5,
	}
}

// Stats summarises the survey pool of the selected enseigne.
type Stats struct {
	Total    int `json:"total" doc:"Stores surveyed"`
	WithCage int `json:"withCage" doc:"Stores selling cage eggs"`
}

// WithoutCage returns the number of stores without cage eggs.
func (s Stats) WithoutCage() int { return s.Total - s.WithCage }

// Snapshot is a read-only copy of the selections.
type Snapshot struct {
	CageFilter       CageFilter `json:"cageFilter" enum:"all,cage,no-cage" doc:"Active cage filter"`
	SelectedEnseigne string     `json:"selectedEnseigne,omitempty" doc:"Selected enseigne id"`
	Settings
}
