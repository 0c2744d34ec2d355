// Package icon builds and caches the marker images shown on the store map.
package icon

import (
	"errors"
	"math"

	"github.com/joeblew999/storemap/internal/filter"
)

// AspectWidth and AspectHeight are the proportions of the illustrated assets.
const (
	AspectWidth  = 22
	AspectHeight = 28
)

// ShadowStrokeWidth is the fixed stroke width of the shadow outline.
const ShadowStrokeWidth = 3.0

// MaxStrokeWidth is the stroke width reached when the stroke parameter is 1.
const MaxStrokeWidth = 4.0

var (
	ErrUnknownStyle   = errors.New("unknown marker style")
	ErrUnknownOutline = errors.New("unknown outline mode")
)

// Outcome is the survey result a marker represents.
type Outcome string

const (
	Cage Outcome = "cage"
	Free Outcome = "free"
)

// OutcomeOf maps a store's survey result to a marker outcome.
func OutcomeOf(hasCageEggs bool) Outcome {
	if hasCageEggs {
		return Cage
	}
	return Free
}

// Kind is the icon family.
type Kind string

const (
	KindImage Kind = "image"
	KindSVG   Kind = "svg"
)

// Point is a pixel offset relative to the icon's top-left corner.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Icon is a renderable marker image.
type Icon struct {
	Kind        Kind    `json:"kind"`
	Outcome     Outcome `json:"outcome"`
	URL         string  `json:"url,omitempty"`
	SVG         string  `json:"svg,omitempty"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Anchor      Point   `json:"anchor"`
	PopupAnchor Point   `json:"popupAnchor"`
}

// Pair holds the two marker variants built from one parameter set.
type Pair struct {
	Cage *Icon `json:"cage"`
	Free *Icon `json:"free"`
}

// For returns the icon matching a store's survey result.
func (p *Pair) For(hasCageEggs bool) *Icon {
	if hasCageEggs {
		return p.Cage
	}
	return p.Free
}

// Params selects the icons to build.
type Params struct {
	Style       filter.MarkerStyle
	Size        int
	Outline     filter.OutlineMode
	StrokeWidth float64
	Palette     Palette
}

// ParamsFrom extracts icon parameters from marker settings.
func ParamsFrom(s filter.Settings, p Palette) Params {
	return Params{
		Style:       s.Style,
		Size:        s.Size,
		Outline:     s.Outline,
		StrokeWidth: s.StrokeWidth,
		Palette:     p,
	}
}

// WidthFor derives the icon width from its height using the asset aspect ratio.
func WidthFor(height int) int {
	return int(math.Round(float64(height) * AspectWidth / AspectHeight))
}

func (p Params) validate() error {
	if !p.Style.Valid() {
		return ErrUnknownStyle
	}
	if !p.Outline.Valid() {
		return ErrUnknownOutline
	}
	return nil
}
