// Package zoom turns the map zoom level into a marker scale factor so that
// markers keep a similar on-screen size while the user zooms.
package zoom

import (
	"math"
	"strconv"
)

// Config holds the tuning constants of the scaler.
type Config struct {
	ReferenceZoom float64 `json:"referenceZoom" doc:"Zoom level at which the scale is 1"`
	Rate          float64 `json:"rate" doc:"Exponent rate per zoom level at full sensitivity"`
	Min           float64 `json:"min" doc:"Lower scale bound"`
	Max           float64 `json:"max" doc:"Upper scale bound"`
}

// DefaultConfig returns the empirically tuned constants.
func DefaultConfig() Config {
	return Config{ReferenceZoom: 6, Rate: 0.2, Min: 0.3, Max: 2.5}
}

// Scale returns the marker multiplier for zoom z and sensitivity s in [0, 1].
// A sensitivity of zero turns the feature off and always yields exactly 1.
func (c Config) Scale(z, s float64) float64 {
	if math.IsNaN(s) || s <= 0 {
		return 1
	}
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 1
	}
	s = math.Min(s, 1)
	factor := math.Pow(2, (z-c.ReferenceZoom)*s*c.Rate)
	return math.Min(math.Max(factor, c.Min), c.Max)
}

// Scale applies DefaultConfig.
func Scale(z, s float64) float64 {
	return DefaultConfig().Scale(z, s)
}

// Transform renders the CSS transform applied to marker elements.
func Transform(scale float64) string {
	return "scale(" + strconv.FormatFloat(scale, 'f', 4, 64) + ")"
}

// TransformOrigin keeps the marker tip on its coordinate while scaling.
const TransformOrigin = "bottom center"
