package icon

import (
	"embed"
	"encoding/base64"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joeblew999/storemap/internal/filter"
)

//go:embed assets
var assets embed.FS

// Assets returns the illustrated marker images, laid out as <variant>/<outcome>.svg.
func Assets() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// AssetPath returns the asset location of an illustrated style and outcome.
func AssetPath(style filter.MarkerStyle, o Outcome) string {
	variant := "default"
	switch style {
	case filter.StyleIllustratedNoBorder:
		variant = "no-border"
	case filter.StyleIllustratedInverted:
		variant = "inverted"
	}
	return variant + "/" + string(o) + ".svg"
}

// ReadAsset returns the bytes of an illustrated asset.
func ReadAsset(style filter.MarkerStyle, o Outcome) ([]byte, error) {
	if !style.Illustrated() {
		return nil, fmt.Errorf("%w: %q has no image asset", ErrUnknownStyle, style)
	}
	return fs.ReadFile(Assets(), AssetPath(style, o))
}

// stroke returns the stroke color and width for an outline mode.
// Shadow draws a halo in the outcome shade; stroke draws a neutral ink line
// scaled by the stroke parameter.
func stroke(p Params, o Outcome) (string, float64) {
	switch p.Outline {
	case filter.OutlineShadow:
		return p.Palette.Shade(o), ShadowStrokeWidth
	case filter.OutlineStroke:
		return p.Palette.Ink, p.StrokeWidth * MaxStrokeWidth
	}
	return "", 0
}

func circle(p Params, o Outcome, width, height int) *Icon {
	size := min(width, height)
	color, sw := stroke(p, o)
	svg := circleSVG(size, p.Palette.Fill(o), color, sw)

	return &Icon{
		Kind:        KindSVG,
		Outcome:     o,
		SVG:         svg,
		URL:         "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)),
		Width:       size,
		Height:      size,
		Anchor:      Point{X: size / 2, Y: size},
		PopupAnchor: Point{X: 0, Y: -size},
	}
}

func circleSVG(size int, fill, strokeColor string, strokeWidth float64) string {
	half := float64(size) / 2
	r := max(half-strokeWidth/2, 1)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, size, size, size, size)
	fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%s" fill="%s"`, num(half), num(half), num(r), fill)
	if strokeColor != "" && strokeWidth > 0 {
		fmt.Fprintf(&b, ` stroke="%s" stroke-width="%s"`, strokeColor, num(strokeWidth))
	}
	b.WriteString(`/></svg>`)
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
