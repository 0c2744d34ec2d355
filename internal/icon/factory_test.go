package icon

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/storemap/internal/filter"
)

func params(style filter.MarkerStyle, outline filter.OutlineMode) Params {
	return Params{Style: style, Size: 28, Outline: outline, StrokeWidth: 0.5, Palette: DefaultPalette()}
}

func TestCreateIconPair_CachedIdentity(t *testing.T) {
	f := NewFactory(0)
	p := params(filter.StyleCircle, filter.OutlineStroke)

	a, err := f.CreateIconPair(p)
	require.NoError(t, err)
	b, err := f.CreateIconPair(p)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Same(t, a.Cage, b.Cage)
	assert.Equal(t, 1, f.Len())
}

func TestCreateIconPair_AnyDifferenceMisses(t *testing.T) {
	f := NewFactory(0)
	base := params(filter.StyleCircle, filter.OutlineStroke)
	first, err := f.CreateIconPair(base)
	require.NoError(t, err)

	variants := map[string]func(p *Params){
		"style":   func(p *Params) { p.Style = filter.StyleIllustrated },
		"size":    func(p *Params) { p.Size = 29 },
		"outline": func(p *Params) { p.Outline = filter.OutlineShadow },
		"stroke":  func(p *Params) { p.StrokeWidth = 0.51 },
		"palette": func(p *Params) { p.Palette.Ink = "#000000" },
		"clamped": func(p *Params) { p.Size = 5 },
	}
	for name, mutate := range variants {
		t.Run(name, func(t *testing.T) {
			p := base
			mutate(&p)
			got, err := f.CreateIconPair(p)
			require.NoError(t, err)
			assert.NotSame(t, first, got)
		})
	}
}

func TestCreateIconPair_UnknownStyle(t *testing.T) {
	f := NewFactory(0)

	_, err := f.CreateIconPair(params("hexagon", filter.OutlineNone))
	assert.True(t, errors.Is(err, ErrUnknownStyle))

	_, err = f.CreateIconPair(params(filter.StyleCircle, "glow"))
	assert.True(t, errors.Is(err, ErrUnknownOutline))
	assert.Zero(t, f.Len())
}

func TestIllustratedIcons(t *testing.T) {
	f := NewFactory(0)
	cases := map[filter.MarkerStyle]string{
		filter.StyleIllustrated:         "/static/markers/default/",
		filter.StyleIllustratedNoBorder: "/static/markers/no-border/",
		filter.StyleIllustratedInverted: "/static/markers/inverted/",
	}
	for style, prefix := range cases {
		pair, err := f.CreateIconPair(params(style, filter.OutlineNone))
		require.NoError(t, err)

		assert.Equal(t, KindImage, pair.Cage.Kind)
		assert.Equal(t, prefix+"cage.svg", pair.Cage.URL)
		assert.Equal(t, prefix+"free.svg", pair.Free.URL)
		assert.Equal(t, 28, pair.Cage.Height)
		assert.Equal(t, 22, pair.Cage.Width)
		assert.Equal(t, Point{X: 11, Y: 28}, pair.Cage.Anchor)
		assert.Equal(t, Point{X: 0, Y: -28}, pair.Cage.PopupAnchor)

		for _, o := range []Outcome{Cage, Free} {
			data, err := ReadAsset(style, o)
			require.NoError(t, err)
			assert.Contains(t, string(data), "<svg")
		}
	}

	_, err := ReadAsset(filter.StyleCircle, Cage)
	assert.ErrorIs(t, err, ErrUnknownStyle)
}

func TestCircleIcons_Outlines(t *testing.T) {
	f := NewFactory(0)
	pal := DefaultPalette()

	none, err := f.CreateIconPair(params(filter.StyleCircle, filter.OutlineNone))
	require.NoError(t, err)
	assert.NotContains(t, none.Cage.SVG, "stroke=")
	assert.Contains(t, none.Cage.SVG, pal.CageFill)
	assert.Contains(t, none.Free.SVG, pal.FreeFill)

	shadow, err := f.CreateIconPair(params(filter.StyleCircle, filter.OutlineShadow))
	require.NoError(t, err)
	assert.Contains(t, shadow.Cage.SVG, `stroke="`+pal.CageShade+`" stroke-width="3"`)
	assert.Contains(t, shadow.Free.SVG, `stroke="`+pal.FreeShade+`"`)

	stroked, err := f.CreateIconPair(params(filter.StyleCircle, filter.OutlineStroke))
	require.NoError(t, err)
	assert.Contains(t, stroked.Cage.SVG, `stroke="`+pal.Ink+`" stroke-width="2"`)
	assert.Contains(t, stroked.Free.SVG, `stroke="`+pal.Ink+`"`)

	// circles use the smaller side of the 22:28 box
	assert.Equal(t, 22, stroked.Cage.Width)
	assert.Equal(t, 22, stroked.Cage.Height)
	assert.Equal(t, Point{X: 11, Y: 22}, stroked.Cage.Anchor)
	assert.True(t, strings.HasPrefix(stroked.Cage.URL, "data:image/svg+xml;base64,"))
}

func TestStrokeWidthZeroDrawsNoStroke(t *testing.T) {
	f := NewFactory(0)
	p := params(filter.StyleCircle, filter.OutlineStroke)
	p.StrokeWidth = 0
	pair, err := f.CreateIconPair(p)
	require.NoError(t, err)
	assert.NotContains(t, pair.Cage.SVG, "stroke=")
}

func TestWidthFor(t *testing.T) {
	assert.Equal(t, 22, WidthFor(28))
	assert.Equal(t, 8, WidthFor(10))
	assert.Equal(t, 47, WidthFor(60))
}

func TestPurgeAndBound(t *testing.T) {
	f := NewFactory(2)
	for size := 20; size < 25; size++ {
		p := params(filter.StyleCircle, filter.OutlineNone)
		p.Size = size
		_, err := f.CreateIconPair(p)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.Len())

	f.Purge()
	assert.Zero(t, f.Len())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	f := NewFactory(0, WithMetrics(m), WithAssetBase("/assets"))

	p := params(filter.StyleIllustrated, filter.OutlineNone)
	pair, err := f.CreateIconPair(p)
	require.NoError(t, err)
	_, err = f.CreateIconPair(p)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("hit")))
	assert.Equal(t, "/assets/default/cage.svg", pair.Cage.URL)
}

func TestPairFor(t *testing.T) {
	pair := &Pair{Cage: &Icon{Outcome: Cage}, Free: &Icon{Outcome: Free}}
	assert.Same(t, pair.Cage, pair.For(true))
	assert.Same(t, pair.Free, pair.For(false))
	assert.Equal(t, Cage, OutcomeOf(true))
}
