package icon

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/joeblew999/storemap/internal/filter"
)

// DefaultCacheSize bounds the number of icon pairs kept by a Factory.
const DefaultCacheSize = 512

// DefaultAssetBase is the URL prefix the illustrated assets are served under.
const DefaultAssetBase = "/static/markers"

// Factory builds icon pairs and returns the same pair for the same parameters.
type Factory struct {
	mu        sync.Mutex
	cache     *lru.Cache[string, *Pair]
	assetBase string
	metrics   *Metrics
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithAssetBase changes the URL prefix of the illustrated assets.
func WithAssetBase(base string) FactoryOption {
	return func(f *Factory) { f.assetBase = base }
}

// WithMetrics reports cache hits and misses.
func WithMetrics(m *Metrics) FactoryOption {
	return func(f *Factory) { f.metrics = m }
}

// NewFactory creates a Factory holding at most size pairs.
func NewFactory(size int, opts ...FactoryOption) *Factory {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, _ := lru.New[string, *Pair](size)
	f := &Factory{cache: c, assetBase: DefaultAssetBase}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateIconPair returns the cage and cage-free icons for p. Identical
// parameters yield the identical *Pair while it stays cached.
func (f *Factory) CreateIconPair(p Params) (*Pair, error) {
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("%w: style=%q outline=%q", err, p.Style, p.Outline)
	}
	height := min(max(p.Size, filter.MinMarkerSize), filter.MaxMarkerSize)
	width := WidthFor(height)
	key := cacheKey(p, width, height)

	f.mu.Lock()
	defer f.mu.Unlock()

	if pair, ok := f.cache.Get(key); ok {
		f.metrics.hit()
		return pair, nil
	}
	f.metrics.miss()

	var pair *Pair
	if p.Style.Illustrated() {
		pair = &Pair{
			Cage: f.illustrated(p.Style, Cage, width, height),
			Free: f.illustrated(p.Style, Free, width, height),
		}
	} else {
		pair = &Pair{
			Cage: circle(p, Cage, width, height),
			Free: circle(p, Free, width, height),
		}
	}
	f.cache.Add(key, pair)
	return pair, nil
}

// Len returns the number of cached pairs.
func (f *Factory) Len() int { return f.cache.Len() }

// Purge drops every cached pair.
func (f *Factory) Purge() {
	f.mu.Lock()
	f.cache.Purge()
	f.mu.Unlock()
}

func (f *Factory) illustrated(style filter.MarkerStyle, o Outcome, width, height int) *Icon {
	return &Icon{
		Kind:        KindImage,
		Outcome:     o,
		URL:         f.assetBase + "/" + AssetPath(style, o),
		Width:       width,
		Height:      height,
		Anchor:      Point{X: width / 2, Y: height},
		PopupAnchor: Point{X: 0, Y: -height},
	}
}

// cacheKey renders the full parameter tuple canonically. The palette is
// folded into a hash to keep keys short.
func cacheKey(p Params, width, height int) string {
	return fmt.Sprintf("%s|%s|%d|%dx%d|%s|%016x",
		p.Style, p.Outline, p.Size, width, height,
		strconv.FormatFloat(p.StrokeWidth, 'g', -1, 64),
		xxhash.Sum64String(p.Palette.canonical()),
	)
}
