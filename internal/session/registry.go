// Package session keeps the live map instances of the service.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/joeblew999/storemap/internal/catalog"
	"github.com/joeblew999/storemap/internal/filter"
	"github.com/joeblew999/storemap/internal/icon"
	"github.com/joeblew999/storemap/internal/mapview"
	"github.com/joeblew999/storemap/internal/panel"
	"github.com/joeblew999/storemap/internal/service"
)

// Config sizes the registry and the instances it creates.
type Config struct {
	MaxInstances  int
	IconCacheSize int
	AssetBase     string
	Map           mapview.Config
	Palette       icon.Palette
}

// DefaultConfig returns the registry defaults.
func DefaultConfig() Config {
	return Config{
		MaxInstances:  1000,
		IconCacheSize: 64,
		AssetBase:     icon.DefaultAssetBase,
		Map:           mapview.DefaultConfig(),
		Palette:       icon.DefaultPalette(),
	}
}

// Options are the per-mount parameters sent by the page.
type Options struct {
	Style    filter.MarkerStyle // initial style, ignored when unknown
	Size     int                // initial marker height, 0 keeps the default
	Viewport service.Viewport
}

// Registry holds the live instances. When full, the least recently used
// instance is unmounted to make room.
type Registry struct {
	cfg         Config
	catalog     *catalog.Catalog
	cache       *lru.Cache[string, *Instance]
	metrics     *Metrics
	iconMetrics *icon.Metrics
	log         zerolog.Logger
	now         func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithMetrics records instance lifecycles.
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithIconMetrics records icon cache lookups of every instance.
func WithIconMetrics(m *icon.Metrics) Option {
	return func(r *Registry) { r.iconMetrics = m }
}

// WithLogger sets the registry logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// NewRegistry creates a registry serving maps over c.
func NewRegistry(c *catalog.Catalog, cfg Config, opts ...Option) (*Registry, error) {
	if cfg.MaxInstances <= 0 {
		cfg.MaxInstances = DefaultConfig().MaxInstances
	}
	r := &Registry{
		cfg:     cfg,
		catalog: c,
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	cache, err := lru.NewWithEvict(cfg.MaxInstances, r.onEvict)
	if err != nil {
		return nil, fmt.Errorf("instance cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Catalog returns the catalog shared by all instances.
func (r *Registry) Catalog() *catalog.Catalog { return r.catalog }

// Create mounts a new map instance.
func (r *Registry) Create(o Options) (*Instance, error) {
	var stateOpts []filter.Option
	if o.Style != "" {
		stateOpts = append(stateOpts, filter.WithStyle(o.Style))
	}
	if o.Size > 0 {
		stateOpts = append(stateOpts, filter.WithSize(o.Size))
	}
	state := filter.New(r.catalog, stateOpts...)

	icons := icon.NewFactory(r.cfg.IconCacheSize,
		icon.WithAssetBase(r.cfg.AssetBase),
		icon.WithMetrics(r.iconMetrics))

	inst := &Instance{
		ID:       uuid.NewString(),
		Created:  r.now(),
		bus:      service.NewEventBus(),
		state:    state,
		icons:    icons,
		surface:  mapview.New(r.cfg.Map, state, icons, mapview.WithPalette(r.cfg.Palette)),
		filters:  panel.NewFilterPanel(state, r.cfg.Map.Breakpoint),
		settings: panel.NewSettingsPanel(state, r.cfg.Map.Breakpoint),
	}
	if err := inst.mount(o.Viewport); err != nil {
		inst.unmount()
		return nil, fmt.Errorf("mount map: %w", err)
	}

	r.cache.Add(inst.ID, inst)
	r.metrics.add()
	r.log.Debug().
		Str("instance", inst.ID).
		Str("style", string(state.Settings().Style)).
		Int("width", o.Viewport.Width).
		Msg("map mounted")
	return inst, nil
}

// Get returns the live instance with the given id.
func (r *Registry) Get(id string) (*Instance, error) {
	inst, ok := r.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return inst, nil
}

// Close unmounts the instance with the given id.
func (r *Registry) Close(id string) error {
	inst, ok := r.cache.Peek(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	inst.closing.Store(true)
	r.cache.Remove(id)
	return nil
}

// Len returns the number of live instances.
func (r *Registry) Len() int { return r.cache.Len() }

// CloseAll unmounts every instance.
func (r *Registry) CloseAll() { r.cache.Purge() }

func (r *Registry) onEvict(id string, inst *Instance) {
	reason := "evicted"
	if inst.closing.Load() {
		reason = "closed"
	}
	inst.unmount()
	r.metrics.remove(reason)
	r.log.Debug().Str("instance", id).Str("reason", reason).Msg("map unmounted")
}
