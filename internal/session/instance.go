package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeblew999/storemap/internal/filter"
	"github.com/joeblew999/storemap/internal/icon"
	"github.com/joeblew999/storemap/internal/mapview"
	"github.com/joeblew999/storemap/internal/panel"
	"github.com/joeblew999/storemap/internal/service"
)

var (
	ErrNotFound = errors.New("map instance not found")
	ErrClosed   = errors.New("map instance closed")
)

// Instance is one mounted map with its filters, icon cache and panels.
// Components are only touched inside Do or Dispatch, which serialise
// access the way a browser event loop would.
type Instance struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	closed   bool
	closing  atomic.Bool
	bus      *service.EventBus
	state    *filter.State
	icons    *icon.Factory
	surface  *mapview.Surface
	filters  *panel.FilterPanel
	settings *panel.SettingsPanel
}

// State returns the filter state. Use inside Do.
func (i *Instance) State() *filter.State { return i.state }

// Surface returns the map surface. Use inside Do.
func (i *Instance) Surface() *mapview.Surface { return i.surface }

// Filters returns the filter panel. Use inside Do.
func (i *Instance) Filters() *panel.FilterPanel { return i.filters }

// Settings returns the settings panel. Use inside Do.
func (i *Instance) Settings() *panel.SettingsPanel { return i.settings }

// Icons returns the instance icon cache. Use inside Do.
func (i *Instance) Icons() *icon.Factory { return i.icons }

// Do runs fn with exclusive access to the instance.
func (i *Instance) Do(fn func(*Instance) error) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return ErrClosed
	}
	return fn(i)
}

// Dispatch delivers a viewport event to the listeners of the instance.
func (i *Instance) Dispatch(e service.Event) error {
	return i.Do(func(*Instance) error {
		i.bus.Publish(e)
		return nil
	})
}

// Closed reports whether the instance was unmounted.
func (i *Instance) Closed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.closed
}

func (i *Instance) mount(vp service.Viewport) error {
	if err := i.surface.Mount(i.bus, vp); err != nil {
		return err
	}
	if err := i.filters.Mount(i.bus, vp); err != nil {
		return err
	}
	return i.settings.Mount(i.bus, vp)
}

// unmount releases every listener and the icon cache.
func (i *Instance) unmount() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return
	}
	i.closed = true
	i.filters.Unmount()
	i.settings.Unmount()
	i.surface.Unmount()
}

// Listeners returns the number of registered event listeners.
func (i *Instance) Listeners() int { return i.bus.Len() }
