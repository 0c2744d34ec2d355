package filter

import (
	"math"

	"github.com/joeblew999/storemap/internal/catalog"
)

// State is the single source of truth for what the map shows and how.
// It is not safe for concurrent use; callers serialise access.
type State struct {
	catalog  *catalog.Catalog
	cage     CageFilter
	enseigne string
	settings Settings

	filtered    []catalog.Store
	filteredKey filterKey
	filteredOK  bool

	stats    Stats
	statsKey statsKey
	statsOK  bool
}

type filterKey struct {
	catalog  *catalog.Catalog
	cage     CageFilter
	enseigne string
}

type statsKey struct {
	catalog  *catalog.Catalog
	enseigne string
}

// Option overrides a default when creating a State.
type Option func(*State)

// WithStyle overrides the initial marker style. Unknown styles are ignored.
func WithStyle(style MarkerStyle) Option {
	return func(s *State) { s.SetMarkerStyle(style) }
}

// WithSize overrides the initial marker size, clamped to the allowed range.
func WithSize(size int) Option {
	return func(s *State) { s.SetMarkerSize(size) }
}

// New creates a State with default selections over c.
func New(c *catalog.Catalog, opts ...Option) *State {
	s := &State{
		catalog:  c,
		cage:     All,
		settings: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog the state derives from.
func (s *State) Catalog() *catalog.Catalog { return s.catalog }

// SetCatalog swaps the catalog; derived views are recomputed on next access.
func (s *State) SetCatalog(c *catalog.Catalog) { s.catalog = c }

// CageFilter returns the active cage filter.
func (s *State) CageFilter() CageFilter { return s.cage }

// SelectedEnseigne returns the selected chain id, or "" when none is selected.
func (s *State) SelectedEnseigne() string { return s.enseigne }

// Settings returns the marker settings.
func (s *State) Settings() Settings { return s.settings }

// Snapshot returns a copy of all selections.
func (s *State) Snapshot() Snapshot {
	return Snapshot{CageFilter: s.cage, SelectedEnseigne: s.enseigne, Settings: s.settings}
}

// ToggleCageFilter selects v, or resets to All when v is already active.
func (s *State) ToggleCageFilter(v CageFilter) {
	if !v.Valid() {
		return
	}
	if s.cage == v {
		s.cage = All
		return
	}
	s.cage = v
}

// ToggleEnseigne selects id, or clears the selection when id is already selected.
func (s *State) ToggleEnseigne(id string) {
	if s.enseigne == id {
		s.enseigne = ""
		return
	}
	s.enseigne = id
}

// SetMarkerStyle sets the marker style; unknown styles are ignored.
func (s *State) SetMarkerStyle(style MarkerStyle) {
	if style.Valid() {
		s.settings.Style = style
	}
}

// SetMarkerSize sets the marker height, clamped to [MinMarkerSize, MaxMarkerSize].
func (s *State) SetMarkerSize(size int) {
	s.settings.Size = min(max(size, MinMarkerSize), MaxMarkerSize)
}

// SetMarkerOpacity sets the marker opacity, clamped to [0, 1].
func (s *State) SetMarkerOpacity(v float64) {
	if c, ok := unit(v); ok {
		s.settings.Opacity = c
	}
}

// SetOutlineMode sets the outline mode; unknown modes are ignored.
func (s *State) SetOutlineMode(m OutlineMode) {
	if m.Valid() {
		s.settings.Outline = m
	}
}

// SetStrokeWidth sets the stroke width, clamped to [0, 1].
func (s *State) SetStrokeWidth(v float64) {
	if c, ok := unit(v); ok {
		s.settings.StrokeWidth = c
	}
}

// SetZoomScale sets the zoom scaling sensitivity, clamped to [0, 1].
func (s *State) SetZoomScale(v float64) {
	if c, ok := unit(v); ok {
		s.settings.ZoomScale = c
	}
}

// FilteredStores returns the catalog stores passing both the cage filter and
// the enseigne selection, in catalog order. The result is cached until one of
// its inputs changes and must not be modified.
func (s *State) FilteredStores() []catalog.Store {
	key := filterKey{catalog: s.catalog, cage: s.cage, enseigne: s.enseigne}
	if s.filteredOK && s.filteredKey == key {
		return s.filtered
	}
	s.filtered = Apply(s.catalog, s.cage, s.enseigne)
	s.filteredKey = key
	s.filteredOK = true
	return s.filtered
}

// Stats counts the stores of the selected enseigne, or of the whole catalog
// when none is selected. The cage filter does not take part.
func (s *State) Stats() Stats {
	key := statsKey{catalog: s.catalog, enseigne: s.enseigne}
	if s.statsOK && s.statsKey == key {
		return s.stats
	}
	s.stats = Count(s.catalog, s.enseigne)
	s.statsKey = key
	s.statsOK = true
	return s.stats
}

// Apply is the pure filter derivation behind FilteredStores.
func Apply(c *catalog.Catalog, cage CageFilter, enseigne string) []catalog.Store {
	if c == nil {
		return []catalog.Store{}
	}
	out := make([]catalog.Store, 0, c.Len())
	for _, st := range c.Stores() {
		if !cage.Match(st.HasCageEggs) {
			continue
		}
		if enseigne != "" && st.Category != enseigne {
			continue
		}
		out = append(out, st)
	}
	return out
}

// Count is the pure derivation behind Stats.
func Count(c *catalog.Catalog, enseigne string) Stats {
	var st Stats
	if c == nil {
		return st
	}
	for _, store := range c.Stores() {
		if enseigne != "" && store.Category != enseigne {
			continue
		}
		st.Total++
		if store.HasCageEggs {
			st.WithCage++
		}
	}
	return st
}

func unit(v float64) (float64, bool) {
	if math.IsNaN(v) {
		return 0, false
	}
	return min(max(v, 0), 1), true
}
