package panel

import (
	"fmt"

	"github.com/joeblew999/storemap/internal/filter"
	"github.com/joeblew999/storemap/internal/service"
)

// EnseigneButton is one chain logo in the filter panel.
type EnseigneButton struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	LogoAsset   string `json:"logoAsset,omitempty"`
	Active      bool   `json:"active"`
}

// Pill is one cage filter toggle.
type Pill struct {
	Value  filter.CageFilter `json:"value"`
	Label  string            `json:"label"`
	Active bool              `json:"active"`
}

// FilterView is what the filter panel displays.
type FilterView struct {
	Enseignes   []EnseigneButton `json:"enseignes"`
	Pills       []Pill           `json:"pills"`
	Total       int              `json:"total"`
	WithCage    int              `json:"withCage"`
	WithoutCage int              `json:"withoutCage"`
	Visible     int              `json:"visible"`
	Narrow      bool             `json:"narrow"`
	Collapsed   bool             `json:"collapsed"`
}

// PillLabels names the two cage pills.
var PillLabels = map[filter.CageFilter]string{
	filter.OnlyCage:   "Œufs cage",
	filter.OnlyNoCage: "Sans œufs cage",
}

// FilterPanel binds the chain logos and cage pills to a filter.State.
type FilterPanel struct {
	state  *filter.State
	layout layout
}

// NewFilterPanel creates a filter panel collapsing below breakpoint.
func NewFilterPanel(state *filter.State, breakpoint int) *FilterPanel {
	return &FilterPanel{state: state, layout: layout{breakpoint: breakpoint}}
}

// Mount starts following viewport resizes.
func (p *FilterPanel) Mount(bus *service.EventBus, vp service.Viewport) error {
	return p.layout.mount(bus, vp)
}

// Unmount stops following viewport resizes.
func (p *FilterPanel) Unmount() { p.layout.unmount() }

// Mounted reports whether the resize listener is registered.
func (p *FilterPanel) Mounted() bool { return p.layout.mounted() }

// ClickEnseigne toggles the chain id.
func (p *FilterPanel) ClickEnseigne(id string) error {
	if _, ok := p.state.Catalog().Enseigne(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEnseigne, id)
	}
	p.state.ToggleEnseigne(id)
	return nil
}

// ClickCagePill toggles the cage filter v.
func (p *FilterPanel) ClickCagePill(v string) error {
	f, ok := filter.ParseCageFilter(v)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, v)
	}
	p.state.ToggleCageFilter(f)
	return nil
}

// Toggle expands or collapses the panel on narrow viewports.
func (p *FilterPanel) Toggle() { p.layout.toggle() }

// Collapsed reports whether the panel is folded away.
func (p *FilterPanel) Collapsed() bool { return p.layout.collapsed }

// View returns the panel content.
func (p *FilterPanel) View() FilterView {
	stats := p.state.Stats()
	v := FilterView{
		Total:       stats.Total,
		WithCage:    stats.WithCage,
		WithoutCage: stats.WithoutCage(),
		Visible:     len(p.state.FilteredStores()),
		Narrow:      p.layout.narrow,
		Collapsed:   p.layout.collapsed,
	}
	selected := p.state.SelectedEnseigne()
	for _, e := range p.state.Catalog().Enseignes() {
		v.Enseignes = append(v.Enseignes, EnseigneButton{
			ID:          e.ID,
			DisplayName: e.DisplayName,
			LogoAsset:   e.LogoAsset,
			Active:      e.ID == selected,
		})
	}
	cage := p.state.CageFilter()
	for _, f := range []filter.CageFilter{filter.OnlyCage, filter.OnlyNoCage} {
		v.Pills = append(v.Pills, Pill{Value: f, Label: PillLabels[f], Active: f == cage})
	}
	return v
}
