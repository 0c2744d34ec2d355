package mapui

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/storemap/internal/filter"
	"github.com/joeblew999/storemap/internal/humastar"
	"github.com/joeblew999/storemap/internal/icon"
	"github.com/joeblew999/storemap/internal/panel"
	"github.com/joeblew999/storemap/internal/session"
)

// part selects what a response refreshes.
type part uint8

const (
	partMarkers part = 1 << iota
	partView
	partSettings
	partFilters
	partFilterPanel
	partSettingsPanel
	partStoreList

	partAll = partMarkers | partView | partSettings | partFilters | partFilterPanel | partSettingsPanel | partStoreList
)

// Selectors of the patched page regions.
const (
	filterPanelSelector   = "#filter-panel"
	settingsPanelSelector = "#settings-panel"
	storeListSelector     = "#store-list"
)

// MarkerSignal is one marker as the page script draws it.
type MarkerSignal struct {
	ID          string       `json:"id"`
	Lat         float64      `json:"lat"`
	Lng         float64      `json:"lng"`
	Outcome     icon.Outcome `json:"outcome"`
	URL         string       `json:"url"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Anchor      icon.Point   `json:"anchor"`
	PopupAnchor icon.Point   `json:"popupAnchor"`
	Opacity     float64      `json:"opacity"`
	Transform   string       `json:"transform"`
	Popup       string       `json:"popup"`
}

// FiltersSignal mirrors the filter selections.
type FiltersSignal struct {
	CageFilter       filter.CageFilter `json:"cageFilter"`
	SelectedEnseigne string            `json:"selectedEnseigne"`
	Stats            filter.Stats      `json:"stats"`
	Visible          int               `json:"visible"`
}

// FilterPanelData is the filter-panel template input.
type FilterPanelData struct {
	MapID string
	panel.FilterView
}

// SettingsPanelData is the settings-panel template input.
type SettingsPanelData struct {
	MapID string
	panel.SettingsView
}

// StoreItem is the store-item template input.
type StoreItem struct {
	ID      string
	Name    string
	Outcome icon.Outcome
	Color   string
}

type patch struct {
	selector string
	html     string
}

// frame is everything one response sends, captured under the instance lock.
type frame struct {
	signals map[string]any
	patches []patch
}

func (h *Handler) frame(i *session.Instance, parts part) (frame, error) {
	// a successful update clears any earlier rejection
	f := frame{signals: map[string]any{"error": ""}}
	state := i.State()
	surface := i.Surface()

	if parts&partMarkers != 0 {
		markers, err := surface.Markers()
		if err != nil {
			return f, err
		}
		out := make([]MarkerSignal, 0, len(markers))
		for _, m := range markers {
			popup, err := h.Renderer.Render("popup", m.Popup)
			if err != nil {
				return f, fmt.Errorf("render popup: %w", err)
			}
			out = append(out, MarkerSignal{
				ID:          m.StoreID,
				Lat:         m.Position.Lat,
				Lng:         m.Position.Lng,
				Outcome:     m.Icon.Outcome,
				URL:         m.Icon.URL,
				Width:       m.Icon.Width,
				Height:      m.Icon.Height,
				Anchor:      m.Icon.Anchor,
				PopupAnchor: m.Icon.PopupAnchor,
				Opacity:     m.Opacity,
				Transform:   m.Transform,
				Popup:       popup,
			})
		}
		f.signals["markers"] = out
	}
	if parts&partView != 0 {
		f.signals["view"] = surface.View()
	}
	if parts&partSettings != 0 {
		f.signals["settings"] = state.Settings()
	}
	if parts&partFilters != 0 {
		f.signals["filters"] = FiltersSignal{
			CageFilter:       state.CageFilter(),
			SelectedEnseigne: state.SelectedEnseigne(),
			Stats:            state.Stats(),
			Visible:          len(state.FilteredStores()),
		}
	}
	if parts&partFilterPanel != 0 {
		html, err := h.Renderer.Render("filter-panel", FilterPanelData{MapID: i.ID, FilterView: i.Filters().View()})
		if err != nil {
			return f, fmt.Errorf("render filter panel: %w", err)
		}
		f.patches = append(f.patches, patch{selector: filterPanelSelector, html: html})
	}
	if parts&partSettingsPanel != 0 {
		html, err := h.Renderer.Render("settings-panel", SettingsPanelData{MapID: i.ID, SettingsView: i.Settings().View()})
		if err != nil {
			return f, fmt.Errorf("render settings panel: %w", err)
		}
		f.patches = append(f.patches, patch{selector: settingsPanelSelector, html: html})
	}
	if parts&partStoreList != 0 {
		palette := surface.Palette()
		stores := state.FilteredStores()
		items := make([]any, 0, len(stores))
		for _, st := range stores {
			o := icon.OutcomeOf(st.HasCageEggs)
			items = append(items, StoreItem{ID: st.ID, Name: st.Name, Outcome: o, Color: palette.Fill(o)})
		}
		html := h.RenderList("store-item", items, "Aucun magasin", "Aucun magasin ne correspond à ces filtres.")
		f.patches = append(f.patches, patch{selector: storeListSelector, html: html})
	}
	return f, nil
}

func (h *Handler) send(f frame) *huma.StreamResponse {
	return h.Stream(func(sse humastar.SSE) {
		sse.Signals(f.signals)
		for _, p := range f.patches {
			sse.Patch(p.html, p.selector)
		}
	})
}
