// Package mapui contains the Datastar SSE handlers driving the store map page.
// Each handler mutates one map instance and streams back the signals and
// fragments the change affects.
package mapui

import (
	"context"
	"errors"
	"math"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"github.com/joeblew999/storemap/internal/filter"
	"github.com/joeblew999/storemap/internal/humastar"
	"github.com/joeblew999/storemap/internal/logger"
	"github.com/joeblew999/storemap/internal/mapview"
	"github.com/joeblew999/storemap/internal/panel"
	"github.com/joeblew999/storemap/internal/service"
	"github.com/joeblew999/storemap/internal/session"
	"github.com/joeblew999/storemap/internal/templates"
)

// Handler serves the map instance endpoints.
type Handler struct {
	humastar.Handler
	registry *session.Registry
	log      zerolog.Logger
}

// NewHandler creates the map UI handler.
func NewHandler(registry *session.Registry, renderer *templates.Renderer, log zerolog.Logger) *Handler {
	return &Handler{
		Handler:  humastar.Handler{Renderer: renderer},
		registry: registry,
		log:      log,
	}
}

// RegisterRoutes registers the map instance routes.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Post(api, "/api/v1/map/instances", h.CreateInstance, huma.OperationTags("map"))
	huma.Post(api, "/api/v1/map/{id}/cage/{value}", h.ToggleCage, huma.OperationTags("map"))
	huma.Post(api, "/api/v1/map/{id}/enseigne/{enseigne}", h.ToggleEnseigne, huma.OperationTags("map"))
	huma.Post(api, "/api/v1/map/{id}/settings", h.UpdateSettings, huma.OperationTags("map"))
	huma.Post(api, "/api/v1/map/{id}/viewport", h.Viewport, huma.OperationTags("map"))
	huma.Post(api, "/api/v1/map/{id}/panel/toggle", h.TogglePanel, huma.OperationTags("map"))
	huma.Delete(api, "/api/v1/map/{id}", h.CloseInstance, huma.OperationTags("map"))
}

// Inputs

type InstanceInput struct {
	ID string `path:"id" doc:"Map instance ID"`
}

type CreateInput struct {
	humastar.SignalsInput
}

type CageInput struct {
	InstanceInput
	Value string `path:"value" enum:"cage,no-cage" doc:"Cage filter to toggle"`
}

type EnseigneInput struct {
	InstanceInput
	Enseigne string `path:"enseigne" doc:"Enseigne ID to toggle" example:"auchan"`
}

type SignalsInstanceInput struct {
	InstanceInput
	humastar.SignalsInput
}

type PanelInput struct {
	InstanceInput
	Panel string `query:"panel" enum:"filters,settings" default:"filters" doc:"Panel to expand or collapse"`
}

// Handlers

// CreateInstance mounts a map for the page. Signals: initialstyle,
// initialsize, width, height.
func (h *Handler) CreateInstance(ctx context.Context, input *CreateInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	inst, err := h.registry.Create(session.Options{
		Style: filter.MarkerStyle(signals.String("initialstyle")),
		Size:  signals.Int("initialsize"),
		Viewport: service.Viewport{
			Width:  signals.Int("width"),
			Height: signals.Int("height"),
		},
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("mount map", err)
	}

	var f frame
	if err := inst.Do(func(i *session.Instance) error {
		var err error
		f, err = h.frame(i, partAll)
		return err
	}); err != nil {
		return nil, h.httpError(ctx, inst.ID, err)
	}
	f.signals["mapid"] = inst.ID
	logger.FromContext(logger.WithInstance(ctx, inst.ID), &h.log).Info().Msg("map instance created")
	return h.send(f), nil
}

// ToggleCage clicks a survey outcome pill.
func (h *Handler) ToggleCage(ctx context.Context, input *CageInput) (*huma.StreamResponse, error) {
	return h.apply(ctx, input.ID, partMarkers|partFilters|partFilterPanel|partStoreList, func(i *session.Instance) error {
		return i.Filters().ClickCagePill(input.Value)
	})
}

// ToggleEnseigne clicks an enseigne button.
func (h *Handler) ToggleEnseigne(ctx context.Context, input *EnseigneInput) (*huma.StreamResponse, error) {
	return h.apply(ctx, input.ID, partMarkers|partFilters|partFilterPanel|partStoreList, func(i *session.Instance) error {
		return i.Filters().ClickEnseigne(input.Enseigne)
	})
}

// UpdateSettings forwards the settings.* signals to the settings panel.
// The form is applied whole or not at all.
func (h *Handler) UpdateSettings(ctx context.Context, input *SignalsInstanceInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	values := signals.Sub("settings")
	if values == nil {
		return nil, huma.Error400BadRequest("missing settings signals")
	}
	form := make(map[panel.Control]string, len(panel.Controls))
	for _, c := range panel.Controls {
		if values.Has(string(c)) {
			form[c] = values.Text(string(c))
		}
	}
	return h.apply(ctx, input.ID, partMarkers|partView|partSettings|partSettingsPanel, func(i *session.Instance) error {
		return i.Settings().SetAll(form)
	})
}

// Viewport reports a map engine or window event. Signals: event, zoom,
// lat, lng, width, height.
func (h *Handler) Viewport(ctx context.Context, input *SignalsInstanceInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	e := service.Event{
		Kind:   signals.String("event"),
		Zoom:   signals.Float("zoom"),
		Center: orb.Point{math.NaN(), math.NaN()},
		Width:  signals.Int("width"),
		Height: signals.Int("height"),
	}
	// a move without coordinates keeps the tracked center
	if signals.Has("lat") && signals.Has("lng") {
		e.Center = orb.Point{signals.Float("lng"), signals.Float("lat")}
	}

	var parts part
	switch e.Kind {
	case service.ZoomEnd, service.MoveEnd:
		if !signals.Has("zoom") {
			return h.Reject(http.StatusUnprocessableEntity, "zoom signal required"), nil
		}
		parts = partMarkers | partView
	case service.Resize:
		parts = partView | partFilterPanel | partSettingsPanel
	default:
		return h.Reject(http.StatusUnprocessableEntity, "unknown viewport event: "+e.Kind), nil
	}

	inst, err := h.instance(input.ID)
	if err != nil {
		return nil, err
	}
	if err := inst.Dispatch(e); err != nil {
		return nil, h.httpError(ctx, input.ID, err)
	}
	return h.apply(ctx, input.ID, parts, nil)
}

// TogglePanel expands or collapses a panel on narrow viewports.
func (h *Handler) TogglePanel(ctx context.Context, input *PanelInput) (*huma.StreamResponse, error) {
	if input.Panel == "settings" {
		return h.apply(ctx, input.ID, partSettingsPanel, func(i *session.Instance) error {
			i.Settings().Toggle()
			return nil
		})
	}
	return h.apply(ctx, input.ID, partFilterPanel, func(i *session.Instance) error {
		i.Filters().Toggle()
		return nil
	})
}

// CloseInstance unmounts the map when the page goes away.
func (h *Handler) CloseInstance(ctx context.Context, input *InstanceInput) (*struct{}, error) {
	if err := h.registry.Close(input.ID); err != nil {
		return nil, h.httpError(ctx, input.ID, err)
	}
	logger.FromContext(logger.WithInstance(ctx, input.ID), &h.log).Info().Msg("map instance closed")
	return nil, nil
}

// apply runs fn and captures the response frame under the instance lock.
func (h *Handler) apply(ctx context.Context, id string, parts part, fn func(*session.Instance) error) (*huma.StreamResponse, error) {
	inst, err := h.instance(id)
	if err != nil {
		return nil, err
	}
	var f frame
	err = inst.Do(func(i *session.Instance) error {
		if fn != nil {
			if err := fn(i); err != nil {
				return err
			}
		}
		var err error
		f, err = h.frame(i, parts)
		return err
	})
	if err != nil {
		if rejected(err) {
			return h.Reject(http.StatusUnprocessableEntity, err.Error()), nil
		}
		return nil, h.httpError(ctx, id, err)
	}
	return h.send(f), nil
}

func (h *Handler) instance(id string) (*session.Instance, error) {
	inst, err := h.registry.Get(id)
	if err != nil {
		return nil, huma.Error404NotFound("map instance not found")
	}
	return inst, nil
}

func (h *Handler) httpError(ctx context.Context, id string, err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return huma.Error404NotFound("map instance not found")
	case errors.Is(err, session.ErrClosed), errors.Is(err, mapview.ErrNotActive):
		return huma.NewError(http.StatusGone, "map instance closed")
	case rejected(err):
		return huma.Error422UnprocessableEntity(err.Error())
	}
	logger.FromContext(logger.WithInstance(ctx, id), &h.log).Error().Err(err).Msg("map update failed")
	return huma.Error500InternalServerError("map update failed")
}

// rejected reports whether err refuses user input rather than failing.
func rejected(err error) bool {
	return errors.Is(err, panel.ErrUnknownEnseigne) ||
		errors.Is(err, panel.ErrUnknownFilter) ||
		errors.Is(err, panel.ErrUnknownControl) ||
		errors.Is(err, panel.ErrInvalidValue)
}
