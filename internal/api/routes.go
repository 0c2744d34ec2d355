// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/storemap/internal/catalog"
	"github.com/joeblew999/storemap/internal/filter"
	"github.com/joeblew999/storemap/internal/humastar"
	"github.com/joeblew999/storemap/internal/icon"
	"github.com/joeblew999/storemap/internal/session"
	"github.com/joeblew999/storemap/internal/zoom"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Catalog  *catalog.Catalog
	Icons    *icon.Factory
	Palette  icon.Palette
	Zoom     zoom.Config
	Registry *session.Registry
	Version  string
}

// Types

type FilterQuery struct {
	Cage     filter.CageFilter `query:"cage" enum:"all,cage,no-cage" default:"all" doc:"Survey outcome filter"`
	Enseigne string            `query:"enseigne" doc:"Restrict to one enseigne" example:"auchan"`
}

type StoreIDInput struct {
	ID string `path:"id" doc:"Store ID" example:"auchan-velizy-2"`
}

type StatsBody struct {
	Total       int `json:"total" doc:"Stores surveyed"`
	WithCage    int `json:"withCage" doc:"Stores selling cage eggs"`
	WithoutCage int `json:"withoutCage" doc:"Stores without cage eggs"`
}

func statsBody(s filter.Stats) StatsBody {
	return StatsBody{Total: s.Total, WithCage: s.WithCage, WithoutCage: s.WithoutCage()}
}

type EnseigneBody struct {
	catalog.Enseigne
	Stats StatsBody `json:"stats" doc:"Survey results of the enseigne"`
}

type StoresBody struct {
	Stores     []catalog.Store   `json:"stores" doc:"Stores passing the filters, in catalog order"`
	Stats      StatsBody         `json:"stats" doc:"Results over the enseigne pool, cage filter ignored"`
	CageFilter filter.CageFilter `json:"cageFilter" doc:"Applied cage filter"`
	Enseigne   string            `json:"enseigne,omitempty" doc:"Applied enseigne"`
}

// Actions links the GeoJSON export of the same selection and the
// queries clearing each active filter.
func (b StoresBody) Actions() []humastar.Action {
	query := map[string]string{"enseigne": b.Enseigne}
	if b.CageFilter != filter.All {
		query["cage"] = string(b.CageFilter)
	}
	actions := []humastar.Action{
		{Rel: "geojson", Href: humastar.Href("/api/v1/stores/geojson", query), Method: "GET", Title: "Export as GeoJSON"},
	}
	if b.CageFilter != filter.All {
		actions = append(actions, humastar.Action{
			Rel: "reset-cage", Method: "GET", Title: "Show every outcome",
			Href: humastar.Href("/api/v1/stores", map[string]string{"enseigne": b.Enseigne}),
		})
	}
	if b.Enseigne != "" {
		actions = append(actions, humastar.Action{
			Rel: "reset-enseigne", Method: "GET", Title: "Show every enseigne",
			Href: humastar.Href("/api/v1/stores", map[string]string{"cage": query["cage"]}),
		})
	}
	return actions
}

// FeatureCollectionBody is served as application/geo+json.
type FeatureCollectionBody struct {
	*geojson.FeatureCollection
}

func (FeatureCollectionBody) ContentType(string) string { return "application/geo+json" }

type IconInput struct {
	Style       filter.MarkerStyle `path:"style" enum:"circle,illustrated,illustrated-no-border,illustrated-inverted" doc:"Marker style"`
	Outcome     icon.Outcome       `path:"outcome" enum:"cage,free" doc:"Survey outcome"`
	Size        int                `query:"size" default:"32" minimum:"10" maximum:"60" doc:"Marker height in pixels"`
	Outline     filter.OutlineMode `query:"outline" enum:"none,stroke,shadow" default:"none" doc:"Outline mode, circle style only"`
	StrokeWidth float64            `query:"strokeWidth" default:"0.5" minimum:"0" maximum:"1" doc:"Stroke width, circle style only"`
}

type IconOutput struct {
	ContentType  string `header:"Content-Type"`
	CacheControl string `header:"Cache-Control"`
	Body         []byte
}

type ScaleInput struct {
	Zoom        float64 `query:"zoom" required:"true" doc:"Map zoom level" example:"12"`
	Sensitivity float64 `query:"sensitivity" default:"0.5" minimum:"0" maximum:"1" doc:"Zoom-adaptive sensitivity, 0 disables scaling"`
}

type ScaleBody struct {
	Zoom            float64     `json:"zoom"`
	Sensitivity     float64     `json:"sensitivity"`
	Scale           float64     `json:"scale" doc:"Marker multiplier"`
	Transform       string      `json:"transform" doc:"CSS transform for marker elements" example:"scale(1.5157)"`
	TransformOrigin string      `json:"transformOrigin"`
	Config          zoom.Config `json:"config"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterCatalog registers the catalog read routes.
func (h *APIHandler) RegisterCatalog(api huma.API) {
	huma.Get(api, "/api/v1/enseignes", h.GetEnseignes, huma.OperationTags("catalog"))
	huma.Get(api, "/api/v1/stores", h.GetStores, huma.OperationTags("catalog"))
	huma.Get(api, "/api/v1/stores/geojson", h.GetStoresGeoJSON, huma.OperationTags("catalog"))
	huma.Get(api, "/api/v1/stores/{id}", h.GetStore, huma.OperationTags("catalog"))
	huma.Get(api, "/api/v1/stats", h.GetStats, huma.OperationTags("catalog"))
}

// RegisterMarkers registers the icon and scaling routes.
func (h *APIHandler) RegisterMarkers(api huma.API) {
	huma.Get(api, "/api/v1/icons/{style}/{outcome}", h.GetIcon, huma.OperationTags("markers"))
	huma.Get(api, "/api/v1/zoom/scale", h.GetScale, huma.OperationTags("markers"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: h.svc.Version}}, nil
}

func (h *APIHandler) GetEnseignes(ctx context.Context, input *struct{}) (*struct{ Body []EnseigneBody }, error) {
	c := h.svc.Catalog
	out := make([]EnseigneBody, 0, len(c.Enseignes()))
	for _, e := range c.Enseignes() {
		out = append(out, EnseigneBody{Enseigne: e, Stats: statsBody(filter.Count(c, e.ID))})
	}
	return &struct{ Body []EnseigneBody }{Body: out}, nil
}

func (h *APIHandler) GetStores(ctx context.Context, input *FilterQuery) (*struct{ Body StoresBody }, error) {
	if err := h.checkEnseigne(input.Enseigne); err != nil {
		return nil, err
	}
	c := h.svc.Catalog
	stores := filter.Apply(c, input.Cage, input.Enseigne)
	if stores == nil {
		stores = []catalog.Store{}
	}
	return &struct{ Body StoresBody }{Body: StoresBody{
		Stores:     stores,
		Stats:      statsBody(filter.Count(c, input.Enseigne)),
		CageFilter: input.Cage,
		Enseigne:   input.Enseigne,
	}}, nil
}

func (h *APIHandler) GetStoresGeoJSON(ctx context.Context, input *FilterQuery) (*struct{ Body FeatureCollectionBody }, error) {
	if err := h.checkEnseigne(input.Enseigne); err != nil {
		return nil, err
	}
	fc := catalog.FeatureCollection(filter.Apply(h.svc.Catalog, input.Cage, input.Enseigne))
	return &struct{ Body FeatureCollectionBody }{Body: FeatureCollectionBody{fc}}, nil
}

func (h *APIHandler) GetStore(ctx context.Context, input *StoreIDInput) (*struct{ Body catalog.Store }, error) {
	s, ok := h.svc.Catalog.Store(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("store not found")
	}
	return &struct{ Body catalog.Store }{Body: s}, nil
}

func (h *APIHandler) GetStats(ctx context.Context, input *struct {
	Enseigne string `query:"enseigne" doc:"Restrict to one enseigne" example:"auchan"`
}) (*struct{ Body StatsBody }, error) {
	if err := h.checkEnseigne(input.Enseigne); err != nil {
		return nil, err
	}
	return &struct{ Body StatsBody }{Body: statsBody(filter.Count(h.svc.Catalog, input.Enseigne))}, nil
}

func (h *APIHandler) GetIcon(ctx context.Context, input *IconInput) (*IconOutput, error) {
	out := &IconOutput{ContentType: "image/svg+xml", CacheControl: "public, max-age=86400"}
	if input.Style.Illustrated() {
		b, err := icon.ReadAsset(input.Style, input.Outcome)
		if err != nil {
			return nil, huma.Error404NotFound("icon not found")
		}
		out.Body = b
		return out, nil
	}

	pair, err := h.svc.Icons.CreateIconPair(icon.Params{
		Style:       input.Style,
		Size:        input.Size,
		Outline:     input.Outline,
		StrokeWidth: input.StrokeWidth,
		Palette:     h.svc.Palette,
	})
	if err != nil {
		if errors.Is(err, icon.ErrUnknownStyle) || errors.Is(err, icon.ErrUnknownOutline) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, huma.Error500InternalServerError("build icon", err)
	}
	out.Body = []byte(pair.For(input.Outcome == icon.Cage).SVG)
	return out, nil
}

func (h *APIHandler) GetScale(ctx context.Context, input *ScaleInput) (*struct{ Body ScaleBody }, error) {
	scale := h.svc.Zoom.Scale(input.Zoom, input.Sensitivity)
	return &struct{ Body ScaleBody }{Body: ScaleBody{
		Zoom:            input.Zoom,
		Sensitivity:     input.Sensitivity,
		Scale:           scale,
		Transform:       zoom.Transform(scale),
		TransformOrigin: zoom.TransformOrigin,
		Config:          h.svc.Zoom,
	}}, nil
}

func (h *APIHandler) checkEnseigne(id string) error {
	if id == "" {
		return nil
	}
	if _, ok := h.svc.Catalog.Enseigne(id); !ok {
		return huma.Error404NotFound(fmt.Sprintf("enseigne %q not found", id))
	}
	return nil
}

// RegisterRoutes registers every REST route with Huma.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
	NewInfoHandler(svc).RegisterRoutes(api)
}
