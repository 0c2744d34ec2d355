package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	svc *Services
}

func NewInfoHandler(svc *Services) *InfoHandler {
	return &InfoHandler{svc: svc}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name      string   `json:"name" doc:"Service name"`
	Version   string   `json:"version" doc:"Service version"`
	Stores    int      `json:"stores" doc:"Stores in the catalog"`
	Enseignes int      `json:"enseignes" doc:"Enseignes in the catalog"`
	Instances int      `json:"instances" doc:"Live map instances"`
	Features  []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	body := InfoBody{
		Name:      "storemap",
		Version:   h.svc.Version,
		Stores:    h.svc.Catalog.Len(),
		Enseignes: len(h.svc.Catalog.Enseignes()),
		Features:  []string{"geojson", "datastar", "zoom-scaling", "embed"},
	}
	if h.svc.Registry != nil {
		body.Instances = h.svc.Registry.Len()
	}
	return &struct{ Body InfoBody }{Body: body}, nil
}
