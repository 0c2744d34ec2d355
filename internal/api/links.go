package api

import (
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/storemap/internal/humastar"
)

// links maps operation paths to their RFC 8288 Link header values.
// Enables restish hypermedia navigation via `restish links <url>`.
var links = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</api/v1/enseignes>; rel="enseignes"`,
		`</api/v1/stores>; rel="stores"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/stores>; rel="stores"`,
	},
	"/api/v1/enseignes": {
		`</api/v1/stores>; rel="stores"`,
		`</api/v1/stats>; rel="stats"`,
	},
	"/api/v1/stores": {
		`</api/v1/enseignes>; rel="enseignes"`,
		`</api/v1/stats>; rel="stats"`,
	},
	"/api/v1/stores/{id}": {
		`</api/v1/stores>; rel="collection"`,
	},
	"/api/v1/stores/geojson": {
		`</api/v1/stores>; rel="stores"`,
	},
	"/api/v1/stats": {
		`</api/v1/enseignes>; rel="enseignes"`,
	},
}

// LinkTransformer returns a Huma Transformer that injects RFC 8288 Link headers.
// Bodies implementing humastar.Actor add their state-dependent actions.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range links[op.Path] {
			ctx.AppendHeader("Link", link)
		}

		// Item endpoints get a self link
		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}

		if actor, ok := v.(humastar.Actor); ok {
			for _, a := range actor.Actions() {
				ctx.AppendHeader("Link", a.LinkHeader())
			}
		}
		return v, nil
	}
}
