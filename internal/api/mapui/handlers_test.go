package mapui

import (
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/storemap/internal/catalog"
	"github.com/joeblew999/storemap/internal/filter"
	"github.com/joeblew999/storemap/internal/session"
	"github.com/joeblew999/storemap/internal/templates"
)

var mapIDPattern = regexp.MustCompile(`"mapid":"([0-9a-f-]+)"`)

func newTestServer(t *testing.T) (*httptest.Server, *session.Registry) {
	t.Helper()
	c, _, err := catalog.Default()
	require.NoError(t, err)
	reg, err := session.NewRegistry(c, session.DefaultConfig())
	require.NoError(t, err)
	renderer, err := templates.Default()
	require.NoError(t, err)

	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("test", "0.0.0"))
	NewHandler(reg, renderer, zerolog.Nop()).RegisterRoutes(api)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, reg
}

func send(t *testing.T, srv *httptest.Server, method, path, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func create(t *testing.T, srv *httptest.Server, body string) string {
	t.Helper()
	status, out := send(t, srv, http.MethodPost, "/api/v1/map/instances", body)
	require.Equal(t, http.StatusOK, status, out)
	m := mapIDPattern.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	return m[1]
}

func instance(t *testing.T, reg *session.Registry, id string) *session.Instance {
	t.Helper()
	inst, err := reg.Get(id)
	require.NoError(t, err)
	return inst
}

func TestCreateInstance(t *testing.T) {
	srv, reg := newTestServer(t)
	status, out := send(t, srv, http.MethodPost, "/api/v1/map/instances",
		`{"initialstyle":"circle","initialsize":40,"width":1280,"height":800}`)
	require.Equal(t, http.StatusOK, status)

	assert.Contains(t, out, "datastar-patch-signals")
	assert.Contains(t, out, "datastar-patch-elements")
	assert.Contains(t, out, `"markerStyle":"circle"`)
	assert.Contains(t, out, `"markerSize":40`)
	assert.Contains(t, out, "#filter-panel")
	assert.Contains(t, out, "#settings-panel")
	assert.Contains(t, out, "#store-list")
	assert.Equal(t, 1, reg.Len())

	id := mapIDPattern.FindStringSubmatch(out)[1]
	inst := instance(t, reg, id)
	require.NoError(t, inst.Do(func(i *session.Instance) error {
		assert.Equal(t, 6.0, i.Surface().Zoom())
		assert.False(t, i.Filters().Collapsed())
		return nil
	}))
}

func TestCreateInstance_InvalidOverrides(t *testing.T) {
	srv, reg := newTestServer(t)
	id := create(t, srv, `{"initialstyle":"sparkle","initialsize":-3}`)
	require.NoError(t, instance(t, reg, id).Do(func(i *session.Instance) error {
		assert.Equal(t, filter.DefaultSettings(), i.State().Settings())
		return nil
	}))
}

func TestToggleFilters(t *testing.T) {
	srv, reg := newTestServer(t)
	id := create(t, srv, `{"width":1280}`)
	inst := instance(t, reg, id)

	status, out := send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/cage/cage", "")
	require.Equal(t, http.StatusOK, status, out)
	assert.Contains(t, out, `"cageFilter":"cage"`)

	status, _ = send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/enseigne/auchan", "")
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, inst.Do(func(i *session.Instance) error {
		assert.Equal(t, filter.OnlyCage, i.State().CageFilter())
		assert.Equal(t, "auchan", i.State().SelectedEnseigne())
		return nil
	}))

	// second click on the active pill clears it
	status, _ = send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/cage/cage", "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, inst.Do(func(i *session.Instance) error {
		assert.Equal(t, filter.All, i.State().CageFilter())
		return nil
	}))
}

func TestToggleFilters_Errors(t *testing.T) {
	srv, _ := newTestServer(t)
	id := create(t, srv, `{}`)

	status, out := send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/enseigne/nope", "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, out, `"error":"unknown enseigne`)

	status, _ = send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/cage/maybe", "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = send(t, srv, http.MethodPost, "/api/v1/map/missing/cage/cage", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdateSettings(t *testing.T) {
	srv, reg := newTestServer(t)
	id := create(t, srv, `{}`)

	status, out := send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/settings",
		`{"settings":{"markerStyle":"circle","markerSize":"45","zoomScale":0,"outlineMode":"stroke"}}`)
	require.Equal(t, http.StatusOK, status, out)
	assert.Contains(t, out, `"scale":1`)

	require.NoError(t, instance(t, reg, id).Do(func(i *session.Instance) error {
		s := i.State().Settings()
		assert.Equal(t, filter.StyleCircle, s.Style)
		assert.Equal(t, 45, s.Size)
		assert.Equal(t, 0.0, s.ZoomScale)
		assert.Equal(t, filter.OutlineStroke, s.Outline)
		return nil
	}))

	status, out = send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/settings", `{"settings":{"markerOpacity":"abc"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, out, "datastar-patch-signals")
	assert.Contains(t, out, `"error":"invalid control value`)

	status, _ = send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/settings", `{"other":1}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUpdateSettings_RejectedFormChangesNothing(t *testing.T) {
	srv, reg := newTestServer(t)
	id := create(t, srv, `{}`)

	status, out := send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/settings",
		`{"settings":{"markerSize":"44","outlineMode":"glow"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, status, out)
	assert.Contains(t, out, `"error":`)
	assert.NotContains(t, out, `"markers"`)

	require.NoError(t, instance(t, reg, id).Do(func(i *session.Instance) error {
		assert.Equal(t, filter.DefaultSettings(), i.State().Settings())
		return nil
	}))

	// the next accepted change clears the message
	status, out = send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/settings", `{"settings":{"markerSize":"44"}}`)
	require.Equal(t, http.StatusOK, status, out)
	assert.Contains(t, out, `"error":""`)
}

func TestViewport(t *testing.T) {
	srv, reg := newTestServer(t)
	id := create(t, srv, `{"width":1280}`)
	inst := instance(t, reg, id)

	status, out := send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/viewport", `{"event":"zoomend","zoom":9}`)
	require.Equal(t, http.StatusOK, status, out)
	assert.Contains(t, out, `"zoom":9`)

	status, _ = send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/viewport",
		`{"event":"moveend","zoom":10,"lat":45.76,"lng":4.85}`)
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, inst.Do(func(i *session.Instance) error {
		assert.Equal(t, 10.0, i.Surface().Zoom())
		assert.InDelta(t, 45.76, i.Surface().Center().Lat(), 1e-9)
		return nil
	}))

	status, _ = send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/viewport", `{"event":"resize","width":400}`)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, inst.Do(func(i *session.Instance) error {
		assert.True(t, i.Filters().Collapsed())
		assert.True(t, i.Settings().Collapsed())
		return nil
	}))

	status, out = send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/viewport", `{"event":"spin"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, out, `"error":"unknown viewport event: spin"`)

	status, _ = send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/viewport", `{"event":"zoomend"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestTogglePanel(t *testing.T) {
	srv, reg := newTestServer(t)
	id := create(t, srv, `{"width":390}`)
	inst := instance(t, reg, id)

	status, out := send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/panel/toggle?panel=settings", "")
	require.Equal(t, http.StatusOK, status, out)
	assert.Contains(t, out, "#settings-panel")
	assert.NotContains(t, out, "#filter-panel")

	status, _ = send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/panel/toggle", "")
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, inst.Do(func(i *session.Instance) error {
		assert.False(t, i.Settings().Collapsed())
		assert.False(t, i.Filters().Collapsed())
		return nil
	}))
}

func TestCloseInstance(t *testing.T) {
	srv, reg := newTestServer(t)
	id := create(t, srv, `{}`)
	inst := instance(t, reg, id)

	status, _ := send(t, srv, http.MethodDelete, "/api/v1/map/"+id, "")
	assert.Equal(t, http.StatusNoContent, status)
	assert.Zero(t, reg.Len())
	assert.True(t, inst.Closed())
	assert.Zero(t, inst.Listeners())

	status, _ = send(t, srv, http.MethodDelete, "/api/v1/map/"+id, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = send(t, srv, http.MethodPost, "/api/v1/map/"+id+"/viewport", `{"event":"zoomend","zoom":8}`)
	assert.Equal(t, http.StatusNotFound, status)
}
