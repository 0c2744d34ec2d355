package humastar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignals(t *testing.T) {
	s, err := ParseSignals([]byte(`{"mapid":"abc","width":1280,"zoom":"7.5","settings":{"markerSize":"40","markerStyle":"circle"}}`))
	require.NoError(t, err)

	assert.Equal(t, "abc", s.String("mapid"))
	assert.Equal(t, 1280, s.Int("width"))
	assert.Equal(t, 7.5, s.Float("zoom"))
	assert.True(t, s.Has("mapid"))
	assert.False(t, s.Has("lat"))
	assert.Zero(t, s.Float("lat"))

	sub := s.Sub("settings")
	require.NotNil(t, sub)
	assert.Equal(t, "40", sub.Text("markerSize"))
	assert.Equal(t, 40, sub.Int("markerSize"))
	assert.Equal(t, "1280", s.Text("width"))
	assert.Nil(t, s.Sub("mapid"))

	empty, err := ParseSignals(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseSignals([]byte("{"))
	assert.Error(t, err)
}

func TestSignalsInput_MustParse(t *testing.T) {
	in := &SignalsInput{RawBody: []byte("not json")}
	_, err := in.MustParse()
	assert.ErrorContains(t, err, "Invalid request data")
}

func TestActionLinkHeader(t *testing.T) {
	a := Action{Rel: "geojson", Href: Href("/api/v1/stores/geojson", map[string]string{"cage": "cage", "enseigne": ""}), Method: "GET", Title: "Export"}
	assert.Equal(t, `</api/v1/stores/geojson?cage=cage>; rel="geojson"; method="GET"; title="Export"`, a.LinkHeader())
	assert.Equal(t, "/x", Href("/x", nil))
}
