package templates

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ParsesBundledTemplates(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	for _, name := range []string{"empty-state", "store-item", "popup", "filter-panel", "settings-panel", "store-map"} {
		assert.NotNil(t, r.templates.Lookup(name), name)
	}
}

func TestRender_EscapesContent(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	out, err := r.Render("empty-state", map[string]string{"Title": "<b>x</b>", "Message": "ok"})
	require.NoError(t, err)
	assert.Contains(t, out, "&lt;b&gt;x&lt;/b&gt;")

	var buf bytes.Buffer
	require.NoError(t, r.RenderToBuffer(&buf, "empty-state", map[string]string{"Title": "a", "Message": "b"}))
	assert.Contains(t, buf.String(), "<strong>a</strong>")

	_, err = r.Render("missing", nil)
	assert.Error(t, err)
}

func TestFuncs(t *testing.T) {
	fsys := fstest.MapFS{
		"t.html": {Data: []byte(`{{define "t"}}{{num .F}}|{{percent .P}}|{{with dict "k" .F}}{{.k}}{{end}}|<script>var x = {{json .M}};</script>{{end}}`)},
	}
	r, err := New(fsys, "*.html")
	require.NoError(t, err)

	out, err := r.Render("t", map[string]any{"F": 0.25, "P": 0.5, "M": map[string]int{"a": 1}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "0.25|50%|0.25|"), out)
	assert.Contains(t, out, `{"a":1}`)
}
