// Package templates handles HTML template rendering for pages and Datastar SSE fragments.
package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"io/fs"
	"strconv"
)

//go:embed fragments/*.html pages/*.html
var bundled embed.FS

// Patterns are the globs parsed from the bundled files.
var Patterns = []string{"fragments/*.html", "pages/*.html"}

// funcMap provides common template functions.
var funcMap = template.FuncMap{
	// dict creates a map from key-value pairs, useful for passing multiple values to nested templates
	"dict": func(values ...any) map[string]any {
		if len(values)%2 != 0 {
			return nil
		}
		m := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				continue
			}
			m[key] = values[i+1]
		}
		return m
	},
	// json renders v for use inside a script or a data-signals attribute
	"json": func(v any) (template.JS, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return template.JS(b), nil
	},
	// num prints a float without trailing zeros
	"num": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"percent": func(v float64) string {
		return strconv.FormatFloat(v*100, 'f', 0, 64) + "%"
	},
}

// Renderer manages HTML templates. It is safe for concurrent use.
type Renderer struct {
	templates *template.Template
}

// New parses the templates matching patterns in fsys.
func New(fsys fs.FS, patterns ...string) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(fsys, patterns...)
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

// Default parses the templates bundled with the binary.
func Default() (*Renderer, error) {
	return New(bundled, Patterns...)
}

// Render renders a named template to a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToBuffer renders a named template to a buffer.
func (r *Renderer) RenderToBuffer(buf *bytes.Buffer, name string, data any) error {
	return r.Execute(buf, name, data)
}

// Execute renders a named template to w.
func (r *Renderer) Execute(w io.Writer, name string, data any) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
