package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joeblew999/storemap/internal/db"
)

//go:embed data/catalog.yaml
var bundled embed.FS

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, []Rejection, error) {
	data, err := bundled.ReadFile("data/catalog.yaml")
	if err != nil {
		return nil, nil, fmt.Errorf("reading bundled catalog: %w", err)
	}
	return ParseYAML(data)
}

// Load reads a catalog file, choosing the decoder from its extension.
// An empty path loads the bundled catalog.
func Load(ctx context.Context, path string) (*Catalog, []Rejection, error) {
	if path == "" {
		return Default()
	}

	var parse func([]byte) (*Catalog, []Rejection, error)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".duckdb":
		conn, err := db.Open(db.Config{Path: path, ReadOnly: true})
		if err != nil {
			return nil, nil, fmt.Errorf("opening catalog database: %w", err)
		}
		defer conn.Close()
		return FromSQL(ctx, conn)
	case ".yaml", ".yml":
		parse = ParseYAML
	case ".json":
		parse = ParseJSON
	case ".geojson":
		parse = ParseGeoJSON
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading catalog: %w", err)
	}
	return parse(data)
}

// ParseYAML decodes a YAML catalog document.
func ParseYAML(data []byte) (*Catalog, []Rejection, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing yaml catalog: %w", err)
	}
	return New(doc.Enseignes, doc.Stores)
}

// ParseJSON decodes a JSON catalog document.
func ParseJSON(data []byte) (*Catalog, []Rejection, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing json catalog: %w", err)
	}
	return New(doc.Enseignes, doc.Stores)
}
