// Package db opens DuckDB databases holding survey catalogs.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Config holds database configuration.
type Config struct {
	Path     string
	ReadOnly bool
}

// DSN returns the driver connection string for the config.
func (c Config) DSN() string {
	if c.ReadOnly {
		return c.Path + "?access_mode=READ_ONLY"
	}
	return c.Path
}

// Open returns a DuckDB connection. Read-only databases must already exist;
// otherwise the parent directory is created.
func Open(cfg Config) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, errors.New("database path is empty")
	}
	if cfg.ReadOnly {
		if _, err := os.Stat(cfg.Path); err != nil {
			return nil, fmt.Errorf("catalog database: %w", err)
		}
	} else if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create duckdb directory: %w", err)
	}

	conn, err := sql.Open("duckdb", cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to duckdb: %w", err)
	}
	return conn, nil
}
