package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	assert.Equal(t, "x.duckdb", Config{Path: "x.duckdb"}.DSN())
	assert.Equal(t, "x.duckdb?access_mode=READ_ONLY", Config{Path: "x.duckdb", ReadOnly: true}.DSN())
}

func TestOpen_RejectsMissingReadOnly(t *testing.T) {
	_, err := Open(Config{Path: filepath.Join(t.TempDir(), "missing.duckdb"), ReadOnly: true})
	require.Error(t, err)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
}
