package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := Build(Config{Level: "debug", Component: "storemap"}, &buf)
	log.Debug().Str("k", "v").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "storemap", line["component"])
	assert.Contains(t, line, "timestamp")
}

func TestBuild_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := Build(Config{Level: "warn"}, &buf)
	log.Info().Msg("skipped")
	assert.Zero(t, buf.Len())
	log.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel(" ERROR "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	parent := Build(Config{}, &buf)
	ctx := WithInstance(WithRequestID(context.Background(), "req-1"), "abc")
	FromContext(ctx, &parent).Info().Msg("x")

	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"instance":"abc"`)

	// no parent discards
	FromContext(context.Background(), nil).Info().Msg("y")
	assert.NotContains(t, buf.String(), `"y"`)
}
