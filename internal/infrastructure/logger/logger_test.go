package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter("debug", "json", &buf)
	require.NoError(t, err)

	log.Info().Str("kind", "upstream_error").Msg("generation failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "generation failed", line["message"])
	assert.Equal(t, "upstream_error", line["kind"])
	assert.Equal(t, "promptforge", line["service"])
}

func TestNewWithWriterRejectsUnknownFormat(t *testing.T) {
	_, err := NewWithWriter("info", "xml", &bytes.Buffer{})
	assert.Error(t, err)

	_, err = NewWithWriter("loud", "json", &bytes.Buffer{})
	assert.Error(t, err)
}
