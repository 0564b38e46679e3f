package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Options{Format: "json", Out: &buf})
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	log.Info().Str("budget", "initial").Msg("checked")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "initial", entry["budget"])
	assert.Equal(t, "checked", entry["message"])
}

func TestSetup_ConsoleDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Options{Debug: true, NoColor: true, Out: &buf})
	require.NoError(t, err)

	logger.Debug().Msg("pass started")
	assert.Contains(t, buf.String(), "DBG")
	assert.Contains(t, buf.String(), "pass started")
}

func TestSetup_InvalidFormat(t *testing.T) {
	_, err := Setup(Options{Format: "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}
