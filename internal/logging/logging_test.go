// ABOUTME: Tests for global logger setup
// ABOUTME: Checks level filtering and output format
package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobals(t *testing.T) {
	logger, level := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = logger
		zerolog.SetGlobalLevel(level)
	})
}

func TestSetupFiltersByLevel(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer
	require.NoError(t, Setup("warn", &buf))

	log.Info().Msg("hidden")
	log.Warn().Str("source", "weather").Msg("provider failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "provider failed")
	assert.Contains(t, out, "source=")
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	restoreGlobals(t)
	assert.Error(t, Setup("chatty", &bytes.Buffer{}))
}

func TestSetupJSON(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer
	require.NoError(t, SetupJSON("debug", &buf))

	log.Debug().Str("execution_id", "x1").Msg("task started")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "task started", line["message"])
	assert.Equal(t, "x1", line["execution_id"])
	assert.Equal(t, "jarvis", line["app"])
}

func TestSilence(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer
	require.NoError(t, Setup("debug", &buf))
	Silence()

	log.Error().Msg("nobody hears this")
	assert.Empty(t, buf.String())
}
