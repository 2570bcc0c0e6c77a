// ABOUTME: Tests for export functionality
// ABOUTME: Verifies YAML and Markdown export formats
package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harper/jarvis/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func seedExport(t *testing.T, s *Storage) {
	t.Helper()

	_, err := s.Preferences.Set(&models.Preference{Key: "units", Category: "weather", Value: "metric"})
	require.NoError(t, err)

	id, err := s.Visitors.Create(&models.Visitor{Name: "Ada", Known: true})
	require.NoError(t, err)

	_, err = s.Conversations.Append(&models.ConversationEntry{Speaker: models.SpeakerUser, Message: "what time is it", VisitorID: &id})
	require.NoError(t, err)
	_, err = s.Conversations.Append(&models.ConversationEntry{Speaker: models.SpeakerAssistant, Message: "It's 09:00 AM"})
	require.NoError(t, err)

	_, err = s.Events.Append(&models.Event{Type: models.EventSystemStart, Description: "Jarvis started"})
	require.NoError(t, err)
}

func TestExport(t *testing.T) {
	s := newTestStorage(t)
	seedExport(t, s)

	data, err := s.Export()
	require.NoError(t, err)

	assert.Equal(t, "1.0", data.Version)
	assert.Equal(t, "jarvis", data.Tool)
	assert.Len(t, data.Preferences, 1)
	assert.Len(t, data.Visitors, 1)
	require.Len(t, data.Conversations, 2)
	assert.Equal(t, "what time is it", data.Conversations[0].Message)
	assert.Len(t, data.Events, 1)
}

func TestExportToYAML(t *testing.T) {
	s := newTestStorage(t)
	seedExport(t, s)

	out := filepath.Join(t.TempDir(), "nested", "export.yaml")
	require.NoError(t, s.ExportToYAML(out))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &decoded))
	assert.Equal(t, "jarvis", decoded["tool"])
	assert.Len(t, decoded["visitors"], 1)
}

func TestExportToMarkdown(t *testing.T) {
	s := newTestStorage(t)
	seedExport(t, s)

	out := filepath.Join(t.TempDir(), "export.md")
	require.NoError(t, s.ExportToMarkdown(out))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, "# Jarvis Export")
	assert.Contains(t, content, "## Preferences")
	assert.Contains(t, content, "| weather | units | metric |")
	assert.Contains(t, content, "**Ada:** what time is it")
	assert.Contains(t, content, "**Jarvis:** It's 09:00 AM")
	assert.Contains(t, content, "system_start")
}

func TestExportEmpty(t *testing.T) {
	s := newTestStorage(t)

	data, err := s.Export()
	require.NoError(t, err)
	assert.Empty(t, data.Preferences)
	assert.Empty(t, data.Conversations)
}
