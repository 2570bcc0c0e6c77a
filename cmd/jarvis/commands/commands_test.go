// ABOUTME: End-to-end tests for the CLI subcommands
// ABOUTME: Each test runs against a fresh file-backed database
package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskCmd(t *testing.T) {
	db := isolate(t)

	out, err := runCLI(t, db, "ask", "what", "is", "5", "times", "3")
	require.NoError(t, err)
	assert.Equal(t, "The result of 5*3 is 15.\n", out)

	out, err = runCLI(t, db, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "assistant")
	assert.Contains(t, out, "what is 5 times 3")
}

func TestAskCmd_AsVisitor(t *testing.T) {
	db := isolate(t)

	_, err := runCLI(t, db, "ask", "--as", "Ada", "turn on the lights in the kitchen")
	require.NoError(t, err)

	out, err := runCLI(t, db, "--format", "json", "history", "--visitor", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"visitor_name": "Ada"`)

	out, err = runCLI(t, db, "events", "--type", "task_completed")
	require.NoError(t, err)
	assert.Contains(t, out, "task_completed")
}

func TestSearchCmd(t *testing.T) {
	db := isolate(t)

	out, err := runCLI(t, db, "search", "what time is it")
	require.NoError(t, err)
	assert.Contains(t, out, "SOURCE")
	assert.Contains(t, out, "time")
	assert.Contains(t, out, "ok")

	out, err = runCLI(t, db, "--format", "json", "search", "--sources", "calculator", "what is 2 plus 2")
	require.NoError(t, err)
	assert.Contains(t, out, `"calculator"`)

	_, err = runCLI(t, db, "search", "--limit", "0", "anything")
	assert.Error(t, err)
}

func TestTaskCmd(t *testing.T) {
	db := isolate(t)

	out, err := runCLI(t, db, "task", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "turn_on_lights")
	assert.Contains(t, out, "message,time")

	out, err = runCLI(t, db, "task", "run", "turn_on_lights", "room=kitchen", "--wait")
	require.NoError(t, err)
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "Turned on lights in kitchen")

	out, err = runCLI(t, db, "task", "run", "turn_on_lights", "room=garage")
	require.NoError(t, err)
	assert.Contains(t, out, "Task 'turn_on_lights' started")

	_, err = runCLI(t, db, "task", "run", "turn_on_lights")
	assert.ErrorContains(t, err, "missing required parameter: room")

	_, err = runCLI(t, db, "task", "run", "launch_rocket")
	assert.Error(t, err)
}

func TestRoutineCmd(t *testing.T) {
	db := isolate(t)

	out, err := runCLI(t, db, "routine", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "bedtime")
	assert.Contains(t, out, "morning")

	out, err = runCLI(t, db, "routine", "run", "bedtime")
	require.NoError(t, err)
	assert.Contains(t, out, "turn_off_lights")

	_, err = runCLI(t, db, "routine", "run", "nope")
	assert.Error(t, err)
}

func TestPrefsCmd(t *testing.T) {
	db := isolate(t)

	_, err := runCLI(t, db, "prefs", "set", "city", "Oslo", "--category", "weather")
	require.NoError(t, err)
	_, err = runCLI(t, db, "prefs", "set", "volume", "0.7")
	require.NoError(t, err)

	out, err := runCLI(t, db, "prefs", "get", "city", "-c", "weather")
	require.NoError(t, err)
	assert.Equal(t, "Oslo\n", out)

	out, err = runCLI(t, db, "prefs", "get", "missing")
	require.NoError(t, err)
	assert.Equal(t, "(unset)\n", out)

	out, err = runCLI(t, db, "prefs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "weather")
	assert.Contains(t, out, "0.7")

	out, err = runCLI(t, db, "--format", "json", "prefs", "list", "--category", "general")
	require.NoError(t, err)
	assert.Contains(t, out, `"volume": 0.7`)
	assert.NotContains(t, out, "Oslo")
}

func TestVisitorCmd(t *testing.T) {
	db := isolate(t)

	out, err := runCLI(t, db, "visitor", "add", "Ada", "--notes", "neighbor")
	require.NoError(t, err)
	assert.Contains(t, out, "Added visitor Ada (id 1)")

	_, err = runCLI(t, db, "visitor", "add", "Courier", "--unknown", "--signature", "0.1,0.9")
	require.NoError(t, err)

	out, err = runCLI(t, db, "visitor", "list", "--known")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada")
	assert.NotContains(t, out, "Courier")

	out, err = runCLI(t, db, "visitor", "visit", "1")
	require.NoError(t, err)
	assert.Equal(t, "Ada has visited 2 times\n", out)

	_, err = runCLI(t, db, "visitor", "visit", "99")
	assert.Error(t, err)

	out, err = runCLI(t, db, "visitor", "detect", "--signature", "0.1,0.9")
	require.NoError(t, err)
	assert.Contains(t, out, "Courier (id 2, unknown, 2 visits)")

	_, err = runCLI(t, db, "visitor", "detect")
	assert.Error(t, err)

	out, err = runCLI(t, db, "events", "--type", "visitor_visit")
	require.NoError(t, err)
	assert.Contains(t, out, "visitor_visit")
}

func TestEventsCmd_Empty(t *testing.T) {
	db := isolate(t)

	out, err := runCLI(t, db, "events", "--type", "wake_word_detected")
	require.NoError(t, err)
	assert.Equal(t, "No events.\n", out)

	_, err = runCLI(t, db, "events", "--limit", "-1")
	assert.Error(t, err)
}

func TestExportCmd(t *testing.T) {
	db := isolate(t)
	dir := t.TempDir()

	_, err := runCLI(t, db, "prefs", "set", "theme", "dark")
	require.NoError(t, err)

	out, err := runCLI(t, db, "export", "--as", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"tool": "jarvis"`)
	assert.Contains(t, out, `"theme"`)

	yamlPath := filepath.Join(dir, "out.yaml")
	_, err = runCLI(t, db, "export", "--output", yamlPath)
	require.NoError(t, err)
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "theme")

	mdPath := filepath.Join(dir, "out.md")
	_, err = runCLI(t, db, "export", "--as", "markdown", "-o", mdPath)
	require.NoError(t, err)
	assert.FileExists(t, mdPath)

	_, err = runCLI(t, db, "export", "--as", "csv")
	assert.Error(t, err)
}

func TestStartCmd_ReadsStdin(t *testing.T) {
	db := isolate(t)

	out, err := runCLIWithInput(t, db, "jarvis\nwhat is 6 times 7\n", "start")
	require.NoError(t, err)
	assert.Contains(t, out, "Jarvis is listening")
	assert.Contains(t, out, "Jarvis: The result of 6*7 is 42.")

	out, err = runCLI(t, db, "events", "--type", "wake_word_detected")
	require.NoError(t, err)
	assert.Contains(t, out, "wake_word_detected")
}

func TestStartCmd_RequireWake(t *testing.T) {
	db := isolate(t)

	out, err := runCLIWithInput(t, db, "what is 6 times 7\n", "--quiet", "start", "--require-wake")
	require.NoError(t, err)
	assert.NotContains(t, out, "Jarvis:")
}

func TestSyncWipe_RequiresConfirm(t *testing.T) {
	_, err := runCLI(t, isolate(t), "sync", "wipe")
	assert.ErrorContains(t, err, "--confirm")
}
