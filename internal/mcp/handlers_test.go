// ABOUTME: Tests for MCP tool handlers against an in-memory app
// ABOUTME: Calls handlers directly with constructed tool requests
package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/harper/jarvis/internal/app"
	"github.com/harper/jarvis/internal/automation"
	"github.com/harper/jarvis/internal/config"
	"github.com/harper/jarvis/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerFunc func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	cfg := config.Defaults()
	cfg.TaskDelay = 0

	a, err := app.New(cfg, app.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return NewHandlers(a)
}

func call(t *testing.T, fn handlerFunc, args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	res, err := fn(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func decode(t *testing.T, text string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	return out
}

func TestNewServer(t *testing.T) {
	h := newTestHandlers(t)
	assert.NotNil(t, NewServer(h.app, "test"))
}

func TestAsk(t *testing.T) {
	h := newTestHandlers(t)

	text, isErr := call(t, h.Ask, map[string]any{"text": "what is 6 times 7"})
	require.False(t, isErr, text)
	out := decode(t, text)
	assert.Equal(t, "The result of 6*7 is 42.", out["response"])

	_, isErr = call(t, h.Ask, map[string]any{})
	assert.True(t, isErr)
}

func TestSearchWithExplicitSources(t *testing.T) {
	h := newTestHandlers(t)

	text, isErr := call(t, h.Search, map[string]any{
		"query":       "golang",
		"sources":     []any{"web", "nope"},
		"max_results": float64(1),
	})
	require.False(t, isErr, text)
	out := decode(t, text)

	assert.Equal(t, []any{"web"}, out["sources"])
	results := out["results"].(map[string]any)
	web := results["web"].(map[string]any)
	assert.Len(t, web["results"], 1)

	_, isErr = call(t, h.Search, map[string]any{"query": "x", "sources": []any{1}})
	assert.True(t, isErr)
}

func TestSearchRoutesByKeyword(t *testing.T) {
	h := newTestHandlers(t)

	text, isErr := call(t, h.Search, map[string]any{"query": "what is the weather in Paris"})
	require.False(t, isErr, text)
	out := decode(t, text)
	assert.Equal(t, []any{"weather"}, out["sources"])
}

func TestRunTaskAndStatus(t *testing.T) {
	h := newTestHandlers(t)

	text, isErr := call(t, h.RunTask, map[string]any{
		"operation": automation.OpTurnOnLights,
		"params":    map[string]any{"room": "kitchen"},
	})
	require.False(t, isErr, text)
	ack := decode(t, text)
	id := ack["execution_id"].(string)
	assert.Equal(t, "Task 'turn_on_lights' started", ack["message"])

	h.Shutdown()

	text, isErr = call(t, h.TaskStatus, map[string]any{"execution_id": id})
	require.False(t, isErr, text)
	status := decode(t, text)
	assert.Equal(t, string(models.StateCompleted), status["state"])

	_, isErr = call(t, h.TaskStatus, map[string]any{"execution_id": "missing"})
	assert.True(t, isErr)

	_, isErr = call(t, h.RunTask, map[string]any{"operation": "launch_rocket"})
	assert.True(t, isErr)

	_, isErr = call(t, h.RunTask, map[string]any{"operation": automation.OpTurnOnLights, "params": "kitchen"})
	assert.True(t, isErr)
}

func TestRunRoutine(t *testing.T) {
	h := newTestHandlers(t)

	text, isErr := call(t, h.RunRoutine, map[string]any{"name": "evening"})
	require.False(t, isErr, text)
	out := decode(t, text)
	assert.Equal(t, "evening", out["routine"])
	assert.Len(t, out["results"], 2)

	_, isErr = call(t, h.RunRoutine, map[string]any{"name": "brunch"})
	assert.True(t, isErr)
}

func TestPreferences(t *testing.T) {
	h := newTestHandlers(t)

	text, isErr := call(t, h.SetPreference, map[string]any{
		"key":      "units",
		"category": "weather",
		"value":    "metric",
	})
	require.False(t, isErr, text)

	text, isErr = call(t, h.GetPreference, map[string]any{"key": "units", "category": "weather"})
	require.False(t, isErr, text)
	out := decode(t, text)
	assert.Equal(t, "metric", out["value"])
	assert.Equal(t, true, out["found"])

	text, _ = call(t, h.GetPreference, map[string]any{"key": "missing"})
	out = decode(t, text)
	assert.Equal(t, "general", out["category"])
	assert.Equal(t, false, out["found"])

	_, isErr = call(t, h.SetPreference, map[string]any{"key": "novalue"})
	assert.True(t, isErr)
}

func TestConversationHistoryAndEvents(t *testing.T) {
	h := newTestHandlers(t)

	_, isErr := call(t, h.Ask, map[string]any{"text": "hello"})
	require.False(t, isErr)

	text, isErr := call(t, h.ConversationHistory, map[string]any{"limit": float64(10)})
	require.False(t, isErr, text)
	out := decode(t, text)
	assert.Equal(t, float64(2), out["count"])

	text, _ = call(t, h.ConversationHistory, map[string]any{"visitor_id": float64(99)})
	assert.Equal(t, float64(0), decode(t, text)["count"])

	text, isErr = call(t, h.ListEvents, map[string]any{"event_type": models.EventCommandReceived})
	require.False(t, isErr, text)
	assert.Equal(t, float64(1), decode(t, text)["count"])
}

func TestStringList(t *testing.T) {
	got, err := stringList(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = stringList("web")
	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, got)

	_, err = stringList(42)
	assert.Error(t, err)
}
