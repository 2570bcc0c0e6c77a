// ABOUTME: MCP tool handler implementations for the jarvis server
// ABOUTME: Tool failures are reported as error results, never as protocol errors
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harper/jarvis/internal/app"
	"github.com/harper/jarvis/internal/automation"
	"github.com/harper/jarvis/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	app *app.App
}

// NewHandlers creates handlers over an assembled app
func NewHandlers(a *app.App) *Handlers {
	return &Handlers{app: a}
}

// Shutdown waits for launched tasks to finish
func (h *Handlers) Shutdown() {
	h.app.Executor.Wait()
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Ask handles the ask tool
func (h *Handlers) Ask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	reply, err := h.app.Session.HandleSpeech(ctx, text)
	if err != nil {
		log.Error().Err(err).Msg("ask failed")
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"command":  text,
		"response": reply,
	})
}

// Search handles the search tool
func (h *Handlers) Search(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	sources, err := stringList(request.GetArguments()["sources"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxResults := request.GetInt("max_results", h.app.Config.MaxResults)

	resp := h.app.Dispatcher.Search(ctx, query, sources, maxResults)
	return jsonResult(resp)
}

// RunTask handles the run_task tool
func (h *Handlers) RunTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	operation, err := request.RequireString("operation")
	if err != nil {
		return mcp.NewToolResultError("operation argument is required and must be a string"), nil
	}

	params := automation.Params{}
	if raw, ok := request.GetArguments()["params"]; ok && raw != nil {
		m, ok := raw.(map[string]any)
		if !ok {
			return mcp.NewToolResultError("params must be an object"), nil
		}
		params = automation.Params(m)
	}

	ack, err := h.app.Executor.Execute(ctx, operation, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ack)
}

// TaskStatus handles the task_status tool
func (h *Handlers) TaskStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("execution_id")
	if err != nil {
		return mcp.NewToolResultError("execution_id argument is required and must be a string"), nil
	}

	exec, err := h.app.Executor.Status(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(exec)
}

// RunRoutine handles the run_routine tool
func (h *Handlers) RunRoutine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name argument is required and must be a string"), nil
	}

	res, err := h.app.Runner.Run(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

// GetPreference handles the get_preference tool
func (h *Handlers) GetPreference(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("key argument is required and must be a string"), nil
	}
	category := request.GetString("category", models.DefaultCategory)

	value, err := h.app.Store.GetPreference(key, category, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read preference: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"key":      key,
		"category": category,
		"value":    value,
		"found":    value != nil,
	})
}

// SetPreference handles the set_preference tool
func (h *Handlers) SetPreference(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("key argument is required and must be a string"), nil
	}
	value, ok := request.GetArguments()["value"]
	if !ok {
		return mcp.NewToolResultError("value argument is required"), nil
	}
	category := request.GetString("category", models.DefaultCategory)

	if err := h.app.Store.SetPreference(key, category, value); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store preference: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"success":  true,
		"key":      key,
		"category": category,
	})
}

// ConversationHistory handles the conversation_history tool
func (h *Handlers) ConversationHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)

	var visitorID *int64
	if _, ok := request.GetArguments()["visitor_id"]; ok {
		id := int64(request.GetInt("visitor_id", 0))
		visitorID = &id
	}

	entries, err := h.app.Store.GetConversationHistory(limit, visitorID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read history: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// ListEvents handles the list_events tool
func (h *Handlers) ListEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eventType := request.GetString("event_type", "")
	limit := request.GetInt("limit", 20)

	events, err := h.app.Store.GetEvents(eventType, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read events: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"events": events,
		"count":  len(events),
	})
}

// stringList accepts a JSON array of strings or a single string
func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{t}, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("sources must be a list of strings")
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("sources must be a list of strings")
}
