// ABOUTME: MCP tool definitions and registration for the jarvis server
// ABOUTME: Exposes asking, searching, tasks, routines, preferences, and history
package mcp

import (
	"github.com/harper/jarvis/internal/app"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server with every jarvis tool registered
func NewServer(a *app.App, version string) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer("Jarvis Assistant", version)
	RegisterTools(server, a)
	return server
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, a *app.App) *Handlers {
	handlers := NewHandlers(a)

	// 1. ask - full assistant turn
	server.AddTool(mcp.Tool{
		Name:        "ask",
		Description: "Speak a command to Jarvis. Tasks are launched, questions are answered, and both sides are recorded in conversation history.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"text": map[string]any{
					"type":        "string",
					"description": "What the user said, e.g. 'turn on the lights in the kitchen'",
				},
			},
			Required: []string{"text"},
		},
	}, handlers.Ask)

	// 2. search - raw dispatcher results
	server.AddTool(mcp.Tool{
		Name:        "search",
		Description: "Query information sources concurrently and return structured results per source. Sources are chosen by keyword unless given.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search query",
				},
				"sources": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Sources to query (time, weather, date, calculator, news, web, knowledge_base, llm)",
				},
				"max_results": map[string]any{
					"type":        "number",
					"description": "Maximum list entries per source (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.Search)

	// 3. run_task - launch one operation
	server.AddTool(mcp.Tool{
		Name:        "run_task",
		Description: "Launch a home automation operation asynchronously. Returns an execution id to poll with task_status.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"operation": map[string]any{
					"type":        "string",
					"description": "Operation name, e.g. turn_on_lights",
				},
				"params": map[string]any{
					"type":        "object",
					"description": "Operation parameters, e.g. {\"room\": \"kitchen\"}",
				},
			},
			Required: []string{"operation"},
		},
	}, handlers.RunTask)

	// 4. task_status - poll an execution
	server.AddTool(mcp.Tool{
		Name:        "task_status",
		Description: "Get the state, result, or error of a task execution.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"execution_id": map[string]any{
					"type":        "string",
					"description": "Execution id returned by run_task or run_routine",
				},
			},
			Required: []string{"execution_id"},
		},
	}, handlers.TaskStatus)

	// 5. run_routine - launch a named sequence
	server.AddTool(mcp.Tool{
		Name:        "run_routine",
		Description: "Launch every step of a named routine (morning, evening, bedtime, or a loaded one) in order.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "Routine name",
				},
			},
			Required: []string{"name"},
		},
	}, handlers.RunRoutine)

	// 6. get_preference
	server.AddTool(mcp.Tool{
		Name:        "get_preference",
		Description: "Read a stored user preference.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"key": map[string]any{
					"type":        "string",
					"description": "Preference key",
				},
				"category": map[string]any{
					"type":        "string",
					"description": "Preference category (default: general)",
				},
			},
			Required: []string{"key"},
		},
	}, handlers.GetPreference)

	// 7. set_preference
	server.AddTool(mcp.Tool{
		Name:        "set_preference",
		Description: "Store a user preference. The value may be any JSON value.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"key": map[string]any{
					"type":        "string",
					"description": "Preference key",
				},
				"category": map[string]any{
					"type":        "string",
					"description": "Preference category (default: general)",
				},
				"value": map[string]any{
					"description": "Preference value",
				},
			},
			Required: []string{"key", "value"},
		},
	}, handlers.SetPreference)

	// 8. conversation_history
	server.AddTool(mcp.Tool{
		Name:        "conversation_history",
		Description: "List conversation entries, newest first, optionally for one visitor.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"limit": map[string]any{
					"type":        "number",
					"description": "Maximum entries (default: 20)",
					"default":     20,
				},
				"visitor_id": map[string]any{
					"type":        "number",
					"description": "Only entries tagged with this visitor",
				},
			},
		},
	}, handlers.ConversationHistory)

	// 9. list_events
	server.AddTool(mcp.Tool{
		Name:        "list_events",
		Description: "List logged system events, newest first, optionally of one type.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"event_type": map[string]any{
					"type":        "string",
					"description": "Event type, e.g. visitor_visit or task_completed",
				},
				"limit": map[string]any{
					"type":        "number",
					"description": "Maximum events (default: 20)",
					"default":     20,
				},
			},
		},
	}, handlers.ListEvents)

	return handlers
}
