// ABOUTME: MCP command serves the assistant over stdio
// ABOUTME: Logs go to stderr so the protocol stream stays clean
package commands

import (
	"github.com/harper/jarvis/internal/app"
	"github.com/harper/jarvis/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

// NewMCPCmd creates the mcp command
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout.

Register it with an MCP client, for example:
  {"command": "jarvis", "args": ["mcp"]}`,
		Args: cobra.NoArgs,
		RunE: runMCP,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, app.Options{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.Start(cmd.Context()); err != nil {
		return err
	}
	return mcpserver.ServeStdio(mcp.NewServer(a, versionInfo.Version))
}
