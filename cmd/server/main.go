// ABOUTME: Main entry point for the standalone Jarvis MCP server on stdio
// ABOUTME: Loads config, assembles the app, and serves every MCP tool
package main

import (
	"context"
	"os"

	"github.com/harper/jarvis/internal/app"
	"github.com/harper/jarvis/internal/config"
	"github.com/harper/jarvis/internal/logging"
	"github.com/harper/jarvis/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
)

var version = "dev"

func main() {
	cfg, err := config.Load(os.Getenv("JARVIS_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// stdout carries the protocol; logs go to stderr
	if err := logging.Setup(cfg.LogLevel, os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logging")
	}

	if !cfg.LLMEnabled() {
		log.Warn().Msg("OPENAI_API_KEY not set; the llm source and sentiment are disabled")
	}

	a, err := app.New(cfg, app.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize jarvis")
	}
	defer func() { _ = a.Close() }()

	if err := a.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to start session")
	}

	log.Info().Str("db", cfg.DBPath).Msg("jarvis MCP server starting on stdio")
	if err := mcpserver.ServeStdio(mcp.NewServer(a, version)); err != nil {
		log.Error().Err(err).Msg("server error")
	}
}
