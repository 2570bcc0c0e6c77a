// ABOUTME: Global zerolog setup shared by the CLI and the MCP server
// ABOUTME: Human-readable console output with timestamps, or JSON when asked
package logging

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global logger writing to w at the given level.
// The MCP server must pass os.Stderr: stdout carries the protocol.
func Setup(level string, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	console := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	log.Logger = zerolog.New(console).With().Timestamp().Str("app", "jarvis").Logger()
	return nil
}

// SetupJSON installs a structured JSON logger, for log shippers
func SetupJSON(level string, w io.Writer) error {
	if err := Setup(level, w); err != nil {
		return err
	}
	log.Logger = zerolog.New(w).With().Timestamp().Str("app", "jarvis").Logger()
	return nil
}

// Silence discards all log output, for quiet CLI runs
func Silence() {
	log.Logger = zerolog.Nop()
}
