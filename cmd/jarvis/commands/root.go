// ABOUTME: Root command, global flags, and shared app bootstrap for the CLI
// ABOUTME: Every subcommand opens the app through openApp
package commands

import (
	"errors"
	"fmt"

	"github.com/harper/jarvis/internal/app"
	"github.com/harper/jarvis/internal/config"
	"github.com/harper/jarvis/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	configPath   string
	dbPath       string
)

const banner = `
     ██╗ █████╗ ██████╗ ██╗   ██╗██╗███████╗
     ██║██╔══██╗██╔══██╗██║   ██║██║██╔════╝
     ██║███████║██████╔╝██║   ██║██║███████╗
██   ██║██╔══██║██╔══██╗╚██╗ ██╔╝██║╚════██║
╚█████╔╝██║  ██║██║  ██║ ╚████╔╝ ██║███████║
 ╚════╝ ╚═╝  ╚═╝╚═╝  ╚═╝  ╚═══╝  ╚═╝╚══════╝`

// NewRootCmd creates the root command with every subcommand attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jarvis",
		Short: "Personal assistant for your home",
		Long: banner + `

Jarvis listens for a wake word, answers questions from its information
sources, runs home automation tasks and routines, recognizes visitors,
and remembers preferences and conversations in a local SQLite database.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return errors.New("--verbose and --quiet are mutually exclusive")
			}
			switch outputFormat {
			case "auto", "table", "json":
			default:
				return fmt.Errorf("unknown --format %q (want auto, table, or json)", outputFormat)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, or json")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/jarvis/config.yaml)")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default $XDG_DATA_HOME/jarvis/jarvis.db)")

	cmd.AddCommand(NewStartCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewTaskCmd())
	cmd.AddCommand(NewRoutineCmd())
	cmd.AddCommand(NewPrefsCmd())
	cmd.AddCommand(NewVisitorCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewEventsCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig resolves configuration and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// setupLogging routes logs to stderr so stdout stays parseable
func setupLogging(cmd *cobra.Command, cfg *config.Config) error {
	if quiet {
		logging.Silence()
		return nil
	}
	return logging.Setup(cfg.LogLevel, cmd.ErrOrStderr())
}

// openApp loads config, configures logging, and assembles the app
func openApp(cmd *cobra.Command, opts app.Options) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := setupLogging(cmd, cfg); err != nil {
		return nil, err
	}

	a, err := app.New(cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("initializing jarvis: %w", err)
	}
	return a, nil
}

// wantJSON reports whether output should be JSON
func wantJSON() bool {
	return outputFormat == "json"
}
