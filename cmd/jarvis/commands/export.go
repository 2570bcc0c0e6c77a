// ABOUTME: Export command writes all stored data to a file or stdout
// ABOUTME: Supports YAML, Markdown, and JSON output
package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/harper/jarvis/internal/app"
	"github.com/spf13/cobra"
)

var (
	exportAs     string
	exportOutput string
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export preferences, visitors, conversations, and events",
		Long: `Export everything Jarvis has stored.

YAML and Markdown are written to a file (default jarvis-export-DATE.yaml
or .md in the current directory). JSON goes to stdout unless --output
is given.

Examples:
  jarvis export
  jarvis export --as markdown --output ~/notes/jarvis.md
  jarvis export --as json > backup.json`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringVar(&exportAs, "as", "yaml", "Export format: yaml, markdown, or json")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, app.Options{SkipCharm: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	durable := a.Store.Durable()
	out := cmd.OutOrStdout()
	stamp := time.Now().Format("2006-01-02")

	switch exportAs {
	case "yaml", "yml":
		path := exportOutput
		if path == "" {
			path = fmt.Sprintf("jarvis-export-%s.yaml", stamp)
		}
		if err := durable.ExportToYAML(path); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(out, "Exported to %s\n", path)
		}
	case "markdown", "md":
		path := exportOutput
		if path == "" {
			path = fmt.Sprintf("jarvis-export-%s.md", stamp)
		}
		if err := durable.ExportToMarkdown(path); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(out, "Exported to %s\n", path)
		}
	case "json":
		data, err := durable.Export()
		if err != nil {
			return err
		}
		if exportOutput == "" {
			return printJSON(out, data)
		}
		f, err := os.Create(exportOutput) // #nosec G304
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		if err := printJSON(f, data); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(out, "Exported to %s\n", exportOutput)
		}
	default:
		return fmt.Errorf("unknown export format %q (want yaml, markdown, or json)", exportAs)
	}
	return nil
}
