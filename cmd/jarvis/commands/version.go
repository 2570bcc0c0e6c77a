// ABOUTME: Version command and build metadata
// ABOUTME: Values are injected by main at startup
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// VersionInfo holds build metadata
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

var versionInfo = VersionInfo{Version: "dev", Commit: "none", Date: "unknown"}

// SetVersion records build metadata for the version command
func SetVersion(version, commit, date string) {
	versionInfo = VersionInfo{Version: version, Commit: commit, Date: date}
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the Jarvis version, commit, and build date.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if wantJSON() {
				return printJSON(out, versionInfo)
			}
			fmt.Fprintf(out, "Jarvis %s\n", versionInfo.Version)
			fmt.Fprintf(out, "Commit: %s\n", versionInfo.Commit)
			fmt.Fprintf(out, "Built:  %s\n", versionInfo.Date)
			return nil
		},
	}
}
