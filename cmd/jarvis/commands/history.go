// ABOUTME: History command shows the conversation log
// ABOUTME: Entries are newest first and can be filtered by visitor
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/harper/jarvis/internal/app"
	"github.com/spf13/cobra"
)

var (
	historyLimit   int
	historyVisitor int64
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show conversation history",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}

	cmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to show")
	cmd.Flags().Int64Var(&historyVisitor, "visitor", 0, "Only entries for this visitor id")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(historyLimit, "limit"); err != nil {
		return err
	}

	a, err := openApp(cmd, app.Options{SkipCharm: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var visitorID *int64
	if cmd.Flags().Changed("visitor") {
		visitorID = &historyVisitor
	}
	entries, err := a.Store.GetConversationHistory(historyLimit, visitorID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if wantJSON() {
		return printJSON(out, entries)
	}
	if len(entries) == 0 {
		if !quiet {
			fmt.Fprintln(out, "No conversations yet.")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "WHEN\tSPEAKER\tVISITOR\tMESSAGE\n")
	fmt.Fprintf(w, "----\t-------\t-------\t-------\n")
	for _, e := range entries {
		visitor := e.VisitorName
		if visitor == "" {
			visitor = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", formatTime(e.Timestamp), e.Speaker, visitor, truncate(e.Message, 60))
	}
	return w.Flush()
}
