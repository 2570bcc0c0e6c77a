// ABOUTME: Events command shows the system event log
// ABOUTME: Filterable by event type, newest first
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/harper/jarvis/internal/app"
	"github.com/spf13/cobra"
)

var (
	eventsType  string
	eventsLimit int
)

// NewEventsCmd creates the events command
func NewEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the event log",
		Long: `Show the event log, newest first.

Event types include system_start, system_stop, wake_word_detected,
command_received, visitor_detected, visitor_visit, task_completed,
and task_failed.`,
		Args: cobra.NoArgs,
		RunE: runEvents,
	}

	cmd.Flags().StringVarP(&eventsType, "type", "t", "", "Only events of this type")
	cmd.Flags().IntVarP(&eventsLimit, "limit", "n", 20, "Maximum events to show")

	return cmd
}

func runEvents(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(eventsLimit, "limit"); err != nil {
		return err
	}

	a, err := openApp(cmd, app.Options{SkipCharm: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	events, err := a.Store.GetEvents(eventsType, eventsLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if wantJSON() {
		return printJSON(out, events)
	}
	if len(events) == 0 {
		if !quiet {
			fmt.Fprintln(out, "No events.")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tWHEN\tTYPE\tDESCRIPTION\n")
	fmt.Fprintf(w, "--\t----\t----\t-----------\n")
	for _, e := range events {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, formatTime(e.Timestamp), e.Type, truncate(e.Description, 60))
	}
	return w.Flush()
}
