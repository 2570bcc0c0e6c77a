// ABOUTME: Routine command group runs and lists multi-step routines
// ABOUTME: Shows the cron schedule of routines that declare one
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/harper/jarvis/internal/app"
	"github.com/spf13/cobra"
)

// NewRoutineCmd creates the routine command group
func NewRoutineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routine",
		Short: "Run and list routines",
		Long: `Run and list routines.

A routine launches its steps in order. The built-in routines are
morning, evening, and bedtime; more can be declared in the routines
file (routines_file in config.yaml).`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "run <name>",
		Short: "Run a routine",
		Args:  cobra.ExactArgs(1),
		RunE:  runRoutineRun,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List routines",
		Args:  cobra.NoArgs,
		RunE:  runRoutineList,
	})

	return cmd
}

func runRoutineRun(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, app.Options{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	res, err := a.Runner.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if wantJSON() {
		return printJSON(out, res)
	}

	fmt.Fprintln(out, res.Message)
	if quiet {
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "STEP\tOPERATION\tOK\tEXECUTION\n")
	fmt.Fprintf(w, "----\t---------\t--\t---------\n")
	for i, step := range res.Steps {
		id := step.ExecutionID
		if id == "" {
			id = step.Message
		}
		fmt.Fprintf(w, "%d\t%s\t%t\t%s\n", i+1, step.Operation, step.Success, id)
	}
	return w.Flush()
}

func runRoutineList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, app.Options{SkipCharm: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	routines := a.Runner.Routines()
	out := cmd.OutOrStdout()
	if wantJSON() {
		return printJSON(out, routines)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tSTEPS\tSCHEDULE\tDESCRIPTION\n")
	fmt.Fprintf(w, "----\t-----\t--------\t-----------\n")
	for _, rt := range routines {
		schedule := rt.Schedule
		if schedule == "" {
			schedule = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", rt.Name, len(rt.Steps), schedule, truncate(rt.Description, 50))
	}
	return w.Flush()
}
