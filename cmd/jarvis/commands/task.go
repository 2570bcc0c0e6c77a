// ABOUTME: Task command group launches and lists automation operations
// ABOUTME: Launches are asynchronous; --wait prints the terminal record
package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/harper/jarvis/internal/app"
	"github.com/spf13/cobra"
)

var taskWait bool

// NewTaskCmd creates the task command group
func NewTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Run and inspect automation tasks",
		Long: `Run and inspect automation tasks.

Tasks are registered operations such as turn_on_lights or play_music.
Each run gets an execution id and finishes in the background.`,
	}

	cmd.AddCommand(newTaskRunCmd())
	cmd.AddCommand(newTaskListCmd())

	return cmd
}

func newTaskRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <operation> [key=value...]",
		Short: "Launch an operation",
		Long: `Launch a registered operation with key=value parameters.

Examples:
  jarvis task run turn_on_lights room=kitchen
  jarvis task run set_reminder message="take out the bins" time=18:00 --wait`,
		Args: cobra.MinimumNArgs(1),
		RunE: runTaskRun,
	}

	cmd.Flags().BoolVar(&taskWait, "wait", false, "Wait for the task to finish and print its result")

	return cmd
}

func runTaskRun(cmd *cobra.Command, args []string) error {
	params, err := parseParams(args[1:])
	if err != nil {
		return err
	}

	a, err := openApp(cmd, app.Options{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ack, err := a.Executor.Execute(cmd.Context(), args[0], params)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !taskWait {
		if wantJSON() {
			return printJSON(out, ack)
		}
		fmt.Fprintf(out, "%s (%s)\n", ack.Message, ack.ExecutionID)
		return nil
	}

	a.Executor.Wait()
	exec, err := a.Executor.Status(ack.ExecutionID)
	if err != nil {
		return err
	}
	if wantJSON() {
		return printJSON(out, exec)
	}

	fmt.Fprintf(out, "Execution: %s\n", exec.ID)
	fmt.Fprintf(out, "State:     %s\n", exec.State)
	if exec.Error != "" {
		fmt.Fprintf(out, "Error:     %s\n", exec.Error)
	}
	if msg, ok := exec.Result["message"].(string); ok {
		fmt.Fprintf(out, "Result:    %s\n", msg)
	}
	return nil
}

func newTaskListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered operations",
		Args:  cobra.NoArgs,
		RunE:  runTaskList,
	}
}

func runTaskList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, app.Options{SkipCharm: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ops := a.Executor.Operations()
	out := cmd.OutOrStdout()
	if wantJSON() {
		return printJSON(out, ops)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "OPERATION\tREQUIRED\tDESCRIPTION\n")
	fmt.Fprintf(w, "---------\t--------\t-----------\n")
	for _, op := range ops {
		required := strings.Join(op.RequiredParams, ",")
		if required == "" {
			required = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", op.Name, required, truncate(op.Description, 50))
	}
	return w.Flush()
}
