// ABOUTME: Ask command handles a single utterance and prints the reply
// ABOUTME: Optionally attributes the utterance to a detected visitor
package commands

import (
	"fmt"
	"strings"

	"github.com/harper/jarvis/internal/app"
	"github.com/spf13/cobra"
)

var askAs string

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <text>",
		Short: "Say one thing to Jarvis",
		Long: `Handle one utterance exactly as a live session would.

Questions are answered from the information sources; task commands are
launched and the command waits for them to finish before exiting.
Both sides of the exchange are saved to conversation history.

Examples:
  jarvis ask "what time is it"
  jarvis ask "turn on the lights in the kitchen"
  jarvis ask --as Ada "play some jazz music"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().StringVar(&askAs, "as", "", "Visitor name to attribute the utterance to")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, app.Options{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if askAs != "" {
		if _, err := a.Session.DetectVisitor(nil, askAs); err != nil {
			return fmt.Errorf("detecting visitor: %w", err)
		}
	}

	text := strings.Join(args, " ")
	reply, err := a.Session.HandleSpeech(cmd.Context(), text)
	if err != nil {
		return err
	}

	if wantJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]string{"command": text, "response": reply})
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}
