// ABOUTME: Visitor command group manages the visitor registry
// ABOUTME: Supports manual registration, visits, and signature detection
package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/harper/jarvis/internal/app"
	"github.com/harper/jarvis/internal/models"
	"github.com/spf13/cobra"
)

var (
	visitorUnknown   bool
	visitorNotes     string
	visitorSignature string
	visitorKnownOnly bool
	visitorName      string
)

// NewVisitorCmd creates the visitor command group
func NewVisitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "visitor",
		Aliases: []string{"visitors"},
		Short:   "Manage visitors",
		Long: `Manage visitors.

Visitors are people Jarvis has seen. A visitor may carry a face
signature (comma-separated numbers) used to recognize them later.`,
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a visitor",
		Args:  cobra.ExactArgs(1),
		RunE:  runVisitorAdd,
	}
	add.Flags().BoolVar(&visitorUnknown, "unknown", false, "Register as an unknown visitor")
	add.Flags().StringVar(&visitorNotes, "notes", "", "Free-form notes")
	add.Flags().StringVar(&visitorSignature, "signature", "", "Face signature, comma-separated")
	cmd.AddCommand(add)

	list := &cobra.Command{
		Use:   "list",
		Short: "List visitors",
		Args:  cobra.NoArgs,
		RunE:  runVisitorList,
	}
	list.Flags().BoolVar(&visitorKnownOnly, "known", false, "Only known visitors")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "visit <id>",
		Short: "Record a visit",
		Args:  cobra.ExactArgs(1),
		RunE:  runVisitorVisit,
	})

	detect := &cobra.Command{
		Use:   "detect",
		Short: "Detect a visitor by signature or name",
		Long: `Resolve a visitor the way a camera would: by signature first, then
by name. A visitor is created when neither matches.

Examples:
  jarvis visitor detect --signature 0.12,0.88,0.40
  jarvis visitor detect --name Ada`,
		Args: cobra.NoArgs,
		RunE: runVisitorDetect,
	}
	detect.Flags().StringVar(&visitorName, "name", "", "Visitor name")
	detect.Flags().StringVar(&visitorSignature, "signature", "", "Face signature, comma-separated")
	cmd.AddCommand(detect)

	return cmd
}

func runVisitorAdd(cmd *cobra.Command, args []string) error {
	sig, err := parseSignature(visitorSignature)
	if err != nil {
		return err
	}

	a, err := openApp(cmd, app.Options{SkipCharm: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	id, err := a.Store.AddVisitor(args[0], sig, !visitorUnknown, visitorNotes)
	if err != nil {
		return err
	}
	if wantJSON() {
		v, err := a.Store.GetVisitor(id)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), v)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added visitor %s (id %d)\n", args[0], id)
	return nil
}

func runVisitorList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, app.Options{SkipCharm: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var visitors []models.Visitor
	if visitorKnownOnly {
		visitors, err = a.Store.GetKnownVisitors()
	} else {
		visitors, err = a.Store.ListVisitors()
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if wantJSON() {
		return printJSON(out, visitors)
	}
	if len(visitors) == 0 {
		if !quiet {
			fmt.Fprintln(out, "No visitors.")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tKNOWN\tVISITS\tLAST SEEN\n")
	fmt.Fprintf(w, "--\t----\t-----\t------\t---------\n")
	for _, v := range visitors {
		fmt.Fprintf(w, "%d\t%s\t%t\t%d\t%s\n", v.ID, truncate(v.Name, 30), v.Known, v.VisitCount, formatTime(v.LastSeen))
	}
	return w.Flush()
}

func runVisitorVisit(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid visitor id %q", args[0])
	}

	a, err := openApp(cmd, app.Options{SkipCharm: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ok, err := a.Store.RecordVisit(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("visitor %d not found", id)
	}

	v, err := a.Store.GetVisitor(id)
	if err != nil {
		return err
	}
	if wantJSON() {
		return printJSON(cmd.OutOrStdout(), v)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s has visited %d times\n", v.Name, v.VisitCount)
	return nil
}

func runVisitorDetect(cmd *cobra.Command, args []string) error {
	sig, err := parseSignature(visitorSignature)
	if err != nil {
		return err
	}
	if sig == nil && visitorName == "" {
		return fmt.Errorf("--signature or --name is required")
	}

	a, err := openApp(cmd, app.Options{SkipCharm: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	v, err := a.Session.DetectVisitor(sig, visitorName)
	if err != nil {
		return err
	}
	if wantJSON() {
		return printJSON(cmd.OutOrStdout(), v)
	}
	status := "unknown"
	if v.Known {
		status = "known"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d, %s, %d visits)\n", v.Name, v.ID, status, v.VisitCount)
	return nil
}
