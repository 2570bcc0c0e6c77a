// ABOUTME: Prefs command group reads and writes preferences
// ABOUTME: Values given on the command line are parsed as JSON when possible
package commands

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/harper/jarvis/internal/app"
	"github.com/spf13/cobra"
)

var prefsCategory string

// NewPrefsCmd creates the prefs command group
func NewPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prefs",
		Aliases: []string{"pref", "preferences"},
		Short:   "Manage preferences",
		Long: `Manage preferences.

Preferences are grouped by category (default "general"). Values that
parse as JSON are stored typed, so 0.7 is a number and Oslo a string.

Examples:
  jarvis prefs set city Oslo --category weather
  jarvis prefs get city --category weather
  jarvis prefs list`,
	}

	cmd.PersistentFlags().StringVarP(&prefsCategory, "category", "c", "", "Preference category")

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Show one preference",
		Args:  cobra.ExactArgs(1),
		RunE:  runPrefsGet,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a preference",
		Args:  cobra.ExactArgs(2),
		RunE:  runPrefsSet,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List preferences",
		Args:  cobra.NoArgs,
		RunE:  runPrefsList,
	})

	return cmd
}

func runPrefsGet(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, app.Options{SkipCharm: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	value, err := a.Store.GetPreference(args[0], prefsCategory, nil)
	if err != nil {
		return err
	}
	if wantJSON() {
		return printJSON(cmd.OutOrStdout(), value)
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatValue(value))
	return nil
}

func runPrefsSet(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, app.Options{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.Store.SetPreference(args[0], prefsCategory, parseValue(args[1])); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
	}
	return nil
}

func runPrefsList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, app.Options{SkipCharm: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	all, err := a.Store.GetAllPreferences(prefsCategory)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if wantJSON() {
		return printJSON(out, all)
	}
	if len(all) == 0 {
		if !quiet {
			fmt.Fprintln(out, "No preferences set.")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CATEGORY\tKEY\tVALUE\n")
	fmt.Fprintf(w, "--------\t---\t-----\n")
	for _, category := range sortedKeys(all) {
		prefs := all[category]
		for _, key := range sortedKeys(prefs) {
			fmt.Fprintf(w, "%s\t%s\t%s\n", category, key, truncate(formatValue(prefs[key]), 60))
		}
	}
	return w.Flush()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
