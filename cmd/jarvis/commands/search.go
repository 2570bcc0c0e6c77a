// ABOUTME: Search command queries information sources directly
// ABOUTME: Prints each source's outcome or the raw response as JSON
package commands

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/harper/jarvis/internal/app"
	"github.com/spf13/cobra"
)

var (
	searchSources []string
	searchLimit   int
)

// NewSearchCmd creates search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Query information sources",
		Long: `Query information sources concurrently.

Without --sources the query is routed by keyword: time, weather, date,
calculator, and news questions go to one source; anything else goes to
web and knowledge_base. Sources that miss the deadline are listed as
incomplete.

Examples:
  jarvis search "weather in Paris"
  jarvis search --sources web,news "golang"
  jarvis search --format json "what is 12 times 12"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().StringSliceVar(&searchSources, "sources", nil, "Sources to query (default: route by keyword)")
	cmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum list entries per source")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}

	a, err := openApp(cmd, app.Options{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	query := strings.Join(args, " ")
	resp := a.Dispatcher.Search(cmd.Context(), query, searchSources, searchLimit)

	out := cmd.OutOrStdout()
	if wantJSON() {
		return printJSON(out, resp)
	}

	if len(resp.Sources) == 0 {
		if !quiet {
			fmt.Fprintf(out, "No known sources selected for query: %s\n", query)
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SOURCE\tOUTCOME\tDETAIL\n")
	fmt.Fprintf(w, "------\t-------\t------\n")
	sources := append([]string(nil), resp.Sources...)
	sort.Strings(sources)
	for _, source := range sources {
		data, err := resp.Outcome(source)
		if err != nil {
			fmt.Fprintf(w, "%s\t%s\t%s\n", source, "error", truncate(err.Error(), 60))
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", source, "ok", truncate(summarize(data), 60))
	}
	_ = w.Flush()

	if !quiet && len(resp.Incomplete) > 0 {
		fmt.Fprintf(out, "\nIncomplete: %s\n", strings.Join(resp.Incomplete, ", "))
	}
	return nil
}

// summarize renders a provider result as sorted key=value pairs
func summarize(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+formatValue(data[k]))
	}
	return strings.Join(parts, " ")
}
