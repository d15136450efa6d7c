package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Ashfaaq98/clients-console/internal/client"
	"github.com/Ashfaaq98/clients-console/internal/prefs"
	"github.com/Ashfaaq98/clients-console/internal/table"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients with filters and sorting",
	Long: `List clients in a plain table or as JSON. This works in any terminal
environment and is the fallback when the TUI cannot start.

Without --sort the saved sort criteria are used.

Examples:
  # All clients, saved sort
  clients-console list

  # Active individuals whose name, email or id contains "doe"
  clients-console list --tab individual --status active --search doe

  # Category ascending, then name descending, as JSON
  clients-console list --sort type:asc,name:desc --format json`,
	RunE: runList,
}

var (
	listTab    string
	listSearch string
	listStatus string
	listSort   string
	listFormat string
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listTab, "tab", "all", "Category tab: all, individual, company")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Case-insensitive match on name, email or id")
	listCmd.Flags().StringVar(&listStatus, "status", "all", "Status filter: all, active, inactive")
	listCmd.Flags().StringVar(&listSort, "sort", "", "Sort criteria, e.g. name:asc,createdAt:desc (default: saved criteria)")
	listCmd.Flags().StringVar(&listFormat, "format", "table", "Output format: table, json")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	config := GetConfig()
	logger := log.New(os.Stderr, "[list] ", log.LstdFlags)
	if !strings.EqualFold(config.Log.Level, "debug") {
		logger.SetOutput(io.Discard)
	}

	tab, err := table.ParseTab(listTab)
	if err != nil {
		return err
	}
	status, err := table.ParseStatusFilter(listStatus)
	if err != nil {
		return err
	}

	rt, err := openResources(config, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	criteria, err := resolveCriteria(ctx, listSort, rt.prefs)
	if err != nil {
		return err
	}

	records, err := rt.source.ListClients(ctx)
	if err != nil {
		return fmt.Errorf("failed to list clients: %w", err)
	}

	state := table.NewState(criteria).WithTab(tab).WithQuery(listSearch).WithStatus(status)
	return renderList(cmd.OutOrStdout(), state, records, listFormat)
}

// resolveCriteria parses an explicit --sort value or falls back to the saved criteria.
func resolveCriteria(ctx context.Context, flag string, store prefs.Store) (table.Criteria, error) {
	if strings.TrimSpace(flag) != "" {
		criteria, err := table.ParseCriteria(flag)
		if err != nil {
			return nil, fmt.Errorf("invalid --sort value: %w", err)
		}
		return criteria, nil
	}
	if criteria, ok := store.Load(ctx); ok {
		return criteria, nil
	}
	return table.Criteria{}, nil
}

// renderList writes the filtered and sorted view of records.
func renderList(w io.Writer, state table.State, records []client.Client, format string) error {
	rows := state.View(records)

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if rows == nil {
			rows = []client.Client{}
		}
		return enc.Encode(rows)
	case "table", "":
	default:
		return fmt.Errorf("unknown format: %s (use 'table' or 'json')", format)
	}

	if len(rows) == 0 {
		fmt.Fprintln(w, "No clients found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tEMAIL\tSTATUS\tCREATED\tUPDATED\tUPDATED BY")
	for _, c := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.Category, c.Email, c.Status,
			c.CreatedAt.Format("Jan 2, 2006"),
			c.UpdatedAt.Format("Jan 2, 2006 15:04"),
			c.UpdatedBy)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nShowing %d of %d clients", len(rows), len(records))
	if badges := state.ActiveFilters(); len(badges) > 0 {
		fmt.Fprintf(w, " (%s)", strings.Join(badges, "; "))
	}
	if len(state.Criteria) > 0 {
		fmt.Fprintf(w, "\nSorted by: %s", state.Criteria)
	}
	fmt.Fprintln(w)
	return nil
}
