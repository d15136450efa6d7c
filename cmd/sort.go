package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ashfaaq98/clients-console/internal/bus"
	"github.com/Ashfaaq98/clients-console/internal/prefs"
	"github.com/Ashfaaq98/clients-console/internal/table"
)

// sortCmd groups the saved sort criteria operations
var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Show or edit the saved sort criteria",
	Long: `Show or edit the ordered sort criteria used by the TUI and by list.
Changes are saved to the configured preference backend and announced to
running consoles when Redis is configured.

Fields: name, createdAt, updatedAt, id, email, type
Directions: asc, desc

Examples:
  clients-console sort set type asc
  clients-console sort set name desc
  clients-console sort toggle type
  clients-console sort move 2 1
  clients-console sort clear`,
}

var sortShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved sort criteria",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(cmd, func(ctx context.Context, store prefs.Store, _ bus.Bus) error {
			criteria, _ := store.Load(ctx)
			printCriteria(cmd.OutOrStdout(), store.Name(), criteria)
			return nil
		})
	},
}

var sortSetCmd = &cobra.Command{
	Use:   "set FIELD [asc|desc]",
	Short: "Add a sort as the lowest priority, replacing any sort on the same field",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := table.ParseField(args[0])
		if err != nil {
			return err
		}
		dir := table.Asc
		if len(args) == 2 {
			if dir, err = table.ParseDirection(args[1]); err != nil {
				return err
			}
		}
		return editCriteria(cmd, func(c table.Criteria) (table.Criteria, error) {
			return c.Set(field, dir), nil
		})
	},
}

var sortRemoveCmd = &cobra.Command{
	Use:     "remove FIELD",
	Aliases: []string{"rm"},
	Short:   "Remove the sort on a field",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := table.ParseField(args[0])
		if err != nil {
			return err
		}
		return editCriteria(cmd, func(c table.Criteria) (table.Criteria, error) {
			return c.Remove(field), nil
		})
	},
}

var sortToggleCmd = &cobra.Command{
	Use:   "toggle FIELD",
	Short: "Flip the direction of the sort on a field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := table.ParseField(args[0])
		if err != nil {
			return err
		}
		return editCriteria(cmd, func(c table.Criteria) (table.Criteria, error) {
			return c.Toggle(field), nil
		})
	},
}

var sortMoveCmd = &cobra.Command{
	Use:   "move FROM TO",
	Short: "Move the sort at position FROM to position TO (1-based)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid position %q: %w", args[0], err)
		}
		to, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q: %w", args[1], err)
		}
		return editCriteria(cmd, func(c table.Criteria) (table.Criteria, error) {
			return c.Move(from-1, to-1)
		})
	},
}

var sortClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every sort",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return editCriteria(cmd, func(c table.Criteria) (table.Criteria, error) {
			return c.Clear(), nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sortCmd)
	sortCmd.AddCommand(sortShowCmd, sortSetCmd, sortRemoveCmd, sortToggleCmd, sortMoveCmd, sortClearCmd)
}

// withPrefs opens the preference backend and the change bus for one command.
func withPrefs(cmd *cobra.Command, fn func(ctx context.Context, store prefs.Store, b bus.Bus) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	config := GetConfig()

	logger := log.New(os.Stderr, "[prefs] ", log.LstdFlags)
	if !strings.EqualFold(config.Log.Level, "debug") {
		logger.SetOutput(io.Discard)
	}

	rt, err := openResources(config, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	b := bus.NewBus(config.Redis.URL, logger)
	defer b.Close()

	return fn(ctx, rt.prefs, b)
}

// editCriteria loads the saved criteria, applies edit, then saves and announces the result.
func editCriteria(cmd *cobra.Command, edit func(table.Criteria) (table.Criteria, error)) error {
	return withPrefs(cmd, func(ctx context.Context, store prefs.Store, b bus.Bus) error {
		current, ok := store.Load(ctx)
		if !ok {
			current = table.Criteria{}
		}
		next, err := edit(current)
		if err != nil {
			return err
		}
		if err := store.Save(ctx, next); err != nil {
			return fmt.Errorf("failed to save sort criteria: %w", err)
		}
		change := bus.CriteriaChange{
			Origin:    b.Origin(),
			Backend:   store.Name(),
			Criteria:  next,
			Timestamp: time.Now().UnixMilli(),
		}
		if err := b.PublishCriteriaChange(ctx, change); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to announce sort change: %v\n", err)
		}
		printCriteria(cmd.OutOrStdout(), store.Name(), next)
		return nil
	})
}

func printCriteria(w io.Writer, backend string, criteria table.Criteria) {
	if len(criteria) == 0 {
		fmt.Fprintf(w, "No sort criteria applied (%s).\n", backend)
		return
	}
	fmt.Fprintf(w, "Sort criteria (%s):\n", backend)
	for i, c := range criteria {
		fmt.Fprintf(w, "  %d. %s: %s  [%s]\n", i+1, c.Field.Label(), table.DirectionLabel(c.Field, c.Direction), c)
	}
}
