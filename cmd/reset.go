package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	"github.com/Ashfaaq98/clients-console/internal/bus"
	"github.com/Ashfaaq98/clients-console/internal/prefs"
)

var (
	confirmReset bool
	resetRedis   bool
	resetDB      bool
	resetPrefs   bool
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset saved sort preferences, Redis keys and/or the database",
	Long: `Reset clears the saved sort criteria, the Redis keys this tool owns
and the SQLite database.

By default everything is reset. Use --redis-only, --db-only or --prefs-only
to reset a single target.

WARNING: This operation is irreversible and will permanently delete data.

Examples:
  # Reset everything (requires confirmation)
  clients-console reset

  # Reset with automatic confirmation
  clients-console reset --yes

  # Forget the saved sort criteria only (file, sqlite or redis backend)
  clients-console reset --prefs-only`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().BoolVarP(&confirmReset, "yes", "y", false, "Automatically confirm reset operation")
	resetCmd.Flags().BoolVar(&resetRedis, "redis-only", false, "Reset only Redis keys")
	resetCmd.Flags().BoolVar(&resetDB, "db-only", false, "Reset only the database")
	resetCmd.Flags().BoolVar(&resetPrefs, "prefs-only", false, "Reset only the saved sort criteria in the configured preference backend")
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	config := GetConfig()
	out := cmd.OutOrStdout()

	doRedis, doDB, doPrefs := resetRedis, resetDB, resetPrefs
	if !doRedis && !doDB && !doPrefs {
		doRedis, doDB, doPrefs = true, true, true
	}
	if doRedis && config.Redis.URL == "" {
		if resetRedis {
			return fmt.Errorf("redis.url is not configured")
		}
		doRedis = false
	}

	var targets []string
	if doPrefs {
		targets = append(targets, "saved sort criteria")
	}
	if doRedis {
		targets = append(targets, "Redis keys")
	}
	if doDB {
		targets = append(targets, "SQLite database")
	}
	fmt.Fprintf(out, "This will permanently delete: %s\n", strings.Join(targets, ", "))

	if !confirmReset {
		fmt.Fprint(out, "Are you sure you want to continue? (y/N): ")
		var response string
		fmt.Fscanln(cmd.InOrStdin(), &response)
		if r := strings.ToLower(response); r != "y" && r != "yes" {
			fmt.Fprintln(out, "Reset operation cancelled.")
			return nil
		}
	}

	if doPrefs {
		backend, err := resetPreferences(ctx, config)
		if err != nil {
			return fmt.Errorf("failed to reset preferences: %w", err)
		}
		fmt.Fprintf(out, "✓ Saved sort criteria cleared (%s)\n", backend)
	}

	if doRedis {
		n, err := resetRedisData(ctx, config.Redis.URL, config.Prefs.RedisPrefix)
		if err != nil {
			if resetRedis {
				return fmt.Errorf("failed to reset Redis data: %w", err)
			}
			fmt.Fprintf(out, "Warning: Failed to reset Redis data: %v\n", err)
		} else {
			fmt.Fprintf(out, "✓ Redis keys cleared (%d removed)\n", n)
		}
	}

	if doDB {
		path := resolvePathRelativeToBase(getWorkingDir(), config.Database.Path)
		removed, err := removeFiles(path, path+"-shm", path+"-wal")
		if err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
		if len(removed) == 0 {
			fmt.Fprintln(out, "No database files found to remove")
		} else {
			fmt.Fprintf(out, "✓ Removed database files: %s\n", strings.Join(removed, ", "))
		}
	}

	fmt.Fprintln(out, "Reset operation completed successfully!")
	return nil
}

// resetPreferences deletes the criteria slot from the configured backend
// and returns the backend name.
func resetPreferences(ctx context.Context, config Config) (string, error) {
	rt, err := openResources(config, log.New(io.Discard, "", 0))
	if err != nil {
		return "", err
	}
	defer rt.Close()

	if err := rt.prefs.Delete(ctx); err != nil {
		return rt.prefs.Name(), err
	}
	return rt.prefs.Name(), nil
}

// resetRedisData deletes the saved criteria key and the change stream.
func resetRedisData(ctx context.Context, redisURL, prefix string) (int64, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return 0, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	n, err := rdb.Del(ctx, prefs.RedisKey(prefix), bus.PrefsStream).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to delete Redis keys: %w", err)
	}
	return n, nil
}

// removeFiles deletes the files that exist and returns their base names.
func removeFiles(paths ...string) ([]string, error) {
	var removed []string
	for _, file := range paths {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := os.Remove(file); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", file, err)
		}
		removed = append(removed, filepath.Base(file))
	}
	return removed, nil
}
