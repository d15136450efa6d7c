package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ashfaaq98/clients-console/internal/client"
)

var (
	importFile  string
	skipInvalid bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import clients from a JSON or JSONL file",
	Long: `Import client records into the SQLite database from a file or stdin.
The input is either a JSON array of clients or one client object per line
(JSONL); the format is detected from the content.

Each record needs an id, a type of Individual or Company and a status of
active or inactive. Timestamps use RFC 3339.

Examples:
  # Import from file
  clients-console import clients.json

  # Import from stdin
  cat clients.jsonl | clients-console import -

  # Skip invalid records instead of failing
  clients-console import --skip-invalid clients.jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Input file path (use '-' for stdin)")
	importCmd.Flags().BoolVar(&skipInvalid, "skip-invalid", false, "Skip invalid records instead of failing")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	config := GetConfig()

	path := importFile
	if len(args) > 0 {
		path = args[0]
	}

	var input io.Reader
	inputName := path
	if path == "" || path == "-" {
		input = cmd.InOrStdin()
		inputName = "stdin"
	} else {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		input = file
	}

	logger := log.New(cmd.ErrOrStderr(), "[import] ", log.LstdFlags)
	logger.Printf("Starting import from %s", inputName)

	st, err := openDatabase(config, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	start := time.Now()
	records, stats, err := parseClients(input, skipInvalid, logger)
	if err != nil {
		return err
	}
	if stats.Failed > 0 && !skipInvalid {
		return fmt.Errorf("import aborted: %d invalid records (use --skip-invalid to import the rest)", stats.Failed)
	}

	n, err := st.SaveClients(ctx, records)
	if err != nil {
		return fmt.Errorf("failed to save clients: %w", err)
	}
	stats.Imported = n
	stats.Duration = time.Since(start)

	logger.Printf("Import completed:")
	logger.Printf("  Format: %s", stats.Format)
	logger.Printf("  Records read: %d", stats.Total)
	logger.Printf("  Imported: %d", stats.Imported)
	logger.Printf("  Skipped: %d", stats.Skipped)
	logger.Printf("  Processing time: %v", stats.Duration)
	return nil
}

// ImportStats holds statistics about an import run
type ImportStats struct {
	Format   string
	Total    int
	Imported int
	Failed   int
	Skipped  int
	Duration time.Duration
}

// detectFormat reports "json" for a JSON array and "jsonl" otherwise.
func detectFormat(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return "json"
	}
	return "jsonl"
}

// parseClients decodes and normalizes records. Invalid records are counted
// and logged; they are dropped when skip is set.
func parseClients(input io.Reader, skip bool, logger *log.Logger) ([]client.Client, *ImportStats, error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading input: %w", err)
	}

	stats := &ImportStats{Format: detectFormat(data)}
	var raws []json.RawMessage
	var positions []string

	switch stats.Format {
	case "json":
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, stats, fmt.Errorf("failed to parse JSON array: %w", err)
		}
		for i := range raws {
			positions = append(positions, fmt.Sprintf("item %d", i+1))
		}
	default:
		scanner := bufio.NewScanner(bytes.NewReader(data))
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		line := 0
		for scanner.Scan() {
			line++
			b := bytes.TrimSpace(scanner.Bytes())
			if len(b) == 0 {
				continue
			}
			raws = append(raws, append(json.RawMessage(nil), b...))
			positions = append(positions, fmt.Sprintf("line %d", line))
		}
		if err := scanner.Err(); err != nil {
			return nil, stats, fmt.Errorf("error reading input: %w", err)
		}
	}

	out := make([]client.Client, 0, len(raws))
	for i, raw := range raws {
		stats.Total++
		c, err := decodeClient(raw)
		if err != nil {
			stats.Failed++
			if skip {
				stats.Skipped++
				logger.Printf("Skipping invalid record at %s: %v", positions[i], err)
			} else {
				logger.Printf("Invalid record at %s: %v", positions[i], err)
			}
			continue
		}
		out = append(out, c)
	}
	return out, stats, nil
}

func decodeClient(raw json.RawMessage) (client.Client, error) {
	var c client.Client
	if err := json.Unmarshal(raw, &c); err != nil {
		return client.Client{}, fmt.Errorf("failed to decode client: %w", err)
	}
	return c.Normalize()
}
