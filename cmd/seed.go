package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/Ashfaaq98/clients-console/internal/client"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the sample clients into the database",
	Long: `Write the eight sample clients into the SQLite database. Existing
records with the same id are replaced. Use --source db afterwards to list
clients from the database.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	config := GetConfig()

	logger := log.New(cmd.OutOrStdout(), "[seed] ", log.LstdFlags)
	logger.Println("Seeding sample clients...")

	st, err := openDatabase(config, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.SaveClients(ctx, client.SampleClients())
	if err != nil {
		return fmt.Errorf("failed to seed clients: %w", err)
	}
	total, err := st.CountClients(ctx)
	if err != nil {
		return fmt.Errorf("failed to count clients: %w", err)
	}

	logger.Printf("Seeded %d clients (%d in database)", n, total)
	return nil
}
