package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eventfoto/face-indexer/internal/config"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup <event-id>",
	Short: "Delete index records whose photos left the store",
	Long: `Compare the index records of one event against the photos currently in
object storage and delete the records of photos that are gone.`,
	Args: cobra.ExactArgs(1),
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	eventID := args[0]
	cfg := config.Load()

	deps, err := buildServices(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	deleted, err := deps.indexer.Cleanup(cmd.Context(), eventID)
	if err != nil {
		return fmt.Errorf("cleanup for %q: %w", eventID, err)
	}

	fmt.Printf("Removed %d stale records for %s\n", deleted, eventID)
	return nil
}
