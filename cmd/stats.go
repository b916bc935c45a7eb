package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eventfoto/face-indexer/internal/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats <event-id>",
	Short: "Show indexing statistics for one event",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	eventID := args[0]
	cfg := config.Load()

	deps, err := buildServices(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	stats, err := deps.indexer.GetStatistics(cmd.Context(), eventID)
	if err != nil {
		return fmt.Errorf("loading statistics for %q: %w", eventID, err)
	}

	fmt.Printf("Event %s\n", stats.EventID)
	fmt.Printf("  Photos in store: %d\n", stats.TotalInStore)
	fmt.Printf("  Indexed:         %d (%.1f%%)\n", stats.Indexed, stats.PercentIndexed)
	fmt.Printf("  Not indexed:     %d\n", stats.NotIndexed)
	fmt.Printf("  Failed:          %d\n", stats.Failed)
	fmt.Printf("  Faces found:     %d\n", stats.TotalFaces)
	return nil
}
