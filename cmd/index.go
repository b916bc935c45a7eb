package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/eventfoto/face-indexer/internal/config"
	"github.com/eventfoto/face-indexer/internal/indexer"
)

var indexCmd = &cobra.Command{
	Use:   "index <event-id>",
	Short: "Index all faces of one event",
	Long: `Run a full indexing pass for one event and wait for it to finish.
Photos already present in the recognition collection are skipped, missing
local records are repaired and only new photos are submitted.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().String("mode", "", "Processing mode: pooled, chunked or single (default from config)")
	indexCmd.Flags().Int("concurrency", 0, "Photos indexed in parallel (default from config)")
}

func runIndex(cmd *cobra.Command, args []string) error {
	eventID := args[0]
	cfg := config.Load()

	if mode := mustGetString(cmd, "mode"); mode != "" {
		cfg.Indexing.Mode = mode
	}
	if concurrency := mustGetInt(cmd, "concurrency"); concurrency > 0 {
		cfg.Indexing.Concurrency = concurrency
	}

	deps, err := buildServices(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	progress, err := deps.indexer.StartIndexing(eventID)
	if err != nil {
		return fmt.Errorf("starting indexing for %q: %w", eventID, err)
	}
	fmt.Printf("Indexing %s into collection %s (run %s)\n",
		eventID, deps.indexer.CollectionID(eventID), progress.RunID)

	// Ctrl+C cancels the run instead of killing the process mid-flight
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nCancelling...")
		_ = deps.indexer.CancelIndexing(eventID)
	}()

	var bar *progressbar.ProgressBar
	for {
		time.Sleep(500 * time.Millisecond)
		progress = deps.indexer.GetProgress(eventID)

		if bar == nil && progress.Total > 0 {
			bar = progressbar.Default(progress.Total, "indexing")
		}
		if bar != nil {
			_ = bar.Set64(progress.Processed)
		}

		if progress.Status != indexer.StatusRunning {
			break
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	fmt.Printf("\nRun %s: %s\n", progress.Status, progress.Message)
	if progress.Status == indexer.StatusFailed {
		return fmt.Errorf("indexing failed: %s", progress.Message)
	}
	return nil
}
