package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-indexer",
	Short: "Bulk face indexing for event photo collections",
	Long: `Face Indexer walks event photo folders in object storage, indexes every
face into a per-event recognition collection and keeps a durable record of
what has been indexed. It serves an admin API for driving runs and a guest
selfie search.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
