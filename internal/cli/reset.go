package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/skillscout/internal/corpus"
	"github.com/emiliopalmerini/skillscout/internal/infrastructure/config"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the scan state, forcing a full rescan next run",
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadDiscovery()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	store := corpus.NewStateStore(cfg.StatePath)
	if err := store.Reset(); err != nil {
		return err
	}
	fmt.Printf("Scan state removed: %s\n", store.Path())
	return nil
}
