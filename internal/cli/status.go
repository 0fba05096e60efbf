package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/skillscout/internal/corpus"
	"github.com/emiliopalmerini/skillscout/internal/infrastructure/config"
	"github.com/emiliopalmerini/skillscout/internal/util"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show scan state without scanning",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadDiscovery()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	store := corpus.NewStateStore(cfg.StatePath)
	state := store.Load()

	fmt.Printf("State file:  %s\n", store.Path())
	fmt.Printf("Corpus root: %s\n", cfg.CorpusRoot)
	fmt.Printf("Watermarks:  %d sessions tracked\n", len(state.Sessions))
	if len(state.ExcludeProjects) > 0 {
		fmt.Printf("Excluded:    %v\n", state.ExcludeProjects)
	}
	fmt.Printf("Last scan:   %s\n", util.FormatDateTime(state.LastScanAt))
	if s := state.LastScanStats; s != nil {
		fmt.Printf("             %d new, %d modified, %d unchanged, %d excluded\n",
			s.New, s.Modified, s.Unchanged, s.Excluded)
	}
	return nil
}
