package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/skillscout/internal/adapters/turso"
	"github.com/emiliopalmerini/skillscout/internal/infrastructure/config"
	"github.com/emiliopalmerini/skillscout/internal/util"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent discovery runs",
	RunE:  runRuns,
}

var runsLimit int

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum runs to list")
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadDiscovery()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	db, err := turso.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer db.Close()

	runs, err := turso.NewRunRepository(db).ListRuns(ctx, runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No discovery runs recorded.")
		return nil
	}

	fmt.Printf("%-17s %-10s %-10s %-12s %s\n", "STARTED", "SESSIONS", "PATTERNS", "CANDIDATES", "CLUSTERING")
	for _, run := range runs {
		clustering := fmt.Sprintf("eps %.4f", run.Epsilon)
		if run.ClusteringDegraded {
			clustering = "degraded"
		}
		fmt.Printf("%-17s %-10d %-10s %-12d %s\n",
			util.FormatDateTime(run.StartedAt),
			run.SessionsProcessed, util.FormatNumber(int64(run.PatternsFound)),
			run.CandidatesRanked, clustering)
	}
	return nil
}
