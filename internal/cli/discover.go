package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	otelexp "github.com/emiliopalmerini/skillscout/internal/adapters/otel"
	"github.com/emiliopalmerini/skillscout/internal/adapters/turso"
	"github.com/emiliopalmerini/skillscout/internal/discover"
	"github.com/emiliopalmerini/skillscout/internal/draft"
	"github.com/emiliopalmerini/skillscout/internal/embedding"
	"github.com/emiliopalmerini/skillscout/internal/infrastructure/config"
	"github.com/emiliopalmerini/skillscout/internal/patterns"
	"github.com/emiliopalmerini/skillscout/internal/ports"
	"github.com/emiliopalmerini/skillscout/internal/rank"
	"github.com/emiliopalmerini/skillscout/internal/skills"
	"github.com/emiliopalmerini/skillscout/internal/util"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan the corpus and rank skill candidates",
	Long: `Scan the session corpus incrementally, aggregate recurring patterns,
cluster and rank them, and print the top skill candidates.

Examples:
  skillscout discover                    # Incremental scan
  skillscout discover --force            # Rescan everything
  skillscout discover --exclude scratch  # Skip a project (persisted)
  skillscout discover --top 5 --write    # Draft skills for the top 5`,
	RunE: runDiscover,
}

var (
	discoverForce   bool
	discoverExclude []string
	discoverTop     int
	discoverWrite   bool
	discoverJSON    bool
)

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().BoolVar(&discoverForce, "force", false, "Ignore watermarks and rescan every session")
	discoverCmd.Flags().StringArrayVar(&discoverExclude, "exclude", nil, "Project to exclude (repeatable, persisted)")
	discoverCmd.Flags().IntVar(&discoverTop, "top", 10, "Number of candidates to show")
	discoverCmd.Flags().BoolVar(&discoverWrite, "write", false, "Write drafts for the top candidates to the skills directory")
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "Print the full report as JSON")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadDiscovery()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	var engine embedding.Engine
	if cfg.Embeddings.Enabled {
		engine = embedding.NewOllamaEngine(cfg.Embeddings.Endpoint, cfg.Embeddings.Model)
	}

	inventory, err := skills.LoadInventory(cfg.SkillsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load skills inventory: %v\n", err)
	}
	existing := make([]rank.ExistingArtifact, len(inventory))
	for i, art := range inventory {
		existing[i] = rank.ExistingArtifact{Name: art.Name, Description: art.Description}
	}

	svc := discover.NewService(discover.Config{
		Root:           cfg.CorpusRoot,
		StatePath:      cfg.StatePath,
		NoiseThreshold: cfg.NoiseThreshold,
		MinPts:         cfg.ClusterMinPts,
		DedupThreshold: cfg.DedupThreshold,
		Weights:        patterns.DefaultWeights,
	}, engine)

	report, runErr := svc.Run(ctx, discover.RunOptions{
		Force:           discoverForce,
		ExcludeProjects: discoverExclude,
		Existing:        existing,
	})
	if report == nil {
		return runErr
	}

	exportMetrics(ctx, report)
	saveRunHistory(ctx, cfg.DatabaseURL, report)

	if discoverJSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		fmt.Println(string(out))
	} else {
		printReport(report, discoverTop)
	}

	if discoverWrite && runErr == nil {
		if err := writeDrafts(cfg.SkillsDir, report, discoverTop); err != nil {
			return err
		}
	}

	// Partial progress was already persisted; surface the failure last.
	return runErr
}

// exportMetrics publishes run metrics when an OTEL endpoint is
// configured, degrading to a no-op otherwise.
func exportMetrics(ctx context.Context, report *discover.Report) {
	var exporter ports.MetricsExporter
	exporter, err := otelexp.NewExporter(ctx, otelexp.LoadConfig())
	if err != nil {
		exporter = otelexp.NewNoOpExporter()
	}
	if err := exporter.ExportRun(ctx, report); err != nil {
		fmt.Fprintf(os.Stderr, "warning: metrics export failed: %v\n", err)
	}
	if err := exporter.Close(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: metrics shutdown failed: %v\n", err)
	}
}

// saveRunHistory records the run in the local database. History is
// advisory, so failures are warnings, not errors.
func saveRunHistory(ctx context.Context, url string, report *discover.Report) {
	db, err := turso.NewDB(ctx, url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: run history unavailable: %v\n", err)
		return
	}
	defer db.Close()

	if _, err := turso.NewRunRepository(db).SaveRun(ctx, report); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to save run history: %v\n", err)
	}
}

func printReport(report *discover.Report, top int) {
	fmt.Println("Discovery run")
	fmt.Println("=============")
	fmt.Printf("Sessions:   %d new, %d modified, %d unchanged, %d excluded\n",
		report.Stats.New, report.Stats.Modified, report.Stats.Unchanged, report.Stats.Excluded)
	fmt.Printf("Corpus:     %d projects, %d sessions aggregated\n",
		report.TotalProjects, report.TotalSessions)
	fmt.Printf("Patterns:   %d found (%d filtered as cross-project noise)\n",
		report.PatternsFound, report.NoiseFiltered)
	if report.ClusteringDegraded {
		fmt.Printf("Clustering: skipped (singleton mode)\n")
	} else {
		fmt.Printf("Clustering: epsilon %.4f\n", report.Epsilon)
	}
	if report.DuplicatesDropped > 0 {
		fmt.Printf("Dedup:      %d candidates matched existing skills\n", report.DuplicatesDropped)
	}

	for _, w := range report.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(report.Candidates) == 0 {
		fmt.Println("\nNo candidates found.")
		return
	}

	fmt.Printf("\nTop candidates\n")
	fmt.Printf("%-5s %-7s %-40s %s\n", "RANK", "SCORE", "NAME", "EVIDENCE")
	for i, c := range report.Candidates {
		if i >= top {
			break
		}
		fmt.Printf("%-5d %-7.3f %-40s %sx in %d projects\n",
			i+1, c.Score, truncate(c.SuggestedName, 40),
			util.FormatNumber(int64(c.Occurrences)), c.ProjectCount)
	}
}

func writeDrafts(dir string, report *discover.Report, top int) error {
	written := 0
	for i, c := range report.Candidates {
		if i >= top {
			break
		}
		d := draft.Render(draft.Input{
			Key:          c.Key,
			Name:         c.SuggestedName,
			Occurrences:  c.Occurrences,
			ProjectCount: c.ProjectCount,
			SessionCount: c.SessionCount,
			Files:        c.Files,
			ClusterKeys:  c.ClusterKeys,
		})
		path, err := skills.WriteDraft(dir, d)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			continue
		}
		fmt.Printf("Wrote %s\n", path)
		written++
	}
	fmt.Printf("%d drafts written to %s\n", written, dir)
	return nil
}
