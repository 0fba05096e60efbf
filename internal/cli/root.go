package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skillscout",
	Short: "Mine Claude Code session transcripts for reusable skills",
	Long: `skillscout incrementally scans your Claude Code session transcripts,
mines them for recurring tool-usage and shell-command patterns, clusters
related patterns, and drafts reusable skill files from the top candidates.

Scans are incremental: only sessions whose transcript files changed since
the last run are reprocessed.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
