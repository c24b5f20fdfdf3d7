package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"livephoto-audio/domain/distribution"
	"livephoto-audio/infrastructure/filesystem"
	"livephoto-audio/infrastructure/history"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous exports",
	Long: `List exported audio files, newest first.

Example:
  livephoto-audio history
  livephoto-audio history --limit 5`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries (0 for all)")
}

// ExportHistory lists recorded exports, newest first
type ExportHistory interface {
	List(ctx context.Context, limit int) ([]distribution.ExportRecord, error)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ledger, err := history.Open(filesystem.ExpandHome(cfg.History.Database), history.WithLogger(logger))
	if err != nil {
		return err
	}
	defer ledger.Close()

	return RunHistoryWithDependencies(cmd.Context(), ledger, historyLimit, DefaultOutput)
}

// RunHistoryWithDependencies runs the history command with injected dependencies (for testing)
func RunHistoryWithDependencies(ctx context.Context, exports ExportHistory, limit int, output OutputWriter) error {
	records, err := exports.List(ctx, limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(output, "No exports recorded.")
		return nil
	}

	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EXPORTED\tMETHOD\tSIZE\tSOURCE\tDESTINATION")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ExportedAt.Local().Format("2006-01-02 15:04:05"),
			r.Method,
			formatBytes(r.SizeBytes),
			r.ArtifactPath,
			r.Destination,
		)
	}
	return w.Flush()
}
