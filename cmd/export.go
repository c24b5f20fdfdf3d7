package cmd

import (
	"context"
	"fmt"

	"livephoto-audio/application/session"
	"livephoto-audio/infrastructure/filesystem"
	"livephoto-audio/infrastructure/prompt"

	"github.com/spf13/cobra"
)

var exportSourcePath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an audio file",
	Long: `Export an audio file to Google Drive or the downloads directory.

With export.method "auto" the file is shared through Google Drive when
google.credentials_file and google.folder_id are set, and copied to the
downloads directory otherwise. Copies get a timestamp suffix so earlier
exports are never overwritten.

Example:
  livephoto-audio export --source IMG_0042.m4a`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportSourcePath, "source", "", "Path to audio file (required)")
	exportCmd.MarkFlagRequired("source")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	exporter, closeExporter, err := newExportService(ctx, cfg, DefaultPrompter, DefaultOutput, logger)
	if err != nil {
		return err
	}
	defer closeExporter()

	return RunExportWithDependencies(
		ctx,
		exporter,
		newEngine(cfg, logger).Prober(),
		filesystem.ExpandHome(exportSourcePath),
		DefaultOutput,
	)
}

// RunExportWithDependencies runs the export command with injected dependencies (for testing)
func RunExportWithDependencies(
	ctx context.Context,
	exporter session.Exporter,
	prober prompt.MetadataProber,
	sourcePath string,
	output OutputWriter,
) error {
	artifact, err := artifactFromFile(ctx, prober, sourcePath)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Exporting %s...\n", artifact.Filename())
	dest, err := exporter.Export(ctx, artifact)
	if err != nil {
		return err
	}

	if dest.Cancelled {
		fmt.Fprintln(output, "Export cancelled.")
		return nil
	}
	fmt.Fprintf(output, "Exported (%s): %s\n", dest.Method, dest)
	return nil
}
