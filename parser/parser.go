// Command tweetsplit converts every tweet archive in a directory into its
// own dataset CSV, deduplicating tweet texts within each archive.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tweet-corpus/src/export"
	"tweet-corpus/src/pipeline"
)

// splitResult counts what happened to the archives of one run.
type splitResult struct {
	Written int
	Skipped int
	Rows    int
}

// outputPath maps <dir>/<name>.json.gz to <outputDir>/<name>.json.csv.
func outputPath(outputDir, archive, suffix string) string {
	base := strings.TrimSuffix(filepath.Base(archive), suffix)
	return filepath.Join(outputDir, base+".csv")
}

// splitArchives writes one dataset per archive. Corrupt archives produce
// no output and are counted as skipped.
func splitArchives(ctx context.Context, files []string, outputDir, suffix string, logger *zap.Logger) (splitResult, error) {
	var res splitResult
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return res, fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, archive := range files {
		collector := pipeline.NewCollector(pipeline.Unlimited, pipeline.WithLogger(logger))
		summary, err := pipeline.NewLoader(collector, nil, logger).Load(ctx, []string{archive})
		if err != nil {
			return res, err
		}
		if summary.FilesSkipped > 0 {
			res.Skipped++
			continue
		}

		out := outputPath(outputDir, archive, suffix)
		if err := export.WriteDatasetFile(out, collector.Records()); err != nil {
			return res, err
		}
		stats := collector.Stats()
		logger.Info("archive converted",
			zap.String("archive", archive),
			zap.String("output", out),
			zap.Int("rows", collector.Len()),
			zap.Int("malformed", stats.Malformed),
			zap.Int("duplicates", stats.Duplicates))
		res.Written++
		res.Rows += collector.Len()
	}
	return res, nil
}

func newRootCmd() *cobra.Command {
	var (
		inputDir  string
		outputDir string
		suffix    string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:           "tweetsplit --inputdir DIR --outputdir DIR",
		Short:         "Convert each tweet archive in a directory to a dataset CSV",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if verbose {
				config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			files, err := pipeline.ListArchives(inputDir, suffix, 0)
			if err != nil {
				return fmt.Errorf("failed to list archives: %w", err)
			}
			if len(files) == 0 {
				return fmt.Errorf("no %s files found in %s", suffix, inputDir)
			}

			res, err := splitArchives(cmd.Context(), files, outputDir, suffix, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d archives converted (%d rows), %d skipped\n", res.Written, res.Rows, res.Skipped)
			if res.Written == 0 {
				return errors.New("every archive was corrupt")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inputDir, "inputdir", "", "Directory containing tweet archives")
	cmd.Flags().StringVar(&outputDir, "outputdir", "", "Directory for the CSV files")
	cmd.Flags().StringVar(&suffix, "suffix", pipeline.DefaultArchiveSuffix, "Archive file suffix")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.MarkFlagRequired("inputdir")
	cmd.MarkFlagRequired("outputdir")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
