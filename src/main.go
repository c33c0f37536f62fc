package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tweet-corpus/src/pipeline"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	// Global flags
	configPath string
	verbose    bool
	noProgress bool

	cfg    *Config
	logger *zap.Logger
	runID  string

	// newLogger is replaced in tests.
	newLogger func(cfg *Config, verbose bool) (*zap.Logger, error)
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, newLogger: setupLogger}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	var flags Config

	root := &cobra.Command{
		Use:   "tweetcorpus",
		Short: "Build tweet datasets and word embeddings from archived tweet streams",
		Long: `tweetcorpus reads gzip-compressed, line-delimited tweet archives from
<data_dir>/raw_data/<category>/, keeps the first occurrence of every distinct
tweet text, and turns the result into a CSV dataset or word2vec embeddings.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a.configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, &flags)
			a.cfg = cfg

			a.logger, err = a.newLogger(cfg, a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.runID = uuid.NewString()
			a.logger = a.logger.With(zap.String("run_id", a.runID), zap.String("command", cmd.Name()))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Path to YAML config file")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&a.noProgress, "no-progress", false, "Disable the progress bar")
	pf.StringVar(&flags.DataDir, "data-dir", "", "Root data directory")
	pf.StringVar(&flags.Category, "category", "", "Record category (input subdirectory), e.g. generic or toxic")
	pf.StringVar(&flags.MaxRecords, "max-records", "", `"unlimited" or a positive cap on distinct tweets`)
	pf.IntVar(&flags.MaxFiles, "max-files", 0, "Read at most this many archives (0 = all)")
	pf.StringVar(&flags.LogDir, "log-dir", "", "Also write JSON logs to <log-dir>/pipeline.log")
	pf.StringSliceVar(&flags.Languages, "languages", nil, "Keep only tweets in these ISO 639-1 languages")

	root.AddCommand(
		a.datasetCmd(&flags),
		a.embeddingsCmd(&flags),
		a.publishCmd(&flags),
		a.vocabCmd(),
		a.similarCmd(),
	)
	return root
}

// applyFlags copies every flag the user set onto cfg.
func applyFlags(cmd *cobra.Command, cfg *Config, flags *Config) {
	set := cmd.Flags().Changed
	if set("data-dir") {
		cfg.DataDir = flags.DataDir
	}
	if set("category") {
		cfg.Category = flags.Category
	}
	if set("max-records") {
		cfg.MaxRecords = flags.MaxRecords
	}
	if set("max-files") {
		cfg.MaxFiles = flags.MaxFiles
	}
	if set("log-dir") {
		cfg.LogDir = flags.LogDir
	}
	if set("languages") {
		cfg.Languages = flags.Languages
	}
	if set("sqlite") {
		cfg.SQLitePath = flags.SQLitePath
	}
	if set("window-size") {
		cfg.WindowSize = flags.WindowSize
	}
	if set("vector-dim") {
		cfg.VectorDim = flags.VectorDim
	}
	if set("epochs") {
		cfg.Epochs = flags.Epochs
	}
	if set("min-count") {
		cfg.MinWordCount = flags.MinWordCount
	}
	if set("stopwords") {
		cfg.StopWordsFile = flags.StopWordsFile
	}
	if set("workers") {
		cfg.Workers = flags.Workers
	}
	if set("queue") {
		cfg.RabbitMQ.Queue = flags.RabbitMQ.Queue
	}
	if set("exchange") {
		cfg.RabbitMQ.Exchange = flags.RabbitMQ.Exchange
	}
}

// setupLogger builds a zap logger writing to stderr and, when log_dir is
// set, to <log_dir>/pipeline.log.
func setupLogger(cfg *Config, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
			return nil, err
		}
		config.OutputPaths = append(config.OutputPaths, filepath.Join(cfg.LogDir, "pipeline.log"))
	}
	return config.Build()
}

// progress returns the bar for the loader, or a no-op when disabled.
func (a *app) progress() pipeline.Progress {
	if a.noProgress {
		return pipeline.NopProgress{}
	}
	return pipeline.NewBarProgress(a.errOut)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
