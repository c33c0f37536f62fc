package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tweet-corpus/src/export"
)

func (a *app) datasetCmd(flags *Config) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Write the deduplicated tweets and their authors to a CSV dataset",
		Long: `Writes <data_dir>/raw_data/dataset/dataset_<category>.csv with one row per
distinct tweet text, in first-seen order. With --sqlite the same rows are
mirrored into a SQLite database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			collector, err := a.collect(cmd.Context())
			if err != nil {
				return err
			}
			records := collector.Records()

			path := output
			if path == "" {
				path = a.cfg.DatasetPath()
			}
			if err := export.WriteDatasetFile(path, records); err != nil {
				return err
			}
			a.logger.Info("dataset written", zap.String("path", path), zap.Int("rows", len(records)))

			if a.cfg.SQLitePath != "" {
				store, err := export.OpenStore(a.cfg.SQLitePath)
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.Save(cmd.Context(), a.cfg.Category, records); err != nil {
					return fmt.Errorf("sqlite mirror: %w", err)
				}
				a.logger.Info("dataset mirrored", zap.String("sqlite", store.Path()))
			}

			fmt.Fprintf(a.out, "%d tweets written to %s\n", len(records), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV path (default <data_dir>/raw_data/dataset/dataset_<category>.csv)")
	cmd.Flags().StringVar(&flags.SQLitePath, "sqlite", "", "Also store the dataset in this SQLite database")
	return cmd
}
