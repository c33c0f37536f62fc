package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tweet-corpus/src/filter"
	"tweet-corpus/src/pipeline"
)

// collect loads the configured category into a deduplicating collector.
// Configuration problems are reported before any archive is opened.
func (a *app) collect(ctx context.Context) (*pipeline.Collector, error) {
	cfg := a.cfg
	if err := cfg.validateInput(); err != nil {
		return nil, err
	}
	maxRecords, err := parseMaxRecords(cfg.MaxRecords)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.CollectorOption{
		pipeline.WithLogger(a.logger),
		pipeline.WithBloomFPRate(cfg.BloomFPRate),
	}
	if len(cfg.Languages) > 0 {
		lf, err := filter.NewLanguageFilter(cfg.Languages)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		opts = append(opts, pipeline.WithAccept(lf.Accept))
	}

	files, err := pipeline.ListArchives(cfg.InputDir(), cfg.ArchiveSuffix, cfg.MaxFiles)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	a.logger.Info("loading archives",
		zap.String("category", cfg.Category),
		zap.String("input", cfg.InputDir()),
		zap.Int("files", len(files)),
		zap.String("max_records", cfg.MaxRecords))

	collector := pipeline.NewCollector(maxRecords, opts...)
	summary, err := pipeline.NewLoader(collector, a.progress(), a.logger).Load(ctx, files)

	stats := collector.Stats()
	a.logger.Info("corpus loaded",
		zap.Int("files_read", summary.FilesRead),
		zap.Int("files_skipped", summary.FilesSkipped),
		zap.Bool("cap_reached", summary.CapReached),
		zap.Int("offered", stats.Offered),
		zap.Int("malformed", stats.Malformed),
		zap.Int("filtered", stats.Filtered),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("accepted", stats.Accepted),
		zap.Int("bloom_false_positives", collector.BloomFalsePositives()))
	if err != nil {
		return collector, fmt.Errorf("loading interrupted: %w", err)
	}
	return collector, nil
}
