package main

import (
	"fmt"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tweet-corpus/src/export"
	"tweet-corpus/src/filter"
	"tweet-corpus/src/pipeline"
)

// vocabChunk is the number of tweets tokenized per worker task.
const vocabChunk = 5000

// keepToken drops URLs, mentions and very short tokens when filtering is on.
func keepToken(tok string, filterTokens bool, stopWords *filter.StopWords) bool {
	if stopWords.Contains(tok) {
		return false
	}
	if !filterTokens {
		return true
	}
	if len(tok) < 2 || strings.HasPrefix(tok, "http") || strings.HasPrefix(tok, "@") {
		return false
	}
	return true
}

// countTokens tokenizes texts across workers into one counter.
func countTokens(texts []string, filterTokens bool, stopWords *filter.StopWords) *pipeline.TokenCounter {
	tc := pipeline.NewTokenCounter()
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for start := 0; start < len(texts); start += vocabChunk {
		chunk := texts[start:min(start+vocabChunk, len(texts))]
		g.Go(func() error {
			for _, text := range chunk {
				tokens := pipeline.Tokenize(text)
				kept := tokens[:0]
				for _, tok := range tokens {
					if keepToken(tok, filterTokens, stopWords) {
						kept = append(kept, tok)
					}
				}
				tc.IncrementTokens(kept)
			}
			return nil
		})
	}
	_ = g.Wait()
	return tc
}

func (a *app) vocabCmd() *cobra.Command {
	var (
		datasetPath   string
		top           int
		filterTokens  bool
		stopWordsFile string
		savePath      string
	)

	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Print the most frequent tokens of a dataset CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var stopWords *filter.StopWords
			if stopWordsFile != "" {
				sw, err := filter.LoadStopWords(stopWordsFile)
				if err != nil {
					return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
				}
				stopWords = sw
			}
			if datasetPath == "" {
				if err := a.cfg.Validate(); err != nil {
					return err
				}
				datasetPath = a.cfg.DatasetPath()
			}

			records, err := export.ReadDatasetFile(datasetPath)
			if err != nil {
				return err
			}
			texts := make([]string, len(records))
			for i, r := range records {
				texts[i] = r.Text
			}

			tc := countTokens(texts, filterTokens, stopWords)
			a.logger.Info("vocabulary counted",
				zap.String("dataset", datasetPath),
				zap.Int("tweets", len(texts)),
				zap.Int("distinct_tokens", tc.Len()),
				zap.Int("total_tokens", tc.GetTotalTokens()))

			if savePath != "" {
				if err := tc.SaveToFile(savePath); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "TOKEN\tCOUNT\n")
			for _, entry := range tc.Top(top) {
				fmt.Fprintf(w, "%s\t%d\n", entry.Token, entry.Count)
			}
			return w.Flush()
		},
	}

	f := cmd.Flags()
	f.StringVar(&datasetPath, "dataset", "", "Dataset CSV (default <data_dir>/raw_data/dataset/dataset_<category>.csv)")
	f.IntVar(&top, "top", 20, "Number of tokens to print (0 = all)")
	f.BoolVar(&filterTokens, "filter-tokens", true, "Drop URLs, mentions and single-character tokens")
	f.StringVar(&stopWordsFile, "stopwords", "", "File of stop words to exclude")
	f.StringVar(&savePath, "save", "", "Also save the full counts to this gob file")
	return cmd
}
