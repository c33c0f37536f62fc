package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tweet-corpus/src/embedding"
	"tweet-corpus/src/filter"
	"tweet-corpus/src/phrases"
	"tweet-corpus/src/pipeline"
)

var errEmptyCorpus = errors.New("no tweets collected")

func (a *app) embeddingsCmd(flags *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embeddings",
		Short: "Train CBOW and skip-gram embeddings on the deduplicated tweet texts",
		Long: `Tokenizes the distinct tweet texts, joins frequent bigrams into phrases,
then trains a continuous-bag-of-words and a skip-gram model concurrently.
Models are written to <data_dir>/word_embeddings/ as
twitter_<category>_<kind>_<dim>_<window>_<tweets>, each with a
.phrases file holding the phrase model used for training.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := cfg.validateEmbedding(); err != nil {
				return err
			}
			var stopWords *filter.StopWords
			if cfg.StopWordsFile != "" {
				sw, err := filter.LoadStopWords(cfg.StopWordsFile)
				if err != nil {
					return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
				}
				stopWords = sw
			}

			collector, err := a.collect(cmd.Context())
			if err != nil {
				return err
			}
			n := collector.Len()
			if n == 0 {
				return errEmptyCorpus
			}

			sentences := pipeline.Sentences(collector.Texts(), stopWords.Contains)
			phraser := phrases.Learn(sentences, cfg.phraseOptions()).Freeze()
			a.logger.Info("phrases learned",
				zap.Int("sentences", len(sentences)),
				zap.Int("phrases", phraser.Len()),
				zap.Strings("top", phraser.Top(10)))
			sentences = phraser.ApplyAll(sentences)

			models, err := embedding.TrainKinds(cmd.Context(), sentences,
				cfg.trainingOptions(embedding.CBOW), embedding.CBOW, embedding.SkipGram)
			if err != nil {
				return fmt.Errorf("training failed: %w", err)
			}

			for _, m := range models {
				name := embedding.ArtifactName(cfg.Category, m.Kind, cfg.VectorDim, cfg.WindowSize, n)
				path := filepath.Join(cfg.EmbeddingDir(), name)
				if err := m.Save(path); err != nil {
					return err
				}
				if err := phraser.Save(path + ".phrases"); err != nil {
					return err
				}
				a.logger.Info("model saved",
					zap.String("kind", string(m.Kind)),
					zap.String("path", path),
					zap.Int("vocabulary", m.Len()))
				fmt.Fprintf(a.out, "%s model (%d words) written to %s\n", m.Kind, m.Len(), path)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&flags.WindowSize, "window-size", 5, "Context window size")
	f.IntVar(&flags.VectorDim, "vector-dim", 300, "Embedding dimension")
	f.IntVar(&flags.Epochs, "epochs", 5, "Training epochs")
	f.IntVar(&flags.MinWordCount, "min-count", 5, "Ignore words seen fewer times")
	f.StringVar(&flags.StopWordsFile, "stopwords", "", "File of stop words to drop before the phrase pass")
	f.IntVar(&flags.Workers, "workers", 0, "Training goroutines per model (0 = one per CPU)")
	return cmd
}
