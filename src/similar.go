package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tweet-corpus/src/embedding"
)

func (a *app) similarCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:     "similar <model-file> <word>...",
		Short:   "Print the nearest neighbours of words in a saved embedding",
		Example: `  tweetcorpus similar data/word_embeddings/twitter_generic_skipgram_300_5_100000 trump new_york`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := embedding.Load(args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			for _, word := range args[1:] {
				neighbors, err := model.MostSimilar(word, top)
				if err != nil {
					fmt.Fprintf(w, "%s\t(%v)\n", word, err)
					continue
				}
				fmt.Fprintf(w, "%s\n", word)
				for _, n := range neighbors {
					fmt.Fprintf(w, "  %s\t%.4f\n", n.Word, n.Similarity)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", 10, "Neighbours per word")
	return cmd
}
