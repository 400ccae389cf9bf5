package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"vecrag/internal/metadata"
	"vecrag/internal/rag"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Rank document chunks by similarity to a query",
	Long: `Embed the query and rank every indexed chunk against it with the selected
metric. Results can be narrowed by category or by any metadata key.

Examples:
  vecrag search "stretches for lower back pain" --docs ./notes
  vecrag search "protein intake" --category Nutrition --metric dot
  vecrag search "night routine" --filter type=markdown -k 5`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	addCorpusFlags(searchCmd)
	addRetrievalFlags(searchCmd)
	searchCmd.Flags().Bool("keys-only", false, "Print only the matching chunk texts")
}

func runSearch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	keysOnly, _ := cmd.Flags().GetBool("keys-only")

	opts, err := retrievalOptions(cmd)
	if err != nil {
		return err
	}

	c, err := loadCorpus(cmd.Context(), cmd, corpusPath(nil))
	if err != nil {
		return err
	}
	defer c.Close()

	pipeline := rag.NewPipeline(c.store, nil, rag.WithMetrics(metrics), rag.WithLogger(logger))
	sources, err := pipeline.Retrieve(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}

	if keysOnly {
		for _, s := range sources {
			fmt.Fprintln(out, s.Key)
		}
		return nil
	}

	fmt.Fprintf(out, "\n🔍 %d results (metric: %s)\n", len(sources), opts.Metric)
	for i, s := range sources {
		fmt.Fprintf(out, "\n[%d] Score: %.4f  Category: %s\n", i+1, s.Score, categoryOf(s.Metadata))
		if src, ok := s.Metadata.Get("source"); ok {
			fmt.Fprintf(out, "File: %s\n", metadata.Format(src))
		}
		fmt.Fprintf(out, "Content: %s\n", truncateString(s.Key, 200))
	}
	return nil
}
