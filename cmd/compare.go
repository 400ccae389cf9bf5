package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vecrag/internal/distance"
	"vecrag/internal/rag"
)

var compareCmd = &cobra.Command{
	Use:   "compare [query]",
	Short: "Rank the same query under every built-in metric",
	Long: `Run one query against the indexed chunks once per metric and print the
rankings side by side. Cosine ignores vector length, dot product rewards it,
and the euclidean and manhattan scores are negated distances so that higher
is still more similar.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	addCorpusFlags(compareCmd)
	addRetrievalFlags(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

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

	for _, metric := range distance.Builtins() {
		opts.Metric = metric
		sources, err := pipeline.Retrieve(cmd.Context(), args[0], opts)
		if err != nil {
			return fmt.Errorf("%s: %w", metric, err)
		}

		fmt.Fprintf(out, "\n--- %s ---\n", strings.ToUpper(metric.Name()))
		for rank, s := range sources {
			fmt.Fprintf(out, "  %d. %-60s | Score: %9.4f\n", rank+1, truncateString(s.Key, 57), s.Score)
		}
	}
	return nil
}
