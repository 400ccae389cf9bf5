package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"vecrag/internal/categorize"
	"vecrag/internal/rag"
)

var indexCmd = &cobra.Command{
	Use:   "index [file/directory]",
	Short: "Index documents and report the category distribution",
	Long: `Index documents by chunking them, tagging every chunk with a category and
embedding them into an in-memory vector store.

Supported file formats:
- .txt (plain text)
- .md (markdown)
- .go (Go source code)
- .py (Python source code)
- .js (JavaScript source code)

Examples:
  vecrag index ./docs
  vecrag index file.txt
  vecrag index . --recursive`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

var statsCmd = &cobra.Command{
	Use:   "stats [file/directory]",
	Short: "Show vector store and model statistics for a document set",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(statsCmd)

	addCorpusFlags(indexCmd)
	addCorpusFlags(statsCmd)
	statsCmd.Flags().Bool("json", false, "Print statistics as JSON")
}

func runIndex(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	c, err := loadCorpus(cmd.Context(), cmd, corpusPath(args))
	if err != nil {
		return err
	}
	defer c.Close()

	fmt.Fprintf(out, "\nIndexing complete! Indexed %d documents with %d total vectors\n", c.files, c.store.Count())

	stats := c.store.Stats()
	fmt.Fprintf(out, "\nCategory distribution:\n")
	for _, category := range stats.Categories {
		fmt.Fprintf(out, "  %-12s %d\n", category, stats.CategoryCounts[category])
	}
	if stats.Uncategorized > 0 {
		fmt.Fprintf(out, "  %-12s %d\n", categorize.Unknown, stats.Uncategorized)
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")

	c, err := loadCorpus(cmd.Context(), cmd, corpusPath(args))
	if err != nil {
		return err
	}
	defer c.Close()

	generator, err := newGenerator()
	if err != nil {
		return fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	summary := rag.NewPipeline(c.store, generator, rag.WithLogger(logger)).Stats()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	stats := summary.Store
	fmt.Fprintf(out, "\nTotal vectors:  %d\n", stats.TotalCount)
	fmt.Fprintf(out, "Dimension:      %d\n", stats.Dimension)
	if summary.Model != "" {
		fmt.Fprintf(out, "Model:          %s\n", summary.Model)
	}
	fmt.Fprintf(out, "Uncategorized:  %d\n", stats.Uncategorized)
	fmt.Fprintf(out, "Categories:     %d\n", len(stats.Categories))
	for _, category := range stats.Categories {
		fmt.Fprintf(out, "  %-12s %d\n", category, stats.CategoryCounts[category])
	}
	return nil
}
