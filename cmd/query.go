package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vecrag/internal/llm"
	"vecrag/internal/metadata"
	"vecrag/internal/rag"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Query the indexed documents using RAG",
	Long: `Query the indexed documents using Retrieval-Augmented Generation (RAG).
This command will:
1. Generate an embedding for your question
2. Find the most relevant document chunks, optionally within one category
3. Use the configured LLM to generate an answer based on the retrieved context

Examples:
  vecrag query "How much sleep do adults need?" --docs ./notes
  vecrag query "What helps with anxiety?" --category Stress --top-k 5
  vecrag query "best stretches" --retrieve-only`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	addCorpusFlags(queryCmd)
	addRetrievalFlags(queryCmd)
	queryCmd.Flags().StringP("prompt-template", "p", "", "Custom prompt template using {{.Context}} and {{.Question}}")
	queryCmd.Flags().BoolP("show-sources", "s", true, "Show source documents in the response")
	queryCmd.Flags().Bool("retrieve-only", false, "Skip answer generation and print the retrieved sources")
	queryCmd.Flags().Bool("stream", false, "Stream the answer as it is generated")
}

func runQuery(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	question := args[0]
	promptTemplate, _ := cmd.Flags().GetString("prompt-template")
	showSources, _ := cmd.Flags().GetBool("show-sources")
	retrieveOnly, _ := cmd.Flags().GetBool("retrieve-only")
	stream, _ := cmd.Flags().GetBool("stream")

	opts, err := retrievalOptions(cmd)
	if err != nil {
		return err
	}

	var generator llm.Generator
	if !retrieveOnly {
		generator, err = newGenerator()
		if err != nil {
			return fmt.Errorf("failed to initialize LLM client: %w", err)
		}
		if generator == nil {
			retrieveOnly = true
		}
		if p, ok := generator.(pinger); ok {
			if err := p.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("LLM %s is not ready: %w", generator.Model(), err)
			}
		}
	}

	c, err := loadCorpus(cmd.Context(), cmd, corpusPath(nil))
	if err != nil {
		return err
	}
	defer c.Close()

	ragPipeline := rag.NewPipeline(c.store, generator,
		rag.WithMetrics(metrics),
		rag.WithLogger(logger),
		rag.WithPromptTemplate(promptTemplate),
	)

	fmt.Fprintf(out, "\n🔍 Searching for relevant information...\n")

	var sources []rag.Source
	switch {
	case retrieveOnly:
		sources, err = ragPipeline.Retrieve(cmd.Context(), question, opts)
		if err != nil {
			return fmt.Errorf("failed to process query: %w", err)
		}
		showSources = true
	case stream:
		fmt.Fprintf(out, "\n📖 Answer:\n")
		fmt.Fprintln(out, strings.Repeat("-", 80))
		sources, err = ragPipeline.QueryStream(cmd.Context(), question, opts, func(s string) {
			fmt.Fprint(out, s)
		})
		fmt.Fprintln(out)
		fmt.Fprintln(out, strings.Repeat("-", 80))
		if err != nil {
			return fmt.Errorf("failed to process query: %w", err)
		}
	default:
		var response string
		response, sources, err = ragPipeline.Query(cmd.Context(), question, opts)
		if err != nil {
			return fmt.Errorf("failed to process query: %w", err)
		}
		fmt.Fprintf(out, "\n📖 Answer:\n")
		fmt.Fprintln(out, strings.Repeat("-", 80))
		fmt.Fprintln(out, response)
		fmt.Fprintln(out, strings.Repeat("-", 80))
	}

	if showSources && len(sources) > 0 {
		fmt.Fprintf(out, "\n📚 Sources (%d found):\n", len(sources))
		for i, source := range sources {
			fmt.Fprintf(out, "\n[%d] Similarity: %.3f  Category: %s\n", i+1, source.Score, categoryOf(source.Metadata))
			if file, ok := source.Metadata.Get("source"); ok {
				fmt.Fprintf(out, "File: %s\n", metadata.Format(file))
			}
			if chunk, ok := source.Metadata.Get("chunk_index"); ok {
				fmt.Fprintf(out, "Chunk: %s\n", metadata.Format(chunk))
			}
			fmt.Fprintf(out, "Content: %s\n", truncateString(source.Key, 200))
		}
	}

	return nil
}
