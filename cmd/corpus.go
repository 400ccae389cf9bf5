package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"vecrag/internal/categorize"
	"vecrag/internal/document"
	"vecrag/internal/embedding"
	"vecrag/internal/llm"
	"vecrag/internal/metadata"
	"vecrag/internal/rag"
	"vecrag/internal/vectorstore"
)

var defaultExtensions = []string{".txt", ".md", ".go", ".py", ".js"}

// corpus is a store built from the documents under one path.
type corpus struct {
	store  *vectorstore.MemoryStore
	files  int
	closer io.Closer
}

func (c *corpus) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

func addCorpusFlags(c *cobra.Command) {
	c.Flags().BoolP("recursive", "r", false, "Recursively index directories")
	c.Flags().StringSliceP("extensions", "e", defaultExtensions, "File extensions to index")
}

func addRetrievalFlags(c *cobra.Command) {
	c.Flags().String("category", "", "Only return chunks with this category")
	c.Flags().StringSliceP("filter", "f", nil, "Metadata constraint key=value (repeatable)")
}

// pinger is implemented by clients that can check their server before use.
type pinger interface {
	Ping(ctx context.Context) error
}

// newEmbedder creates the configured embedder wrapped with logging and metrics.
// Providers backed by a server are pinged first so an unreachable server fails
// before any document is embedded.
func newEmbedder(ctx context.Context) (*embedding.Instrumented, io.Closer, error) {
	pc := cfg.Embedding.ProviderConfig()
	e, err := embedding.New(pc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}

	closer, _ := e.(io.Closer)
	provider := pc.Provider
	if provider == "" {
		provider = embedding.ProviderHash
	}
	if p, ok := e.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("embedding provider %s: %w", provider, err)
		}
	}

	fields := []zap.Field{zap.String("provider", provider)}
	if m, ok := e.(interface{ Model() string }); ok {
		fields = append(fields, zap.String("model", m.Model()))
	}
	logger.Debug("embedding provider ready", fields...)

	return embedding.Instrument(e, provider, metrics, logger), closer, nil
}

// loadCorpus finds, chunks, classifies and embeds every document under path.
func loadCorpus(ctx context.Context, c *cobra.Command, path string) (*corpus, error) {
	out := c.OutOrStdout()
	recursive, _ := c.Flags().GetBool("recursive")
	extensions, _ := c.Flags().GetStringSlice("extensions")
	for i, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[i] = ext
	}

	files, err := document.FindFiles(path, recursive, extensions)
	if err != nil {
		return nil, fmt.Errorf("failed to get files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files matching %s found in %s", strings.Join(extensions, ", "), path)
	}
	fmt.Fprintf(out, "Found %d files to index\n", len(files))

	classifier := categorize.Default()
	var texts []string
	var metas []metadata.Metadata
	for i, file := range files {
		doc, err := document.LoadFromFile(file)
		if err != nil {
			fmt.Fprintf(out, "  ❌ [%d/%d] %s: %v\n", i+1, len(files), file, err)
			logger.Warn("skipping document", zap.String("file", file), zap.Error(err))
			continue
		}

		chunks, err := document.ChunkDocument(doc, cfg.Chunk.Size, cfg.Chunk.Overlap)
		if err != nil {
			return nil, err
		}
		for _, chunk := range chunks {
			md := chunk.Metadata
			md[metadata.CategoryKey] = metadata.String(classifier.Classify(chunk.Text))
			texts = append(texts, chunk.Text)
			metas = append(metas, md)
		}
		fmt.Fprintf(out, "  ✅ [%d/%d] %s (%d chunks)\n", i+1, len(files), file, len(chunks))
	}

	embedder, closer, err := newEmbedder(ctx)
	if err != nil {
		return nil, err
	}

	store := vectorstore.NewMemoryStore(vectorstore.WithEmbedder(embedder))
	if err := store.BuildFromList(ctx, texts, metas); err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("failed to build vector store: %w", err)
	}

	return &corpus{store: store, files: len(files), closer: closer}, nil
}

// corpusPath returns the positional path argument or the --docs setting.
func corpusPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return viper.GetString("docs")
}

// retrievalOptions assembles query options from the config and command flags.
func retrievalOptions(c *cobra.Command) (rag.QueryOptions, error) {
	category, _ := c.Flags().GetString("category")
	pairs, _ := c.Flags().GetStringSlice("filter")

	filter, err := metadata.ParseFilter(pairs)
	if err != nil {
		return rag.QueryOptions{}, err
	}

	return rag.QueryOptions{
		K:        cfg.Search.TopK,
		Metric:   cfg.Metric(),
		Category: category,
		Filter:   filter,
	}, nil
}

// newGenerator creates the configured answer generator, or nil for "none".
func newGenerator() (llm.Generator, error) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "none":
		return nil, nil
	case "openai":
		return llm.NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	default:
		url := cfg.LLM.BaseURL
		if url == "" {
			url = "http://localhost:11434"
		}
		model := cfg.LLM.Model
		if model == "" {
			model = "llama3.2"
		}
		return llm.NewOllamaClient(url, model)
	}
}

func truncateString(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}

func categoryOf(md metadata.Metadata) string {
	if c, ok := md.Category(); ok {
		return c
	}
	return "-"
}
