package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"vecrag/internal/config"
	"vecrag/internal/distance"
	"vecrag/internal/telemetry"
)

var (
	cfgFile     string
	showMetrics bool

	cfg      *config.Config
	logger   = zap.NewNop()
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vecrag",
	Short: "vecrag - In-memory vector search with metadata filtering",
	Long: `vecrag builds an in-memory vector index over a set of documents and answers
similarity queries against it, optionally narrowed by metadata.

Features:
- Chunk documents and tag every chunk with a topic category
- Embed with OpenAI, Ollama, an external command or an offline hashing embedder
- Rank with cosine, dot product, euclidean or manhattan scoring
- Filter results by category or any metadata key
- Answer questions over the retrieved chunks with Ollama or OpenAI`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vecrag.yaml)")
	flags.StringP("docs", "d", ".", "File or directory holding the documents to index")
	flags.String("embedding-provider", "hash", "Embedding provider: hash, openai, ollama or command")
	flags.String("embedding-model", "", "Embedding model (provider default when empty)")
	flags.String("embedding-url", "", "Embedding API base URL")
	flags.Int("dimension", 0, "Requested embedding dimension (openai, hash)")
	flags.String("llm-provider", "ollama", "Answer generator: ollama, openai or none")
	flags.String("llm-model", "", "LLM model (provider default when empty)")
	flags.String("ollama-url", "", "Ollama server URL for answer generation")
	flags.String("metric", "cosine", "Similarity metric: "+strings.Join(distance.Names(), ", "))
	flags.IntP("top-k", "k", 3, "Number of most relevant chunks to retrieve")
	flags.IntP("chunk-size", "c", 1000, "Maximum chunk size in characters")
	flags.IntP("chunk-overlap", "o", 200, "Overlap between consecutive chunks")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "console", "Log format: console or json")
	flags.BoolVar(&showMetrics, "show-metrics", false, "Print collected metrics when the command finishes")

	bind := map[string]string{
		"docs":               "docs",
		"embedding-provider": "embedding.provider",
		"embedding-model":    "embedding.model",
		"embedding-url":      "embedding.base_url",
		"dimension":          "embedding.dimension",
		"llm-provider":       "llm.provider",
		"llm-model":          "llm.model",
		"ollama-url":         "llm.base_url",
		"metric":             "search.metric",
		"top-k":              "search.top_k",
		"chunk-size":         "chunk.size",
		"chunk-overlap":      "chunk.overlap",
		"log-level":          "log.level",
		"log-format":         "log.format",
	}
	for flag, key := range bind {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(flag)))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".vecrag")
	}

	viper.SetEnvPrefix("VECRAG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setup loads the typed config and builds the logger and metrics registry.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := telemetry.NewLogger(cmd.ErrOrStderr(), c.Log.Level, c.Log.Format)
	if err != nil {
		return err
	}

	cfg = c
	logger = l
	registry = prometheus.NewRegistry()
	metrics = telemetry.NewMetrics(registry)

	logger.Debug("configuration loaded",
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("metric", cfg.Search.Metric),
		zap.Int("top_k", cfg.Search.TopK),
	)
	return nil
}

func teardown(cmd *cobra.Command, _ []string) error {
	defer logger.Sync() //nolint:errcheck

	if showMetrics && registry != nil {
		return printMetrics(cmd.OutOrStdout(), registry)
	}
	return nil
}

// printMetrics writes one line per collected series.
func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	fmt.Fprintln(w, "\nMetrics:")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			sort.Strings(labels)

			var value string
			switch {
			case m.GetCounter() != nil:
				value = fmt.Sprintf("%g", m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				value = fmt.Sprintf("%g", m.GetGauge().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				value = fmt.Sprintf("count=%d sum=%g", h.GetSampleCount(), h.GetSampleSum())
			default:
				continue
			}
			fmt.Fprintf(w, "  %s{%s} %s\n", mf.GetName(), strings.Join(labels, ","), value)
		}
	}
	return nil
}
