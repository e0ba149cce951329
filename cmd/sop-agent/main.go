package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"

	"sop-agent/internal/config"
	"sop-agent/internal/embedding"
	"sop-agent/internal/helper"
	"sop-agent/internal/index"
	"sop-agent/internal/llm"
	"sop-agent/internal/rag"
	"sop-agent/internal/tui"
)

var (
	cfgPath      string
	query        string
	topK         int
	decisionMode bool
	rebuild      bool
)

var rootCmd = &cobra.Command{
	Use:   "sop-agent",
	Short: "SOP compliance question answering over indexed policy PDFs",
	Long: `Indexes PDF policy documents into a local persistent vector store,
retrieves relevant passages for a question, and produces either a
free-text answer or a structured YES/NO/CONDITIONAL compliance
decision with cited section IDs.`,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or reload the document index",
	RunE:  runIndex,
}

var retrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Preview the top-K chunks retrieved for a query",
	RunE:  runRetrieve,
}

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer a policy question (plain text or decision JSON)",
	RunE:  runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session with conversation memory",
	RunE:  runChat,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "./configs/config.yaml", "Path to YAML config file")
	indexCmd.Flags().BoolVar(&rebuild, "rebuild", false, "Discard the persisted index and rebuild from documents")
	retrieveCmd.Flags().StringVarP(&query, "query", "q", "", "Retrieval query")
	retrieveCmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of chunks to retrieve (1-10)")
	_ = retrieveCmd.MarkFlagRequired("query")
	askCmd.Flags().StringVarP(&query, "question", "q", "", "Question to answer")
	askCmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of chunks to retrieve (1-10)")
	askCmd.Flags().BoolVar(&decisionMode, "decision", false, "Return a structured compliance decision")
	_ = askCmd.MarkFlagRequired("question")
	rootCmd.AddCommand(indexCmd, retrieveCmd, askCmd, chatCmd)
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	// Load .env if present, ignore if missing
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newEmbeddingFunc builds the chromem embedding function from config.
func newEmbeddingFunc(cfg *config.Config) (chromem.EmbeddingFunc, error) {
	embedder, err := embedding.NewEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}
	return embedding.Func(embedder), nil
}

func indexOptions(cfg *config.Config, embedFn chromem.EmbeddingFunc) index.Options {
	return index.Options{
		DocsDir:      cfg.RAG.DocsDir,
		StorageDir:   cfg.RAG.StorageDir,
		ChunkSize:    cfg.RAG.ChunkSize,
		ChunkOverlap: cfg.RAG.ChunkOverlap,
		Embedding:    embedFn,
	}
}

// newPipeline wires the query pipeline so the index and model are
// re-resolved on every call, picking up configuration changes.
func newPipeline(cfg *config.Config) (*rag.Pipeline, error) {
	embedFn, err := newEmbeddingFunc(cfg)
	if err != nil {
		return nil, err
	}
	resolveIndex := func(ctx context.Context) (rag.Retriever, error) {
		return index.GetOrBuild(ctx, indexOptions(cfg, embedFn))
	}
	resolveModel := func() (llms.Model, error) {
		return llm.New(cfg.LLM)
	}
	return rag.New(resolveIndex, resolveModel), nil
}

func clampTopK(cfg *config.Config) int {
	k := topK
	if k == 0 {
		k = cfg.RAG.TopK
	}
	if k < 1 {
		k = 1
	}
	if k > 10 {
		k = 10
	}
	return k
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if rebuild {
		if err := os.RemoveAll(cfg.RAG.StorageDir); err != nil {
			return fmt.Errorf("failed to clear storage directory: %w", err)
		}
	}
	embedFn, err := newEmbeddingFunc(cfg)
	if err != nil {
		return err
	}
	idx, err := index.GetOrBuild(context.Background(), indexOptions(cfg, embedFn))
	if err != nil {
		return err
	}
	fmt.Printf("Index ready: %d chunks in %s\n", idx.Count(), cfg.RAG.StorageDir)
	return nil
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	embedFn, err := newEmbeddingFunc(cfg)
	if err != nil {
		return err
	}
	idx, err := index.GetOrBuild(context.Background(), indexOptions(cfg, embedFn))
	if err != nil {
		return err
	}
	chunks, err := idx.Retrieve(context.Background(), query, clampTopK(cfg))
	if err != nil {
		return err
	}
	fmt.Printf("Retrieved %d chunks.\n\n", len(chunks))
	for i, chunk := range chunks {
		fmt.Println(helper.FormatChunk(i+1, chunk))
		fmt.Println()
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pipeline, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	out, err := pipeline.Query(context.Background(), query, decisionMode, clampTopK(cfg))
	if err != nil {
		return err
	}

	if decisionMode {
		fmt.Println("Decision:")
		fmt.Println(helper.PrettyJSON(out.JSON))
	} else {
		fmt.Println("Answer:")
		fmt.Println(out.Text)
	}
	fmt.Println("\nSources:")
	for i, chunk := range out.Sources {
		fmt.Println(helper.FormatChunk(i+1, chunk))
		fmt.Println()
	}
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pipeline, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	program := tea.NewProgram(tui.New(pipeline), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chat session: %w", err)
	}
	return nil
}
