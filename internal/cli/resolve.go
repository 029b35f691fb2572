package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/histparl/rollcall/internal/logging"
	"github.com/histparl/rollcall/internal/pipeline"
)

var (
	dataDir     string
	outDir      string
	jsonSummary string
	workers     int
	chunkSize   int
	snapshotDir string
	llmProvider string
	llmModel    string
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <debates.csv>",
	Short: "Resolve every speaker label of a debates CSV",
	Long: `Resolve streams a debates CSV through the worker pool and classifies
every row against the reference data.

Three datasets are written into the output directory: resolved.csv,
missed.csv, and ambiguous.csv (candidate ids joined with ";").

Example:
  rollcall resolve debates.csv --data ./refdata --out ./out
  rollcall resolve debates.csv --workers 8 --snapshot-dir ./cache
  rollcall resolve debates.csv --llm-provider openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&dataDir, "data", "", "reference data directory")
	resolveCmd.Flags().StringVar(&outDir, "out", "", "output directory")
	resolveCmd.Flags().StringVar(&jsonSummary, "json-summary", "", "write a JSON run summary to this path")
	resolveCmd.Flags().IntVar(&workers, "workers", 0, "worker count (default: number of CPUs)")
	resolveCmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "input rows per work unit")
	resolveCmd.Flags().StringVar(&snapshotDir, "snapshot-dir", "", "cache snapshot directory for warm starts")

	resolveCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "last-resort LLM provider (openai, ollama; disabled when empty)")
	resolveCmd.Flags().StringVar(&llmModel, "llm-model", "", "last-resort LLM model name")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if jsonSummary != "" {
		cfg.Output.JSONSummary = jsonSummary
	}
	if workers > 0 {
		cfg.Concurrency.Workers = workers
	}
	if chunkSize > 0 {
		cfg.Concurrency.ChunkSize = chunkSize
	}
	if snapshotDir != "" {
		cfg.Cache.SnapshotDir = snapshotDir
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
		if llmModel != "" {
			cfg.LLM.Model = llmModel
		}
		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := pipeline.NewRunner(cfg, logger).Run(ctx, args[0])
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	summary.Render(os.Stderr)
	return nil
}
