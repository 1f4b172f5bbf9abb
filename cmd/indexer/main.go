package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/app"
	"alfredoptarigan/cv-screener/internal/config"
	"alfredoptarigan/cv-screener/internal/logger"
	"alfredoptarigan/cv-screener/internal/services"
)

var (
	corpusPath   string
	indexPath    string
	rolesPath    string
	indexBackend string
	provider     string
)

var rootCmd = &cobra.Command{
	Use:   "indexer",
	Short: "Build the role similarity index from the job description corpus",
	Long: `indexer embeds every job description of the corpus with the configured embedding model,
then rewrites the similarity index and the id to role mapping used by the screening API.`,
	RunE: run,
}

func init() {
	cfg := config.Load()

	rootCmd.Flags().StringVar(&corpusPath, "corpus", cfg.Retrieval.JobDescriptionsPath, "job descriptions JSON file")
	rootCmd.Flags().StringVar(&indexPath, "index", cfg.Retrieval.IndexPath, "flat index output file")
	rootCmd.Flags().StringVar(&rolesPath, "roles", cfg.Retrieval.RolesPath, "id to role mapping output file")
	rootCmd.Flags().StringVar(&indexBackend, "backend", cfg.Retrieval.IndexBackend, "index backend (flat, qdrant)")
	rootCmd.Flags().StringVar(&provider, "provider", cfg.Models.EmbeddingProvider, "embedding provider (ollama, gemini)")
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	cfg.Retrieval.IndexPath = indexPath

	zlog, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer zlog.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	embedder, err := app.NewModelBackend(ctx, cfg, provider)
	if err != nil {
		return err
	}

	index, err := app.NewVectorIndex(cfg, indexBackend, zlog)
	if err != nil {
		return err
	}

	builder := services.NewIndexBuilder(
		services.NewRoleCorpus(corpusPath),
		embedder,
		index,
		services.NewRoleMapping(rolesPath),
		zlog,
	)

	report, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	zlog.Info("📊 Index build summary",
		zap.String("backend", indexBackend),
		zap.Int("roles", len(report.Roles)),
		zap.Int("dimension", report.Dimension),
	)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
