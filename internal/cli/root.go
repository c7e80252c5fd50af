package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoicerag/config"
	"invoicerag/internal/adapter/chunker"
	"invoicerag/internal/adapter/embedding"
	"invoicerag/internal/adapter/pdftext"
	"invoicerag/internal/adapter/store"
	"invoicerag/internal/port"
	"invoicerag/internal/usecase"
)

var (
	cfgFile string
	dataDir string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "invoicerag",
	Short: "Invoice RAG - index invoice PDFs and draft new invoices from them",
	Long: `invoicerag indexes the text of uploaded invoice PDFs into a local vector
store and drafts new structured invoices with an LLM, grounded on the most
similar past invoices.

Example usage:
  invoicerag ingest ./invoices/*.pdf        # Index a batch of PDFs
  invoicerag query -q "acme consulting"     # Inspect what retrieval finds
  invoicerag generate -q "2h consulting for Acme, net 30"`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, werr := os.Getwd()
			if werr != nil {
				return fmt.Errorf("failed to get working directory: %w", werr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if dataDir != "" {
			cfg.Storage.DataDir = dataDir
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./invoicerag.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default is ./.invoicerag)")
}

func GetConfig() *config.Config {
	return cfg
}

// services bundles the wired pipeline behind one Close.
type services struct {
	records *store.RecordStore
	index   port.VectorIndex
	ingest  *usecase.IngestUseCase
}

func openServices() (*services, error) {
	cfg := GetConfig()

	if err := cfg.EnsureDataDirs(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	records, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		records.Close()
		return nil, err
	}

	index, err := store.NewBoltVectorIndex(records.DB(), embedder)
	if err != nil {
		records.Close()
		return nil, fmt.Errorf("failed to open vector index: %w", err)
	}

	extractor := pdftext.NewExtractor(cfg.Upload.MinTextLength)
	chk := chunker.NewWindowChunker(cfg.Chunking.ChunkSize, cfg.Chunking.Overlap)
	ingest := usecase.NewIngestUseCase(records, index, extractor, chk, cfg.UploadsDir(), cfg.Upload.MaxFileBytes)

	return &services{records: records, index: index, ingest: ingest}, nil
}

func (s *services) Close() {
	s.records.Close()
}

func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	e := cfg.Embedding
	switch e.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(e.APIKeyEnv, e.Model, e.BaseURL, e.Dimension, e.BatchSize)
	case "mock":
		return embedding.NewMockEmbedder(e.Dimension), nil
	case "", "ollama":
		return embedding.NewOllamaEmbedder(e.Model, e.BaseURL, e.Dimension, e.BatchSize), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", e.Provider)
	}
}
