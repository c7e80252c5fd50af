package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the invoice RAG backend.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Upload    UploadConfig    `yaml:"upload"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
}

// StorageConfig holds on-disk layout configuration.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"` // uploads, exports and the index database live here
}

// UploadConfig gates what the ingestion batch accepts.
type UploadConfig struct {
	MaxFileBytes  int64 `yaml:"max_file_bytes"`
	MinTextLength int   `yaml:"min_text_length"` // below this the extracted text counts as scanned/image-only
}

// ChunkingConfig holds sliding-window parameters. Overlap must stay below
// ChunkSize.
type ChunkingConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
}

// RetrievalConfig holds similarity-search parameters.
type RetrievalConfig struct {
	TopK              int     `yaml:"top_k"`
	MaxDocs           int     `yaml:"max_docs"`
	DistanceThreshold float64 `yaml:"distance_threshold"`
}

// EmbeddingConfig selects the embedding provider.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "ollama", "mock"
	Model     string `yaml:"model"`       // e.g. "all-minilm"
	APIKeyEnv string `yaml:"api_key_env"` // environment variable holding the API key
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// LLMConfig selects the generation model.
type LLMConfig struct {
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	MaxRetries  int     `yaml:"max_retries"` // extra attempts after the first call
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir: ".invoicerag",
		},
		Upload: UploadConfig{
			MaxFileBytes:  10 << 20,
			MinTextLength: 50,
		},
		Chunking: ChunkingConfig{
			ChunkSize: 2000,
			Overlap:   200,
		},
		Retrieval: RetrievalConfig{
			TopK:              5,
			MaxDocs:           3,
			DistanceThreshold: 0.8,
		},
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			Model:     "all-minilm",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 384,
			BatchSize: 100,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			Temperature: 0.2,
			MaxTokens:   2048,
			MaxRetries:  2,
		},
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("chunking.chunk_size must be positive, got %d", c.Chunking.ChunkSize)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunking.overlap must be in [0, chunk_size), got %d", c.Chunking.Overlap)
	}
	if c.Upload.MaxFileBytes <= 0 {
		return fmt.Errorf("upload.max_file_bytes must be positive, got %d", c.Upload.MaxFileBytes)
	}
	return nil
}

// Load loads configuration from a YAML file, filling unset fields with
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for
// invoicerag.yaml, then .invoicerag/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "invoicerag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".invoicerag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DBPath returns the path of the bbolt database under the data dir.
func (c *Config) DBPath() string {
	return filepath.Join(c.Storage.DataDir, "invoices.db")
}

// UploadsDir returns where uploaded source PDFs are stored.
func (c *Config) UploadsDir() string {
	return filepath.Join(c.Storage.DataDir, "uploads")
}

// ExportsDir returns where exported invoices are written.
func (c *Config) ExportsDir() string {
	return filepath.Join(c.Storage.DataDir, "exports")
}

// EnsureDataDirs creates the data directory tree.
func (c *Config) EnsureDataDirs() error {
	for _, dir := range []string{c.Storage.DataDir, c.UploadsDir(), c.ExportsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
