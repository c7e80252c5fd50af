package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunking.ChunkSize != 2000 {
		t.Errorf("expected ChunkSize=2000, got %d", cfg.Chunking.ChunkSize)
	}
	if cfg.Chunking.Overlap != 200 {
		t.Errorf("expected Overlap=200, got %d", cfg.Chunking.Overlap)
	}
	if cfg.Retrieval.DistanceThreshold != 0.8 {
		t.Errorf("expected DistanceThreshold=0.8, got %f", cfg.Retrieval.DistanceThreshold)
	}
	if cfg.Upload.MinTextLength != 50 {
		t.Errorf("expected MinTextLength=50, got %d", cfg.Upload.MinTextLength)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invoicerag.yaml")

	content := `
chunking:
  chunk_size: 1000
  overlap: 100
retrieval:
  top_k: 8
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Chunking.ChunkSize != 1000 {
		t.Errorf("expected ChunkSize=1000, got %d", cfg.Chunking.ChunkSize)
	}
	if cfg.Retrieval.TopK != 8 {
		t.Errorf("expected TopK=8, got %d", cfg.Retrieval.TopK)
	}
	// Unset sections keep their defaults.
	if cfg.Upload.MaxFileBytes != 10<<20 {
		t.Errorf("expected default MaxFileBytes, got %d", cfg.Upload.MaxFileBytes)
	}
}

func TestLoad_RejectsOverlapNotBelowChunkSize(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invoicerag.yaml")

	content := `
chunking:
  chunk_size: 200
  overlap: 200
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for overlap == chunk_size")
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Chunking.ChunkSize != 2000 {
		t.Error("expected defaults when no config file present")
	}

	content := "retrieval:\n  max_docs: 2\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "invoicerag.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err = LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Retrieval.MaxDocs != 2 {
		t.Errorf("expected MaxDocs=2, got %d", cfg.Retrieval.MaxDocs)
	}
}
