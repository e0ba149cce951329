package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LLMConfig holds the completion model settings. Key and endpoint are
// required before any answer can be generated; absence is a
// configuration error, not a process failure.
type LLMConfig struct {
	APIKey      string  `yaml:"api_key"`
	Endpoint    string  `yaml:"endpoint"`
	APIVersion  string  `yaml:"api_version"`
	Deployment  string  `yaml:"deployment"`
	APIType     string  `yaml:"api_type"` // "azure" or "openai"
	Temperature float64 `yaml:"temperature"`
}

// EmbeddingConfig selects the embedder used to vectorize chunks and queries.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // "ollama" or "openai"
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// RAGConfig holds document locations and retrieval settings.
type RAGConfig struct {
	DocsDir      string `yaml:"docs_dir"`
	StorageDir   string `yaml:"storage_dir"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	TopK         int    `yaml:"top_k"`
}

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	RAG       RAGConfig       `yaml:"rag"`
}

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
	defaultTopK         = 8
)

// Load reads a config from path. A missing file is not an error: the
// defaults are returned and environment variables still apply.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			APIVersion: "2025-01-01-preview",
			Deployment: "gpt-4o-mini",
			APIType:    "azure",
		},
		Embedding: EmbeddingConfig{
			Provider: "ollama",
			BaseURL:  "http://localhost:11434",
			Model:    "nomic-embed-text",
		},
		RAG: RAGConfig{
			DocsDir:      "docs",
			StorageDir:   "storage",
			ChunkSize:    defaultChunkSize,
			ChunkOverlap: defaultChunkOverlap,
			TopK:         defaultTopK,
		},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.RAG.DocsDir == "" {
		cfg.RAG.DocsDir = "docs"
	}
	if cfg.RAG.StorageDir == "" {
		cfg.RAG.StorageDir = "storage"
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = defaultChunkSize
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = defaultTopK
	}
	if cfg.LLM.APIType == "" {
		cfg.LLM.APIType = "azure"
	}
	if cfg.LLM.APIVersion == "" {
		cfg.LLM.APIVersion = "2025-01-01-preview"
	}
	if cfg.LLM.Deployment == "" {
		cfg.LLM.Deployment = "gpt-4o-mini"
	}
}

// applyEnv layers environment variables over the file values so
// credentials can stay out of the config file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("AZURE_OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("AZURE_OPENAI_ENDPOINT"); v != "" {
		cfg.LLM.Endpoint = v
	}
	if v := os.Getenv("AZURE_OPENAI_API_VERSION"); v != "" {
		cfg.LLM.APIVersion = v
	}
	if v := os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME"); v != "" {
		cfg.LLM.Deployment = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
}
