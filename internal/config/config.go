// Package config loads docchat configuration from YAML with defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ChunkingConfig controls how extracted text is split before embedding.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// EmbeddingConfig configures the external embedding capability.
type EmbeddingConfig struct {
	Model     string `yaml:"model"`
	BatchSize int    `yaml:"batch_size"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// GenerationConfig configures the streaming generation backend.
type GenerationConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrievalConfig controls query-time retrieval and prompt assembly.
type RetrievalConfig struct {
	TopChunks    int `yaml:"top_chunks"`
	TopMemories  int `yaml:"top_memories"`
	MemoryWindow int `yaml:"memory_window"`
}

// Config is the root docchat configuration.
type Config struct {
	DocsDir    string           `yaml:"docs_dir"`
	DataDir    string           `yaml:"data_dir"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		DocsDir: "docs",
		DataDir: "data",
		Chunking: ChunkingConfig{
			Size:    2000,
			Overlap: 400,
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-3-small",
			BatchSize: 500,
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Generation: GenerationConfig{
			BaseURL:     "http://localhost:11434",
			Model:       "deepseek-r1:8b",
			TimeoutSecs: 120,
		},
		Retrieval: RetrievalConfig{
			TopChunks:    5,
			TopMemories:  3,
			MemoryWindow: 5,
		},
	}
}

// StreamTimeout returns the generation timeout as a duration.
func (c *Config) StreamTimeout() time.Duration {
	return time.Duration(c.Generation.TimeoutSecs) * time.Second
}

// IndexPath returns the document vector index snapshot path.
func (c *Config) IndexPath() string { return filepath.Join(c.DataDir, "docs.index") }

// ChunksPath returns the chunk text log path.
func (c *Config) ChunksPath() string { return filepath.Join(c.DataDir, "chunks.txt") }

// ProcessedPath returns the processed-document list path.
func (c *Config) ProcessedPath() string { return filepath.Join(c.DataDir, "processed.txt") }

// MemoryIndexPath returns the conversation memory index snapshot path.
func (c *Config) MemoryIndexPath() string { return filepath.Join(c.DataDir, "memory.index") }

// MemoryLogPath returns the conversation transcript path.
func (c *Config) MemoryLogPath() string { return filepath.Join(c.DataDir, "memory.txt") }

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.DocsDir == "" {
		cfg.DocsDir = def.DocsDir
	}
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.Chunking.Size <= 0 {
		cfg.Chunking.Size = def.Chunking.Size
	}
	if cfg.Chunking.Overlap < 0 || cfg.Chunking.Overlap >= cfg.Chunking.Size {
		cfg.Chunking.Overlap = cfg.Chunking.Size / 5
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = def.Embedding.Model
	}
	if cfg.Embedding.BatchSize <= 0 {
		cfg.Embedding.BatchSize = def.Embedding.BatchSize
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = def.Embedding.APIKeyEnv
	}
	if cfg.Generation.BaseURL == "" {
		cfg.Generation.BaseURL = def.Generation.BaseURL
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = def.Generation.Model
	}
	if cfg.Generation.TimeoutSecs <= 0 {
		cfg.Generation.TimeoutSecs = def.Generation.TimeoutSecs
	}
	if cfg.Retrieval.TopChunks <= 0 {
		cfg.Retrieval.TopChunks = def.Retrieval.TopChunks
	}
	if cfg.Retrieval.TopMemories <= 0 {
		cfg.Retrieval.TopMemories = def.Retrieval.TopMemories
	}
	if cfg.Retrieval.MemoryWindow <= 0 {
		cfg.Retrieval.MemoryWindow = def.Retrieval.MemoryWindow
	}
}
