// Package config loads CodeContext's configuration: defaults, a global
// config file, an optional env-supplied override path, a project config
// file, and environment variables, in that precedence order.
package config

// Config is the complete, resolved CodeContext configuration.
type Config struct {
	Embeddings  EmbeddingsConfig  `toml:"embeddings" mapstructure:"embeddings"`
	Storage     StorageConfig     `toml:"storage" mapstructure:"storage"`
	Search      SearchConfig      `toml:"search" mapstructure:"search"`
	Translation TranslationConfig `toml:"translation" mapstructure:"translation"`
	Indexing    IndexingConfig    `toml:"indexing" mapstructure:"indexing"`
	Project     ProjectConfig     `toml:"project" mapstructure:"project"`
}

// EmbeddingsConfig selects and configures the embedding provider.
type EmbeddingsConfig struct {
	Provider string                    `toml:"provider" mapstructure:"provider"`
	HTTP     EmbeddingsProviderConfig  `toml:"http" mapstructure:"http"`
	Mock     EmbeddingsProviderConfig  `toml:"mock" mapstructure:"mock"`
}

// EmbeddingsProviderConfig holds the settings for one embedding
// provider; unused fields are simply left at their zero value for
// whichever provider is not selected.
type EmbeddingsProviderConfig struct {
	Endpoint  string `toml:"endpoint" mapstructure:"endpoint"`
	Model     string `toml:"model" mapstructure:"model"`
	Dimension int    `toml:"dimension" mapstructure:"dimension"`
}

// StorageConfig configures the embedded vector/sparse/FTS store.
type StorageConfig struct {
	Provider        string  `toml:"provider" mapstructure:"provider"`
	Mode            string  `toml:"mode" mapstructure:"mode"` // "embedded" or "remote"
	Path            string  `toml:"path" mapstructure:"path"`
	URL             string  `toml:"url" mapstructure:"url"`
	APIKey          string  `toml:"api_key" mapstructure:"api_key"`
	FusionMethod    string  `toml:"fusion_method" mapstructure:"fusion_method"` // "rrf" or "dbsf"
	UpsertBatchSize int     `toml:"upsert_batch_size" mapstructure:"upsert_batch_size"`
}

// SearchConfig configures retrieval-time graph expansion and result
// shaping.
type SearchConfig struct {
	EnableGraphExpansion bool    `toml:"enable_graph_expansion" mapstructure:"enable_graph_expansion"`
	GraphMaxHops         int     `toml:"graph_max_hops" mapstructure:"graph_max_hops"`
	GraphPPRThreshold    float64 `toml:"graph_ppr_threshold" mapstructure:"graph_ppr_threshold"`
	MaxChunksPerFile     int     `toml:"max_chunks_per_file" mapstructure:"max_chunks_per_file"`
}

// TranslationConfig toggles the passthrough-only translation provider.
type TranslationConfig struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled"`
}

// MemoryManagementConfig configures the sync engine's chunked-memory
// barrier behavior.
type MemoryManagementConfig struct {
	ForceGCAfterChunk bool `toml:"force_gc_after_chunk" mapstructure:"force_gc_after_chunk"`
	ClearGPUCache     bool `toml:"clear_gpu_cache" mapstructure:"clear_gpu_cache"`
}

// IndexingConfig configures the sync engine.
type IndexingConfig struct {
	ParallelWorkers    int                    `toml:"parallel_workers" mapstructure:"parallel_workers"` // 0 = auto
	MaxFileSizeMB      int                    `toml:"max_file_size_mb" mapstructure:"max_file_size_mb"`
	ChunkSize          int                    `toml:"chunk_size" mapstructure:"chunk_size"` // files per sync chunk
	MaxRetries         int                    `toml:"max_retries" mapstructure:"max_retries"`
	FieldWeights       map[string]float64     `toml:"field_weights" mapstructure:"field_weights"`
	MemoryManagement   MemoryManagementConfig `toml:"memory_management" mapstructure:"memory_management"`
}

// ProjectConfig scopes which files a sync pass considers and the
// project's display name.
type ProjectConfig struct {
	Include []string `toml:"include" mapstructure:"include"`
	Exclude []string `toml:"exclude" mapstructure:"exclude"`
	Name    string   `toml:"name" mapstructure:"name"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Embeddings: EmbeddingsConfig{
			Provider: "http",
			HTTP: EmbeddingsProviderConfig{
				Endpoint:  "http://localhost:8121/embed",
				Model:     "BAAI/bge-small-en-v1.5",
				Dimension: 384,
			},
		},
		Storage: StorageConfig{
			Provider:        "sqlite",
			Mode:            "embedded",
			Path:            "",
			FusionMethod:    "rrf",
			UpsertBatchSize: 100,
		},
		Search: SearchConfig{
			EnableGraphExpansion: true,
			GraphMaxHops:         2,
			GraphPPRThreshold:    0.05,
			MaxChunksPerFile:     5,
		},
		Translation: TranslationConfig{
			Enabled: false,
		},
		Indexing: IndexingConfig{
			ParallelWorkers: 0,
			MaxFileSizeMB:   2,
			ChunkSize:       100,
			MaxRetries:      3,
			FieldWeights: map[string]float64{
				"name":          3.0,
				"qualified_name": 2.0,
				"docstring":     1.5,
				"content":       1.0,
			},
			MemoryManagement: MemoryManagementConfig{
				ForceGCAfterChunk: true,
				ClearGPUCache:     false,
			},
		},
		Project: ProjectConfig{
			Include: []string{
				"**/*.py", "**/*.java", "**/*.kt", "**/*.kts",
				"**/*.js", "**/*.jsx", "**/*.mjs", "**/*.cjs",
				"**/*.ts", "**/*.tsx",
				"**/*.md", "**/*.markdown",
				"**/*.yaml", "**/*.yml", "**/*.json", "**/*.toml", "**/*.properties",
			},
			Exclude: []string{
				"node_modules/**", "vendor/**", ".git/**",
				"dist/**", "build/**", "target/**", "__pycache__/**",
			},
		},
	}
}
