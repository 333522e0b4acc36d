package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/codecontext/codecontext/internal/errs"
)

// ProjectConfigFileName is the per-project config file, discovered by
// walking up from the current directory.
const ProjectConfigFileName = ".codecontext.toml"

// GlobalConfigDir returns the machine-wide config directory,
// "<home>/.codecontext".
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errs.Wrap(errs.Configuration, "failed to resolve home directory", err)
	}
	return filepath.Join(home, ".codecontext"), nil
}

// Loader loads configuration with CodeContext's fixed precedence:
// defaults < global config < $CONFIG path override < project config
// (walking up from startDir) < environment variables.
type Loader interface {
	Load() (*Config, error)
}

type loader struct {
	startDir string
}

// NewLoader creates a loader that searches for a project config file
// starting at startDir and walking up toward the filesystem root.
func NewLoader(startDir string) Loader {
	return &loader{startDir: startDir}
}

func (l *loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)

	globalDir, err := GlobalConfigDir()
	if err == nil {
		if mergeConfigFile(v, filepath.Join(globalDir, "config.toml")) != nil {
			return nil, errs.Wrap(errs.Configuration, "failed to read global config", err)
		}
	}

	if override := os.Getenv("CONFIG"); override != "" {
		if err := mergeConfigFile(v, override); err != nil {
			return nil, errs.Wrap(errs.Configuration, "failed to read CONFIG-specified config file", err)
		}
	}

	if projectPath := findProjectConfig(l.startDir); projectPath != "" {
		if err := mergeConfigFile(v, projectPath); err != nil {
			return nil, errs.Wrap(errs.Configuration, "failed to read project config", err)
		}
	}

	v.SetEnvPrefix("CODECONTEXT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errs.Wrap(errs.Configuration, "failed to unmarshal configuration", err)
	}

	bindBareEnvVars(cfg)

	if err := Validate(cfg); err != nil {
		return nil, errs.Wrap(errs.Configuration, "invalid configuration", err)
	}
	return cfg, nil
}

// mergeConfigFile merges path into v if it exists; a missing file is
// not an error, since every layer below the hard-coded defaults is
// optional.
func mergeConfigFile(v *viper.Viper, path string) error {
	if _, statErr := os.Stat(path); statErr != nil {
		return nil
	}
	v.SetConfigFile(path)
	return v.MergeInConfig()
}

// findProjectConfig walks up from dir looking for ProjectConfigFileName,
// stopping at the filesystem root.
func findProjectConfig(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ProjectConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("embeddings.provider", d.Embeddings.Provider)
	v.SetDefault("embeddings.http.endpoint", d.Embeddings.HTTP.Endpoint)
	v.SetDefault("embeddings.http.model", d.Embeddings.HTTP.Model)
	v.SetDefault("embeddings.http.dimension", d.Embeddings.HTTP.Dimension)

	v.SetDefault("storage.provider", d.Storage.Provider)
	v.SetDefault("storage.mode", d.Storage.Mode)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.fusion_method", d.Storage.FusionMethod)
	v.SetDefault("storage.upsert_batch_size", d.Storage.UpsertBatchSize)

	v.SetDefault("search.enable_graph_expansion", d.Search.EnableGraphExpansion)
	v.SetDefault("search.graph_max_hops", d.Search.GraphMaxHops)
	v.SetDefault("search.graph_ppr_threshold", d.Search.GraphPPRThreshold)
	v.SetDefault("search.max_chunks_per_file", d.Search.MaxChunksPerFile)

	v.SetDefault("translation.enabled", d.Translation.Enabled)

	v.SetDefault("indexing.parallel_workers", d.Indexing.ParallelWorkers)
	v.SetDefault("indexing.max_file_size_mb", d.Indexing.MaxFileSizeMB)
	v.SetDefault("indexing.chunk_size", d.Indexing.ChunkSize)
	v.SetDefault("indexing.max_retries", d.Indexing.MaxRetries)
	v.SetDefault("indexing.field_weights", d.Indexing.FieldWeights)
	v.SetDefault("indexing.memory_management.force_gc_after_chunk", d.Indexing.MemoryManagement.ForceGCAfterChunk)
	v.SetDefault("indexing.memory_management.clear_gpu_cache", d.Indexing.MemoryManagement.ClearGPUCache)

	v.SetDefault("project.include", d.Project.Include)
	v.SetDefault("project.exclude", d.Project.Exclude)
	v.SetDefault("project.name", d.Project.Name)
}

// bindEnv binds the CODECONTEXT_-prefixed keys viper's AutomaticEnv
// needs an explicit hint for: nested keys and keys with no default in
// the file viper just read.
func bindEnv(v *viper.Viper) {
	v.BindEnv("embeddings.provider")
	v.BindEnv("embeddings.http.endpoint")
	v.BindEnv("embeddings.http.model")
	v.BindEnv("embeddings.http.dimension")
	v.BindEnv("storage.provider")
	v.BindEnv("storage.mode")
	v.BindEnv("storage.path")
	v.BindEnv("storage.url")
	v.BindEnv("storage.api_key")
	v.BindEnv("storage.fusion_method")
	v.BindEnv("storage.upsert_batch_size")
	v.BindEnv("search.enable_graph_expansion")
	v.BindEnv("search.graph_max_hops")
	v.BindEnv("search.graph_ppr_threshold")
	v.BindEnv("search.max_chunks_per_file")
	v.BindEnv("translation.enabled")
	v.BindEnv("indexing.parallel_workers")
	v.BindEnv("indexing.max_file_size_mb")
	v.BindEnv("indexing.chunk_size")
	v.BindEnv("indexing.max_retries")
	v.BindEnv("project.name")
}

// bindBareEnvVars applies the bare (unprefixed) MODEL env var, which
// overrides embeddings.http.model regardless of the CODECONTEXT_ scheme.
// It is the only bare variable applied here: CONFIG is consumed earlier,
// as the override-file path, and LOG_LEVEL is read by internal/logging
// when no explicit level is given. DEVICE, BATCH_SIZE, and PORT are not
// read anywhere in this module.
func bindBareEnvVars(cfg *Config) {
	if model := os.Getenv("MODEL"); model != "" {
		cfg.Embeddings.HTTP.Model = model
	}
}

// Override applies fn to cfg and returns it, for tests and callers that
// need a programmatic override applied after every other precedence
// layer.
func Override(cfg *Config, fn func(*Config)) *Config {
	fn(cfg)
	return cfg
}

// Load is a convenience wrapper that loads configuration rooted at the
// current working directory.
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errs.Wrap(errs.Configuration, "failed to get working directory", err)
	}
	return NewLoader(wd).Load()
}

// LoadFromDir loads configuration rooted at a specific directory.
func LoadFromDir(dir string) (*Config, error) {
	return NewLoader(dir).Load()
}
