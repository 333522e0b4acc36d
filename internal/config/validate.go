package config

import (
	"fmt"
	"strings"

	"github.com/codecontext/codecontext/internal/errs"
)

// Validate checks that cfg is complete and internally consistent,
// returning a single joined errs.Error describing every violation found.
func Validate(cfg *Config) error {
	var msgs []string

	msgs = append(msgs, validateEmbeddings(&cfg.Embeddings)...)
	msgs = append(msgs, validateStorage(&cfg.Storage)...)
	msgs = append(msgs, validateSearch(&cfg.Search)...)
	msgs = append(msgs, validateIndexing(&cfg.Indexing)...)

	if len(msgs) == 0 {
		return nil
	}
	return errs.New(errs.Validation, fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - ")))
}

func validateEmbeddings(cfg *EmbeddingsConfig) []string {
	var msgs []string
	switch cfg.Provider {
	case "http", "mock":
	default:
		msgs = append(msgs, fmt.Sprintf("embeddings.provider: must be 'http' or 'mock', got %q", cfg.Provider))
	}
	if cfg.Provider == "http" && strings.TrimSpace(cfg.HTTP.Endpoint) == "" {
		msgs = append(msgs, "embeddings.http.endpoint: required when provider is 'http'")
	}
	return msgs
}

func validateStorage(cfg *StorageConfig) []string {
	var msgs []string
	switch cfg.Mode {
	case "embedded", "remote":
	default:
		msgs = append(msgs, fmt.Sprintf("storage.mode: must be 'embedded' or 'remote', got %q", cfg.Mode))
	}
	if cfg.Mode == "remote" && strings.TrimSpace(cfg.URL) == "" {
		msgs = append(msgs, "storage.url: required when storage.mode is 'remote'")
	}
	switch cfg.FusionMethod {
	case "rrf", "dbsf":
	default:
		msgs = append(msgs, fmt.Sprintf("storage.fusion_method: must be 'rrf' or 'dbsf', got %q", cfg.FusionMethod))
	}
	if cfg.UpsertBatchSize < 10 || cfg.UpsertBatchSize > 1000 {
		msgs = append(msgs, fmt.Sprintf("storage.upsert_batch_size: must be in [10, 1000], got %d", cfg.UpsertBatchSize))
	}
	return msgs
}

func validateSearch(cfg *SearchConfig) []string {
	var msgs []string
	if cfg.GraphMaxHops < 0 {
		msgs = append(msgs, fmt.Sprintf("search.graph_max_hops: cannot be negative, got %d", cfg.GraphMaxHops))
	}
	if cfg.GraphPPRThreshold < 0 || cfg.GraphPPRThreshold > 1 {
		msgs = append(msgs, fmt.Sprintf("search.graph_ppr_threshold: must be in [0, 1], got %v", cfg.GraphPPRThreshold))
	}
	if cfg.MaxChunksPerFile <= 0 {
		msgs = append(msgs, fmt.Sprintf("search.max_chunks_per_file: must be positive, got %d", cfg.MaxChunksPerFile))
	}
	return msgs
}

func validateIndexing(cfg *IndexingConfig) []string {
	var msgs []string
	if cfg.ParallelWorkers < 0 {
		msgs = append(msgs, fmt.Sprintf("indexing.parallel_workers: cannot be negative, got %d", cfg.ParallelWorkers))
	}
	if cfg.MaxFileSizeMB <= 0 {
		msgs = append(msgs, fmt.Sprintf("indexing.max_file_size_mb: must be positive, got %d", cfg.MaxFileSizeMB))
	}
	if cfg.ChunkSize <= 0 {
		msgs = append(msgs, fmt.Sprintf("indexing.chunk_size: must be positive, got %d", cfg.ChunkSize))
	}
	if cfg.MaxRetries < 0 {
		msgs = append(msgs, fmt.Sprintf("indexing.max_retries: cannot be negative, got %d", cfg.MaxRetries))
	}
	for field, weight := range cfg.FieldWeights {
		if weight < 0 {
			msgs = append(msgs, fmt.Sprintf("indexing.field_weights[%s]: cannot be negative, got %v", field, weight))
		}
	}
	return msgs
}
