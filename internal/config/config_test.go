package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultReturnsValidConfiguration(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "http", cfg.Embeddings.Provider)
	assert.Equal(t, "BAAI/bge-small-en-v1.5", cfg.Embeddings.HTTP.Model)
	assert.Equal(t, 384, cfg.Embeddings.HTTP.Dimension)

	assert.Equal(t, "embedded", cfg.Storage.Mode)
	assert.Equal(t, "rrf", cfg.Storage.FusionMethod)
	assert.Equal(t, 100, cfg.Storage.UpsertBatchSize)

	assert.True(t, cfg.Search.EnableGraphExpansion)
	assert.Equal(t, 2, cfg.Search.GraphMaxHops)

	assert.False(t, cfg.Translation.Enabled)

	assert.NotEmpty(t, cfg.Project.Include)
	assert.NotEmpty(t, cfg.Project.Exclude)

	assert.NoError(t, Validate(cfg))
}

func TestValidateRejectsInvalidEmbeddingsProvider(t *testing.T) {
	cfg := Default()
	cfg.Embeddings.Provider = "bogus"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsInvalidFusionMethod(t *testing.T) {
	cfg := Default()
	cfg.Storage.FusionMethod = "bogus"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsOutOfRangeBatchSize(t *testing.T) {
	cfg := Default()
	cfg.Storage.UpsertBatchSize = 5
	assert.Error(t, Validate(cfg))

	cfg.Storage.UpsertBatchSize = 5000
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsRemoteModeWithoutURL(t *testing.T) {
	cfg := Default()
	cfg.Storage.Mode = "remote"
	cfg.Storage.URL = ""
	assert.Error(t, Validate(cfg))

	cfg.Storage.URL = "http://localhost:6333"
	assert.NoError(t, Validate(cfg))
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Embeddings.Provider = "bogus"
	cfg.Storage.FusionMethod = "bogus"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embeddings.provider")
	assert.Contains(t, err.Error(), "storage.fusion_method")
}

func TestOverrideAppliesAfterEveryOtherLayer(t *testing.T) {
	cfg := Default()
	cfg = Override(cfg, func(c *Config) {
		c.Project.Name = "overridden"
	})
	assert.Equal(t, "overridden", cfg.Project.Name)
}
