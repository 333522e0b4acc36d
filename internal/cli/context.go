package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/codecontext/codecontext/internal/bm25"
	"github.com/codecontext/codecontext/internal/config"
	"github.com/codecontext/codecontext/internal/embedcoord"
	"github.com/codecontext/codecontext/internal/embedding"
	_ "github.com/codecontext/codecontext/internal/embedding/httpprovider"
	_ "github.com/codecontext/codecontext/internal/embedding/mockprovider"
	"github.com/codecontext/codecontext/internal/errs"
	"github.com/codecontext/codecontext/internal/gitutil"
	"github.com/codecontext/codecontext/internal/logging"
	"github.com/codecontext/codecontext/internal/metadata"
	"github.com/codecontext/codecontext/internal/parsers"
	"github.com/codecontext/codecontext/internal/project"
	"github.com/codecontext/codecontext/internal/store"
	"github.com/codecontext/codecontext/internal/store/sqlite"
	"github.com/codecontext/codecontext/internal/sync"
)

// commandContext bundles everything a CLI command needs: the resolved
// config, a logger, the repository identity, and (when requested) an
// open store. Built once per invocation by newContext.
type commandContext struct {
	Config    *config.Config
	Logger    zerolog.Logger
	RepoRoot  string
	ProjectID string
	Store     store.Store
}

// newContext resolves configuration and project identity for repoPath,
// the shared first step of every command that touches a repository.
func newContext(repoPath string) (*commandContext, error) {
	repoRoot, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, errs.Wrap(errs.Configuration, "resolving repository path", err)
	}

	cfg, err := config.LoadFromDir(repoRoot)
	if err != nil {
		return nil, err
	}

	level := "" // logging.New falls back to LOG_LEVEL, then info
	if verbose {
		level = "debug"
	}
	logger := logging.New(logging.Config{Level: level, Pretty: true, Output: os.Stderr})

	projectID := project.ProjectID(context.Background(), repoRoot)

	return &commandContext{
		Config:    cfg,
		Logger:    logger,
		RepoRoot:  repoRoot,
		ProjectID: project.NormalizeProjectID(projectID),
	}, nil
}

// openStore opens this context's sqlite store, creating its backing
// file under the project's metadata directory unless storage.path
// overrides it.
func (c *commandContext) openStore(ctx context.Context) (store.Store, error) {
	path, err := c.storePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errs.Wrap(errs.Storage, "creating storage directory", err)
	}

	dimension := c.Config.Embeddings.HTTP.Dimension
	if c.Config.Embeddings.Provider == "mock" {
		dimension = c.Config.Embeddings.Mock.Dimension
	}
	s, err := sqlite.Open(path, dimension)
	if err != nil {
		return nil, err
	}
	if err := s.Initialize(ctx); err != nil {
		s.Close()
		return nil, err
	}
	c.Store = s
	return s, nil
}

func (c *commandContext) storePath() (string, error) {
	if c.Config.Storage.Path != "" {
		return c.Config.Storage.Path, nil
	}
	dir, err := metadata.ProjectDir(c.ProjectID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "store.db"), nil
}

// embeddingProvider constructs the configured embedding provider via
// the package registry, so a single config string selects http or mock
// without this command importing either subpackage directly.
func (c *commandContext) embeddingProvider() (embedding.Provider, error) {
	switch c.Config.Embeddings.Provider {
	case "mock":
		return embedding.New("mock", map[string]any{"dimension": c.Config.Embeddings.Mock.Dimension})
	default:
		return embedding.New("http", map[string]any{
			"endpoint":  c.Config.Embeddings.HTTP.Endpoint,
			"dimension": c.Config.Embeddings.HTTP.Dimension,
		})
	}
}

// syncDeps assembles the sync.Deps this context needs to run a sync
// engine, opening the store and embedding provider as a side effect.
func (c *commandContext) syncDeps(ctx context.Context) (sync.Deps, error) {
	s, err := c.openStore(ctx)
	if err != nil {
		return sync.Deps{}, err
	}

	provider, err := c.embeddingProvider()
	if err != nil {
		return sync.Deps{}, err
	}
	if err := provider.Initialize(ctx); err != nil {
		return sync.Deps{}, errs.Wrap(errs.Embedding, "initializing embedding provider", err)
	}

	return sync.Deps{
		Config:      c.Config,
		Store:       s,
		Embedder:    embedcoord.New(provider),
		Encoder:     bm25.NewEncoder(c.Config.Indexing.FieldWeights),
		Parsers:     parsers.NewBank(),
		Git:         gitutil.NewOperations(c.RepoRoot),
		Logger:      c.Logger,
		ProjectID:   c.ProjectID,
		ProjectName: c.projectName(),
	}, nil
}

func (c *commandContext) projectName() string {
	if c.Config.Project.Name != "" {
		return c.Config.Project.Name
	}
	return filepath.Base(c.RepoRoot)
}

func (c *commandContext) close() {
	if c.Store != nil {
		c.Store.Close()
	}
}
