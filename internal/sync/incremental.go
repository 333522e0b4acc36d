package sync

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/codecontext/codecontext/internal/errs"
	"github.com/codecontext/codecontext/internal/model"
	"github.com/codecontext/codecontext/internal/parsers"
	"github.com/codecontext/codecontext/internal/scanner"
	"github.com/codecontext/codecontext/internal/state"
)

// IncrementalSyncer re-syncs only the files git reports changed since
// the repository's last recorded commit, falling back to a full sync
// when there is no prior checkpoint or the repository is not under git.
type IncrementalSyncer struct {
	Deps Deps
}

// NewIncrementalSyncer constructs an IncrementalSyncer over deps.
func NewIncrementalSyncer(deps Deps) *IncrementalSyncer {
	return &IncrementalSyncer{Deps: deps}
}

// Sync diffs repoRoot against the checkpointed commit and re-indexes
// only the added/modified/deleted files it reports.
func (inc *IncrementalSyncer) Sync(ctx context.Context, repoRoot string) (*model.IndexState, error) {
	deps := inc.Deps
	log := deps.Logger.With().Str("repo", repoRoot).Logger()

	prior, err := state.Load(repoRoot)
	if err != nil {
		return nil, err
	}
	if prior.Index.LastCommitHash == "" {
		log.Info().Msg("no prior checkpoint, running a full sync instead")
		return NewFullSyncer(deps).Sync(ctx, repoRoot)
	}

	added, modified, deleted, err := deps.Git.Diff(ctx, prior.Index.LastCommitHash)
	if err != nil {
		log.Warn().Err(err).Msg("git diff failed, running a full sync instead")
		return NewFullSyncer(deps).Sync(ctx, repoRoot)
	}

	changed := append(append([]string{}, added...), modified...)
	if len(changed) == 0 && len(deleted) == 0 {
		headSHA, _ := deps.Git.HeadSHA(ctx)
		indexState := prior.Index
		indexState.LastCommitHash = headSHA
		indexState.UpdatedAt = time.Now().UTC()
		if err := finalizeSuccess(ctx, deps, repoRoot, prior, indexState); err != nil {
			return nil, err
		}
		return &indexState, nil
	}

	files := inc.resolveFiles(repoRoot, changed)

	next := &state.State{
		FileChecksums:       cloneChecksums(prior.FileChecksums),
		RelationshipsByFile: cloneRelationships(prior.RelationshipsByFile),
	}
	for _, relPath := range deleted {
		delete(next.FileChecksums, relPath)
		delete(next.RelationshipsByFile, relPath)
		if err := deps.Store.DeleteByFile(ctx, relPath); err != nil {
			return nil, errs.Wrap(errs.Storage, "deleting removed file "+relPath, err)
		}
	}

	var totalObjects int
	var allParsed []parsedFile

	for _, batch := range chunkFiles(files, deps.Config.Indexing.ChunkSize) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		parsed := parseBatch(ctx, deps.Parsers, deps.Config.Indexing.ParallelWorkers, batch, log)
		for _, pf := range parsed {
			next.FileChecksums[pf.file.RelativePath] = pf.checksum
			if len(pf.relationships) > 0 {
				next.RelationshipsByFile[pf.file.RelativePath] = pf.relationships
			} else {
				delete(next.RelationshipsByFile, pf.file.RelativePath)
			}
			totalObjects += len(pf.codeObjects) + len(pf.documentNodes)
			if err := deps.Store.DeleteByFile(ctx, pf.file.RelativePath); err != nil {
				return nil, errs.Wrap(errs.Storage, "deleting stale chunks for "+pf.file.RelativePath, err)
			}
		}
		allParsed = append(allParsed, parsed...)

		if err := inc.syncChunk(ctx, parsed); err != nil {
			return nil, err
		}

		memoryBarrier(deps.Config.Indexing.MemoryManagement)
	}

	headSHA, _ := deps.Git.HeadSHA(ctx)
	indexState := model.IndexState{
		LastCommitHash: headSHA,
		TotalFiles:     len(next.FileChecksums),
		TotalObjects:   prior.Index.TotalObjects + totalObjects,
		Languages:      mergeLanguages(prior.Index.Languages, languageSet(allParsed)),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := finalizeSuccess(ctx, deps, repoRoot, next, indexState); err != nil {
		return nil, err
	}
	return &indexState, nil
}

// syncChunk embeds, BM25F-encodes, and upserts one chunk of changed
// files, identical to FullSyncer.syncChunk but named independently
// since the two engines may diverge in retry policy later.
func (inc *IncrementalSyncer) syncChunk(ctx context.Context, parsed []parsedFile) error {
	if len(parsed) == 0 {
		return nil
	}
	deps := inc.Deps
	return retryDo(ctx, deps.Config.Indexing.MaxRetries, time.Second, func() error {
		points, err := embedAndEncode(ctx, deps.Embedder, deps.Encoder, parsed)
		if err != nil {
			return err
		}
		return upsertBatched(ctx, deps.Store, points, deps.Config.Storage.UpsertBatchSize)
	})
}

// resolveFiles turns git-reported relative paths into scanner.Files,
// classifying each as code or document the same way scanner.Scan does.
func (inc *IncrementalSyncer) resolveFiles(repoRoot string, relPaths []string) []scanner.File {
	files := make([]scanner.File, 0, len(relPaths))
	for _, relPath := range relPaths {
		isDoc := scanner.IsDocumentPath(relPath)
		ext := strings.ToLower(filepath.Ext(relPath))
		if !isDoc && parsers.LanguageForExtension(ext) == "" {
			continue // git reported a path the scanner would never have included
		}
		files = append(files, scanner.File{
			AbsolutePath: filepath.Join(repoRoot, relPath),
			RelativePath: relPath,
			IsDocument:   isDoc,
		})
	}
	return files
}

func cloneChecksums(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func cloneRelationships(src map[string][]model.Relationship) map[string][]model.Relationship {
	out := make(map[string][]model.Relationship, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
