package sync

import (
	"context"
	"time"

	"github.com/codecontext/codecontext/internal/errs"
	"github.com/codecontext/codecontext/internal/model"
	"github.com/codecontext/codecontext/internal/scanner"
	"github.com/codecontext/codecontext/internal/state"
)

// FullSyncer walks a repository from scratch, re-embedding and
// re-encoding every included file. It is also the engine an
// IncrementalSyncer falls back to when a repository has never been
// synced before.
type FullSyncer struct {
	Deps Deps

	// Force re-embeds and re-encodes every included file even when its
	// checksum matches the last successful sync.
	Force bool
}

// NewFullSyncer constructs a FullSyncer over deps.
func NewFullSyncer(deps Deps) *FullSyncer {
	return &FullSyncer{Deps: deps}
}

// Sync re-indexes every file project config includes under repoRoot,
// in chunks of Config.Indexing.ChunkSize files, skipping files whose
// content checksum matches the last successful sync.
func (f *FullSyncer) Sync(ctx context.Context, repoRoot string) (*model.IndexState, error) {
	deps := f.Deps
	log := deps.Logger.With().Str("repo", repoRoot).Logger()

	prior, err := state.Load(repoRoot)
	if err != nil {
		return nil, err
	}

	sc, err := scanner.New(scanner.Options{
		RootDir:         repoRoot,
		IncludePatterns: deps.Config.Project.Include,
		ExcludePatterns: deps.Config.Project.Exclude,
		MaxFileBytes:    int64(deps.Config.Indexing.MaxFileSizeMB) << 20,
	})
	if err != nil {
		return nil, errs.Wrap(errs.Indexing, "building scanner", err)
	}
	files, err := sc.Scan()
	if err != nil {
		return nil, errs.Wrap(errs.Indexing, "scanning repository", err)
	}

	next := &state.State{
		FileChecksums:       map[string]string{},
		RelationshipsByFile: map[string][]model.Relationship{},
	}

	var totalObjects int
	var allParsed []parsedFile

	for _, batch := range chunkFiles(files, deps.Config.Indexing.ChunkSize) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		parsed := parseBatch(ctx, deps.Parsers, deps.Config.Indexing.ParallelWorkers, batch, log)

		var pending []parsedFile
		for _, pf := range parsed {
			next.FileChecksums[pf.file.RelativePath] = pf.checksum
			totalObjects += len(pf.codeObjects) + len(pf.documentNodes)
			if !f.Force && prior.Unchanged(pf.file.RelativePath, pf.checksum) {
				// content identical to the last full sync: keep its
				// prior relationships and skip re-embedding it.
				if rels, ok := prior.RelationshipsByFile[pf.file.RelativePath]; ok {
					next.RelationshipsByFile[pf.file.RelativePath] = rels
				}
				continue
			}
			pending = append(pending, pf)
		}

		for _, pf := range pending {
			if len(pf.relationships) > 0 {
				next.RelationshipsByFile[pf.file.RelativePath] = pf.relationships
			}
		}
		allParsed = append(allParsed, parsed...)

		if err := f.deleteStaleChunks(ctx, pending); err != nil {
			return nil, err
		}
		if err := f.syncChunk(ctx, pending); err != nil {
			return nil, err
		}

		memoryBarrier(deps.Config.Indexing.MemoryManagement)
	}

	if err := f.deleteRemovedFiles(ctx, prior.FileChecksums, next.FileChecksums); err != nil {
		return nil, err
	}

	headSHA, _ := deps.Git.HeadSHA(ctx)
	indexState := model.IndexState{
		LastCommitHash: headSHA,
		TotalFiles:     len(files),
		TotalObjects:   totalObjects,
		Languages:      mergeLanguages(prior.Index.Languages, languageSet(allParsed)),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := finalizeSuccess(ctx, deps, repoRoot, next, indexState); err != nil {
		return nil, err
	}
	return &indexState, nil
}

// deleteStaleChunks clears a changed file's previously stored chunks
// before re-upserting, since a content edit can shrink or shift object
// boundaries and leave orphaned ids behind otherwise.
func (f *FullSyncer) deleteStaleChunks(ctx context.Context, pending []parsedFile) error {
	for _, pf := range pending {
		if err := f.Deps.Store.DeleteByFile(ctx, pf.file.RelativePath); err != nil {
			return errs.Wrap(errs.Storage, "deleting stale chunks for "+pf.file.RelativePath, err)
		}
	}
	return nil
}

// deleteRemovedFiles clears chunks for files present in the prior
// checkpoint but absent from the current scan (deleted or now excluded).
func (f *FullSyncer) deleteRemovedFiles(ctx context.Context, prior, current map[string]string) error {
	for relPath := range prior {
		if _, ok := current[relPath]; ok {
			continue
		}
		if err := f.Deps.Store.DeleteByFile(ctx, relPath); err != nil {
			return errs.Wrap(errs.Storage, "deleting removed file "+relPath, err)
		}
	}
	return nil
}

// syncChunk embeds, BM25F-encodes, and upserts one chunk's pending
// (changed) files, retrying the whole chunk on failure per
// Config.Indexing.MaxRetries.
func (f *FullSyncer) syncChunk(ctx context.Context, pending []parsedFile) error {
	if len(pending) == 0 {
		return nil
	}
	deps := f.Deps
	return retryDo(ctx, deps.Config.Indexing.MaxRetries, time.Second, func() error {
		points, err := embedAndEncode(ctx, deps.Embedder, deps.Encoder, pending)
		if err != nil {
			return err
		}
		return upsertBatched(ctx, deps.Store, points, deps.Config.Storage.UpsertBatchSize)
	})
}
