// Package sync implements the full and incremental indexing pipelines:
// scan, chunk into batches, parse, embed, BM25F-encode, and upsert into
// the store, checkpointing progress so a later `search` invocation (a
// separate process) can pick results and the relationship graph back
// up. FullSyncer and IncrementalSyncer are two Engine implementations
// rather than one parameterized function, since they differ enough in
// how they select which files to touch that sharing one function body
// would need more branching than it would save.
package sync

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codecontext/codecontext/internal/bm25"
	"github.com/codecontext/codecontext/internal/checksum"
	"github.com/codecontext/codecontext/internal/chunker"
	"github.com/codecontext/codecontext/internal/config"
	"github.com/codecontext/codecontext/internal/docparse"
	"github.com/codecontext/codecontext/internal/embedcoord"
	"github.com/codecontext/codecontext/internal/errs"
	"github.com/codecontext/codecontext/internal/gitutil"
	"github.com/codecontext/codecontext/internal/metadata"
	"github.com/codecontext/codecontext/internal/model"
	"github.com/codecontext/codecontext/internal/parsers"
	"github.com/codecontext/codecontext/internal/scanner"
	"github.com/codecontext/codecontext/internal/state"
	"github.com/codecontext/codecontext/internal/store"

	"github.com/rs/zerolog"
)

// Engine runs one sync pass over a repository and returns the resulting
// checkpoint.
type Engine interface {
	Sync(ctx context.Context, repoRoot string) (*model.IndexState, error)
}

// Deps bundles a sync engine's collaborators. Store, Embedder, and
// Encoder are required; the constructors do not check them, so a nil one
// fails only when the sync pass first uses it.
type Deps struct {
	Config   *config.Config
	Store    store.Store
	Embedder *embedcoord.Coordinator
	Encoder  *bm25.Encoder
	Parsers  *parsers.Bank
	Git      gitutil.Operations
	Logger   zerolog.Logger

	// ProjectID and ProjectName identify the repository being synced,
	// for the metadata.json side file written on success.
	ProjectID   string
	ProjectName string
}

// parsedFile is one scanned file's extraction result. Parse errors are
// logged and leave every field empty rather than aborting the batch.
type parsedFile struct {
	file          scanner.File
	checksum      string
	codeObjects   []model.CodeObject
	documentNodes []model.DocumentNode
	relationships []model.Relationship
	language      model.Language
}

// parseBatch parses every file in files concurrently, bounded by
// workers (0 means runtime.NumCPU()), preserving input order in the
// returned slice exactly as embedcoord.EmbedPassages preserves batch
// order.
func parseBatch(ctx context.Context, bank *parsers.Bank, workers int, files []scanner.File, log zerolog.Logger) []parsedFile {
	results := make([]parsedFile, len(files))

	g, ctx := errgroup.WithContext(ctx)
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g.SetLimit(workers)

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			results[i] = parseOne(ctx, bank, f, log)
			return nil
		})
	}
	_ = g.Wait() // parseOne never returns an error; per-file failures are logged and skipped

	return results
}

func parseOne(ctx context.Context, bank *parsers.Bank, f scanner.File, log zerolog.Logger) parsedFile {
	source, err := os.ReadFile(f.AbsolutePath)
	if err != nil {
		log.Warn().Err(err).Str("file", f.RelativePath).Msg("failed to read file, skipping")
		return parsedFile{file: f}
	}
	sum := checksum.Digest(source)

	if f.IsDocument {
		nodes, err := parseDocument(f, source)
		if err != nil {
			log.Warn().Err(err).Str("file", f.RelativePath).Msg("failed to parse document, skipping")
			return parsedFile{file: f, checksum: sum}
		}
		return parsedFile{file: f, checksum: sum, documentNodes: nodes}
	}

	lang := parsers.LanguageForExtension(strings.ToLower(filepath.Ext(f.RelativePath)))
	parser, ok := bank.For(lang)
	if !ok {
		return parsedFile{file: f, checksum: sum}
	}

	objects, err := parser.ExtractCodeObjects(ctx, f.AbsolutePath, f.RelativePath, source)
	if err != nil {
		log.Warn().Err(err).Str("file", f.RelativePath).Msg("failed to parse file, skipping")
		return parsedFile{file: f, checksum: sum}
	}
	objects = chunker.Chunk(objects, "", chunker.DefaultOptions())

	relationships, err := parser.ExtractRelationships(ctx, f.RelativePath, source, objects)
	if err != nil {
		log.Warn().Err(err).Str("file", f.RelativePath).Msg("failed to extract relationships, skipping")
		relationships = nil
	}

	return parsedFile{file: f, checksum: sum, codeObjects: objects, relationships: relationships, language: lang}
}

func parseDocument(f scanner.File, source []byte) ([]model.DocumentNode, error) {
	ext := strings.ToLower(filepath.Ext(f.RelativePath))
	if docparse.FormatForExtension(ext) != "" {
		nodes, err := docparse.SplitConfig(f.RelativePath, source)
		if err != nil {
			return nil, err
		}
		return assignDocumentIDs(nodes), nil
	}
	nodes := docparse.SplitMarkdown(f.RelativePath, string(source))
	return assignDocumentIDs(nodes), nil
}

// assignDocumentIDs stamps each DocumentNode with a content-addressed id
// (docparse leaves ID empty, unlike parsers.buildCodeObject which
// derives one inline), matching the CodeObject invariant that identical
// content at an identical location yields an identical id.
func assignDocumentIDs(nodes []model.DocumentNode) []model.DocumentNode {
	for i := range nodes {
		n := &nodes[i]
		n.ID = checksum.DigestString(n.FilePath + "|" + n.SectionTitle + "|" + n.Content)
	}
	return nodes
}

// embedAndEncode embeds and BM25F-encodes every CodeObject and
// DocumentNode across a batch of parsed files, then builds the store
// Points ready to upsert. Code and document passages are embedded in
// separate coordinator calls since each instruction type steers the
// embedding model differently.
func embedAndEncode(ctx context.Context, embedder *embedcoord.Coordinator, encoder *bm25.Encoder, parsedFiles []parsedFile) ([]store.Point, error) {
	var codeObjects []*model.CodeObject
	var docNodes []*model.DocumentNode
	for i := range parsedFiles {
		for j := range parsedFiles[i].codeObjects {
			codeObjects = append(codeObjects, &parsedFiles[i].codeObjects[j])
		}
		for j := range parsedFiles[i].documentNodes {
			docNodes = append(docNodes, &parsedFiles[i].documentNodes[j])
		}
	}

	points := make([]store.Point, 0, len(codeObjects)+len(docNodes))

	if len(codeObjects) > 0 {
		texts := make([]string, len(codeObjects))
		for i, obj := range codeObjects {
			texts[i] = obj.Content
		}
		vectors, err := embedder.EmbedPassages(ctx, texts, model.InstructionNL2CodePassage)
		if err != nil {
			return nil, errs.Wrap(errs.Embedding, "embedding code passages", err)
		}
		for i, obj := range codeObjects {
			indices, values := encoder.Encode(codeDocument(obj))
			points = append(points, store.NewCodeObjectPoint(obj, vectors[i], indices, values))
		}
	}

	if len(docNodes) > 0 {
		texts := make([]string, len(docNodes))
		for i, n := range docNodes {
			texts[i] = n.Content
		}
		vectors, err := embedder.EmbedPassages(ctx, texts, model.InstructionDocumentPassage)
		if err != nil {
			return nil, errs.Wrap(errs.Embedding, "embedding document passages", err)
		}
		for i, n := range docNodes {
			indices, values := encoder.Encode(documentDocument(n))
			points = append(points, store.NewDocumentPoint(n, vectors[i], indices, values))
		}
	}

	return points, nil
}

// codeDocument maps a CodeObject onto the multi-field document shape
// internal/bm25.Encoder expects: name/qualified_name/docstring/content
// field weights.
func codeDocument(obj *model.CodeObject) map[string]string {
	return map[string]string{
		"name":           objectName(obj.QualifiedName),
		"qualified_name": obj.QualifiedName,
		"docstring":      obj.Docstring,
		"content":        obj.Content,
	}
}

// documentDocument maps a DocumentNode onto the same field shape,
// treating its section title as both name and qualified_name.
func documentDocument(n *model.DocumentNode) map[string]string {
	return map[string]string{
		"name":           n.SectionTitle,
		"qualified_name": n.SectionTitle,
		"docstring":      "",
		"content":        n.Content,
	}
}

func objectName(qualifiedName string) string {
	if i := strings.LastIndexByte(qualifiedName, '.'); i >= 0 {
		return qualifiedName[i+1:]
	}
	return qualifiedName
}

// upsertBatched upserts points in groups of batchSize, so one
// misbehaving point doesn't force retrying an entire chunk's worth of
// upserts at once.
func upsertBatched(ctx context.Context, s store.Store, points []store.Point, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 100
	}
	for start := 0; start < len(points); start += batchSize {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}
		if err := s.Upsert(ctx, points[start:end]); err != nil {
			return errs.Wrap(errs.Storage, "upserting chunk batch", err)
		}
	}
	return nil
}

// memoryBarrier runs a forced GC + OS-memory-release pass between
// chunks, skipped when the config disables it (e.g. in tests, where a
// forced GC on every tiny chunk only adds noise).
func memoryBarrier(cfg config.MemoryManagementConfig) {
	if !cfg.ForceGCAfterChunk {
		return
	}
	runtime.GC()
	debug.FreeOSMemory()
}

// chunkFiles splits files into groups of at most size files each.
func chunkFiles(files []scanner.File, size int) [][]scanner.File {
	if size <= 0 {
		size = 100
	}
	var out [][]scanner.File
	for start := 0; start < len(files); start += size {
		end := start + size
		if end > len(files) {
			end = len(files)
		}
		out = append(out, files[start:end])
	}
	return out
}

// finalizeSuccess writes the post-sync checkpoint (store.SetIndexState,
// internal/state.Save, internal/metadata.Update) — only called once the
// whole run has succeeded, so a canceled or failed sync never advances
// the checkpoint or leaves a partial index recorded as complete.
func finalizeSuccess(ctx context.Context, deps Deps, repoRoot string, st *state.State, indexState model.IndexState) error {
	if err := deps.Store.SetIndexState(ctx, indexState); err != nil {
		return errs.Wrap(errs.Storage, "persisting index state", err)
	}
	st.Index = indexState
	if err := state.Save(repoRoot, *st); err != nil {
		return err
	}
	if deps.ProjectID != "" {
		if err := metadata.Update(deps.ProjectID, deps.ProjectName, repoRoot, time.Now()); err != nil {
			return err
		}
	}
	return nil
}

// mergeLanguages unions a repository's previously recorded languages
// with the set observed this sync, so a chunk containing no files for
// a given language doesn't make it disappear from IndexState.
func mergeLanguages(prior, current []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, lang := range append(append([]string{}, prior...), current...) {
		if !seen[lang] {
			seen[lang] = true
			out = append(out, lang)
		}
	}
	return out
}

func languageSet(parsedFiles []parsedFile) []string {
	seen := map[string]bool{}
	var out []string
	for _, pf := range parsedFiles {
		if pf.language == "" {
			continue
		}
		lang := string(pf.language)
		if !seen[lang] {
			seen[lang] = true
			out = append(out, lang)
		}
	}
	return out
}
