// Package retriever implements the search pipeline: embed the query,
// BM25F-encode it, ask the store for a fused hybrid result set, expand
// it across the relationship graph, cap results per file, apply any
// filters the store doesn't enforce itself, and rank the remainder.
// Fusion itself lives in internal/store; this is a single-pass query
// pipeline with no live-reload or multi-backend coordination to do.
package retriever

import (
	"context"
	"sort"

	"github.com/codecontext/codecontext/internal/bm25"
	"github.com/codecontext/codecontext/internal/embedcoord"
	"github.com/codecontext/codecontext/internal/errs"
	"github.com/codecontext/codecontext/internal/graph"
	"github.com/codecontext/codecontext/internal/model"
	"github.com/codecontext/codecontext/internal/store"
)

// Config holds the retriever's tunables, sourced from
// internal/config.SearchConfig and internal/config.StorageConfig.
type Config struct {
	EnableGraphExpansion bool
	GraphMaxHops         int
	GraphPPRThreshold    float64
	MaxChunksPerFile     int
	FusionMethod         store.FusionMethod
	OverFetchLimit       int
}

// Retriever answers SearchQuery requests by coordinating the embedding
// coordinator, BM25F encoder, store, and relationship graph.
type Retriever struct {
	store    store.Store
	embedder *embedcoord.Coordinator
	bm25     *bm25.Encoder
	cfg      Config
}

// New builds a Retriever around its collaborators.
func New(s store.Store, embedder *embedcoord.Coordinator, encoder *bm25.Encoder, cfg Config) *Retriever {
	if cfg.OverFetchLimit <= 0 {
		cfg.OverFetchLimit = 50
	}
	return &Retriever{store: s, embedder: embedder, bm25: encoder, cfg: cfg}
}

// Search runs the full pipeline and returns ranked results truncated to
// query.Limit. instr steers the query embedding (nl2code/qa/code2code);
// an empty instr defaults to InstructionNL2CodeQuery.
func (r *Retriever) Search(ctx context.Context, query model.SearchQuery, relationships []model.Relationship, instr model.InstructionType) ([]model.SearchResult, error) {
	if query.Text == "" {
		return nil, errs.New(errs.EmptyQuery, "search query text is empty")
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}
	if instr == "" {
		instr = model.InstructionNL2CodeQuery
	}

	dense, err := r.embedder.EmbedPassages(ctx, []string{query.Text}, instr)
	if err != nil {
		return nil, errs.Wrap(errs.Search, "embedding query", err)
	}
	var denseVec []float32
	if len(dense) > 0 {
		denseVec = dense[0]
	}

	sparseIndices, sparseValues := r.bm25.EncodeQuery(query.Text)

	overFetch := limit * r.cfg.OverFetchLimit
	if overFetch < limit {
		overFetch = limit
	}

	filters := store.Filters{FileFilter: query.FileFilter, TypeFilter: query.TypeFilter}
	scored, err := r.store.HybridSearch(ctx, denseVec, sparseIndices, sparseValues, overFetch, filters, r.cfg.FusionMethod)
	if err != nil {
		return nil, errs.Wrap(errs.Search, "hybrid search", err)
	}

	results := toResults(scored)
	results = filterByLanguage(results, query.LanguageFilter)

	if r.cfg.EnableGraphExpansion && len(relationships) > 0 {
		results = r.expand(results, relationships)
	}

	results = capPerFile(results, r.cfg.MaxChunksPerFile)

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}

func toResults(scored []store.ScoredPoint) []model.SearchResult {
	results := make([]model.SearchResult, 0, len(scored))
	for _, sp := range scored {
		r := model.SearchResult{ChunkID: sp.ID, Score: sp.Score, Metadata: sp.Payload}
		if filePath, ok := sp.Payload["file_path"].(string); ok {
			r.FilePath = filePath
		}
		if startLine, ok := sp.Payload["start_line"].(float64); ok {
			r.StartLine = int(startLine)
		}
		if endLine, ok := sp.Payload["end_line"].(float64); ok {
			r.EndLine = int(endLine)
		}
		if content, ok := sp.Payload["content"].(string); ok {
			r.Content = content
		}
		if lang, ok := sp.Payload["language"].(string); ok {
			r.Language = model.Language(lang)
		}
		if kind, ok := sp.Payload["kind"].(string); ok && kind == "document" {
			r.NodeType = model.NodeMarkdown
			if meta, ok := sp.Payload["metadata"].(map[string]any); ok {
				if nodeType, ok := meta["node_type"].(string); ok && nodeType == string(model.NodeConfig) {
					r.NodeType = model.NodeConfig
				}
			}
		}
		results = append(results, r)
	}
	return results
}

// filterByLanguage applies the one filter the store does not enforce at
// the SQL layer: language isn't a WHERE-able vec0 column.
func filterByLanguage(results []model.SearchResult, language string) []model.SearchResult {
	if language == "" {
		return results
	}
	filtered := results[:0]
	for _, r := range results {
		if string(r.Language) == language {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// expand adds graph-neighborhood results to the fused set, reweighting
// them by their PPR score relative to the original hit set and
// dropping anything below GraphPPRThreshold.
func (r *Retriever) expand(results []model.SearchResult, relationships []model.Relationship) []model.SearchResult {
	seeds := make([]string, len(results))
	present := make(map[string]bool, len(results))
	for i, res := range results {
		seeds[i] = res.ChunkID
		present[res.ChunkID] = true
	}

	g := graph.Build(relationships)
	expansion := g.Expand(seeds, r.cfg.GraphMaxHops)
	if len(expansion) == 0 {
		return results
	}

	scores := g.PPR(seeds)
	var maxSeedScore float64
	for _, id := range seeds {
		if scores[id] > maxSeedScore {
			maxSeedScore = scores[id]
		}
	}
	if maxSeedScore == 0 {
		maxSeedScore = 1
	}

	for _, id := range expansion {
		if present[id] {
			continue
		}
		weight := scores[id] / maxSeedScore
		if weight < r.cfg.GraphPPRThreshold {
			continue
		}
		results = append(results, model.SearchResult{ChunkID: id, Score: weight})
		present[id] = true
	}
	return results
}

// capPerFile enforces MaxChunksPerFile by evicting the lowest-scored
// chunk per file over the cap, in a single pass over the score-sorted
// list, promoting the next-ranked chunk elsewhere into the freed slot
// (it simply stays in the slice; nothing needs to move since only
// over-cap entries are dropped).
func capPerFile(results []model.SearchResult, maxPerFile int) []model.SearchResult {
	if maxPerFile <= 0 {
		return results
	}
	sorted := append([]model.SearchResult(nil), results...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	counts := make(map[string]int)
	kept := make([]model.SearchResult, 0, len(sorted))
	for _, r := range sorted {
		if r.FilePath != "" && counts[r.FilePath] >= maxPerFile {
			continue
		}
		counts[r.FilePath]++
		kept = append(kept, r)
	}
	return kept
}
