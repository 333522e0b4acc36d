package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"sort"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/codecontext/codecontext/internal/errs"
	"github.com/codecontext/codecontext/internal/store"
)

// vecHit is one candidate pulled from a vec0 virtual table before
// fusion: chunk id and raw cosine distance (lower is better).
type vecHit struct {
	ChunkID  string
	Distance float64
}

// HybridSearch runs the dense and sparse kNN queries independently,
// applies relational filters (file/kind — language is left to the
// retriever, since it isn't a WHERE-able vec0 column), then fuses the
// two ranked lists with the requested FusionMethod.
func (s *Store) HybridSearch(ctx context.Context, dense []float32, sparseIndices []uint32, sparseValues []float64, limit int, filters store.Filters, fusion store.FusionMethod) ([]store.ScoredPoint, error) {
	overFetch := limit * overFetchFactor
	if overFetch < limit {
		overFetch = limit
	}

	var (
		denseHits  []vecHit
		sparseHits []vecHit
		err        error
	)

	if len(dense) > 0 {
		denseHits, err = s.queryVec(ctx, "chunks_vec", "embedding", dense, overFetch, filters)
		if err != nil {
			return nil, err
		}
	}
	if len(sparseIndices) > 0 {
		signature := projectSparse(sparseIndices, sparseValues)
		sparseHits, err = s.queryVec(ctx, "chunks_sparse_vec", "signature", signature, overFetch, filters)
		if err != nil {
			return nil, err
		}
	}

	fused := fuseHits(denseHits, sparseHits, fusion)
	if len(fused) > limit {
		fused = fused[:limit]
	}

	results := make([]store.ScoredPoint, 0, len(fused))
	for _, f := range fused {
		payload, err := s.loadPayload(ctx, f.ChunkID)
		if err != nil {
			return nil, err
		}
		results = append(results, store.ScoredPoint{ID: f.ChunkID, Score: f.Score, Payload: payload})
	}
	return results, nil
}

func (s *Store) queryVec(ctx context.Context, table, column string, vec []float32, overFetch int, filters store.Filters) ([]vecHit, error) {
	queryBytes, err := sqlite_vec.SerializeFloat32(vec)
	if err != nil {
		return nil, errs.Wrap(errs.Storage, "serializing query vector", err)
	}

	query := `
		SELECT v.chunk_id, v.distance
		FROM (
			SELECT chunk_id, vec_distance_cosine(` + column + `, ?) as distance
			FROM ` + table + `
			ORDER BY distance
			LIMIT ?
		) v
		JOIN chunks c ON c.chunk_id = v.chunk_id
		WHERE 1=1
	`
	args := []any{queryBytes, overFetch}
	if filters.FileFilter != "" {
		query += " AND c.file_path = ?"
		args = append(args, filters.FileFilter)
	}
	if filters.TypeFilter != "" {
		query += " AND c.kind = ?"
		args = append(args, string(filters.TypeFilter))
	}
	query += " ORDER BY v.distance"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Wrap(errs.Storage, "querying vector index", err)
	}
	defer rows.Close()

	var hits []vecHit
	for rows.Next() {
		var h vecHit
		if err := rows.Scan(&h.ChunkID, &h.Distance); err != nil {
			return nil, errs.Wrap(errs.Storage, "scanning vector hit", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

type fusedHit struct {
	ChunkID string
	Score   float64
}

// fuseHits merges ranked dense/sparse candidate lists per the requested
// method. RRF sums 1/(k+rank) across modalities a chunk appears in;
// DBSF z-score-normalizes each modality's similarity (1-distance) and
// sums.
func fuseHits(dense, sparse []vecHit, method store.FusionMethod) []fusedHit {
	if method == store.FusionDBSF {
		return fuseDBSF(dense, sparse)
	}
	return fuseRRF(dense, sparse)
}

func fuseRRF(dense, sparse []vecHit) []fusedHit {
	scores := make(map[string]float64)
	for rank, h := range dense {
		scores[h.ChunkID] += 1.0 / (rrfK + float64(rank+1))
	}
	for rank, h := range sparse {
		scores[h.ChunkID] += 1.0 / (rrfK + float64(rank+1))
	}
	return sortFused(scores)
}

func fuseDBSF(dense, sparse []vecHit) []fusedHit {
	scores := make(map[string]float64)
	addNormalized(scores, dense)
	addNormalized(scores, sparse)
	return sortFused(scores)
}

// addNormalized z-score normalizes a modality's similarity scores
// (1-distance) and accumulates them into scores.
func addNormalized(scores map[string]float64, hits []vecHit) {
	if len(hits) == 0 {
		return
	}
	sims := make([]float64, len(hits))
	var sum float64
	for i, h := range hits {
		sims[i] = 1 - h.Distance
		sum += sims[i]
	}
	mean := sum / float64(len(sims))

	var variance float64
	for _, v := range sims {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(sims))
	stddev := math.Sqrt(variance)
	if stddev == 0 {
		stddev = 1
	}

	for i, h := range hits {
		scores[h.ChunkID] += (sims[i] - mean) / stddev
	}
}

func sortFused(scores map[string]float64) []fusedHit {
	fused := make([]fusedHit, 0, len(scores))
	for id, score := range scores {
		fused = append(fused, fusedHit{ChunkID: id, Score: score})
	}
	sort.Slice(fused, func(i, j int) bool { return fused[i].Score > fused[j].Score })
	return fused
}

func (s *Store) loadPayload(ctx context.Context, chunkID string) (map[string]any, error) {
	var payloadJSON string
	err := s.db.QueryRowContext(ctx, "SELECT payload_json FROM chunks WHERE chunk_id = ?", chunkID).Scan(&payloadJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.Storage, "loading chunk payload", err)
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(payloadJSON), &raw); err != nil {
		return nil, errs.Wrap(errs.Storage, "decoding chunk payload", err)
	}
	return raw, nil
}

// SearchDocuments performs a dense-only kNN query restricted to
// document-kind chunks (markdown/config sections), the store's
// dedicated document-search surface alongside HybridSearch's code
// search.
func (s *Store) SearchDocuments(ctx context.Context, queryEmbedding []float32, limit int) ([]store.DocumentHit, error) {
	hits, err := s.queryVec(ctx, "chunks_vec", "embedding", queryEmbedding, limit, store.Filters{TypeFilter: "document"})
	if err != nil {
		return nil, err
	}

	results := make([]store.DocumentHit, 0, len(hits))
	for _, h := range hits {
		payload, err := s.loadPayload(ctx, h.ChunkID)
		if err != nil {
			return nil, err
		}
		content, _ := payload["content"].(string)
		metadata, _ := payload["metadata"].(map[string]any)
		results = append(results, store.DocumentHit{
			ID:       h.ChunkID,
			Score:    1 - h.Distance,
			Content:  content,
			Metadata: metadata,
		})
	}
	return results, nil
}
