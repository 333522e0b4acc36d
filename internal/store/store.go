// Package store defines the vector store abstraction CodeContext treats
// as an external collaborator: dense-kNN + sparse dot-product search,
// CRUD, index-state persistence, and document search.
package store

import (
	"context"

	"github.com/codecontext/codecontext/internal/model"
)

// FusionMethod selects how dense and sparse candidate lists are merged.
type FusionMethod string

const (
	FusionRRF  FusionMethod = "rrf"
	FusionDBSF FusionMethod = "dbsf"
)

// Point is one upserted unit: a dense vector, a sparse vector (parallel
// index/value arrays), and an opaque payload carried back on hits.
type Point struct {
	ID            string
	Dense         []float32
	SparseIndices []uint32
	SparseValues  []float64
	Payload       map[string]any
}

// Filters narrow a hybrid search. Zero values mean "no restriction".
type Filters struct {
	LanguageFilter string
	FileFilter     string
	TypeFilter     model.TypeFilter
}

// ScoredPoint is one fused hybrid-search hit.
type ScoredPoint struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// DocumentHit is one dense-only document-search hit.
type DocumentHit struct {
	ID       string
	Score    float64
	Content  string
	Metadata map[string]any
}

// Statistics summarizes store contents for the `status` CLI command.
type Statistics struct {
	ContentCount int
}

// NewCodeObjectPoint builds the Point for a CodeObject, fixing the
// payload's shape (file_path/kind/start_line/end_line/language/content/
// object keys) so every Store implementation and GetCodeObject agree on
// how a code chunk round-trips through Payload.
func NewCodeObjectPoint(obj *model.CodeObject, dense []float32, sparseIndices []uint32, sparseValues []float64) Point {
	return Point{
		ID:            obj.ID,
		Dense:         dense,
		SparseIndices: sparseIndices,
		SparseValues:  sparseValues,
		Payload: map[string]any{
			"file_path":  obj.RelativePath,
			"kind":       "code",
			"start_line": obj.StartLine,
			"end_line":   obj.EndLine,
			"language":   string(obj.Language),
			"content":    obj.Content,
			"object":     obj,
		},
	}
}

// NewDocumentPoint builds the Point for a DocumentNode (markdown or
// config section), stored alongside code chunks with kind="document" so
// SearchDocuments can select them with a single WHERE clause.
func NewDocumentPoint(node *model.DocumentNode, dense []float32, sparseIndices []uint32, sparseValues []float64) Point {
	return Point{
		ID:            node.ID,
		Dense:         dense,
		SparseIndices: sparseIndices,
		SparseValues:  sparseValues,
		Payload: map[string]any{
			"file_path":  node.FilePath,
			"kind":       "document",
			"start_line": node.StartLine,
			"end_line":   node.EndLine,
			"content":    node.Content,
			"metadata": map[string]any{
				"section_title":   node.SectionTitle,
				"node_type":       string(node.NodeType),
				"code_references": node.CodeReferences,
				"config_keys":     node.ConfigKeys,
				"env_references":  node.EnvReferences,
				"section_depth":   node.SectionDepth,
				"config_format":   node.ConfigFormat,
			},
		},
	}
}

// Store is the abstract vector store interface. Implementations own
// dense-kNN, sparse dot-product scoring, and fusion.
type Store interface {
	Initialize(ctx context.Context) error
	Close() error

	Upsert(ctx context.Context, points []Point) error
	HybridSearch(ctx context.Context, dense []float32, sparseIndices []uint32, sparseValues []float64, limit int, filters Filters, fusion FusionMethod) ([]ScoredPoint, error)
	DeleteByFile(ctx context.Context, filePath string) error

	GetCodeObject(ctx context.Context, id string) (*model.CodeObject, error)

	GetIndexState(ctx context.Context) (*model.IndexState, error)
	SetIndexState(ctx context.Context, state model.IndexState) error

	SearchDocuments(ctx context.Context, queryEmbedding []float32, limit int) ([]DocumentHit, error)

	GetStatistics(ctx context.Context) (Statistics, error)
}
