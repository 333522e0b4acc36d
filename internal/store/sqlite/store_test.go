package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codecontext/codecontext/internal/model"
	"github.com/codecontext/codecontext/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", 4)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func codeObject(id, filePath string) *model.CodeObject {
	return &model.CodeObject{
		ID:           id,
		RelativePath: filePath,
		StartLine:    1,
		EndLine:      10,
		Language:     model.LangPython,
		ObjectType:   model.ObjectFunction,
		Content:      "def foo(): pass",
	}
}

func TestUpsertAndGetCodeObjectRoundTrips(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	obj := codeObject("chunk-1", "a.py")
	point := store.NewCodeObjectPoint(obj, []float32{0.1, 0.2, 0.3, 0.4}, []uint32{1, 2}, []float64{0.5, 0.25})
	require.NoError(t, s.Upsert(ctx, []store.Point{point}))

	got, err := s.GetCodeObject(ctx, "chunk-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "a.py", got.RelativePath)
	require.Equal(t, model.LangPython, got.Language)
}

func TestGetCodeObjectReturnsNilForUnknownID(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetCodeObject(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestUpsertIsIdempotentForSameID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	obj := codeObject("chunk-1", "a.py")
	point := store.NewCodeObjectPoint(obj, []float32{0.1, 0.2, 0.3, 0.4}, nil, nil)
	require.NoError(t, s.Upsert(ctx, []store.Point{point}))
	require.NoError(t, s.Upsert(ctx, []store.Point{point}))

	stats, err := s.GetStatistics(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.ContentCount)
}

func TestDeleteByFileRemovesAllAssociatedData(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := store.NewCodeObjectPoint(codeObject("chunk-a", "a.py"), []float32{0.1, 0.1, 0.1, 0.1}, []uint32{1}, []float64{1})
	b := store.NewCodeObjectPoint(codeObject("chunk-b", "b.py"), []float32{0.9, 0.9, 0.9, 0.9}, []uint32{2}, []float64{1})
	require.NoError(t, s.Upsert(ctx, []store.Point{a, b}))

	require.NoError(t, s.DeleteByFile(ctx, "a.py"))

	got, err := s.GetCodeObject(ctx, "chunk-a")
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = s.GetCodeObject(ctx, "chunk-b")
	require.NoError(t, err)
	require.NotNil(t, got)

	stats, err := s.GetStatistics(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.ContentCount)
}

func TestHybridSearchRanksClosestDenseVectorFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	near := store.NewCodeObjectPoint(codeObject("near", "near.py"), []float32{1, 0, 0, 0}, nil, nil)
	far := store.NewCodeObjectPoint(codeObject("far", "far.py"), []float32{0, 1, 0, 0}, nil, nil)
	require.NoError(t, s.Upsert(ctx, []store.Point{near, far}))

	results, err := s.HybridSearch(ctx, []float32{1, 0, 0, 0}, nil, nil, 10, store.Filters{}, store.FusionRRF)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, "near", results[0].ID)
}

func TestHybridSearchAppliesFileFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := store.NewCodeObjectPoint(codeObject("chunk-a", "a.py"), []float32{1, 0, 0, 0}, nil, nil)
	b := store.NewCodeObjectPoint(codeObject("chunk-b", "b.py"), []float32{1, 0, 0, 0}, nil, nil)
	require.NoError(t, s.Upsert(ctx, []store.Point{a, b}))

	results, err := s.HybridSearch(ctx, []float32{1, 0, 0, 0}, nil, nil, 10, store.Filters{FileFilter: "b.py"}, store.FusionRRF)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "chunk-b", results[0].ID)
}

func TestHybridSearchCombinesDenseAndSparseViaRRF(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// "both" ranks second in each modality alone but first once fused,
	// since RRF rewards appearing in both ranked lists.
	both := store.NewCodeObjectPoint(codeObject("both", "both.py"), []float32{0.9, 0.1, 0, 0}, []uint32{5}, []float64{0.9})
	denseOnly := store.NewCodeObjectPoint(codeObject("dense-only", "dense.py"), []float32{1, 0, 0, 0}, nil, nil)
	sparseOnly := store.NewCodeObjectPoint(codeObject("sparse-only", "sparse.py"), nil, []uint32{5}, []float64{1.0})
	require.NoError(t, s.Upsert(ctx, []store.Point{both, denseOnly, sparseOnly}))

	results, err := s.HybridSearch(ctx, []float32{1, 0, 0, 0}, []uint32{5}, []float64{1.0}, 10, store.Filters{}, store.FusionRRF)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, "both", results[0].ID)
}

func TestIndexStateRoundTrips(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	state := model.IndexState{
		LastCommitHash: "abc123",
		TotalFiles:     5,
		TotalObjects:   42,
		Languages:      []string{"python", "java"},
	}
	require.NoError(t, s.SetIndexState(ctx, state))

	got, err := s.GetIndexState(ctx)
	require.NoError(t, err)
	require.Equal(t, "abc123", got.LastCommitHash)
	require.Equal(t, 5, got.TotalFiles)
	require.Equal(t, 42, got.TotalObjects)
	require.ElementsMatch(t, []string{"python", "java"}, got.Languages)
}

func TestGetIndexStateReturnsZeroValueBeforeAnySync(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetIndexState(context.Background())
	require.NoError(t, err)
	require.Equal(t, "", got.LastCommitHash)
	require.Equal(t, 0, got.TotalFiles)
}

func TestSearchDocumentsOnlyReturnsDocumentKindChunks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := store.NewDocumentPoint(&model.DocumentNode{
		ID:           "doc-1",
		FilePath:     "README.md",
		SectionTitle: "Intro",
		StartLine:    1,
		EndLine:      5,
		NodeType:     model.NodeMarkdown,
		Content:      "intro text",
	}, []float32{1, 0, 0, 0}, nil, nil)
	code := store.NewCodeObjectPoint(codeObject("chunk-1", "a.py"), []float32{1, 0, 0, 0}, nil, nil)
	require.NoError(t, s.Upsert(ctx, []store.Point{doc, code}))

	hits, err := s.SearchDocuments(ctx, []float32{1, 0, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "doc-1", hits[0].ID)
	require.Equal(t, "intro text", hits[0].Content)
}
