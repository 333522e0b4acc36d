package formatter

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codecontext/codecontext/internal/model"
	"github.com/codecontext/codecontext/internal/store"
	"github.com/codecontext/codecontext/internal/store/sqlite"
)

func newTestFormatter(t *testing.T) (*Formatter, store.Store) {
	t.Helper()
	s, err := sqlite.Open(":memory:", 4)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s, nil), s
}

func TestRenderTextNoResults(t *testing.T) {
	f, _ := newTestFormatter(t)
	out, err := f.Render(context.Background(), nil, "add", FormatText, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "No results found.", out)
}

func TestRenderJSONNoResults(t *testing.T) {
	f, _ := newTestFormatter(t)
	out, err := f.Render(context.Background(), nil, "add", FormatJSON, nil, nil)
	require.NoError(t, err)

	var decoded envelope
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Equal(t, 0, decoded.Total)
	require.Equal(t, "add", decoded.Query)
}

func TestRenderTextIncludesExpandedFields(t *testing.T) {
	f, s := newTestFormatter(t)
	ctx := context.Background()

	obj := &model.CodeObject{ID: "c1", RelativePath: "a.py", StartLine: 1, EndLine: 2, Language: model.LangPython, Content: "def add(a, b): return a + b", Signature: "def add(a, b)"}
	require.NoError(t, s.Upsert(ctx, []store.Point{store.NewCodeObjectPoint(obj, []float32{1, 0, 0, 0}, nil, nil)}))

	results := []model.SearchResult{{ChunkID: "c1", FilePath: "a.py", StartLine: 1, EndLine: 2, Content: obj.Content, Score: 0.9, Rank: 1}}
	out, err := f.Render(ctx, results, "add", FormatText, []string{ExpandSignature, ExpandSnippet}, nil)
	require.NoError(t, err)
	require.Contains(t, out, "def add(a, b)")
	require.Contains(t, out, "snippet: def add(a, b): return a + b")
}

func TestRouteJSONPicksDocumentShapeForAllMarkdown(t *testing.T) {
	results := []model.SearchResult{{NodeType: model.NodeMarkdown}, {NodeType: model.NodeMarkdown}}
	require.Equal(t, routeDocument, routeJSON(results))
}

func TestRouteJSONPicksConfigShapeForAllConfig(t *testing.T) {
	results := []model.SearchResult{{NodeType: model.NodeConfig}}
	require.Equal(t, routeConfig, routeJSON(results))
}

func TestRouteJSONFallsBackToCodeForMixedKinds(t *testing.T) {
	results := []model.SearchResult{{NodeType: model.NodeMarkdown}, {NodeType: ""}}
	require.Equal(t, routeCode, routeJSON(results))
}

func TestRenderDocumentJSONIncludesRelatedCode(t *testing.T) {
	f, _ := newTestFormatter(t)
	results := []model.SearchResult{{
		ChunkID:   "d1",
		FilePath:  "docs/tax.md",
		StartLine: 1,
		EndLine:   10,
		Content:   "line one\nline two",
		NodeType:  model.NodeMarkdown,
		Score:     0.75,
		Rank:      1,
		Metadata: map[string]any{
			"metadata": map[string]any{
				"section_title": "Tax Guide",
				"code_references": []any{
					map[string]any{"Name": "calculate_tax", "Type": "function", "MatchReason": "mentioned"},
				},
			},
		},
	}}

	out, err := f.Render(context.Background(), results, "tax", FormatJSON, nil, nil)
	require.NoError(t, err)
	require.Contains(t, out, "calculate_tax")
	require.Contains(t, out, "Tax Guide")
	require.True(t, strings.Contains(out, "\"type\": \"markdown_section\""))
}

func TestRenderConfigJSONIncludesConfigKeys(t *testing.T) {
	f, _ := newTestFormatter(t)
	results := []model.SearchResult{{
		ChunkID:  "cfg1",
		FilePath: "settings.yaml",
		Content:  "database:\n  host: localhost",
		NodeType: model.NodeConfig,
		Score:    0.6,
		Rank:     1,
		Metadata: map[string]any{
			"metadata": map[string]any{
				"section_title":  "database",
				"config_keys":    []any{"database.host"},
				"env_references": []any{"DB_HOST"},
				"config_format":  "yaml",
			},
		},
	}}

	out, err := f.Render(context.Background(), results, "database", FormatJSON, nil, nil)
	require.NoError(t, err)
	require.Contains(t, out, "database.host")
	require.Contains(t, out, "DB_HOST")
}

func TestExpandImpactCountsInboundCalls(t *testing.T) {
	f, _ := newTestFormatter(t)
	relationships := []model.Relationship{
		{SourceID: "caller1", TargetID: "target", Kind: model.RelCalls, Resolved: true},
		{SourceID: "caller2", TargetID: "target", Kind: model.RelCalls, Resolved: true},
	}
	fields := f.expand(context.Background(), model.SearchResult{ChunkID: "target"}, []string{ExpandImpact}, relationships)
	require.NotNil(t, fields.Impact)
	require.Equal(t, 2, fields.Impact.DirectCallers)
}

func TestExpandRelationshipsListsOutboundEdges(t *testing.T) {
	f, _ := newTestFormatter(t)
	relationships := []model.Relationship{
		{SourceID: "a", TargetID: "b", Kind: model.RelCalls, Resolved: true},
		{SourceID: "a", TargetID: "c", Kind: model.RelReferences, Resolved: true},
		{SourceID: "other", TargetID: "b", Kind: model.RelCalls, Resolved: true},
	}
	fields := f.expand(context.Background(), model.SearchResult{ChunkID: "a"}, []string{ExpandRelationships}, relationships)
	require.Len(t, fields.Relationships, 2)
}
