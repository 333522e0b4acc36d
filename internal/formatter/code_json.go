package formatter

import (
	"context"
	"fmt"

	"github.com/codecontext/codecontext/internal/model"
)

// codeResult is the general-purpose JSON shape: pure code results, pure
// document results of mixed/ambiguous kind, or any mix of the two.
// Minimal mode omits fields that only matter once a result is expanded.
type codeResult struct {
	Name          string             `json:"name,omitempty"`
	Type          string             `json:"type,omitempty"`
	File          string             `json:"file"`
	Lines         string             `json:"lines,omitempty"`
	Language      string             `json:"language,omitempty"`
	Score         float64            `json:"score,omitempty"`
	Signature     string             `json:"signature,omitempty"`
	Snippet       string             `json:"snippet,omitempty"`
	Content       string             `json:"content,omitempty"`
	Complexity    *complexityInfo    `json:"complexity,omitempty"`
	Impact        *impactInfo        `json:"impact,omitempty"`
	Relationships []relationshipInfo `json:"relationships,omitempty"`
}

func (f *Formatter) renderCodeJSON(ctx context.Context, results []model.SearchResult, query string, expand []string, relationships []model.Relationship) (string, error) {
	items := make([]any, 0, len(results))
	for _, r := range results {
		cr := codeResult{
			Type:     resultType(r),
			File:     r.FilePath,
			Language: string(r.Language),
			Score:    round2(r.Score),
		}
		if r.StartLine != 0 || r.EndLine != 0 {
			cr.Lines = fmt.Sprintf("%d-%d", r.StartLine, r.EndLine)
		}
		if name, ok := objectName(r); ok {
			cr.Name = name
		} else {
			cr.Name = metaString(r, "section_title")
		}

		if len(expand) > 0 {
			fields := f.expand(ctx, r, expand, relationships)
			cr.Signature = fields.Signature
			cr.Snippet = fields.Snippet
			cr.Content = fields.Content
			cr.Complexity = fields.Complexity
			cr.Impact = fields.Impact
			cr.Relationships = fields.Relationships
		}

		items = append(items, cr)
	}
	return encodeEnvelope(envelope{Results: items, Total: len(items), Query: query})
}

// resultType mirrors the original's object_type/node_type fallback.
func resultType(r model.SearchResult) string {
	if r.NodeType != "" {
		return string(r.NodeType)
	}
	if obj, ok := r.Metadata["object"].(map[string]any); ok {
		if t, ok := obj["ObjectType"].(string); ok {
			return t
		}
	}
	return ""
}
