package formatter

import (
	"math"
	"strings"

	"github.com/codecontext/codecontext/internal/model"
)

// nestedMeta returns a result's nested "metadata" sub-object, the shape
// store.NewDocumentPoint gives document chunks (section_title, node_type,
// config_keys, ...). Code chunks have no such sub-object.
func nestedMeta(r model.SearchResult) map[string]any {
	meta, _ := r.Metadata["metadata"].(map[string]any)
	return meta
}

func metaString(r model.SearchResult, key string) string {
	v, _ := nestedMeta(r)[key].(string)
	return v
}

func metaInt(r model.SearchResult, key string) int {
	switch v := nestedMeta(r)[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func metaStringSlice(r model.SearchResult, key string) []string {
	raw, _ := nestedMeta(r)[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// relatedCodeRefs decodes the CodeReference list a markdown section
// carries, round-tripped through JSON as the Go model.CodeReference
// field names (Name/Type/MatchReason have no json tags).
func relatedCodeRefs(r model.SearchResult) []relatedCodeRef {
	raw, _ := nestedMeta(r)["code_references"].([]any)
	out := make([]relatedCodeRef, 0, len(raw))
	for _, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		name, _ := m["Name"].(string)
		matchReason, _ := m["MatchReason"].(string)
		out = append(out, relatedCodeRef{Name: name, Location: r.FilePath, MatchReason: matchReason})
	}
	return out
}

// objectName pulls the qualified name out of a code chunk's embedded
// CodeObject payload (also round-tripped through JSON as Go field names).
func objectName(r model.SearchResult) (string, bool) {
	obj, ok := r.Metadata["object"].(map[string]any)
	if !ok {
		return "", false
	}
	name, ok := obj["QualifiedName"].(string)
	return name, ok
}

func previewSnippet(content string, n int) snippetPreview {
	if content == "" {
		return snippetPreview{Preview: []string{}}
	}
	lines := strings.Split(content, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return snippetPreview{Preview: lines}
}

// round2 matches the original's round(score, 2) display rounding.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
