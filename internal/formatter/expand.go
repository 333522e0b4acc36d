package formatter

import (
	"context"
	"sort"
	"strings"

	"github.com/codecontext/codecontext/internal/model"
)

// Expansion field names accepted by model.SearchQuery.Expand / the CLI's
// --expand flag.
const (
	ExpandSignature     = "signature"
	ExpandSnippet       = "snippet"
	ExpandContent       = "content"
	ExpandComplexity    = "complexity"
	ExpandImpact        = "impact"
	ExpandRelationships = "relationships"
	ExpandAll           = "all"
)

func wants(fields []string, name string) bool {
	for _, f := range fields {
		if f == name || f == ExpandAll {
			return true
		}
	}
	return false
}

// expandedFields holds every requested expansion for one result.
type expandedFields struct {
	Signature     string
	Snippet       string
	Content       string
	Complexity    *complexityInfo
	Impact        *impactInfo
	Relationships []relationshipInfo
}

type complexityInfo struct {
	Cyclomatic int `json:"cyclomatic"`
	Lines      int `json:"lines"`
}

type impactInfo struct {
	DirectCallers int `json:"direct_callers"`
}

type relationshipInfo struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
}

// expand computes the requested expansions for one result, fetching its
// CodeObject on demand (only code chunks have one; document chunks
// silently yield no signature/complexity).
func (f *Formatter) expand(ctx context.Context, r model.SearchResult, fields []string, relationships []model.Relationship) expandedFields {
	var out expandedFields

	var obj *model.CodeObject
	if f.store != nil && (wants(fields, ExpandSignature) || wants(fields, ExpandComplexity)) {
		obj, _ = f.store.GetCodeObject(ctx, r.ChunkID)
	}

	if wants(fields, ExpandSignature) && obj != nil && obj.Signature != "" {
		out.Signature = obj.Signature
	}

	if wants(fields, ExpandSnippet) {
		out.Snippet = essentialSnippet(r.Content)
	}

	if wants(fields, ExpandContent) && r.Content != "" {
		out.Content = r.Content
	}

	if wants(fields, ExpandComplexity) && obj != nil && (obj.AST.Complexity > 1 || obj.AST.LOCComplexity > 0) {
		out.Complexity = &complexityInfo{Cyclomatic: obj.AST.Complexity, Lines: obj.AST.LOCComplexity}
	}

	if wants(fields, ExpandImpact) {
		if callers := directCallers(r.ChunkID, relationships); callers > 0 {
			out.Impact = &impactInfo{DirectCallers: callers}
		}
	}

	if wants(fields, ExpandRelationships) {
		if rels := outboundRelationships(r.ChunkID, relationships); len(rels) > 0 {
			out.Relationships = rels
		}
	}

	return out
}

// essentialSnippet returns the first non-blank line of content, matching
// the original's single-line "essential" snippet for the common
// one-statement chunk.
func essentialSnippet(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// directCallers counts edges into chunkID, mirroring the original's
// calculate_direct_callers (there implemented as a storage query; here
// the relationship set is already in memory).
func directCallers(chunkID string, relationships []model.Relationship) int {
	count := 0
	for _, rel := range relationships {
		if rel.Kind == model.RelCalls && rel.TargetID == chunkID {
			count++
		}
	}
	return count
}

// outboundRelationships lists edges out of chunkID, the original's
// extract_relationships.
func outboundRelationships(chunkID string, relationships []model.Relationship) []relationshipInfo {
	var out []relationshipInfo
	for _, rel := range relationships {
		if rel.SourceID != chunkID {
			continue
		}
		target := rel.TargetID
		if target == "" {
			target = rel.TargetName
		}
		out = append(out, relationshipInfo{Kind: string(rel.Kind), Target: target})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}
