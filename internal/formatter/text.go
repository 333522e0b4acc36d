package formatter

import (
	"context"
	"fmt"
	"strings"

	"github.com/codecontext/codecontext/internal/model"
)

// renderText renders results as human-readable text, one block per
// result in rank order, with optional expansion sections.
func (f *Formatter) renderText(ctx context.Context, results []model.SearchResult, expand []string, relationships []model.Relationship) string {
	var sb strings.Builder

	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%d. %s:%d-%d (score %.3f)", r.Rank, r.FilePath, r.StartLine, r.EndLine, r.Score)
		if name, ok := objectName(r); ok && name != "" {
			fmt.Fprintf(&sb, " - %s", name)
		}
		sb.WriteString("\n")

		if len(expand) == 0 {
			continue
		}
		fields := f.expand(ctx, r, expand, relationships)

		if fields.Signature != "" {
			fmt.Fprintf(&sb, "   signature: %s\n", fields.Signature)
		}
		if fields.Snippet != "" {
			fmt.Fprintf(&sb, "   snippet: %s\n", fields.Snippet)
		}
		if fields.Complexity != nil {
			fmt.Fprintf(&sb, "   complexity: cyclomatic=%d lines=%d\n", fields.Complexity.Cyclomatic, fields.Complexity.Lines)
		}
		if fields.Impact != nil {
			fmt.Fprintf(&sb, "   impact: %d direct callers\n", fields.Impact.DirectCallers)
		}
		if len(fields.Relationships) > 0 {
			sb.WriteString("   relationships:\n")
			for _, rel := range fields.Relationships {
				fmt.Fprintf(&sb, "     - %s %s\n", strings.ToLower(rel.Kind), rel.Target)
			}
		}
		if fields.Content != "" {
			sb.WriteString("   content:\n")
			for _, line := range strings.Split(fields.Content, "\n") {
				fmt.Fprintf(&sb, "     %s\n", line)
			}
		}
	}

	return strings.TrimSpace(sb.String())
}
