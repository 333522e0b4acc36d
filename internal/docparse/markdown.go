// Package docparse implements the document-side extraction half of the
// indexing pipeline: markdown section splitting with code-reference
// extraction, and configuration-file section extraction.
package docparse

import (
	"regexp"
	"strings"

	"github.com/codecontext/codecontext/internal/model"
)

// headerPattern matches ATX headers of depth 2-6.
var headerPattern = regexp.MustCompile(`^#{2,6}\s+`)

// backtickReferencePattern matches a capitalized backtick-quoted
// identifier, e.g. `` `OrderService` `` or `` `Order.Total` `` (but not
// `` `processOrder` ``).
var backtickReferencePattern = regexp.MustCompile("`([A-Z][A-Za-z0-9.]+)`")

// filePathReferencePattern matches a bare file path ending in one of the
// supported source extensions.
var filePathReferencePattern = regexp.MustCompile(`([A-Za-z_/]+\.(?:py|kt|java|ts|tsx|js|jsx))`)

// SplitMarkdown splits markdown content into DocumentNodes, one per ATX
// section (depth 2-6). Content above the first such header (the
// document's H1/intro) is returned as its own leading section when
// non-blank.
func SplitMarkdown(filePath, content string) []model.DocumentNode {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	lines := strings.Split(content, "\n")

	type section struct {
		title     string
		startLine int
		lines     []string
	}

	var sections []section
	current := section{startLine: 1}

	for i, line := range lines {
		if headerPattern.MatchString(line) {
			if len(current.lines) > 0 {
				sections = append(sections, current)
			}
			current = section{
				title:     strings.TrimSpace(headerPattern.ReplaceAllString(line, "")),
				startLine: i + 1,
				lines:     []string{line},
			}
			continue
		}
		current.lines = append(current.lines, line)
	}
	if len(current.lines) > 0 {
		sections = append(sections, current)
	}

	nodes := make([]model.DocumentNode, 0, len(sections))
	for i, sec := range sections {
		text := strings.TrimSpace(strings.Join(sec.lines, "\n"))
		if text == "" {
			continue
		}
		endLine := sec.startLine + len(sec.lines) - 1

		nodes = append(nodes, model.DocumentNode{
			ID:             "",
			FilePath:       filePath,
			SectionTitle:   sec.title,
			StartLine:      sec.startLine,
			EndLine:        endLine,
			NodeType:       model.NodeMarkdown,
			Content:        text,
			CodeReferences: extractCodeReferences(text),
		})
		_ = i
	}
	return nodes
}

// extractCodeReferences finds backtick-quoted identifiers and bare file
// paths inside a markdown section's text.
func extractCodeReferences(text string) []model.CodeReference {
	seen := make(map[string]bool)
	var refs []model.CodeReference

	for _, m := range backtickReferencePattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		key := "backtick:" + name
		if seen[key] {
			continue
		}
		seen[key] = true
		refs = append(refs, model.CodeReference{Name: name, MatchReason: "backtick reference"})
	}

	for _, m := range filePathReferencePattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		key := "file:" + name
		if seen[key] {
			continue
		}
		seen[key] = true
		refs = append(refs, model.CodeReference{Name: name, MatchReason: "file reference"})
	}

	return refs
}
