package formatter

import (
	"fmt"

	"github.com/codecontext/codecontext/internal/model"
)

// documentResult is the markdown-section JSON shape.
type documentResult struct {
	ID          string            `json:"id"`
	Score       float64           `json:"score"`
	Rank        int               `json:"rank"`
	Path        string            `json:"path"`
	Location    documentLocation  `json:"location"`
	Metadata    documentMetaBlock `json:"metadata"`
	RelatedCode []relatedCodeRef  `json:"related_code"`
	Snippet     snippetPreview    `json:"snippet"`
}

type documentLocation struct {
	File      string `json:"file"`
	Section   string `json:"section"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	URL       string `json:"url"`
}

type documentMetaBlock struct {
	Title    string `json:"title"`
	Type     string `json:"type"`
	Language string `json:"language"`
}

type relatedCodeRef struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	MatchReason string `json:"match_reason"`
}

type snippetPreview struct {
	Preview []string `json:"preview"`
	Full    *string  `json:"full"`
}

func (f *Formatter) renderDocumentJSON(results []model.SearchResult, query string) (string, error) {
	items := make([]any, 0, len(results))
	for _, r := range results {
		section := metaString(r, "section_title")
		items = append(items, documentResult{
			ID:    r.ChunkID,
			Score: round2(r.Score),
			Rank:  r.Rank,
			Path:  r.FilePath,
			Location: documentLocation{
				File:      r.FilePath,
				Section:   section,
				StartLine: r.StartLine,
				EndLine:   r.EndLine,
				URL:       fmt.Sprintf("%s:%d-%d#section", r.FilePath, r.StartLine, r.EndLine),
			},
			Metadata:    documentMetaBlock{Title: section, Type: "markdown_section", Language: "markdown"},
			RelatedCode: relatedCodeRefs(r),
			Snippet:     previewSnippet(r.Content, 5),
		})
	}
	return encodeEnvelope(envelope{Results: items, Total: len(items), Query: query})
}
