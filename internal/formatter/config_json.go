package formatter

import (
	"fmt"

	"github.com/codecontext/codecontext/internal/model"
)

// configResult is the configuration-section JSON shape.
type configResult struct {
	ID            string          `json:"id"`
	Score         float64         `json:"score"`
	Rank          int             `json:"rank"`
	Path          string          `json:"path"`
	Location      configLocation  `json:"location"`
	Metadata      configMetaBlock `json:"metadata"`
	ConfigKeys    []string        `json:"config_keys"`
	EnvReferences []string        `json:"env_references"`
	Snippet       snippetPreview  `json:"snippet"`
}

type configLocation struct {
	File    string `json:"file"`
	Section string `json:"section"`
	URL     string `json:"url"`
}

type configMetaBlock struct {
	Title        string `json:"title"`
	ConfigFormat string `json:"config_format"`
	SectionDepth int    `json:"section_depth"`
	Type         string `json:"type"`
}

func (f *Formatter) renderConfigJSON(results []model.SearchResult, query string) (string, error) {
	items := make([]any, 0, len(results))
	for _, r := range results {
		section := metaString(r, "section_title")
		configKeys := metaStringSlice(r, "config_keys")
		envRefs := metaStringSlice(r, "env_references")
		items = append(items, configResult{
			ID:    r.ChunkID,
			Score: round2(r.Score),
			Rank:  r.Rank,
			Path:  r.FilePath,
			Location: configLocation{
				File:    r.FilePath,
				Section: section,
				URL:     fmt.Sprintf("%s#config", r.FilePath),
			},
			Metadata: configMetaBlock{
				Title:        section,
				ConfigFormat: metaString(r, "config_format"),
				SectionDepth: metaInt(r, "section_depth"),
				Type:         "config",
			},
			ConfigKeys:    configKeys,
			EnvReferences: envRefs,
			Snippet:       previewSnippet(r.Content, 8),
		})
	}
	return encodeEnvelope(envelope{Results: items, Total: len(items), Query: query})
}
