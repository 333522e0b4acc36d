// Package formatter renders a ranked SearchResult list into one of four
// output shapes: human-readable text, or one of three JSON shapes (code,
// markdown document, config section) selected by the result set's node
// kind. Each shape lives in its own file, one small set of pure format
// functions keyed by data shape.
package formatter

import (
	"context"
	"encoding/json"

	"github.com/codecontext/codecontext/internal/filecache"
	"github.com/codecontext/codecontext/internal/model"
	"github.com/codecontext/codecontext/internal/store"
)

// Format is the output shape requested by the CLI's --format flag.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Formatter renders search results, fetching the full CodeObject on
// demand for the "signature"/"complexity" expansions.
type Formatter struct {
	store store.Store
	files *filecache.Cache
}

// New builds a Formatter. files may be nil: snippet and content
// expansion are built from each result's Content, not read from files.
func New(s store.Store, files *filecache.Cache) *Formatter {
	return &Formatter{store: s, files: files}
}

// envelope is the outer JSON wrapper shared by every JSON shape.
type envelope struct {
	Results []any  `json:"results"`
	Total   int    `json:"total"`
	Query   string `json:"query"`
}

// Render formats results per format. JSON output routes to the
// code/document/config shape implied by the result set's node kind;
// text output always uses the same renderer regardless of kind.
func (f *Formatter) Render(ctx context.Context, results []model.SearchResult, query string, format Format, expand []string, relationships []model.Relationship) (string, error) {
	if len(results) == 0 {
		if format == FormatJSON {
			return encodeEnvelope(envelope{Results: []any{}, Query: query})
		}
		return "No results found.", nil
	}

	if format != FormatJSON {
		return f.renderText(ctx, results, expand, relationships), nil
	}

	switch routeJSON(results) {
	case routeConfig:
		return f.renderConfigJSON(results, query)
	case routeDocument:
		return f.renderDocumentJSON(results, query)
	default:
		return f.renderCodeJSON(ctx, results, query, expand, relationships)
	}
}

type jsonRoute int

const (
	routeCode jsonRoute = iota
	routeDocument
	routeConfig
)

// routeJSON picks the specialized document/config formatter only when
// every result shares that single node kind; any mix (or pure code)
// falls back to the general code formatter, matching the original's
// routing rule in search/formatter.py.
func routeJSON(results []model.SearchResult) jsonRoute {
	allMarkdown, allConfig := true, true
	for _, r := range results {
		if r.NodeType != model.NodeMarkdown {
			allMarkdown = false
		}
		if r.NodeType != model.NodeConfig {
			allConfig = false
		}
	}
	switch {
	case allConfig:
		return routeConfig
	case allMarkdown:
		return routeDocument
	default:
		return routeCode
	}
}

func encodeEnvelope(e envelope) (string, error) {
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
