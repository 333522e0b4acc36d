package parsers

import (
	"context"
	"fmt"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// treeSitterParser holds the grammar and per-language timeout shared by
// every concrete parser.
type treeSitterParser struct {
	language *sitter.Language
	timeout  time.Duration
}

func newTreeSitterParser(language *sitter.Language, timeout time.Duration) *treeSitterParser {
	return &treeSitterParser{language: language, timeout: timeout}
}

// parse runs a bounded parse of source, respecting both ctx and the
// parser's own per-language timeout (5-10s). A nil tree (tree-sitter's
// own "could not parse" signal) is returned as (nil, nil), not an
// error - callers treat it as "file skipped".
func (p *treeSitterParser) parse(ctx context.Context, source []byte) (*sitter.Tree, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.language)

	treeCh := make(chan *sitter.Tree, 1)
	go func() {
		treeCh <- parser.Parse(source, nil)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("parse timed out after %s", p.timeout)
	case tree := <-treeCh:
		return tree, nil
	}
}
