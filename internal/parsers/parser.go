// Package parsers implements the per-language AST structural extraction
// bank: one tree-sitter-backed Parser per supported language, each
// producing CodeObjects and intra-file Relationships.
package parsers

import (
	"context"

	"github.com/codecontext/codecontext/internal/model"
)

// Parser extracts code objects and relationships from one file's source.
// A file that yields no syntax tree is reported as (nil, nil) rather than
// an error; a parse that exceeds the parser's timeout returns an error,
// which the sync engine logs. Either way the file is skipped and the
// sync does not abort.
type Parser interface {
	Language() model.Language
	ExtractCodeObjects(ctx context.Context, absPath, relPath string, source []byte) ([]model.CodeObject, error)
	ExtractRelationships(ctx context.Context, relPath string, source []byte, objects []model.CodeObject) ([]model.Relationship, error)
}

// Bank is the registry of one Parser per supported language.
type Bank struct {
	parsers map[model.Language]Parser
}

// NewBank wires up the full parser bank. Kotlin reuses the Java grammar
// (no tree-sitter-kotlin binding is available) with its language tag
// overridden; JavaScript reuses the TypeScript grammar, which is a
// strict syntactic superset.
func NewBank() *Bank {
	return &Bank{
		parsers: map[model.Language]Parser{
			model.LangPython:     NewPythonParser(),
			model.LangJava:       NewJVMParser(model.LangJava),
			model.LangKotlin:     NewJVMParser(model.LangKotlin),
			model.LangJavaScript: NewECMAScriptParser(model.LangJavaScript),
			model.LangTypeScript: NewECMAScriptParser(model.LangTypeScript),
		},
	}
}

// For returns the registered parser for lang, if any.
func (b *Bank) For(lang model.Language) (Parser, bool) {
	p, ok := b.parsers[lang]
	return p, ok
}

// LanguageForExtension maps a file extension (including the leading dot)
// to the language the parser bank should use, or "" if unsupported.
func LanguageForExtension(ext string) model.Language {
	switch ext {
	case ".py":
		return model.LangPython
	case ".java":
		return model.LangJava
	case ".kt", ".kts":
		return model.LangKotlin
	case ".js", ".jsx", ".mjs", ".cjs":
		return model.LangJavaScript
	case ".ts", ".tsx":
		return model.LangTypeScript
	default:
		return ""
	}
}
