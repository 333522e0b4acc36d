// Package chunker applies the class/method chunking policy: it bounds
// oversize classes to a summary chunk plus per-method chunks, and
// prefixes added context while preserving the hard invariant that a
// chunk's Content always contains its RawContent as a substring.
package chunker

import (
	"strings"

	"github.com/codecontext/codecontext/internal/model"
)

// Options configures the large-class threshold. The sync engine always
// passes DefaultOptions(); no config key sets these values.
type Options struct {
	LargeClassMethods int
	LargeClassBytes   int
}

// DefaultOptions mirrors the common split point for an oversize class:
// 30 methods or 8000 bytes of body.
func DefaultOptions() Options {
	return Options{LargeClassMethods: 30, LargeClassBytes: 8000}
}

// Chunk applies the chunking policy to one file's flattened CodeObjects
// (as produced by a parsers.Parser: each class/interface immediately
// followed, in any order, by its methods referencing it via ParentID).
// fileImports is prefixed onto class and top-level chunks when present.
func Chunk(objects []model.CodeObject, fileImports string, opts Options) []model.CodeObject {
	methodsByParent := make(map[string][]model.CodeObject)
	containers := make(map[string]model.CodeObject)
	for _, obj := range objects {
		switch obj.ObjectType {
		case model.ObjectClass, model.ObjectInterface, model.ObjectEnum:
			containers[obj.ID] = obj
		}
		if obj.ParentID != "" {
			methodsByParent[obj.ParentID] = append(methodsByParent[obj.ParentID], obj)
		}
	}

	out := make([]model.CodeObject, 0, len(objects))
	for _, obj := range objects {
		switch obj.ObjectType {
		case model.ObjectClass, model.ObjectInterface:
			members := methodsByParent[obj.ID]
			if isLargeClass(obj, members, opts) {
				out = append(out, summaryChunk(obj, members, fileImports))
			} else {
				out = append(out, withAddedContext(obj, fileImports))
			}
		case model.ObjectMethod, model.ObjectConstructor:
			if parent, ok := containers[obj.ParentID]; ok {
				out = append(out, withAddedContext(obj, parent.Signature))
			} else {
				out = append(out, withAddedContext(obj, fileImports))
			}
		default:
			// Non-class top-level objects (functions, enums, module-level
			// variables) are emitted verbatim.
			out = append(out, withAddedContext(obj, fileImports))
		}
	}
	return out
}

func isLargeClass(class model.CodeObject, members []model.CodeObject, opts Options) bool {
	methodCount := 0
	for _, m := range members {
		if m.ObjectType == model.ObjectMethod || m.ObjectType == model.ObjectConstructor {
			methodCount++
		}
	}
	return methodCount >= opts.LargeClassMethods || len(class.RawContent) >= opts.LargeClassBytes
}

// summaryChunk replaces a large class's full body with a summary of its
// signature, docstring, and member names — the per-method chunks for its
// members are emitted independently by the caller, unaffected.
func summaryChunk(class model.CodeObject, members []model.CodeObject, fileImports string) model.CodeObject {
	var b strings.Builder
	b.WriteString(class.Signature)
	if class.Docstring != "" {
		b.WriteString("\n    \"\"\"")
		b.WriteString(class.Docstring)
		b.WriteString("\"\"\"")
	}
	if len(members) > 0 {
		b.WriteString("\n")
		for _, m := range members {
			name := m.QualifiedName
			if i := strings.LastIndex(name, "."); i >= 0 {
				name = name[i+1:]
			}
			b.WriteString("    ")
			b.WriteString(name)
			b.WriteString("\n")
		}
	}

	summary := class
	summary.RawContent = strings.TrimRight(b.String(), "\n")
	summary.Content = withPrefix(summary.RawContent, fileImports)
	return summary
}

// withAddedContext prefixes obj's RawContent with prefix (file imports
// or an enclosing class signature), recomputing Content while leaving
// RawContent untouched.
func withAddedContext(obj model.CodeObject, prefix string) model.CodeObject {
	obj.Content = withPrefix(obj.RawContent, prefix)
	return obj
}

func withPrefix(rawContent, prefix string) string {
	if prefix == "" {
		return rawContent
	}
	return prefix + "\n" + rawContent
}
