package parsers

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codecontext/codecontext/internal/checksum"
	"github.com/codecontext/codecontext/internal/model"
	"github.com/codecontext/codecontext/internal/tokenizer"
)

// nodeText extracts the text content of a tree-sitter node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// extractLines slices 1-indexed, inclusive source lines.
func extractLines(lines []string, startLine, endLine int) string {
	if startLine < 1 || endLine < 1 || startLine > len(lines) {
		return ""
	}
	start := startLine - 1
	end := endLine
	if end > len(lines) {
		end = len(lines)
	}
	out := ""
	for i := start; i < end; i++ {
		if i > start {
			out += "\n"
		}
		out += lines[i]
	}
	return out
}

// walk recursively visits node and its descendants. Returning false
// from visitor skips that subtree.
func walk(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(uint(i)), visitor)
	}
}

// findChildByType finds the first direct child with the given kind.
func findChildByType(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}

// findChildrenByType finds all direct children with the given kind.
func findChildrenByType(node *sitter.Node, kind string) []*sitter.Node {
	var out []*sitter.Node
	if node == nil {
		return out
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == kind {
			out = append(out, child)
		}
	}
	return out
}

// branchingKinds names the tree-sitter node kinds that count toward
// cyclomatic complexity: if/while/for/switch-case, ternary, and
// short-circuit boolean operators.
var branchingKinds = map[model.Language]map[string]bool{
	model.LangPython: {
		"if_statement": true, "elif_clause": true, "while_statement": true,
		"for_statement": true, "match_statement": true, "case_clause": true,
		"conditional_expression": true, "boolean_operator": true,
	},
	model.LangJava: {
		"if_statement": true, "while_statement": true, "for_statement": true,
		"enhanced_for_statement": true, "switch_expression": true,
		"switch_block_statement_group": true, "ternary_expression": true,
		"binary_expression": true,
	},
	model.LangJavaScript: {
		"if_statement": true, "while_statement": true, "for_statement": true,
		"for_in_statement": true, "switch_case": true,
		"ternary_expression": true, "binary_expression": true,
	},
	model.LangTypeScript: {
		"if_statement": true, "while_statement": true, "for_statement": true,
		"for_in_statement": true, "switch_case": true,
		"ternary_expression": true, "binary_expression": true,
	},
}

// nestingKinds is the subset of branching kinds that introduce a new
// nesting level, used for loc-complexity.
var nestingKinds = map[model.Language]map[string]bool{
	model.LangPython: {
		"if_statement": true, "while_statement": true, "for_statement": true,
		"match_statement": true,
	},
	model.LangJava: {
		"if_statement": true, "while_statement": true, "for_statement": true,
		"enhanced_for_statement": true, "switch_expression": true,
	},
	model.LangJavaScript: {
		"if_statement": true, "while_statement": true, "for_statement": true,
		"for_in_statement": true,
	},
	model.LangTypeScript: {
		"if_statement": true, "while_statement": true, "for_statement": true,
		"for_in_statement": true,
	},
}

// measureComplexity walks node and counts branching/nesting constructs.
func measureComplexity(node *sitter.Node, lang model.Language) (complexity, locComplexity int) {
	bk := branchingKinds[lang]
	nk := nestingKinds[lang]
	walk(node, func(n *sitter.Node) bool {
		if bk[n.Kind()] {
			complexity++
		}
		if nk[n.Kind()] {
			locComplexity++
		}
		return true
	})
	return complexity, locComplexity
}

// callNodeKinds names the call-expression node kind per language.
var callNodeKinds = map[model.Language]string{
	model.LangPython:     "call",
	model.LangJava:       "method_invocation",
	model.LangKotlin:     "method_invocation",
	model.LangJavaScript: "call_expression",
	model.LangTypeScript: "call_expression",
}

// referenceNodeKinds names the member/attribute-access node kind used to
// recognize a referenced (non-called) name per language.
var referenceNodeKinds = map[model.Language]string{
	model.LangPython:     "attribute",
	model.LangJava:       "field_access",
	model.LangKotlin:     "field_access",
	model.LangJavaScript: "member_expression",
	model.LangTypeScript: "member_expression",
}

// extractCalls walks node and collects the distinct callee names of
// every call expression beneath it.
func extractCalls(node *sitter.Node, source []byte, lang model.Language) []string {
	kind, ok := callNodeKinds[lang]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var calls []string
	walk(node, func(n *sitter.Node) bool {
		if n.Kind() == kind {
			if name := calleeName(n, source, lang); name != "" && !seen[name] {
				seen[name] = true
				calls = append(calls, name)
			}
		}
		return true
	})
	return calls
}

// calleeName extracts the invoked name from a call node: for a plain
// call it is the called identifier; for a member/attribute call it is
// the rightmost segment (object.method -> method).
func calleeName(n *sitter.Node, source []byte, lang model.Language) string {
	var target *sitter.Node
	switch lang {
	case model.LangPython:
		target = n.ChildByFieldName("function")
	case model.LangJava, model.LangKotlin:
		nameNode := n.ChildByFieldName("name")
		if nameNode != nil {
			return nodeText(nameNode, source)
		}
		return ""
	case model.LangJavaScript, model.LangTypeScript:
		target = n.ChildByFieldName("function")
	}
	if target == nil {
		return ""
	}
	if refKind, ok := referenceNodeKinds[lang]; ok && target.Kind() == refKind {
		field := "attribute"
		if lang == model.LangJavaScript || lang == model.LangTypeScript {
			field = "property"
		}
		if prop := target.ChildByFieldName(field); prop != nil {
			return nodeText(prop, source)
		}
	}
	return nodeText(target, source)
}

// extractReferences walks node and collects the distinct rightmost
// segment of every member/attribute access beneath it (e.g. the `Total`
// in `order.Total`). A member access that is itself a call target (the
// `save` in `repo.save()`) is collected too, so such a name can appear
// both here and in extractCalls' result.
func extractReferences(node *sitter.Node, source []byte, lang model.Language) []string {
	kind, ok := referenceNodeKinds[lang]
	if !ok {
		return nil
	}
	field := "attribute"
	if lang == model.LangJavaScript || lang == model.LangTypeScript {
		field = "property"
	}
	seen := make(map[string]bool)
	var refs []string
	walk(node, func(n *sitter.Node) bool {
		if n.Kind() == kind {
			if prop := n.ChildByFieldName(field); prop != nil {
				name := nodeText(prop, source)
				if name != "" && !seen[name] {
					seen[name] = true
					refs = append(refs, name)
				}
			}
		}
		return true
	})
	return refs
}

// scoreWeight computes the score_weight multiplier: token count bands
// into a base in [0.1, 1.0], then docstring/qualified-name bonuses,
// clamped to [0.1, 1.2].
func scoreWeight(tokenCount int, hasDocstring, hasQualifiedName bool) float64 {
	var base float64
	switch {
	case tokenCount >= 20:
		base = 1.0
	case tokenCount >= 10:
		base = 0.5 + float64(tokenCount-10)/20
	default:
		base = float64(tokenCount) / 10
		if base < 0.1 {
			base = 0.1
		}
	}

	bonus := 1.0
	if hasDocstring {
		bonus += 0.15
	}
	if hasQualifiedName {
		bonus += 0.10
	}

	quality := base * bonus
	if tokenCount >= 20 && quality > 1.2 {
		quality = 1.2
	}
	if quality < 0.1 {
		quality = 0.1
	}
	if quality > 1.2 {
		quality = 1.2
	}
	return quality
}

// buildCodeObjectParams bundles the positional arguments common to every
// language's object-construction call.
type buildCodeObjectParams struct {
	Node          *sitter.Node
	Source        []byte
	AbsPath       string
	RelPath       string
	Language      model.Language
	ObjectType    model.ObjectType
	Name          string
	QualifiedName string
	Signature     string
	Docstring     string
	ParentID      string
}

// buildCodeObject assembles a model.CodeObject from a tree-sitter node,
// deriving its content-addressed id, lexical stats, AST metadata
// (calls/references/complexity), and score_weight.
func buildCodeObject(p buildCodeObjectParams) model.CodeObject {
	content := nodeText(p.Node, p.Source)
	startLine := int(p.Node.StartPosition().Row) + 1
	endLine := int(p.Node.EndPosition().Row) + 1
	byteStart := int(p.Node.StartByte())
	byteEnd := int(p.Node.EndByte())

	id := checksum.DigestString(fmt.Sprintf("%s:%d:%d:%s", p.RelPath, byteStart, byteEnd, content))

	tokens := tokenizer.Tokenize(content)
	uniqueSet := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		uniqueSet[t] = struct{}{}
	}

	complexity, locComplexity := measureComplexity(p.Node, p.Language)

	return model.CodeObject{
		ID:            id,
		QualifiedName: p.QualifiedName,
		AbsolutePath:  p.AbsPath,
		RelativePath:  p.RelPath,
		StartLine:     startLine,
		EndLine:       endLine,
		ByteStart:     byteStart,
		ByteEnd:       byteEnd,
		Language:      p.Language,
		ObjectType:    p.ObjectType,
		Content:       content,
		RawContent:    content,
		Signature:     p.Signature,
		Docstring:     p.Docstring,
		ParentID:      p.ParentID,
		TokenCount:    len(tokens),
		UniqueTokenCount: len(uniqueSet),
		ScoreWeight:   scoreWeight(len(tokens), p.Docstring != "", p.QualifiedName != ""),
		AST: model.ASTMetadata{
			Calls:         extractCalls(p.Node, p.Source, p.Language),
			References:    extractReferences(p.Node, p.Source, p.Language),
			Complexity:    complexity,
			LOCComplexity: locComplexity,
		},
	}
}

// inheritanceEdge is a class/interface byte-offset paired with the base
// name it extends or implements, produced by a language's inheritance
// extractor and resolved against the parsed CodeObjects by start byte.
type inheritanceEdge struct {
	ClassByteStart int
	Name           string
	Kind           model.RelationshipKind
}

// inheritanceExtractor walks a parsed tree and reports every
// extends/implements edge it finds, language-specifically.
type inheritanceExtractor func(root *sitter.Node, source []byte) []inheritanceEdge

// buildRelationships derives CALLS, REFERENCES, CONTAINS, INHERITS and
// IMPLEMENTS edges from already-extracted CodeObjects plus their AST
// metadata. Resolution is intra-file only: a name resolves to another
// object in the same file when one of its qualified or bare names
// matches, otherwise it is emitted as an unresolved name-carrying stub.
func buildRelationships(root *sitter.Node, source []byte, objects []model.CodeObject, extractInheritance inheritanceExtractor) []model.Relationship {
	byQualified := make(map[string]string, len(objects))
	byName := make(map[string]string, len(objects))
	byByteStart := make(map[int]string, len(objects))
	for _, obj := range objects {
		byByteStart[obj.ByteStart] = obj.ID
		if obj.QualifiedName != "" {
			byQualified[obj.QualifiedName] = obj.ID
		}
		if short := lastSegment(obj.QualifiedName); short != "" {
			byName[short] = obj.ID
		}
	}

	var rels []model.Relationship

	for _, obj := range objects {
		if obj.ParentID != "" {
			rels = append(rels, model.Relationship{
				SourceID:   obj.ParentID,
				TargetID:   obj.ID,
				TargetName: obj.QualifiedName,
				Kind:       model.RelContains,
				Resolved:   true,
			})
		}
		for _, name := range obj.AST.Calls {
			rels = append(rels, resolveRelationship(obj.ID, name, model.RelCalls, byQualified, byName))
		}
		for _, name := range obj.AST.References {
			rels = append(rels, resolveRelationship(obj.ID, name, model.RelReferences, byQualified, byName))
		}
	}

	if extractInheritance != nil {
		for _, edge := range extractInheritance(root, source) {
			sourceID, ok := byByteStart[edge.ClassByteStart]
			if !ok {
				continue
			}
			rels = append(rels, resolveRelationshipFrom(sourceID, edge.Name, edge.Kind, byQualified, byName))
		}
	}

	return rels
}

func resolveRelationship(sourceID, targetName string, kind model.RelationshipKind, byQualified, byName map[string]string) model.Relationship {
	return resolveRelationshipFrom(sourceID, targetName, kind, byQualified, byName)
}

func resolveRelationshipFrom(sourceID, targetName string, kind model.RelationshipKind, byQualified, byName map[string]string) model.Relationship {
	if id, ok := byQualified[targetName]; ok {
		return model.Relationship{SourceID: sourceID, TargetID: id, TargetName: targetName, Kind: kind, Resolved: true}
	}
	if id, ok := byName[targetName]; ok {
		return model.Relationship{SourceID: sourceID, TargetID: id, TargetName: targetName, Kind: kind, Resolved: true}
	}
	return model.Relationship{SourceID: sourceID, TargetName: targetName, Kind: kind, Resolved: false}
}

func lastSegment(qualifiedName string) string {
	if qualifiedName == "" {
		return ""
	}
	last := qualifiedName
	for i := len(qualifiedName) - 1; i >= 0; i-- {
		if qualifiedName[i] == '.' {
			last = qualifiedName[i+1:]
			break
		}
	}
	return last
}
