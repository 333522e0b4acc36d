package parsers

import (
	"context"
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/codecontext/codecontext/internal/model"
)

// ecmaScriptParser extracts classes-with-methods, top-level functions,
// and top-level arrow-function const assignments for JavaScript and
// TypeScript. JavaScript reuses the TypeScript grammar, since it is a
// strict syntactic superset of JavaScript.
type ecmaScriptParser struct {
	*treeSitterParser
	lang model.Language
}

// NewECMAScriptParser builds a parser for lang (JavaScript or
// TypeScript) over the TypeScript tree-sitter grammar.
func NewECMAScriptParser(lang model.Language) *ecmaScriptParser {
	timeout := 5 * time.Second
	var grammar *sitter.Language
	if lang == model.LangTypeScript {
		timeout = 7 * time.Second
		grammar = sitter.NewLanguage(typescript.LanguageTypescript())
	} else {
		grammar = sitter.NewLanguage(typescript.LanguageTypescript())
	}
	return &ecmaScriptParser{treeSitterParser: newTreeSitterParser(grammar, timeout), lang: lang}
}

func (p *ecmaScriptParser) Language() model.Language { return p.lang }

func (p *ecmaScriptParser) ExtractCodeObjects(ctx context.Context, absPath, relPath string, source []byte) ([]model.CodeObject, error) {
	tree, err := p.parse(ctx, source)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, nil
	}
	defer tree.Close()

	var objects []model.CodeObject
	root := tree.RootNode()

	walk(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "class_declaration":
			objects = append(objects, p.extractClassAndMethods(n, source, absPath, relPath)...)
			return false
		case "interface_declaration":
			objects = append(objects, p.extractInterface(n, source, absPath, relPath))
			return false
		case "function_declaration":
			if isTopLevelJS(n, root) {
				objects = append(objects, p.extractFunction(n, source, absPath, relPath, "", ""))
			}
		case "lexical_declaration":
			if isTopLevelJS(n, root) {
				objects = append(objects, p.extractArrowConstants(n, source, absPath, relPath)...)
			}
		}
		return true
	})

	return objects, nil
}

func (p *ecmaScriptParser) ExtractRelationships(ctx context.Context, relPath string, source []byte, objects []model.CodeObject) ([]model.Relationship, error) {
	tree, err := p.parse(ctx, source)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, nil
	}
	defer tree.Close()

	return buildRelationships(tree.RootNode(), source, objects, extractECMAScriptInheritance), nil
}

func (p *ecmaScriptParser) extractClassAndMethods(node *sitter.Node, source []byte, absPath, relPath string) []model.CodeObject {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	className := nodeText(nameNode, source)

	classObj := buildCodeObject(buildCodeObjectParams{
		Node: node, Source: source, AbsPath: absPath, RelPath: relPath,
		Language: p.lang, ObjectType: model.ObjectClass,
		Name: className, QualifiedName: className,
		Signature: "class " + className,
	})

	objects := []model.CodeObject{classObj}

	body := node.ChildByFieldName("body")
	if body == nil {
		return objects
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(uint(i))
		if child.Kind() == "method_definition" {
			objects = append(objects, p.extractMethod(child, source, absPath, relPath, className, classObj.ID))
		}
	}
	return objects
}

func (p *ecmaScriptParser) extractMethod(node *sitter.Node, source []byte, absPath, relPath, className, parentID string) model.CodeObject {
	nameNode := node.ChildByFieldName("name")
	var name string
	if nameNode != nil {
		name = nodeText(nameNode, source)
	}

	objType := model.ObjectMethod
	if name == "constructor" {
		objType = model.ObjectConstructor
	}

	signature := className + "." + name + paramsText(node, source)

	return buildCodeObject(buildCodeObjectParams{
		Node: node, Source: source, AbsPath: absPath, RelPath: relPath,
		Language: p.lang, ObjectType: objType,
		Name: name, QualifiedName: className + "." + name,
		Signature: signature, ParentID: parentID,
	})
}

func (p *ecmaScriptParser) extractInterface(node *sitter.Node, source []byte, absPath, relPath string) model.CodeObject {
	nameNode := node.ChildByFieldName("name")
	var name string
	if nameNode != nil {
		name = nodeText(nameNode, source)
	}
	return buildCodeObject(buildCodeObjectParams{
		Node: node, Source: source, AbsPath: absPath, RelPath: relPath,
		Language: p.lang, ObjectType: model.ObjectInterface,
		Name: name, QualifiedName: name, Signature: "interface " + name,
	})
}

func (p *ecmaScriptParser) extractFunction(node *sitter.Node, source []byte, absPath, relPath, _, parentID string) model.CodeObject {
	nameNode := node.ChildByFieldName("name")
	var name string
	if nameNode != nil {
		name = nodeText(nameNode, source)
	}
	signature := name + paramsText(node, source)

	return buildCodeObject(buildCodeObjectParams{
		Node: node, Source: source, AbsPath: absPath, RelPath: relPath,
		Language: p.lang, ObjectType: model.ObjectFunction,
		Name: name, QualifiedName: name, Signature: signature, ParentID: parentID,
	})
}

// extractArrowConstants emits a FUNCTION object for every top-level
// `const Name = (...) => ...` declarator. Nested arrows (inside another
// function/arrow body) are excluded by construction: this is only
// called on a lexical_declaration already known to be top-level.
func (p *ecmaScriptParser) extractArrowConstants(node *sitter.Node, source []byte, absPath, relPath string) []model.CodeObject {
	if !strings.HasPrefix(nodeText(node, source), "const") {
		return nil
	}
	var objects []model.CodeObject
	for _, decl := range findChildrenByType(node, "variable_declarator") {
		nameNode := decl.ChildByFieldName("name")
		valueNode := decl.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil || valueNode.Kind() != "arrow_function" {
			continue
		}
		name := nodeText(nameNode, source)
		signature := name + paramsText(valueNode, source)
		objects = append(objects, buildCodeObject(buildCodeObjectParams{
			Node: decl, Source: source, AbsPath: absPath, RelPath: relPath,
			Language: p.lang, ObjectType: model.ObjectFunction,
			Name: name, QualifiedName: name, Signature: signature,
		}))
	}
	return objects
}

func paramsText(node *sitter.Node, source []byte) string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return "()"
	}
	return nodeText(params, source)
}

// isTopLevelJS reports whether node is a direct child of the program
// root (i.e. not nested in a function, arrow, method, or class body).
func isTopLevelJS(node *sitter.Node, root *sitter.Node) bool {
	parent := node.Parent()
	return parent != nil && parent.Equal(root)
}

// extractECMAScriptInheritance reports a class's `extends` target from
// its class_heritage clause.
func extractECMAScriptInheritance(root *sitter.Node, source []byte) []inheritanceEdge {
	var edges []inheritanceEdge
	walk(root, func(n *sitter.Node) bool {
		if n.Kind() != "class_declaration" {
			return true
		}
		heritage := findChildByType(n, "class_heritage")
		if heritage != nil {
			if ext := findChildByType(heritage, "extends_clause"); ext != nil {
				for i := 0; i < int(ext.ChildCount()); i++ {
					child := ext.Child(uint(i))
					if child.Kind() == "identifier" {
						edges = append(edges, inheritanceEdge{ClassByteStart: int(n.StartByte()), Name: nodeText(child, source), Kind: model.RelInherits})
					}
				}
			}
		}
		return true
	})
	return edges
}
