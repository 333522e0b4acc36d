package parsers

import (
	"context"
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/codecontext/codecontext/internal/model"
)

// pythonParser extracts module-level functions and classes-with-methods.
type pythonParser struct {
	*treeSitterParser
}

// NewPythonParser builds the Python parser with its 5s per-file timeout.
func NewPythonParser() *pythonParser {
	lang := sitter.NewLanguage(python.Language())
	return &pythonParser{treeSitterParser: newTreeSitterParser(lang, 5*time.Second)}
}

func (p *pythonParser) Language() model.Language { return model.LangPython }

func (p *pythonParser) ExtractCodeObjects(ctx context.Context, absPath, relPath string, source []byte) ([]model.CodeObject, error) {
	tree, err := p.parse(ctx, source)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, nil
	}
	defer tree.Close()

	lines := strings.Split(string(source), "\n")
	var objects []model.CodeObject

	walk(tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "class_definition":
			objects = append(objects, p.extractClassAndMethods(n, source, lines, absPath, relPath)...)
			return false
		case "function_definition":
			if isTopLevel(n) {
				objects = append(objects, p.extractFunction(n, source, lines, absPath, relPath, "", ""))
			}
		}
		return true
	})

	return objects, nil
}

func (p *pythonParser) ExtractRelationships(ctx context.Context, relPath string, source []byte, objects []model.CodeObject) ([]model.Relationship, error) {
	tree, err := p.parse(ctx, source)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, nil
	}
	defer tree.Close()

	return buildRelationships(tree.RootNode(), source, objects, extractPythonInheritance), nil
}

func (p *pythonParser) extractClassAndMethods(node *sitter.Node, source []byte, lines []string, absPath, relPath string) []model.CodeObject {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	className := nodeText(nameNode, source)
	docstring := classOrFunctionDocstring(node, source)

	classObj := buildCodeObject(buildCodeObjectParams{
		Node: node, Source: source, AbsPath: absPath, RelPath: relPath,
		Language: model.LangPython, ObjectType: model.ObjectClass,
		Name: className, QualifiedName: className,
		Signature: "class " + className, Docstring: docstring,
	})

	objects := []model.CodeObject{classObj}

	bodyNode := node.ChildByFieldName("body")
	if bodyNode == nil {
		return objects
	}
	for i := 0; i < int(bodyNode.ChildCount()); i++ {
		child := bodyNode.Child(uint(i))
		if child.Kind() == "function_definition" {
			objects = append(objects, p.extractFunction(child, source, lines, absPath, relPath, className, classObj.ID))
		}
	}
	return objects
}

func (p *pythonParser) extractFunction(node *sitter.Node, source []byte, lines []string, absPath, relPath, className, parentID string) model.CodeObject {
	nameNode := node.ChildByFieldName("name")
	var name string
	if nameNode != nil {
		name = nodeText(nameNode, source)
	}

	qualifiedName := name
	objType := model.ObjectFunction
	if className != "" {
		qualifiedName = className + "." + name
		objType = model.ObjectMethod
		if name == "__init__" {
			objType = model.ObjectConstructor
		}
	}

	signature := p.buildSignature(node, source, className)
	docstring := classOrFunctionDocstring(node, source)

	return buildCodeObject(buildCodeObjectParams{
		Node: node, Source: source, AbsPath: absPath, RelPath: relPath,
		Language: model.LangPython, ObjectType: objType,
		Name: name, QualifiedName: qualifiedName,
		Signature: signature, Docstring: docstring, ParentID: parentID,
	})
}

func (p *pythonParser) buildSignature(node *sitter.Node, source []byte, className string) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := nodeText(nameNode, source)
	paramsNode := node.ChildByFieldName("parameters")
	returnNode := node.ChildByFieldName("return_type")

	sig := ""
	if className != "" {
		sig = className + "."
	}
	sig += name
	if paramsNode != nil {
		sig += nodeText(paramsNode, source)
	} else {
		sig += "()"
	}
	if returnNode != nil {
		sig += " -> " + nodeText(returnNode, source)
	}
	return sig
}

// classOrFunctionDocstring returns the first statement of the body if it
// is a bare string expression, Python's docstring convention.
func classOrFunctionDocstring(node *sitter.Node, source []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first.Kind() != "expression_statement" || first.ChildCount() == 0 {
		return ""
	}
	expr := first.Child(0)
	if expr.Kind() != "string" {
		return ""
	}
	return strings.Trim(nodeText(expr, source), "\"'")
}

// isTopLevel reports whether node sits directly under the module, not
// nested in a class or function body.
func isTopLevel(node *sitter.Node) bool {
	parent := node.Parent()
	for parent != nil {
		switch parent.Kind() {
		case "class_definition", "function_definition":
			return false
		case "module":
			return true
		}
		parent = parent.Parent()
	}
	return true
}

// extractPythonInheritance reports each class's base-class list from its
// `superclasses` argument_list field.
func extractPythonInheritance(root *sitter.Node, source []byte) []inheritanceEdge {
	var edges []inheritanceEdge
	walk(root, func(n *sitter.Node) bool {
		if n.Kind() != "class_definition" {
			return true
		}
		bases := n.ChildByFieldName("superclasses")
		if bases != nil {
			for i := 0; i < int(bases.ChildCount()); i++ {
				child := bases.Child(uint(i))
				if child.Kind() == "identifier" || child.Kind() == "attribute" {
					edges = append(edges, inheritanceEdge{
						ClassByteStart: int(n.StartByte()),
						Name:           nodeText(child, source),
						Kind:           model.RelInherits,
					})
				}
			}
		}
		return true
	})
	return edges
}
