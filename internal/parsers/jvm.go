package parsers

import (
	"context"
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/codecontext/codecontext/internal/model"
)

// jvmParser extracts class/interface/enum declarations and their
// methods for Java.
//
// Kotlin reuses this same grammar and extraction logic with its language
// tag overridden: the pack carries no tree-sitter-kotlin binding, and
// class/interface/enum/method shapes are close enough at the tree-sitter
// S-expression level for this spec's purposes. This is a pragmatic
// substitution, not a silent gap — Kotlin-only constructs (data classes,
// extension functions, `when` expressions) are not specially recognized
// and fall through to whatever the Java grammar manages to parse.
type jvmParser struct {
	*treeSitterParser
	lang model.Language
}

// NewJVMParser builds a parser for lang (Java or Kotlin) over the Java
// grammar, with a 5s timeout for Java and 10s for Kotlin (its extraction
// runs over the same grammar with less precise results, so it gets more
// room to finish).
func NewJVMParser(lang model.Language) *jvmParser {
	grammar := sitter.NewLanguage(java.Language())
	timeout := 5 * time.Second
	if lang == model.LangKotlin {
		timeout = 10 * time.Second
	}
	return &jvmParser{treeSitterParser: newTreeSitterParser(grammar, timeout), lang: lang}
}

func (p *jvmParser) Language() model.Language { return p.lang }

func (p *jvmParser) ExtractCodeObjects(ctx context.Context, absPath, relPath string, source []byte) ([]model.CodeObject, error) {
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
		case "class_declaration":
			objects = append(objects, p.extractTypeAndMethods(n, source, lines, absPath, relPath, model.ObjectClass, "class")...)
			return false
		case "interface_declaration":
			objects = append(objects, p.extractTypeAndMethods(n, source, lines, absPath, relPath, model.ObjectInterface, "interface")...)
			return false
		case "enum_declaration":
			objects = append(objects, p.extractEnum(n, source, absPath, relPath))
			return false
		}
		return true
	})

	return objects, nil
}

func (p *jvmParser) ExtractRelationships(ctx context.Context, relPath string, source []byte, objects []model.CodeObject) ([]model.Relationship, error) {
	tree, err := p.parse(ctx, source)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, nil
	}
	defer tree.Close()

	return buildRelationships(tree.RootNode(), source, objects, extractJVMInheritance), nil
}

func (p *jvmParser) extractTypeAndMethods(node *sitter.Node, source []byte, lines []string, absPath, relPath string, objType model.ObjectType, keyword string) []model.CodeObject {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	typeName := nodeText(nameNode, source)
	docstring := precedingJavadoc(node, source)

	typeObj := buildCodeObject(buildCodeObjectParams{
		Node: node, Source: source, AbsPath: absPath, RelPath: relPath,
		Language: p.lang, ObjectType: objType,
		Name: typeName, QualifiedName: typeName,
		Signature: keyword + " " + typeName, Docstring: docstring,
	})

	objects := []model.CodeObject{typeObj}

	body := node.ChildByFieldName("body")
	if body == nil {
		return objects
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(uint(i))
		if child.Kind() == "method_declaration" || child.Kind() == "constructor_declaration" {
			objects = append(objects, p.extractMethod(child, source, absPath, relPath, typeName, typeObj.ID))
		}
	}
	return objects
}

func (p *jvmParser) extractMethod(node *sitter.Node, source []byte, absPath, relPath, className, parentID string) model.CodeObject {
	nameNode := node.ChildByFieldName("name")
	var name string
	if nameNode != nil {
		name = nodeText(nameNode, source)
	}

	objType := model.ObjectMethod
	if node.Kind() == "constructor_declaration" {
		objType = model.ObjectConstructor
	}

	signature := p.buildMethodSignature(node, source, className)
	docstring := precedingJavadoc(node, source)

	return buildCodeObject(buildCodeObjectParams{
		Node: node, Source: source, AbsPath: absPath, RelPath: relPath,
		Language: p.lang, ObjectType: objType,
		Name: name, QualifiedName: className + "." + name,
		Signature: signature, Docstring: docstring, ParentID: parentID,
	})
}

func (p *jvmParser) buildMethodSignature(node *sitter.Node, source []byte, className string) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := nodeText(nameNode, source)
	typeNode := node.ChildByFieldName("type")
	paramsNode := node.ChildByFieldName("parameters")

	sig := className + "." + name
	if paramsNode != nil {
		sig += nodeText(paramsNode, source)
	} else {
		sig += "()"
	}
	if typeNode != nil {
		sig += ": " + nodeText(typeNode, source)
	}
	return sig
}

func (p *jvmParser) extractEnum(node *sitter.Node, source []byte, absPath, relPath string) model.CodeObject {
	nameNode := node.ChildByFieldName("name")
	var name string
	if nameNode != nil {
		name = nodeText(nameNode, source)
	}

	obj := buildCodeObject(buildCodeObjectParams{
		Node: node, Source: source, AbsPath: absPath, RelPath: relPath,
		Language: p.lang, ObjectType: model.ObjectEnum,
		Name: name, QualifiedName: name, Signature: "enum " + name,
	})

	body := findChildByType(node, "enum_body")
	if body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			child := body.Child(uint(i))
			if child.Kind() == "enum_constant" {
				if cn := child.ChildByFieldName("name"); cn != nil {
					obj.AST.EnumMembers = append(obj.AST.EnumMembers, nodeText(cn, source))
				}
			}
		}
	}
	return obj
}

// precedingJavadoc returns the text of an immediately preceding
// `/** ... */` block comment, Java's doc-comment convention.
func precedingJavadoc(node *sitter.Node, source []byte) string {
	prev := node.PrevSibling()
	if prev == nil || prev.Kind() != "block_comment" {
		return ""
	}
	text := nodeText(prev, source)
	if !strings.HasPrefix(text, "/**") {
		return ""
	}
	return strings.TrimSpace(text)
}

// extractJVMInheritance reports each class's `extends`/`implements`
// targets and each interface's `extends` list.
func extractJVMInheritance(root *sitter.Node, source []byte) []inheritanceEdge {
	var edges []inheritanceEdge
	walk(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "class_declaration":
			if super := n.ChildByFieldName("superclass"); super != nil {
				edges = append(edges, inheritanceEdge{ClassByteStart: int(n.StartByte()), Name: strings.TrimSpace(nodeText(super, source)), Kind: model.RelInherits})
			}
			if ifaces := n.ChildByFieldName("interfaces"); ifaces != nil {
				for i := 0; i < int(ifaces.ChildCount()); i++ {
					child := ifaces.Child(uint(i))
					if child.Kind() == "type_identifier" {
						edges = append(edges, inheritanceEdge{ClassByteStart: int(n.StartByte()), Name: nodeText(child, source), Kind: model.RelImplements})
					}
				}
			}
		case "interface_declaration":
			if ext := n.ChildByFieldName("extends"); ext != nil {
				for i := 0; i < int(ext.ChildCount()); i++ {
					child := ext.Child(uint(i))
					if child.Kind() == "type_identifier" {
						edges = append(edges, inheritanceEdge{ClassByteStart: int(n.StartByte()), Name: nodeText(child, source), Kind: model.RelInherits})
					}
				}
			}
		}
		return true
	})
	return edges
}
