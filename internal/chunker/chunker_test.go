package chunker

import (
	"strings"
	"testing"

	"github.com/codecontext/codecontext/internal/model"
)

func TestChunkPreservesRawContentSubstringInvariant(t *testing.T) {
	objects := []model.CodeObject{
		{ID: "class1", ObjectType: model.ObjectClass, Signature: "class Order", RawContent: "class Order:\n    pass"},
		{ID: "method1", ParentID: "class1", ObjectType: model.ObjectMethod, QualifiedName: "Order.save", RawContent: "def save(self): ..."},
	}

	chunks := Chunk(objects, "import os", DefaultOptions())
	for _, c := range chunks {
		if !strings.Contains(c.Content, c.RawContent) {
			t.Fatalf("content %q does not contain raw_content %q", c.Content, c.RawContent)
		}
	}
}

func TestChunkPrefixesClassWithFileImports(t *testing.T) {
	objects := []model.CodeObject{
		{ID: "class1", ObjectType: model.ObjectClass, Signature: "class Order", RawContent: "class Order:\n    pass"},
	}
	chunks := Chunk(objects, "import os", DefaultOptions())
	if chunks[0].Content != "import os\nclass Order:\n    pass" {
		t.Fatalf("unexpected prefixed content: %q", chunks[0].Content)
	}
}

func TestChunkPrefixesMethodWithEnclosingClassSignature(t *testing.T) {
	objects := []model.CodeObject{
		{ID: "class1", ObjectType: model.ObjectClass, Signature: "class Order", RawContent: "class Order:\n    pass"},
		{ID: "method1", ParentID: "class1", ObjectType: model.ObjectMethod, QualifiedName: "Order.save", RawContent: "def save(self): ..."},
	}
	chunks := Chunk(objects, "import os", DefaultOptions())

	var method model.CodeObject
	for _, c := range chunks {
		if c.ID == "method1" {
			method = c
		}
	}
	if method.Content != "class Order\ndef save(self): ..." {
		t.Fatalf("unexpected method content: %q", method.Content)
	}
}

func TestChunkSummarizesLargeClassByMethodCount(t *testing.T) {
	objects := []model.CodeObject{
		{ID: "class1", ObjectType: model.ObjectClass, Signature: "class Big", RawContent: "class Big:\n    pass"},
	}
	var methodNames []string
	for i := 0; i < 31; i++ {
		name := "method" + string(rune('a'+i%26))
		objects = append(objects, model.CodeObject{
			ID: "m" + string(rune('a'+i%26)) + string(rune(i)), ParentID: "class1",
			ObjectType: model.ObjectMethod, QualifiedName: "Big." + name, RawContent: "def " + name + "(self): ...",
		})
		methodNames = append(methodNames, name)
	}

	chunks := Chunk(objects, "", DefaultOptions())

	var classChunk model.CodeObject
	for _, c := range chunks {
		if c.ID == "class1" {
			classChunk = c
		}
	}
	if !strings.Contains(classChunk.RawContent, "class Big") {
		t.Fatalf("expected summary to retain the class signature, got %q", classChunk.RawContent)
	}
	if strings.Contains(classChunk.RawContent, "pass") {
		t.Fatalf("expected summary to drop the original body, got %q", classChunk.RawContent)
	}
	for _, name := range methodNames[:3] {
		if !strings.Contains(classChunk.RawContent, name) {
			t.Fatalf("expected summary to list member name %q, got %q", name, classChunk.RawContent)
		}
	}
}

func TestChunkEmitsNonClassObjectsVerbatim(t *testing.T) {
	objects := []model.CodeObject{
		{ID: "fn1", ObjectType: model.ObjectFunction, QualifiedName: "helper", RawContent: "def helper(): ..."},
	}
	chunks := Chunk(objects, "", DefaultOptions())
	if chunks[0].Content != chunks[0].RawContent {
		t.Fatalf("expected verbatim content for a non-class object with no prefix")
	}
}
