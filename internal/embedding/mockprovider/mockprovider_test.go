package mockprovider

import (
	"context"
	"errors"
	"testing"

	"github.com/codecontext/codecontext/internal/model"
)

func TestEmbedIsDeterministic(t *testing.T) {
	p := New(16)
	a, err := p.Embed(context.Background(), []string{"hello"}, model.InstructionNL2CodeQuery)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Embed(context.Background(), []string{"hello"}, model.InstructionNL2CodeQuery)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("expected deterministic vectors, differ at index %d: %v != %v", i, a[0][i], b[0][i])
		}
	}
}

func TestEmbedDistinguishesInstructionType(t *testing.T) {
	p := New(16)
	query, _ := p.Embed(context.Background(), []string{"hello"}, model.InstructionNL2CodeQuery)
	passage, _ := p.Embed(context.Background(), []string{"hello"}, model.InstructionNL2CodePassage)

	same := true
	for i := range query[0] {
		if query[0][i] != passage[0][i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different instruction types to produce different vectors for the same text")
	}
}

func TestEmbedProducesConfiguredDimension(t *testing.T) {
	p := New(384)
	vectors, err := p.Embed(context.Background(), []string{"a", "b"}, model.InstructionQAQuery)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range vectors {
		if len(v) != 384 {
			t.Fatalf("expected 384-dim vector, got %d", len(v))
		}
	}
}

func TestEmbedReturnsConfiguredError(t *testing.T) {
	p := New(8)
	p.SetEmbedError(errors.New("boom"))
	_, err := p.Embed(context.Background(), []string{"a"}, model.InstructionQAQuery)
	if err == nil {
		t.Fatal("expected configured error to be returned")
	}
}

func TestVectorDimMatchesConstructor(t *testing.T) {
	p := New(42)
	if p.VectorDim() != 42 {
		t.Fatalf("expected 42, got %d", p.VectorDim())
	}
}
