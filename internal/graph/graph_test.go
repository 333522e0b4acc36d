package graph

import (
	"testing"

	"github.com/codecontext/codecontext/internal/model"
)

func rel(from, to string, kind model.RelationshipKind) model.Relationship {
	return model.Relationship{SourceID: from, TargetID: to, Kind: kind, Resolved: true}
}

func TestExpandFindsOneHopNeighbors(t *testing.T) {
	g := Build([]model.Relationship{
		rel("a", "b", model.RelCalls),
		rel("b", "c", model.RelCalls),
	})

	expansion := g.Expand([]string{"a"}, 1)
	if len(expansion) != 1 || expansion[0] != "b" {
		t.Fatalf("expected [b], got %v", expansion)
	}
}

func TestExpandRespectsHopLimit(t *testing.T) {
	g := Build([]model.Relationship{
		rel("a", "b", model.RelCalls),
		rel("b", "c", model.RelCalls),
		rel("c", "d", model.RelCalls),
	})

	expansion := g.Expand([]string{"a"}, 2)
	found := map[string]bool{}
	for _, id := range expansion {
		found[id] = true
	}
	if !found["b"] || !found["c"] || found["d"] {
		t.Fatalf("expected {b,c} within 2 hops, got %v", expansion)
	}
}

func TestExpandExcludesSeeds(t *testing.T) {
	g := Build([]model.Relationship{
		rel("a", "b", model.RelCalls),
		rel("b", "a", model.RelCalls),
	})

	expansion := g.Expand([]string{"a", "b"}, 3)
	if len(expansion) != 0 {
		t.Fatalf("expected no expansion beyond seed set, got %v", expansion)
	}
}

func TestExpandZeroHopsReturnsNothing(t *testing.T) {
	g := Build([]model.Relationship{rel("a", "b", model.RelCalls)})
	if expansion := g.Expand([]string{"a"}, 0); expansion != nil {
		t.Fatalf("expected nil expansion for 0 hops, got %v", expansion)
	}
}

func TestUnresolvedRelationshipsAreSkipped(t *testing.T) {
	g := Build([]model.Relationship{
		{SourceID: "a", TargetID: "ghost", TargetName: "ghost", Kind: model.RelCalls, Resolved: false},
	})
	if expansion := g.Expand([]string{"a"}, 3); expansion != nil {
		t.Fatalf("expected no expansion through an unresolved edge, got %v", expansion)
	}
}

func TestPPRRanksDirectNeighborAboveDistantNode(t *testing.T) {
	g := Build([]model.Relationship{
		rel("seed", "near", model.RelCalls),
		rel("near", "far", model.RelCalls),
		rel("far", "farther", model.RelCalls),
	})

	scores := g.PPR([]string{"seed"})
	if scores["near"] <= scores["far"] {
		t.Fatalf("expected near > far, got near=%v far=%v", scores["near"], scores["far"])
	}
	if scores["far"] <= scores["farther"] {
		t.Fatalf("expected far > farther, got far=%v farther=%v", scores["far"], scores["farther"])
	}
}

func TestPPREmptySeedsReturnsNil(t *testing.T) {
	g := Build(nil)
	if scores := g.PPR(nil); scores != nil {
		t.Fatalf("expected nil scores for empty seed set, got %v", scores)
	}
}
