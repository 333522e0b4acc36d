// Package graph builds the in-memory code relationship graph used for
// search-result expansion: CALLS/REFERENCES/INHERITS/CONTAINS edges
// traversed breadth-first up to a hop limit, plus a truncated power-
// iteration PPR approximation rooted at the search result set. Nodes
// and edges come straight from internal/model.Relationship, which the
// parser stage already produces while walking each file's AST — there
// is no separate graph-extraction pass here.
package graph

import (
	dgraph "github.com/dominikbraun/graph"

	"github.com/codecontext/codecontext/internal/model"
)

// defaultPPRIterations bounds the truncated power iteration: an
// approximation, not an exact eigenvector solve.
const defaultPPRIterations = 20

// defaultDamping is the share of each node's score propagated along its
// out-edges at every iteration; the remaining 1-defaultDamping goes back
// to the seed distribution.
const defaultDamping = 0.85

// Graph is the in-memory, read-only view of a project's relationship
// graph, rebuilt from scratch each time the retriever needs it (the
// internal/state checkpoint, not this package, is the durable source of
// truth).
type Graph struct {
	g       dgraph.Graph[string, string]
	forward map[string][]string // adjacency for expansion + PPR transitions
}

// Build constructs a Graph from the relationships produced during
// indexing. Edges whose target is unresolved (Relationship.Resolved ==
// false) are skipped: there is no node on the other end to traverse to.
func Build(relationships []model.Relationship) *Graph {
	g := dgraph.New(func(id string) string { return id }, dgraph.Directed())
	forward := make(map[string][]string)

	for _, rel := range relationships {
		if !rel.Resolved {
			continue
		}
		_ = g.AddVertex(rel.SourceID)
		_ = g.AddVertex(rel.TargetID)
		_ = g.AddEdge(rel.SourceID, rel.TargetID)
		forward[rel.SourceID] = append(forward[rel.SourceID], rel.TargetID)
	}

	return &Graph{g: g, forward: forward}
}

// Expand returns every node reachable from seeds within maxHops,
// breadth-first, excluding the seeds themselves. maxHops <= 0 returns
// an empty expansion.
func (gr *Graph) Expand(seeds []string, maxHops int) []string {
	if maxHops <= 0 || len(seeds) == 0 {
		return nil
	}

	seedSet := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		seedSet[s] = true
	}

	visited := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		visited[s] = true
	}

	frontier := append([]string(nil), seeds...)
	var expansion []string

	for hop := 0; hop < maxHops && len(frontier) > 0; hop++ {
		var next []string
		for _, id := range frontier {
			for _, neighbor := range gr.forward[id] {
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				if !seedSet[neighbor] {
					expansion = append(expansion, neighbor)
				}
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	return expansion
}

// PPR approximates personalized PageRank rooted at seeds via truncated
// power iteration: score_{t+1}(v) = (1-d)*restart(v) + d*sum over u->v
// of score_t(u)/outdegree(u), for at most defaultPPRIterations rounds.
// Scores are restricted to nodes reachable from seeds; anything never
// visited gets no entry (equivalent to a zero score).
func (gr *Graph) PPR(seeds []string) map[string]float64 {
	if len(seeds) == 0 {
		return nil
	}

	restart := make(map[string]float64, len(seeds))
	mass := 1.0 / float64(len(seeds))
	for _, s := range seeds {
		restart[s] += mass
	}

	nodes := gr.reachableNodes(seeds)
	scores := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		scores[n] = restart[n]
	}

	outdegree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		outdegree[n] = len(gr.forward[n])
	}

	for iter := 0; iter < defaultPPRIterations; iter++ {
		next := make(map[string]float64, len(nodes))
		for _, n := range nodes {
			next[n] = (1 - defaultDamping) * restart[n]
		}
		for _, n := range nodes {
			deg := outdegree[n]
			if deg == 0 {
				continue
			}
			share := defaultDamping * scores[n] / float64(deg)
			for _, target := range gr.forward[n] {
				if _, ok := next[target]; ok {
					next[target] += share
				}
			}
		}
		scores = next
	}

	return scores
}

// reachableNodes collects every node reachable from seeds (seeds
// included), used to bound PPR's working set to the expanded
// neighborhood rather than the whole graph.
func (gr *Graph) reachableNodes(seeds []string) []string {
	visited := make(map[string]bool)
	var order []string
	frontier := append([]string(nil), seeds...)
	for _, s := range seeds {
		if !visited[s] {
			visited[s] = true
			order = append(order, s)
		}
	}
	for len(frontier) > 0 {
		var next []string
		for _, id := range frontier {
			for _, neighbor := range gr.forward[id] {
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				order = append(order, neighbor)
				next = append(next, neighbor)
			}
		}
		frontier = next
	}
	return order
}
