// Package embedding defines the embedding provider surface and its two
// implementations: an HTTP sidecar client in httpprovider and a
// deterministic test double in mockprovider.
package embedding

import (
	"context"

	"github.com/codecontext/codecontext/internal/model"
)

// Provider converts text into dense vectors for BM25F-complementary
// semantic search.
type Provider interface {
	// Initialize prepares the provider (e.g. ensuring a sidecar process
	// is running and healthy) before the first Embed call.
	Initialize(ctx context.Context) error

	// Embed converts texts into dense vectors, steered by instr toward
	// the query-vs-passage / code-vs-NL instruction the model expects.
	Embed(ctx context.Context, texts []string, instr model.InstructionType) ([][]float32, error)

	// VectorDim returns the dimensionality of vectors this provider
	// produces.
	VectorDim() int
}
