// Package mockprovider implements embedding.Provider deterministically,
// for tests that need stable vectors without a running sidecar: it
// hashes the input and expands the digest into a fixed-dimension
// vector.
package mockprovider

import (
	"context"
	"sync"

	"github.com/codecontext/codecontext/internal/checksum"
	"github.com/codecontext/codecontext/internal/model"
)

// Provider generates deterministic embeddings by hashing input text.
// Safe for concurrent use.
type Provider struct {
	mu        sync.Mutex
	dimension int
	embedErr  error
}

// New creates a mock provider producing vectors of the given
// dimension.
func New(dimension int) *Provider {
	return &Provider{dimension: dimension}
}

// SetEmbedError configures Embed to fail with err on every call.
func (p *Provider) SetEmbedError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.embedErr = err
}

// Initialize is a no-op; the mock provider has no external dependency
// to warm up.
func (p *Provider) Initialize(ctx context.Context) error {
	return nil
}

// Embed hashes each text (combined with instr, so the same text under
// a different instruction produces a distinct vector) into a
// deterministic float32 vector in [-1, 1].
func (p *Provider) Embed(ctx context.Context, texts []string, instr model.InstructionType) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.embedErr != nil {
		return nil, p.embedErr
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = p.vectorFor(string(instr) + ":" + text)
	}
	return vectors, nil
}

func (p *Provider) vectorFor(seed string) []float32 {
	vector := make([]float32, p.dimension)
	block := []byte(seed)
	for j := 0; j < p.dimension; j++ {
		digest := checksum.Digest(append(block, byte(j), byte(j>>8)))
		raw := digest[:8]
		var n uint32
		for k := 0; k < 8; k += 2 {
			n = n<<8 | uint32(hexNibble(raw[k]))<<4 | uint32(hexNibble(raw[k+1]))
		}
		vector[j] = (float32(n)/float32(1<<32))*2.0 - 1.0
	}
	return vector
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return 0
	}
}

// VectorDim returns the configured embedding dimensionality.
func (p *Provider) VectorDim() int {
	return p.dimension
}
