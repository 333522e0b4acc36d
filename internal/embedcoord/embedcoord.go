// Package embedcoord batches passage embedding calls with dynamic batch
// sizing based on a running character budget per batch, and reports
// progress as batches complete. It is the sync engine's single point of
// contact with the embedding provider, so the provider's accelerator
// stays single-writer.
package embedcoord

import (
	"context"

	"github.com/codecontext/codecontext/internal/embedding"
	"github.com/codecontext/codecontext/internal/errs"
	"github.com/codecontext/codecontext/internal/model"
)

// DefaultMaxBatchChars bounds a single embedding call's total input
// size, keeping batches small when chunks are large and large when
// chunks are small.
const DefaultMaxBatchChars = 16000

// Progress reports coordinator progress for CLI feedback.
type Progress struct {
	BatchIndex      int
	ProcessedChunks int
	TotalChunks     int
}

// Coordinator batches texts into dynamically-sized groups before
// calling the embedding provider.
type Coordinator struct {
	provider      embedding.Provider
	maxBatchChars int
	progressCh    chan<- Progress
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMaxBatchChars overrides DefaultMaxBatchChars.
func WithMaxBatchChars(n int) Option {
	return func(c *Coordinator) { c.maxBatchChars = n }
}

// WithProgress attaches a channel the coordinator sends Progress
// updates to after every batch. The caller owns closing it.
func WithProgress(ch chan<- Progress) Option {
	return func(c *Coordinator) { c.progressCh = ch }
}

// New builds a Coordinator around provider.
func New(provider embedding.Provider, opts ...Option) *Coordinator {
	c := &Coordinator{provider: provider, maxBatchChars: DefaultMaxBatchChars}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EmbedPassages embeds texts in input order, splitting into batches
// dynamically sized so each batch's total character count stays near
// maxBatchChars: long chunks get small batches, short chunks get large
// ones, bounding both per-call latency and peak memory.
func (c *Coordinator) EmbedPassages(ctx context.Context, texts []string, instr model.InstructionType) ([][]float32, error) {
	total := len(texts)
	if total == 0 {
		return nil, nil
	}

	results := make([][]float32, 0, total)
	processed := 0
	batchIndex := 0

	start := 0
	for start < total {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		end := c.nextBatchEnd(texts, start)
		batch := texts[start:end]

		embeddings, err := c.provider.Embed(ctx, batch, instr)
		if err != nil {
			return nil, errs.Wrap(errs.Embedding, "embedding batch failed", err)
		}
		results = append(results, embeddings...)

		processed += len(batch)
		batchIndex++
		if c.progressCh != nil {
			c.progressCh <- Progress{BatchIndex: batchIndex, ProcessedChunks: processed, TotalChunks: total}
		}

		start = end
	}

	return results, nil
}

// nextBatchEnd grows the batch starting at start until adding another
// text would exceed maxBatchChars, always including at least one text
// so a single oversized chunk still makes progress.
func (c *Coordinator) nextBatchEnd(texts []string, start int) int {
	budget := c.maxBatchChars
	end := start + 1
	budget -= len(texts[start])

	for end < len(texts) {
		next := len(texts[end])
		if next > budget {
			break
		}
		budget -= next
		end++
	}
	return end
}
