// Package httpprovider implements embedding.Provider against an HTTP
// embedding sidecar process, configured via the DEVICE/MODEL/BATCH_SIZE
// environment variables (read by the sidecar itself, not this client).
// It health-checks the sidecar once on Initialize, then posts batches
// to it for every Embed call.
package httpprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/codecontext/codecontext/internal/errs"
	"github.com/codecontext/codecontext/internal/model"
)

// Config configures the sidecar client.
type Config struct {
	Endpoint  string // e.g. "http://localhost:8121/embed"
	Dimension int
	// HealthTimeout bounds how long Initialize waits for the sidecar to
	// respond healthy before giving up.
	HealthTimeout time.Duration
}

// Provider calls an already-running HTTP embedding sidecar.
type Provider struct {
	cfg    Config
	client *http.Client
}

// New constructs a Provider. Initialize must be called before Embed.
func New(cfg Config) *Provider {
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 30 * time.Second
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Initialize waits for the sidecar to answer a health probe. The
// sidecar process itself is started and configured externally (via
// DEVICE/MODEL/BATCH_SIZE); this provider never launches it.
func (p *Provider) Initialize(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.HealthTimeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	if p.isHealthy(ctx) {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return errs.Wrap(errs.Embedding, "timed out waiting for embedding sidecar to become healthy", ctx.Err())
		case <-ticker.C:
			if p.isHealthy(ctx) {
				return nil
			}
		}
	}
}

func (p *Provider) isHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.Endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

type embedRequest struct {
	Texts       []string `json:"texts"`
	Instruction string   `json:"instruction"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed POSTs texts and the instruction tag to the sidecar's /embed
// endpoint and returns the resulting dense vectors.
func (p *Provider) Embed(ctx context.Context, texts []string, instr model.InstructionType) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Texts: texts, Instruction: string(instr)})
	if err != nil {
		return nil, errs.Wrap(errs.Embedding, "failed to marshal embedding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.Embedding, "failed to build embedding request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.Embedding, "embedding request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.New(errs.Embedding, fmt.Sprintf("embedding sidecar returned status %d", resp.StatusCode))
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errs.Wrap(errs.Embedding, "failed to decode embedding response", err)
	}
	return parsed.Embeddings, nil
}

// VectorDim returns the configured embedding dimensionality.
func (p *Provider) VectorDim() int {
	return p.cfg.Dimension
}
