package httpprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codecontext/codecontext/internal/model"
)

func TestInitializeSucceedsWhenSidecarIsHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := New(Config{Endpoint: srv.URL, Dimension: 8, HealthTimeout: time.Second})
	if err := p.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
}

func TestInitializeTimesOutWhenSidecarNeverHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := New(Config{Endpoint: srv.URL, Dimension: 8, HealthTimeout: 300 * time.Millisecond})
	if err := p.Initialize(context.Background()); err == nil {
		t.Fatal("expected Initialize to time out")
	}
}

func TestEmbedSendsTextsAndInstructionAndParsesResponse(t *testing.T) {
	var gotBody embedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatal(err)
		}
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{0.1, 0.2}, {0.3, 0.4}}})
	}))
	defer srv.Close()

	p := New(Config{Endpoint: srv.URL, Dimension: 2})
	vectors, err := p.Embed(context.Background(), []string{"a", "b"}, model.InstructionNL2CodeQuery)
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if gotBody.Instruction != string(model.InstructionNL2CodeQuery) {
		t.Errorf("expected instruction to be forwarded, got %q", gotBody.Instruction)
	}
	if len(gotBody.Texts) != 2 {
		t.Errorf("expected 2 texts forwarded, got %v", gotBody.Texts)
	}
}

func TestEmbedReturnsErrorOnNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := New(Config{Endpoint: srv.URL, Dimension: 2})
	_, err := p.Embed(context.Background(), []string{"a"}, model.InstructionNL2CodeQuery)
	if err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}

func TestVectorDimReturnsConfiguredDimension(t *testing.T) {
	p := New(Config{Dimension: 384})
	if p.VectorDim() != 384 {
		t.Fatalf("expected VectorDim 384, got %d", p.VectorDim())
	}
}
