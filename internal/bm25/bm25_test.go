package bm25

import "testing"

func TestEncodeEmptyDocumentReturnsEmptyVector(t *testing.T) {
	enc := NewEncoder(map[string]float64{"content": 1.0})
	indices, values := enc.Encode(map[string]string{})
	if len(indices) != 0 || len(values) != 0 {
		t.Fatalf("expected empty vector for empty document, got %v / %v", indices, values)
	}
}

func TestEncodeProducesParallelIndicesAndValues(t *testing.T) {
	enc := NewEncoder(map[string]float64{"name": 2.0, "content": 1.0})
	doc := map[string]string{
		"name":    "getUserById",
		"content": "def getUserById(id): return db.fetch(id)",
	}
	indices, values := enc.Encode(doc)
	if len(indices) != len(values) {
		t.Fatalf("indices/values length mismatch: %d != %d", len(indices), len(values))
	}
	if len(indices) == 0 {
		t.Fatal("expected a non-empty sparse vector")
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	enc := NewEncoder(map[string]float64{"content": 1.0})
	doc := map[string]string{"content": "OrderService validateOrder createOrder"}

	i1, v1 := enc.Encode(doc)
	i2, v2 := enc.Encode(doc)

	m1 := toMap(i1, v1)
	m2 := toMap(i2, v2)
	if len(m1) != len(m2) {
		t.Fatalf("non-deterministic vector length: %d != %d", len(m1), len(m2))
	}
	for k, v := range m1 {
		if m2[k] != v {
			t.Fatalf("non-deterministic score for index %d: %v != %v", k, v, m2[k])
		}
	}
}

func TestEncodeWeightsFieldsIndependently(t *testing.T) {
	shared := "validateOrder"
	lowWeight := NewEncoder(map[string]float64{"content": 1.0})
	highWeight := NewEncoder(map[string]float64{"content": 5.0})

	doc := map[string]string{"content": shared}

	_, lowValues := lowWeight.Encode(doc)
	_, highValues := highWeight.Encode(doc)

	if len(lowValues) == 0 || len(highValues) == 0 {
		t.Fatal("expected non-empty vectors")
	}
	if highValues[0] <= lowValues[0] {
		t.Fatalf("expected higher field weight to produce a higher score: %v <= %v", highValues[0], lowValues[0])
	}
}

func TestEncodeQueryUsesRawTermFrequency(t *testing.T) {
	enc := NewEncoder(map[string]float64{"content": 1.0})
	indices, values := enc.EncodeQuery("order order validate")

	total := 0.0
	for _, v := range values {
		total += v
	}
	// Three tokens collapse to two distinct terms: "order" (tf=2), "validate" (tf=1).
	if len(indices) != 2 {
		t.Fatalf("expected 2 distinct query terms, got %d", len(indices))
	}
	if total != 3 {
		t.Fatalf("expected raw term frequencies to sum to 3, got %v", total)
	}
}

func TestEncodeQueryEmptyStringReturnsEmptyVector(t *testing.T) {
	enc := NewEncoder(map[string]float64{"content": 1.0})
	indices, values := enc.EncodeQuery("")
	if len(indices) != 0 || len(values) != 0 {
		t.Fatalf("expected empty vector for empty query, got %v / %v", indices, values)
	}
}

func TestStableHashIsProcessStableAcrossCalls(t *testing.T) {
	a := stableHash("OrderService")
	b := stableHash("OrderService")
	if a != b {
		t.Fatalf("stableHash not stable: %d != %d", a, b)
	}
}

func toMap(indices []uint32, values []float64) map[uint32]float64 {
	m := make(map[uint32]float64, len(indices))
	for i, idx := range indices {
		m[idx] = values[i]
	}
	return m
}
