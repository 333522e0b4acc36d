// Package bm25 implements the BM25F sparse-vector encoder used alongside
// dense embeddings for hybrid retrieval: per-field tokenize ->
// term-frequency map -> BM25 formula -> weighted accumulation, with the
// standard k1/b/avgdl defaults.
package bm25

import (
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codecontext/codecontext/internal/checksum"
	"github.com/codecontext/codecontext/internal/tokenizer"
)

const (
	DefaultK1    = 1.2
	DefaultB     = 0.75
	DefaultAvgDL = 100.0

	stableHashCacheSize = 10000
)

var stableHashCache *lru.Cache[string, uint32]

func init() {
	c, err := lru.New[string, uint32](stableHashCacheSize)
	if err != nil {
		panic(err) // stableHashCacheSize is a positive constant; New cannot fail
	}
	stableHashCache = c
}

// stableHash derives a process-stable sparse-vector index from a
// token's xxHash64 content digest, taking the first 8 hex chars as a
// uint32 — the same digest already used for chunk ids and change
// detection, rather than a separate hash function just for this.
func stableHash(token string) uint32 {
	if cached, ok := stableHashCache.Get(token); ok {
		return cached
	}
	digest := checksum.DigestString(token)
	v, err := strconv.ParseUint(digest[:8], 16, 32)
	if err != nil {
		// DigestString always returns 16 lowercase hex chars.
		panic(err)
	}
	h := uint32(v)
	stableHashCache.Add(token, h)
	return h
}

// Encoder is a BM25F encoder over a fixed set of field weights.
type Encoder struct {
	FieldWeights map[string]float64
	K1           float64
	B            float64
	AvgDL        float64
}

// NewEncoder builds an Encoder with the original's defaults (k1=1.2,
// b=0.75, avgdl=100.0).
func NewEncoder(fieldWeights map[string]float64) *Encoder {
	return &Encoder{
		FieldWeights: fieldWeights,
		K1:           DefaultK1,
		B:            DefaultB,
		AvgDL:        DefaultAvgDL,
	}
}

// Encode scores a multi-field document into a sparse vector: per field,
// tokenize, compute raw term frequency, apply the BM25 term-frequency
// formula with document-length normalization against AvgDL, weight by
// the field's configured weight, and sum weighted scores per token
// across fields.
func (e *Encoder) Encode(document map[string]string) (indices []uint32, values []float64) {
	fieldTokens := make(map[string][]string, len(e.FieldWeights))
	totalTokens := 0
	for field := range e.FieldWeights {
		text := document[field]
		if text == "" {
			continue
		}
		tokens := tokenizer.Tokenize(text)
		fieldTokens[field] = tokens
		totalTokens += len(tokens)
	}

	dl := totalTokens
	if dl < 1 {
		dl = 1
	}

	tokenScores := make(map[string]float64)
	for field, weight := range e.FieldWeights {
		tokens := fieldTokens[field]
		if len(tokens) == 0 {
			continue
		}

		tfMap := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tfMap[tok]++
		}

		for tok, tf := range tfMap {
			numerator := float64(tf) * (e.K1 + 1)
			denominator := float64(tf) + e.K1*(1-e.B+e.B*float64(dl)/e.AvgDL)
			bm25TF := numerator / denominator
			tokenScores[tok] += weight * bm25TF
		}
	}

	indices = make([]uint32, 0, len(tokenScores))
	values = make([]float64, 0, len(tokenScores))
	for tok, score := range tokenScores {
		indices = append(indices, stableHash(tok))
		values = append(values, score)
	}
	return indices, values
}

// EncodeQuery scores a plain-text query into a sparse vector using raw
// term frequency (no BM25 normalization), matching the original's
// encode_query.
func (e *Encoder) EncodeQuery(query string) (indices []uint32, values []float64) {
	tokens := tokenizer.Tokenize(query)

	tfMap := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tfMap[tok]++
	}

	indices = make([]uint32, 0, len(tfMap))
	values = make([]float64, 0, len(tfMap))
	for tok, tf := range tfMap {
		indices = append(indices, stableHash(tok))
		values = append(values, float64(tf))
	}
	return indices, values
}
