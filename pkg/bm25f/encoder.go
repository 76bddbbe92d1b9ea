// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package bm25f

import "github.com/codecontext/codecontext-core/pkg/tokenize"

// FieldWeights assigns a BM25F field weight to each named field of a
// CodeObject/DocumentNode. Higher weight raises a field's contribution to
// the fused score when a query token matches within it.
type FieldWeights map[string]float64

// DefaultFieldWeights returns the default per-field weights.
func DefaultFieldWeights() FieldWeights {
	return FieldWeights{
		"name":           15,
		"qualified_name": 12,
		"signature":      10,
		"docstring":      8,
		"content":        6,
		"filename":       4,
		"file_path":      2,
	}
}

// Config holds the tunable BM25F parameters.
type Config struct {
	FieldWeights FieldWeights
	K1           float64 // term-frequency saturation
	B            float64 // document-length normalization strength
	AvgDL        float64 // corpus-average document length (fixed scalar)
}

// DefaultConfig returns the default BM25F configuration.
func DefaultConfig() Config {
	return Config{
		FieldWeights: DefaultFieldWeights(),
		K1:           1.2,
		B:            0.75,
		AvgDL:        100.0,
	}
}

// Encoder builds BM25F sparse vectors for documents and queries.
type Encoder struct {
	cfg       Config
	tokenizer *tokenize.Tokenizer
}

// NewEncoder constructs an Encoder with the given configuration and
// tokenizer. A nil tokenizer creates a fresh default one.
func NewEncoder(cfg Config, tokenizer *tokenize.Tokenizer) *Encoder {
	if tokenizer == nil {
		tokenizer = tokenize.New()
	}
	return &Encoder{cfg: cfg, tokenizer: tokenizer}
}

// Fields is the named-field view of a document the encoder consumes. Any
// field absent from Config.FieldWeights is ignored.
type Fields map[string]string

// EncodeDocument builds the document-side sparse vector: for every field
// with configured weight w_f and content F, each token t with in-field
// frequency tf_f(t) contributes
//
//	w_f * (tf_f(t) * (k1+1)) / (tf_f(t) + k1*(1 - b + b*|F|/avg_dl))
//
// Contributions are summed across fields into a single index -> value map.
func (e *Encoder) EncodeDocument(fields Fields) SparseVector {
	out := make(SparseVector)

	for fieldName, weight := range e.cfg.FieldWeights {
		content, ok := fields[fieldName]
		if !ok || content == "" {
			continue
		}
		tokens := e.tokenizer.Tokenize(content)
		fieldLen := float64(len(tokens))
		if fieldLen == 0 {
			continue
		}

		freq := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freq[tok]++
		}

		norm := 1 - e.cfg.B + e.cfg.B*fieldLen/e.cfg.AvgDL
		for tok, tf := range freq {
			tff := float64(tf)
			contribution := weight * (tff * (e.cfg.K1 + 1)) / (tff + e.cfg.K1*norm)
			idx := HashToken(tok)
			out[idx] += contribution
		}
	}

	return out
}

// EncodeQuery builds the query-side sparse vector: every distinct query
// token is emitted with weight 1.0 and no IDF. IDF-like behavior is
// approximated by the store's inner-product against BM25F-weighted
// documents and by RRF bucketing.
func (e *Encoder) EncodeQuery(query string) SparseVector {
	out := make(SparseVector)
	for _, tok := range e.tokenizer.Tokenize(query) {
		out[HashToken(tok)] = 1.0
	}
	return out
}
