// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package retrieve

import (
	"context"
	"testing"

	"github.com/codecontext/codecontext-core/pkg/bm25f"
	"github.com/codecontext/codecontext-core/pkg/codeobject"
	"github.com/codecontext/codecontext-core/pkg/embedding"
	"github.com/codecontext/codecontext-core/pkg/tokenize"
	"github.com/codecontext/codecontext-core/pkg/vectorstore"
)

func newTestRetriever(t *testing.T, store vectorstore.Store, cfg Config) *Retriever {
	t.Helper()
	tokenizer := tokenize.New()
	encoder := bm25f.NewEncoder(bm25f.DefaultConfig(), tokenizer)
	embedder := embedding.NewMockProvider(16)
	return New(store, embedder, encoder, tokenizer, cfg)
}

func TestBoostAppliesTypeAndNameAdditively(t *testing.T) {
	cfg := DefaultConfig()
	r := newTestRetriever(t, vectorstore.NewMemoryStore(), cfg)

	candidates := map[string]*candidate{
		"fn": {id: "fn", score: 0.02, payload: map[string]any{
			"object_type": "function", "name": "Greet", "score_weight": 1.0, "file_path": "a.go",
		}},
		"var": {id: "var", score: 0.02, payload: map[string]any{
			"object_type": "variable", "name": "count", "score_weight": 1.0, "file_path": "b.go",
		}},
	}

	boosted := r.boost(candidates, "greet")
	if len(boosted) != 2 {
		t.Fatalf("expected 2 boosted candidates, got %d", len(boosted))
	}
	// "fn" should win: it gets both type_boost (function=0.10) and
	// name_boost (exact match, 0.25); "var" gets neither.
	if boosted[0].c.id != "fn" {
		t.Fatalf("expected fn to rank first, got %s (final=%v) vs %s (final=%v)",
			boosted[0].c.id, boosted[0].final, boosted[1].c.id, boosted[1].final)
	}
	wantFn := 0.02 * (1 + 0.10 + 0.25) * 1.0
	if diff := boosted[0].final - wantFn; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("fn final = %v, want %v", boosted[0].final, wantFn)
	}
	wantVar := 0.02 * (1 + 0.00 + 0) * 1.0
	if diff := boosted[1].final - wantVar; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("var final = %v, want %v", boosted[1].final, wantVar)
	}
}

func TestBoostScoreWeightScalesFinal(t *testing.T) {
	cfg := DefaultConfig()
	r := newTestRetriever(t, vectorstore.NewMemoryStore(), cfg)

	candidates := map[string]*candidate{
		"heavy": {id: "heavy", score: 0.01, payload: map[string]any{"score_weight": 1.2, "file_path": "a.go"}},
		"light": {id: "light", score: 0.01, payload: map[string]any{"score_weight": 0.1, "file_path": "a.go"}},
	}
	boosted := r.boost(candidates, "")
	if boosted[0].c.id != "heavy" {
		t.Fatalf("expected heavy (score_weight=1.2) to outrank light (score_weight=0.1)")
	}
}

func TestDiversifyEnforcesMaxChunksPerFileBeyondPreservedHead(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxChunksPerFile = 1
	cfg.DiversityPreserveTopN = 1
	r := newTestRetriever(t, vectorstore.NewMemoryStore(), cfg)

	boosted := []scoredCandidate{
		{c: &candidate{id: "a1", payload: map[string]any{"file_path": "a.go"}}, final: 0.9},
		{c: &candidate{id: "a2", payload: map[string]any{"file_path": "a.go"}}, final: 0.8},
		{c: &candidate{id: "a3", payload: map[string]any{"file_path": "a.go"}}, final: 0.7},
		{c: &candidate{id: "b1", payload: map[string]any{"file_path": "b.go"}}, final: 0.6},
	}

	kept := r.diversify(boosted, 10)
	var ids []string
	for _, s := range kept {
		ids = append(ids, s.c.id)
	}
	// a1 is preserved (top-1) and counts toward a.go's MaxChunksPerFile=1,
	// so a2 and a3 (further a.go results) are dropped and b1 is kept.
	want := []string{"a1", "b1"}
	if len(ids) != len(want) {
		t.Fatalf("kept = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("kept[%d] = %s, want %s (full: %v)", i, ids[i], want[i], ids)
		}
	}
}

func TestDiversifyTruncatesToLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxChunksPerFile = 10
	r := newTestRetriever(t, vectorstore.NewMemoryStore(), cfg)

	var boosted []scoredCandidate
	for i := 0; i < 5; i++ {
		boosted = append(boosted, scoredCandidate{
			c:     &candidate{id: string(rune('a' + i)), payload: map[string]any{"file_path": "x.go"}},
			final: float64(5 - i),
		})
	}
	kept := r.diversify(boosted, 2)
	if len(kept) != 2 {
		t.Fatalf("expected limit to truncate to 2, got %d", len(kept))
	}
}

func TestExpandGraphPropagatesToNewNeighborAndAppliesThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GraphScoreWeight = 0.5
	cfg.GraphPPRThreshold = 0 // keep everything for this assertion
	r := newTestRetriever(t, vectorstore.NewMemoryStore(), cfg)

	seedScore := 0.02
	candidates := map[string]*candidate{
		"seed": {id: "seed", score: seedScore, payload: map[string]any{
			"file_path": "a.go",
			"outgoing_relationships": []map[string]any{
				{"id": "neighbor", "relation_type": string(codeobject.RelCalls), "name": "Helper", "object_type": "function", "file_path": "b.go", "line": 10},
			},
		}},
	}
	r.expandGraph(candidates, []string{"seed"})

	neighbor, ok := candidates["neighbor"]
	if !ok {
		t.Fatalf("expected graph expansion to add neighbor, got %v", candidates)
	}
	want := seedScore * cfg.GraphScoreWeight * 1.0 // CALLS weight defaults to 1.0
	if diff := neighbor.score - want; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("neighbor score = %v, want %v", neighbor.score, want)
	}
	if neighbor.payload["name"] != "Helper" {
		t.Errorf("neighbor payload missing hydrated name: %v", neighbor.payload)
	}
}

func TestExpandGraphDropsCandidatesBelowThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GraphScoreWeight = 0.3
	cfg.GraphPPRThreshold = 1.0 // impossibly high: every propagated-only neighbor should be dropped
	r := newTestRetriever(t, vectorstore.NewMemoryStore(), cfg)

	candidates := map[string]*candidate{
		"seed": {id: "seed", score: 0.001, payload: map[string]any{
			"file_path": "a.go",
			"outgoing_relationships": []map[string]any{
				{"id": "weak-neighbor", "relation_type": string(codeobject.RelReferences), "name": "x", "object_type": "variable", "file_path": "c.go"},
			},
		}},
	}
	r.expandGraph(candidates, []string{"seed"})
	if _, ok := candidates["weak-neighbor"]; ok {
		t.Errorf("expected weak-neighbor to be dropped below threshold")
	}
	if _, ok := candidates["seed"]; ok {
		t.Errorf("expected the low-scoring seed itself to be dropped too")
	}
}

func TestRetrieveEndToEndReturnsWithinLimit(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	cfg := DefaultConfig()
	r := newTestRetriever(t, store, cfg)
	tokenizer := tokenize.New()
	encoder := bm25f.NewEncoder(bm25f.DefaultConfig(), tokenizer)
	embedder := embedding.NewMockProvider(16)

	ctx := context.Background()
	var points []vectorstore.Point
	for i, content := range []string{
		"func Greet(name string) string { return \"hi \" + name }",
		"func Farewell(name string) string { return \"bye \" + name }",
		"func Add(a, b int) int { return a + b }",
	} {
		dense, _ := embedder.Embed(ctx, []string{content}, embedding.DocumentPassage)
		sparse := encoder.EncodeDocument(bm25f.Fields{"content": content})
		points = append(points, vectorstore.Point{
			ID:      string(rune('a' + i)),
			Dense:   dense[0],
			Sparse:  sparse,
			Payload: map[string]any{"object_type": "function", "file_path": "greeter.go", "content": content, "score_weight": 1.0},
		})
	}
	if err := store.Upsert(ctx, points); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	hits, err := r.Retrieve(ctx, Request{Query: "greet", Limit: 2})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(hits) > 2 {
		t.Fatalf("expected at most 2 hits, got %d", len(hits))
	}
}

func TestRetrieveRejectsEmptyQuery(t *testing.T) {
	r := newTestRetriever(t, vectorstore.NewMemoryStore(), DefaultConfig())
	if _, err := r.Retrieve(context.Background(), Request{Query: ""}); err == nil {
		t.Errorf("expected an error for an empty query")
	}
}
