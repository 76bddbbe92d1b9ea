// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package vectorstore

import (
	"context"
	"testing"

	"github.com/codecontext/codecontext-core/pkg/bm25f"
)

func TestMemoryStoreUpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	points := []Point{
		{
			ID:      "a",
			Dense:   []float32{1, 0, 0},
			Sparse:  bm25f.SparseVector{1: 2.0},
			Payload: map[string]any{"language": "go", "file_path": "a.go"},
		},
		{
			ID:      "b",
			Dense:   []float32{0, 1, 0},
			Sparse:  bm25f.SparseVector{2: 1.0},
			Payload: map[string]any{"language": "go", "file_path": "b.go"},
		},
	}
	if err := store.Upsert(ctx, points); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil || count != 2 {
		t.Fatalf("Count = %d, %v, want 2", count, err)
	}

	results, err := store.Search(ctx, SearchRequest{
		DenseVector:  []float32{1, 0, 0},
		SparseVector: bm25f.SparseVector{1: 1.0},
		Limit:        2,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].ID != "a" {
		t.Fatalf("expected closest match 'a' ranked first, got %q", results[0].ID)
	}
}

func TestMemoryStoreDeleteByFilePath(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	store.Upsert(ctx, []Point{
		{ID: "a", Dense: []float32{1, 0}, Payload: map[string]any{"file_path": "x.go"}},
		{ID: "b", Dense: []float32{0, 1}, Payload: map[string]any{"file_path": "y.go"}},
	})
	if err := store.DeleteByFilePath(ctx, "x.go"); err != nil {
		t.Fatalf("DeleteByFilePath: %v", err)
	}
	count, _ := store.Count(ctx)
	if count != 1 {
		t.Fatalf("Count = %d, want 1", count)
	}
}

func TestMemoryStoreSearchRespectsFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	store.Upsert(ctx, []Point{
		{ID: "go-obj", Dense: []float32{1, 0}, Payload: map[string]any{"language": "go"}},
		{ID: "py-obj", Dense: []float32{1, 0}, Payload: map[string]any{"language": "python"}},
	})

	results, err := store.Search(ctx, SearchRequest{
		DenseVector: []float32{1, 0},
		Limit:       10,
		Filter:      Filter{Language: "python"},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range results {
		if r.Payload["language"] != "python" {
			t.Fatalf("filter leaked non-matching result: %+v", r)
		}
	}
}

func TestMemoryStoreClosedRejectsOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Close()

	if err := store.Upsert(ctx, []Point{{ID: "a"}}); err == nil {
		t.Fatal("expected error upserting into closed store")
	}
	if _, err := store.Search(ctx, SearchRequest{Limit: 1}); err == nil {
		t.Fatal("expected error searching closed store")
	}
}
