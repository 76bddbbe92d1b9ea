// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package embedding

import "testing"

func TestLengthSortedBatchesRestoresOrder(t *testing.T) {
	texts := []string{"ccc", "a", "bbbbb", "dd"}
	b := newLengthSortedBatches(texts, 2)

	// sorted indices should be ascending by length: "a"(0)->1, "dd"(1)->3, "ccc"(2)->0, "bbbbb"(3)->2
	wantOrder := []int{1, 3, 0, 2}
	for i, idx := range b.order {
		if idx != wantOrder[i] {
			t.Fatalf("order[%d] = %d, want %d (order=%v)", i, idx, wantOrder[i], b.order)
		}
	}

	sortedVectors := make([][]float32, len(texts))
	for i, origIdx := range b.order {
		sortedVectors[i] = []float32{float32(origIdx)}
	}
	restored := b.restore(sortedVectors)
	for i := range texts {
		if int(restored[i][0]) != i {
			t.Fatalf("restore did not preserve original order at index %d: got %v", i, restored[i])
		}
	}
}

func TestLengthSortedBatchesRespectsSize(t *testing.T) {
	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	b := newLengthSortedBatches(texts, 2)
	if len(b.batches) != 3 {
		t.Fatalf("expected 3 batches of size<=2 for 5 items, got %d", len(b.batches))
	}
	for _, batch := range b.batches {
		if len(batch) > 2 {
			t.Fatalf("batch exceeds size limit: %d", len(batch))
		}
	}
}
