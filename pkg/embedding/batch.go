// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package embedding

import "sort"

// lengthSortedBatches groups texts into batches of at most batchSize,
// sorted ascending by length so same-sized texts land in the same
// request (better throughput for providers that pad to the longest
// member of a batch), while returning the permutation needed to restore
// callers' original ordering even when a provider sorts by length for
// throughput.
type lengthSortedBatches struct {
	order   []int // sorted index -> original index
	batches [][]int
}

func newLengthSortedBatches(texts []string, batchSize int) lengthSortedBatches {
	if batchSize <= 0 {
		batchSize = len(texts)
	}
	order := make([]int, len(texts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return len(texts[order[i]]) < len(texts[order[j]])
	})

	var batches [][]int
	for i := 0; i < len(order); i += batchSize {
		end := i + batchSize
		if end > len(order) {
			end = len(order)
		}
		batches = append(batches, order[i:end])
	}
	return lengthSortedBatches{order: order, batches: batches}
}

// restore places per-sorted-index vectors back into original input order.
func (b lengthSortedBatches) restore(sortedVectors [][]float32) [][]float32 {
	out := make([][]float32, len(b.order))
	for sortedIdx, originalIdx := range b.order {
		out[originalIdx] = sortedVectors[sortedIdx]
	}
	return out
}
