// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package vectorstore

import (
	"context"
	"errors"
	"math"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codecontext/codecontext-core/pkg/bm25f"
	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

// errClosed is returned by any operation on a store that has been Closed.
var errClosed = errors.New("vectorstore: store is closed")

// Fusion selects how dense and sparse candidate lists are combined into a
// single ranked result set.
type Fusion string

const (
	FusionRRF      Fusion = "rrf"
	FusionDBSF     Fusion = "dbsf"
	FusionWeighted Fusion = "weighted"
)

// RRF tuning constants, fixed by contract rather than configurable: moving
// them changes the meaning of a stored score_weight's downstream boosting.
const (
	rrfK                  = 60
	densePrefetchMultiple = 7.0
	sparsePrefetchMultiple = 3.0
)

// Point is a single upsertable unit: a dense vector, a sparse vector keyed
// by bm25f.HashToken index, and an arbitrary JSON-like payload.
type Point struct {
	ID      string
	Dense   []float32
	Sparse  bm25f.SparseVector
	Payload map[string]any
}

// Filter narrows a search or delete to points whose payload matches.
// A zero-value field is not applied. ProjectID is not matched against the
// payload: each project has its own collection.
type Filter struct {
	Language     string
	FilePathGlob string
	ObjectType   string
	ProjectID    string
}

// Match reports whether a point's payload satisfies the filter.
func (f Filter) Match(payload map[string]any) bool {
	if f.Language != "" && str(payload["language"]) != f.Language {
		return false
	}
	if f.ObjectType != "" && str(payload["object_type"]) != f.ObjectType {
		return false
	}
	if f.FilePathGlob != "" {
		ok, err := doublestar.Match(f.FilePathGlob, str(payload["file_path"]))
		if err != nil || !ok {
			return false
		}
	}
	return true
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// SearchRequest is the query side of the contract.
type SearchRequest struct {
	DenseVector  []float32
	SparseVector bm25f.SparseVector
	Limit        int
	Filter       Filter
	Fusion       Fusion
}

// Result is a single fused search hit.
type Result struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// Store is the VectorStore contract. Implementations hold one collection
// per project, named via CollectionName.
type Store interface {
	// Upsert inserts or replaces points. Re-upserting an existing ID
	// replaces it in place.
	Upsert(ctx context.Context, points []Point) error

	// Delete removes points by id. Deleting an absent id is a no-op.
	Delete(ctx context.Context, ids []string) error

	// DeleteByFilePath removes all points whose payload file_path equals
	// the given path, used by incremental re-indexing to drop stale
	// points before re-upserting a changed file.
	DeleteByFilePath(ctx context.Context, filePath string) error

	// Search runs a fused nearest-neighbor query.
	Search(ctx context.Context, req SearchRequest) ([]Result, error)

	// Count returns the number of points currently stored.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// CollectionName derives the store-level collection identifier for a
// project, isolating one project's points from another's.
func CollectionName(projectID string) string {
	return codeobject.ProjectCollectionName(projectID)
}

// MaxFusedScore returns the theoretical maximum RRF fused score: a point
// ranked first in both the dense and sparse prefetch lists. Callers that
// need to compare a fused score against a normalized [0, 1] threshold
// (the retriever's graph-expansion PPR cutoff) divide by this.
func MaxFusedScore() float64 {
	return 2.0 / float64(rrfK+1)
}

// prefetchCounts returns the number of candidates to draw from each of the
// dense and sparse lists for a requested result limit.
func prefetchCounts(limit int) (dense, sparse int) {
	dense = int(math.Ceil(float64(limit) * densePrefetchMultiple))
	sparse = int(math.Ceil(float64(limit) * sparsePrefetchMultiple))
	return dense, sparse
}

// fuseRRF combines two rank-ordered id lists (best first) into a single
// fused score per id: score(id) = sum over lists containing id of
// 1/(rrfK + rank), rank is 1-indexed within each list.
func fuseRRF(lists ...[]string) map[string]float64 {
	fused := make(map[string]float64)
	for _, list := range lists {
		for i, id := range list {
			rank := i + 1
			fused[id] += 1.0 / float64(rrfK+rank)
		}
	}
	return fused
}
