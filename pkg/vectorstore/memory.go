// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryStore implements Store entirely in process memory, grounded on the
// teacher's EmbeddedBackend role as the default embedded backend for
// standalone use. It is the default store when no external endpoint is
// configured, and backs the seed/unit test suite.
type MemoryStore struct {
	mu     sync.RWMutex
	points map[string]Point
	closed bool
}

// NewMemoryStore constructs an empty in-memory collection.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{points: make(map[string]Point)}
}

// Upsert implements Store.
func (m *MemoryStore) Upsert(ctx context.Context, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	for _, p := range points {
		m.points[p.ID] = p
	}
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	for _, id := range ids {
		delete(m.points, id)
	}
	return nil
}

// DeleteByFilePath implements Store.
func (m *MemoryStore) DeleteByFilePath(ctx context.Context, filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	for id, p := range m.points {
		if str(p.Payload["file_path"]) == filePath {
			delete(m.points, id)
		}
	}
	return nil
}

// Count implements Store.
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, errClosed
	}
	return len(m.points), nil
}

// DropCollection discards every point, the in-process equivalent of
// deleting a Qdrant collection. Used by project deletion.
func (m *MemoryStore) DropCollection(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	m.points = make(map[string]Point)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.points = nil
	return nil
}

// Search implements Store, reproducing the RRF contract locally: brute
// force cosine similarity for the dense list, dot product for the sparse
// list, independently prefetched and rank-fused.
func (m *MemoryStore) Search(ctx context.Context, req SearchRequest) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, errClosed
	}
	if req.Limit <= 0 {
		return nil, nil
	}

	candidates := make([]Point, 0, len(m.points))
	for _, p := range m.points {
		if req.Filter.Match(p.Payload) {
			candidates = append(candidates, p)
		}
	}

	fusion := req.Fusion
	if fusion == "" {
		fusion = FusionRRF
	}

	densePrefetch, sparsePrefetch := prefetchCounts(req.Limit)
	denseRanked := rankByDense(candidates, req.DenseVector, densePrefetch)
	sparseRanked := rankBySparse(candidates, req.SparseVector, sparsePrefetch)

	var fused map[string]float64
	switch fusion {
	case FusionWeighted:
		fused = fuseWeighted(denseRanked, sparseRanked)
	default:
		// RRF and DBSF both resolve to rank fusion in this contract;
		// DBSF's score-distribution normalization is a server-side
		// Qdrant detail with no observable difference at this layer.
		fused = fuseRRF(idsOf(denseRanked), idsOf(sparseRanked))
	}

	byID := make(map[string]Point, len(candidates))
	for _, p := range candidates {
		byID[p.ID] = p
	}

	results := make([]Result, 0, len(fused))
	for id, score := range fused {
		p, ok := byID[id]
		if !ok {
			continue
		}
		results = append(results, Result{ID: id, Score: score, Payload: p.Payload})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}

func idsOf(points []Point) []string {
	ids := make([]string, len(points))
	for i, p := range points {
		ids[i] = p.ID
	}
	return ids
}

func rankByDense(points []Point, query []float32, limit int) []Point {
	if len(query) == 0 {
		return nil
	}
	type scored struct {
		p Point
		s float64
	}
	scoredPoints := make([]scored, 0, len(points))
	for _, p := range points {
		if len(p.Dense) == 0 {
			continue
		}
		scoredPoints = append(scoredPoints, scored{p, cosineSimilarity(query, p.Dense)})
	}
	sort.Slice(scoredPoints, func(i, j int) bool { return scoredPoints[i].s > scoredPoints[j].s })
	if len(scoredPoints) > limit {
		scoredPoints = scoredPoints[:limit]
	}
	out := make([]Point, len(scoredPoints))
	for i, sp := range scoredPoints {
		out[i] = sp.p
	}
	return out
}

func rankBySparse(points []Point, query map[uint64]float64, limit int) []Point {
	if len(query) == 0 {
		return nil
	}
	type scored struct {
		p Point
		s float64
	}
	scoredPoints := make([]scored, 0, len(points))
	for _, p := range points {
		if len(p.Sparse) == 0 {
			continue
		}
		scoredPoints = append(scoredPoints, scored{p, dotProduct(query, p.Sparse)})
	}
	sort.Slice(scoredPoints, func(i, j int) bool { return scoredPoints[i].s > scoredPoints[j].s })
	if len(scoredPoints) > limit {
		scoredPoints = scoredPoints[:limit]
	}
	out := make([]Point, len(scoredPoints))
	for i, sp := range scoredPoints {
		out[i] = sp.p
	}
	return out
}

func cosineSimilarity(a []float32, b []float32) float64 {
	if len(a) != len(b) {
		return -1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func dotProduct(a, b map[uint64]float64) float64 {
	// iterate the smaller map
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for idx, v := range a {
		sum += v * b[idx]
	}
	return sum
}

func fuseWeighted(dense, sparse []Point) map[string]float64 {
	const denseWeight, sparseWeight = 0.6, 0.4
	fused := make(map[string]float64)
	for i, p := range dense {
		fused[p.ID] += denseWeight * (1.0 / float64(i+1))
	}
	for i, p := range sparse {
		fused[p.ID] += sparseWeight * (1.0 / float64(i+1))
	}
	return fused
}
