// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package retrieve

import (
	"context"
	"fmt"
	"sort"

	"github.com/codecontext/codecontext-core/pkg/bm25f"
	"github.com/codecontext/codecontext-core/pkg/codeobject"
	"github.com/codecontext/codecontext-core/pkg/embedding"
	"github.com/codecontext/codecontext-core/pkg/tokenize"
	"github.com/codecontext/codecontext-core/pkg/vectorstore"
)

// Request is one search call.
type Request struct {
	Query  string
	Limit  int
	Filter vectorstore.Filter

	// Expand requests relationship hydration on surviving results.
	Expand bool
}

// RelationshipView is a hydrated neighbor edge attached to a Hit when
// Request.Expand is set.
type RelationshipView struct {
	Name         string
	ObjectType   string
	FilePath     string
	Line         int
	RelationType string
}

// Hit is one surviving, scored, hydrated candidate.
type Hit struct {
	ID                 string
	Score              float64
	Payload            map[string]any
	Relationships      []RelationshipView
	TotalRelationships int
}

// Retriever runs the embed -> hybrid search -> graph expansion -> boost ->
// diversify pipeline against one project's collection.
type Retriever struct {
	store     vectorstore.Store
	embedder  embedding.Provider
	encoder   *bm25f.Encoder
	tokenizer *tokenize.Tokenizer
	cfg       Config
}

// New constructs a Retriever. A nil tokenizer creates a fresh default one.
func New(store vectorstore.Store, embedder embedding.Provider, encoder *bm25f.Encoder, tokenizer *tokenize.Tokenizer, cfg Config) *Retriever {
	if tokenizer == nil {
		tokenizer = tokenize.New()
	}
	return &Retriever{store: store, embedder: embedder, encoder: encoder, tokenizer: tokenizer, cfg: cfg}
}

// candidate is the mutable, in-flight form of a result as it moves through
// Stage 2 (from the store) and Stage 3 (graph expansion may add to or
// rescore it).
type candidate struct {
	id      string
	score   float64
	payload map[string]any
}

// Retrieve runs the full five-stage pipeline and returns up to req.Limit
// hits, diversified by file.
func (r *Retriever) Retrieve(ctx context.Context, req Request) ([]Hit, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("retrieve: query is required")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	qDense, qSparse, err := r.embedQuery(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	candidates, order, err := r.hybridSearch(ctx, qDense, qSparse, limit, req.Filter)
	if err != nil {
		return nil, err
	}

	if r.cfg.ExpandGraph {
		r.expandGraph(candidates, order)
	}

	boosted := r.boost(candidates, req.Query)
	kept := r.diversify(boosted, limit)

	hits := make([]Hit, 0, len(kept))
	for _, s := range kept {
		hit := Hit{ID: s.c.id, Score: s.final, Payload: s.c.payload}
		if req.Expand {
			hit.Relationships, hit.TotalRelationships = hydrateRelationships(s.c.payload)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// embedQuery is Stage 1: compute the query's dense and sparse vectors.
func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, bm25f.SparseVector, error) {
	vectors, err := r.embedder.Embed(ctx, []string{query}, embedding.NL2CodeQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, nil, fmt.Errorf("embed query: provider returned no vector")
	}
	return vectors[0], r.encoder.EncodeQuery(query), nil
}

// hybridSearch is Stage 2: a single fused nearest-neighbor call against
// the store, seeding the candidate set.
func (r *Retriever) hybridSearch(ctx context.Context, qDense []float32, qSparse bm25f.SparseVector, limit int, filter vectorstore.Filter) (map[string]*candidate, []string, error) {
	results, err := r.store.Search(ctx, vectorstore.SearchRequest{
		DenseVector:  qDense,
		SparseVector: qSparse,
		Limit:        limit,
		Filter:       filter,
		Fusion:       vectorstore.FusionRRF,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("hybrid search: %w", err)
	}

	candidates := make(map[string]*candidate, len(results))
	order := make([]string, 0, len(results))
	for _, res := range results {
		candidates[res.ID] = &candidate{id: res.ID, score: res.Score, payload: res.Payload}
		order = append(order, res.ID)
	}
	return candidates, order, nil
}

// expandGraph is Stage 3: propagate each seed's score to its stored 1-hop
// neighbors (read straight from the payload's outgoing/incoming edge
// lists), then drop anything under the normalized PPR threshold.
func (r *Retriever) expandGraph(candidates map[string]*candidate, seedOrder []string) {
	// Snapshot seed scores so propagation always uses the Stage-2 score,
	// never a value another neighbor's contribution already inflated.
	seedScores := make(map[string]float64, len(seedOrder))
	for _, id := range seedOrder {
		seedScores[id] = candidates[id].score
	}

	for _, id := range seedOrder {
		c := candidates[id]
		sc := seedScores[id]
		for _, edge := range edgesOf(c.payload, "outgoing_relationships") {
			r.propagate(candidates, edge, sc)
		}
		for _, edge := range edgesOf(c.payload, "incoming_relationships") {
			r.propagate(candidates, edge, sc)
		}
	}

	threshold := r.cfg.GraphPPRThreshold * vectorstore.MaxFusedScore()
	for id, c := range candidates {
		if c.score < threshold {
			delete(candidates, id)
		}
	}
}

func (r *Retriever) propagate(candidates map[string]*candidate, edge map[string]any, seedScore float64) {
	neighborID := str(edge["id"])
	if neighborID == "" {
		return
	}
	relType := codeobject.RelationType(str(edge["relation_type"]))
	contribution := seedScore * r.cfg.GraphScoreWeight * r.cfg.relationWeight(relType)

	if existing, ok := candidates[neighborID]; ok {
		existing.score += contribution
		return
	}
	candidates[neighborID] = &candidate{
		id:    neighborID,
		score: contribution,
		payload: map[string]any{
			"object_type": edge["object_type"],
			"name":        edge["name"],
			"file_path":   edge["file_path"],
			"start_line":  edge["line"],
		},
	}
}

type scoredCandidate struct {
	c     *candidate
	final float64
}

// boost is Stage 4: apply the type/name additive boosts and the stored
// score_weight, then sort the full candidate set by final score.
func (r *Retriever) boost(candidates map[string]*candidate, query string) []scoredCandidate {
	queryTokens := tokenSet(r.tokenizer.Tokenize(query))

	boosted := make([]scoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		objectType := str(c.payload["object_type"])
		typeBoost := r.cfg.typeBoost(objectType)
		nameBoost := r.nameBoost(queryTokens, str(c.payload["name"]))
		weight := scoreWeightOf(c.payload)
		final := c.score * (1 + typeBoost + nameBoost) * weight
		boosted = append(boosted, scoredCandidate{c: c, final: final})
	}

	sort.Slice(boosted, func(i, j int) bool {
		if boosted[i].final != boosted[j].final {
			return boosted[i].final > boosted[j].final
		}
		return boosted[i].c.id < boosted[j].c.id
	})
	return boosted
}

func (r *Retriever) nameBoost(queryTokens map[string]bool, name string) float64 {
	if name == "" {
		return 0
	}
	nameTokens := tokenSet(r.tokenizer.Tokenize(name))
	if len(nameTokens) == 0 {
		return 0
	}
	if setsEqual(nameTokens, queryTokens) {
		return 0.25
	}
	if isNonEmptySubset(nameTokens, queryTokens) {
		return 0.15
	}
	return 0
}

// diversify is Stage 5: walk the boosted ranking and keep each result
// unless its file_path already appears MaxChunksPerFile times among kept
// results, except the DiversityPreserveTopN head, which is always kept.
func (r *Retriever) diversify(boosted []scoredCandidate, limit int) []scoredCandidate {
	kept := make([]scoredCandidate, 0, limit)
	fileCounts := make(map[string]int)

	for i, s := range boosted {
		filePath := str(s.c.payload["file_path"])
		if i >= r.cfg.DiversityPreserveTopN && fileCounts[filePath] >= r.cfg.MaxChunksPerFile {
			continue
		}
		fileCounts[filePath]++
		kept = append(kept, s)
		if len(kept) >= limit {
			break
		}
	}
	return kept
}
