// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package vectorstore

import (
	"context"
	"fmt"
	"log/slog"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/codecontext/codecontext-core/pkg/bm25f"
)

// QdrantStore implements Store against a Qdrant collection with two named
// vectors, "dense" and "sparse", and server-side RRF fusion via the
// /points/query prefetch API.
type QdrantStore struct {
	client         *qdrant.Client
	collectionName string
	logger         *slog.Logger
}

// QdrantConfig configures a QdrantStore.
type QdrantConfig struct {
	Host      string
	Port      int
	APIKey    string
	UseTLS    bool
	ProjectID string
	// Dimension is the dense vector size, used only when InitSchema creates
	// the collection.
	Dimension int
	InitSchema bool
}

// NewQdrantStore connects to a Qdrant server and, if requested, ensures the
// project's collection exists with the dense+sparse named-vector schema.
func NewQdrantStore(ctx context.Context, cfg QdrantConfig, logger *slog.Logger) (*QdrantStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: connect: %w", err)
	}

	store := &QdrantStore{
		client:         client,
		collectionName: CollectionName(cfg.ProjectID),
		logger:         logger,
	}

	if cfg.InitSchema {
		if err := store.ensureCollection(ctx, cfg.Dimension); err != nil {
			client.Close()
			return nil, err
		}
	}
	return store, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context, dimension int) error {
	exists, err := s.client.CollectionExists(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("qdrant: check collection %s: %w", s.collectionName, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collectionName,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			"dense": {Size: uint64(dimension), Distance: qdrant.Distance_Cosine},
		}),
		SparseVectorsConfig: qdrant.NewSparseVectorsConfig(map[string]*qdrant.SparseVectorParams{
			"sparse": {},
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %s: %w", s.collectionName, err)
	}
	s.logger.Info("vectorstore.qdrant.collection_created", "collection", s.collectionName, "dimension", dimension)
	return nil
}

// DropCollection deletes the project's entire Qdrant collection. Used by
// project deletion; unlike Delete/DeleteByFilePath this is not scoped to
// individual points and cannot be undone.
func (s *QdrantStore) DropCollection(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, s.collectionName); err != nil {
		return fmt.Errorf("qdrant: delete collection %s: %w", s.collectionName, err)
	}
	s.logger.Info("vectorstore.qdrant.collection_dropped", "collection", s.collectionName)
	return nil
}

// Upsert implements Store.
func (s *QdrantStore) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	structs := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		payload, err := qdrant.TryValueMap(p.Payload)
		if err != nil {
			return fmt.Errorf("qdrant: convert payload for point %s: %w", p.ID, err)
		}
		structs[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: sparseDenseVectors(p.Dense, p.Sparse),
			Payload: payload,
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Wait:           ptrOf(true),
		Points:         structs,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert %d points into %s: %w", len(points), s.collectionName, err)
	}
	return nil
}

func sparseDenseVectors(dense []float32, sparse bm25f.SparseVector) *qdrant.Vectors {
	indices := make([]uint32, 0, len(sparse))
	values := make([]float32, 0, len(sparse))
	for idx, weight := range sparse {
		indices = append(indices, uint32(idx))
		values = append(values, float32(weight))
	}
	return qdrant.NewVectorsMap(map[string]*qdrant.Vector{
		"dense":  qdrant.NewVectorDense(dense),
		"sparse": qdrant.NewVectorSparse(indices, values),
	})
}

// Delete implements Store.
func (s *QdrantStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewID(id)
	}
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collectionName,
		Points:         qdrant.NewPointsSelectorIDs(pointIDs),
	})
	if err != nil {
		return fmt.Errorf("qdrant: delete %d points from %s: %w", len(ids), s.collectionName, err)
	}
	return nil
}

// DeleteByFilePath implements Store.
func (s *QdrantStore) DeleteByFilePath(ctx context.Context, filePath string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("file_path", filePath),
		},
	}
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collectionName,
		Points:         qdrant.NewPointsSelectorFilter(filter),
	})
	if err != nil {
		return fmt.Errorf("qdrant: delete by file_path=%s from %s: %w", filePath, s.collectionName, err)
	}
	return nil
}

// Count implements Store.
func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	info, err := s.client.GetCollectionInfo(ctx, s.collectionName)
	if err != nil {
		return 0, fmt.Errorf("qdrant: collection info for %s: %w", s.collectionName, err)
	}
	return int(info.GetPointsCount()), nil
}

// Close implements Store.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func ptrOf[T any](v T) *T { return &v }

// Search implements Store, delegating RRF fusion to Qdrant's server-side
// prefetch query so fusion ranks are computed over the full collection,
// not just the caller's candidate set.
func (s *QdrantStore) Search(ctx context.Context, req SearchRequest) ([]Result, error) {
	if req.Limit <= 0 {
		return nil, nil
	}
	densePrefetch, sparsePrefetch := prefetchCounts(req.Limit)
	filter := toQdrantFilter(req.Filter)

	sparseIndices := make([]uint32, 0, len(req.SparseVector))
	sparseValues := make([]float32, 0, len(req.SparseVector))
	for idx, weight := range req.SparseVector {
		sparseIndices = append(sparseIndices, uint32(idx))
		sparseValues = append(sparseValues, float32(weight))
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Prefetch: []*qdrant.PrefetchQuery{
			{
				Query:  qdrant.NewQueryDense(req.DenseVector),
				Using:  ptrOf("dense"),
				Limit:  ptrOf(uint64(densePrefetch)),
				Filter: filter,
			},
			{
				Query:  qdrant.NewQuerySparse(sparseIndices, sparseValues),
				Using:  ptrOf("sparse"),
				Limit:  ptrOf(uint64(sparsePrefetch)),
				Filter: filter,
			},
		},
		Query:       qdrant.NewQueryFusion(qdrant.Fusion_RRF),
		Limit:       ptrOf(uint64(req.Limit)),
		Filter:      filter,
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: query %s: %w", s.collectionName, err)
	}

	// FilePathGlob has no server-side equivalent, so the glob (and the
	// other filter fields, already applied by Qdrant) is checked here.
	results := make([]Result, 0, len(points))
	for _, p := range points {
		payload := valueMapToPayload(p.GetPayload())
		if !req.Filter.Match(payload) {
			continue
		}
		results = append(results, Result{
			ID:      p.GetId().GetUuid(),
			Score:   float64(p.GetScore()),
			Payload: payload,
		})
	}
	return results, nil
}

func toQdrantFilter(f Filter) *qdrant.Filter {
	var conds []*qdrant.Condition
	if f.Language != "" {
		conds = append(conds, qdrant.NewMatch("language", f.Language))
	}
	if f.ObjectType != "" {
		conds = append(conds, qdrant.NewMatch("object_type", f.ObjectType))
	}
	if len(conds) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: conds}
}

func valueMapToPayload(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = qdrantValueToAny(v)
	}
	return out
}

func qdrantValueToAny(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch kind := v.Kind.(type) {
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		items := kind.ListValue.GetValues()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = qdrantValueToAny(item)
		}
		return out
	case *qdrant.Value_StructValue:
		return valueMapToPayload(kind.StructValue.GetFields())
	default:
		return nil
	}
}
