// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
	"github.com/codecontext/codecontext-core/pkg/index"
	"github.com/codecontext/codecontext-core/pkg/vectorstore"
)

// Summary is one project's registry entry, the read shape behind both
// list() and status(project_id).
type Summary struct {
	ProjectID      string `json:"project_id"`
	ProjectPath    string `json:"project_path"`
	TotalFiles     int    `json:"total_files"`
	TotalObjects   int    `json:"total_objects"`
	TotalDocuments int    `json:"total_documents"`
	LastIndexed    string `json:"last_indexed"`
	PointCount     int    `json:"point_count"`
}

// collectionDropper is implemented by vectorstore.Store backends that
// support deleting an entire collection outright (QdrantStore,
// MemoryStore). It is intentionally not part of the vectorstore.Store
// contract itself: every other caller only ever needs point-scoped
// Delete/DeleteByFilePath, and a collection-wide drop is destructive
// enough that it should stay an opt-in capability a store advertises,
// not a method every implementation is forced to carry.
type collectionDropper interface {
	DropCollection(ctx context.Context) error
}

// StoreOpener opens (or connects to) the vectorstore.Store backing one
// project's collection. Registry never constructs a store itself — the
// caller knows whether this is a QdrantStore pointed at a server or a
// MemoryStore, and with what connection settings.
type StoreOpener func(ctx context.Context, projectID string) (vectorstore.Store, error)

// Registry tracks every project that has been indexed against one
// StateStore, mapping project directories to stable ids and exposing
// list/status/delete.
type Registry struct {
	states    *index.StateStore
	openStore StoreOpener
}

// New constructs a Registry. openStore may be nil if the caller only
// needs List/Status (Delete requires it, to drop the project's
// collection).
func New(states *index.StateStore, openStore StoreOpener) *Registry {
	return &Registry{states: states, openStore: openStore}
}

// List returns a Summary for every project with persisted state, sorted
// by project id.
func (r *Registry) List(ctx context.Context) ([]Summary, error) {
	ids, err := r.states.ListProjectIDs()
	if err != nil {
		return nil, err
	}
	summaries := make([]Summary, 0, len(ids))
	for _, id := range ids {
		s, err := r.Status(ctx, id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *s)
	}
	return summaries, nil
}

// Status loads one project's persisted state and, if a StoreOpener is
// configured, its current point count. Returns an error if the project
// has never been indexed.
func (r *Registry) Status(ctx context.Context, projectID string) (*Summary, error) {
	state, err := r.states.Load(projectID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("registry: project %q has no indexed state", projectID)
	}

	summary := summaryFromState(state)
	if r.openStore != nil {
		store, err := r.openStore(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("registry: open store for %q: %w", projectID, err)
		}
		defer store.Close()
		count, err := store.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("registry: count points for %q: %w", projectID, err)
		}
		summary.PointCount = count
	}
	return &summary, nil
}

// Delete drops a project's entire collection and its persisted state.
// All-or-nothing: if the collection cannot be dropped, no state is
// removed, so a retried delete starts from the same point.
func (r *Registry) Delete(ctx context.Context, projectID string) error {
	if r.openStore == nil {
		return fmt.Errorf("registry: delete requires a configured StoreOpener")
	}
	state, err := r.states.Load(projectID)
	if err != nil {
		return err
	}
	if state == nil {
		return fmt.Errorf("registry: project %q has no indexed state", projectID)
	}

	store, err := r.openStore(ctx, projectID)
	if err != nil {
		return fmt.Errorf("registry: open store for %q: %w", projectID, err)
	}
	defer store.Close()

	dropper, ok := store.(collectionDropper)
	if !ok {
		return fmt.Errorf("registry: store backing %q does not support dropping a collection", projectID)
	}
	if err := dropper.DropCollection(ctx); err != nil {
		return fmt.Errorf("registry: drop collection for %q: %w", projectID, err)
	}
	if err := r.states.Delete(projectID); err != nil {
		return fmt.Errorf("registry: collection dropped but state removal failed for %q (rerun delete to finish): %w", projectID, err)
	}
	return nil
}

func summaryFromState(state *codeobject.IndexState) Summary {
	return Summary{
		ProjectID:      state.ProjectID,
		ProjectPath:    state.ProjectPath,
		TotalFiles:     state.TotalFiles,
		TotalObjects:   state.TotalObjects,
		TotalDocuments: state.TotalDocuments,
		LastIndexed:    state.LastIndexed,
	}
}

// Suggest returns up to maxSuggestions known project ids closest to want
// by Levenshtein edit distance, nearest first. Used to build a "did you
// mean" hint when a caller names an unknown project.
func (r *Registry) Suggest(ctx context.Context, want string, maxSuggestions int) ([]string, error) {
	ids, err := r.states.ListProjectIDs()
	if err != nil {
		return nil, err
	}
	type scored struct {
		id   string
		dist int
	}
	ranked := make([]scored, 0, len(ids))
	for _, id := range ids {
		if id == want {
			continue
		}
		ranked = append(ranked, scored{id: id, dist: levenshteinDistance(want, id)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].dist < ranked[j].dist })
	if len(ranked) > maxSuggestions {
		ranked = ranked[:maxSuggestions]
	}
	out := make([]string, len(ranked))
	for i, s := range ranked {
		out[i] = s.id
	}
	return out, nil
}

// levenshteinDistance computes the classic edit distance between two
// strings, used to rank project-id suggestions by closeness.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			matrix[i][j] = minInt(
				matrix[i-1][j]+1,
				minInt(matrix[i][j-1]+1, matrix[i-1][j-1]+cost),
			)
		}
	}

	return matrix[len(s1)][len(s2)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
