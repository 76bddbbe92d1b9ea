// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

// StateStore persists a project's IndexState to disk, grounded on the
// teacher's CheckpointManager: one JSON file per project, written
// atomically via a temp-file-then-rename so a crash mid-write never
// leaves a corrupt state file (the prior run's state, or none, survives).
type StateStore struct {
	dir string
}

// NewStateStore creates a state store rooted at dir (created on first
// Save if absent).
func NewStateStore(dir string) *StateStore {
	return &StateStore{dir: dir}
}

func (s *StateStore) path(projectID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("state-%s.json", projectID))
}

// Load reads a project's prior IndexState. A missing file is not an
// error: it returns (nil, nil), signaling a first full sync.
func (s *StateStore) Load(projectID string) (*codeobject.IndexState, error) {
	data, err := os.ReadFile(s.path(projectID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read index state: %w", err)
	}
	var state codeobject.IndexState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse index state: %w", err)
	}
	return &state, nil
}

// Save persists the final IndexState for a run, atomically.
func (s *StateStore) Save(state *codeobject.IndexState) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index state: %w", err)
	}

	path := s.path(state.ProjectID)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write index state temp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("commit index state: %w", err)
	}
	return nil
}

// Delete removes a project's persisted state, used by project deletion.
func (s *StateStore) Delete(projectID string) error {
	if err := os.Remove(s.path(projectID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove index state: %w", err)
	}
	return nil
}

// ListProjectIDs enumerates every project with persisted state, by
// scanning for this store's "state-<id>.json" naming convention. A
// missing state directory is not an error: it means no project has ever
// been indexed here.
func (s *StateStore) ListProjectIDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list index states: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, "state-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, "state-"), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
