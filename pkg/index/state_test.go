// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"path/filepath"
	"testing"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

func TestStateStoreLoadMissingReturnsNil(t *testing.T) {
	store := NewStateStore(t.TempDir())
	state, err := store.Load("unknown-project")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state != nil {
		t.Fatalf("expected nil state for first sync, got %+v", state)
	}
}

func TestStateStoreSaveAndLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	store := NewStateStore(dir)

	want := &codeobject.IndexState{
		ProjectID:   "proj-1",
		ProjectPath: "/repo",
		TotalFiles:  2,
		FileChecksums: map[string]codeobject.FileChecksum{
			"a.go": {FilePath: "a.go", Checksum: "abc"},
		},
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load("proj-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || got.ProjectID != want.ProjectID || got.TotalFiles != want.TotalFiles {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
	if got.FileChecksums["a.go"].Checksum != "abc" {
		t.Errorf("checksum mismatch: %+v", got.FileChecksums)
	}

	if _, err := filepath.Glob(filepath.Join(dir, "*.tmp")); err != nil {
		t.Fatalf("glob: %v", err)
	}
}

func TestStateStoreDeleteIsIdempotent(t *testing.T) {
	store := NewStateStore(t.TempDir())
	if err := store.Delete("never-existed"); err != nil {
		t.Fatalf("Delete on missing state should not error: %v", err)
	}

	state := &codeobject.IndexState{ProjectID: "proj-2"}
	if err := store.Save(state); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete("proj-2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := store.Load("proj-2")
	if err != nil {
		t.Fatalf("Load after delete: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil state after delete, got %+v", got)
	}
}
