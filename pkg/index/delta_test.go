// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"testing"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

func TestClassifyBucketsCorrectly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "unchanged.go", "package a\n")
	writeFile(t, root, "modified.go", "package b // v2\n")
	writeFile(t, root, "added.go", "package c\n")

	discovered := []DiscoveredFile{
		{RelPath: "unchanged.go", AbsPath: root + "/unchanged.go"},
		{RelPath: "modified.go", AbsPath: root + "/modified.go"},
		{RelPath: "added.go", AbsPath: root + "/added.go"},
	}

	unchangedSum, err := checksumFile(root + "/unchanged.go")
	if err != nil {
		t.Fatalf("checksumFile: %v", err)
	}

	prior := map[string]codeobject.FileChecksum{
		"unchanged.go": {FilePath: "unchanged.go", Checksum: unchangedSum},
		"modified.go":  {FilePath: "modified.go", Checksum: "stale-checksum"},
		"removed.go":   {FilePath: "removed.go", Checksum: "anything"},
	}

	delta, err := Classify(discovered, prior)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if got := delta.Stats(); got != (Stats{Added: 1, Modified: 1, Unchanged: 1, Deleted: 1}) {
		t.Fatalf("unexpected stats: %+v", got)
	}
	if delta.Added[0] != "added.go" {
		t.Errorf("Added = %v", delta.Added)
	}
	if delta.Modified[0] != "modified.go" {
		t.Errorf("Modified = %v", delta.Modified)
	}
	if delta.Unchanged[0] != "unchanged.go" {
		t.Errorf("Unchanged = %v", delta.Unchanged)
	}
	if delta.Deleted[0] != "removed.go" {
		t.Errorf("Deleted = %v", delta.Deleted)
	}
	if !delta.HasChanges() {
		t.Errorf("expected HasChanges to be true")
	}

	changed := delta.ChangedFiles()
	if len(changed) != 2 || changed[0] != "added.go" || changed[1] != "modified.go" {
		t.Errorf("ChangedFiles = %v", changed)
	}
}

func TestClassifyFirstSyncIsAllAdded(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")
	discovered := []DiscoveredFile{{RelPath: "a.go", AbsPath: root + "/a.go"}}

	delta, err := Classify(discovered, nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(delta.Added) != 1 || len(delta.Modified) != 0 || len(delta.Unchanged) != 0 {
		t.Errorf("expected a fresh sync to classify everything as added, got %+v", delta)
	}
}

func TestClassifyNoChangesHasNoChanges(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")
	sum, err := checksumFile(root + "/a.go")
	if err != nil {
		t.Fatalf("checksumFile: %v", err)
	}
	discovered := []DiscoveredFile{{RelPath: "a.go", AbsPath: root + "/a.go"}}
	prior := map[string]codeobject.FileChecksum{"a.go": {FilePath: "a.go", Checksum: sum}}

	delta, err := Classify(discovered, prior)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if delta.HasChanges() {
		t.Errorf("expected no changes, got %+v", delta)
	}
}
