// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"os"
	"sort"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

// ChangeType classifies a file against a project's prior IndexState using
// content checksums rather than git history, so a project need not be a
// git repository to be indexed incrementally.
type ChangeType string

const (
	ChangeAdded     ChangeType = "added"
	ChangeModified  ChangeType = "modified"
	ChangeUnchanged ChangeType = "unchanged"
	ChangeDeleted   ChangeType = "deleted"
)

// Delta is the result of classifying the current file set against a
// project's prior IndexState.
type Delta struct {
	Added     []string
	Modified  []string
	Unchanged []string
	Deleted   []string
}

// Stats summarizes a Delta's bucket sizes.
type Stats struct {
	Added, Modified, Unchanged, Deleted int
}

func (d *Delta) Stats() Stats {
	return Stats{len(d.Added), len(d.Modified), len(d.Unchanged), len(d.Deleted)}
}

// HasChanges reports whether any file was added, modified, or deleted.
func (d *Delta) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Modified) > 0 || len(d.Deleted) > 0
}

// Classify compares the currently discovered files against a prior
// IndexState's checksums. A file present in both with an unchanged
// checksum is ChangeUnchanged; present in both with a different checksum
// is ChangeModified; present only now is ChangeAdded; present only in the
// prior state is ChangeDeleted.
func Classify(discovered []DiscoveredFile, prior map[string]codeobject.FileChecksum) (*Delta, error) {
	delta := &Delta{}
	seen := make(map[string]bool, len(discovered))

	for _, f := range discovered {
		seen[f.RelPath] = true
		checksum, err := checksumFile(f.AbsPath)
		if err != nil {
			return nil, err
		}
		prevChecksum, existed := prior[f.RelPath]
		switch {
		case !existed:
			delta.Added = append(delta.Added, f.RelPath)
		case prevChecksum.Checksum != checksum:
			delta.Modified = append(delta.Modified, f.RelPath)
		default:
			delta.Unchanged = append(delta.Unchanged, f.RelPath)
		}
	}

	for path := range prior {
		if !seen[path] {
			delta.Deleted = append(delta.Deleted, path)
		}
	}

	sort.Strings(delta.Added)
	sort.Strings(delta.Modified)
	sort.Strings(delta.Unchanged)
	sort.Strings(delta.Deleted)
	return delta, nil
}

func checksumFile(absPath string) (string, error) {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", err
	}
	return codeobject.Checksum(string(content)), nil
}

// ChangedFiles returns added+modified paths in one sorted slice — the set
// that must be (re-)parsed and (re-)upserted this run. Relationships that
// cross a changed file and an unchanged one are recomputed for the union
// of ChangedFiles and Unchanged, per the indexing pipeline's
// cross-file-relationship requirement.
func (d *Delta) ChangedFiles() []string {
	out := make([]string, 0, len(d.Added)+len(d.Modified))
	out = append(out, d.Added...)
	out = append(out, d.Modified...)
	sort.Strings(out)
	return out
}
