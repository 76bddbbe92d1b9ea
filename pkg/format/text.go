// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"fmt"
	"io"
	"strings"
)

// Text writes records as human-readable lines to w: one header line per
// record (name, type, file:lines, score), followed by any requested
// expanded fields indented beneath it.
func Text(w io.Writer, records []Record) error {
	for i, r := range records {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := writeTextRecord(w, r); err != nil {
			return err
		}
	}
	return nil
}

func writeTextRecord(w io.Writer, r Record) error {
	if _, err := fmt.Fprintf(w, "%s (%s) %s:%s  score=%.4f\n", r.Name, r.Type, r.File, r.Lines, r.Score); err != nil {
		return err
	}
	if r.Parent != "" {
		fmt.Fprintf(w, "  parent: %s\n", r.Parent)
	}
	if r.Signature != "" {
		fmt.Fprintf(w, "  signature: %s\n", r.Signature)
	}
	if r.Complexity != nil {
		fmt.Fprintf(w, "  complexity: cyclomatic=%d cognitive=%d rating=%s\n",
			r.Complexity.Cyclomatic, r.Complexity.Cognitive, r.Complexity.Rating)
	}
	if r.Impact != nil {
		fmt.Fprintf(w, "  impact: %d direct caller(s)\n", r.Impact.DirectCallers)
	}
	if r.Snippet != "" {
		fmt.Fprintf(w, "  snippet:\n")
		for _, line := range strings.Split(r.Snippet, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
	if r.Content != "" {
		fmt.Fprintf(w, "  content:\n")
		for _, line := range strings.Split(r.Content, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
	if len(r.Relationships) > 0 || r.TotalRelationships > 0 {
		fmt.Fprintf(w, "  relationships (%d total, %d shown):\n", r.TotalRelationships, len(r.Relationships))
		for _, rel := range r.Relationships {
			fmt.Fprintf(w, "    %s %s %s:%d\n", rel.Type, rel.Name, rel.File, rel.Line)
		}
	}
	return nil
}
