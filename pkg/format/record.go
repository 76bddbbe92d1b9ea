// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"fmt"
	"strings"

	"github.com/codecontext/codecontext-core/pkg/retrieve"
)

// Key names an optional expanded field a caller can request via Keys.
type Key string

const (
	KeySignature     Key = "signature"
	KeySnippet       Key = "snippet"
	KeyContent       Key = "content"
	KeyParent        Key = "parent"
	KeyRelationships Key = "relationships"
	KeyComplexity    Key = "complexity"
	KeyImpact        Key = "impact.direct_callers"
)

// snippetLines is how many non-empty lines extractSnippet keeps.
const snippetLines = 3

// RelationshipRecord is one hydrated neighbor edge in a Record.
type RelationshipRecord struct {
	Name string `json:"name"`
	Type string `json:"type"`
	File string `json:"file"`
	Line int    `json:"line"`
}

// ComplexityRecord reports a code object's branch-count complexity.
type ComplexityRecord struct {
	Cyclomatic int    `json:"cyclomatic"`
	Cognitive  int    `json:"cognitive,omitempty"`
	Rating     string `json:"rating,omitempty"`
}

// ImpactRecord reports the blast radius of changing this object.
type ImpactRecord struct {
	DirectCallers int `json:"direct_callers"`
}

// Record is the shared minimal+expanded result shape. Minimal fields are
// always populated; expanded fields are nil/empty unless requested.
type Record struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	File     string  `json:"file"`
	Lines    string  `json:"lines"`
	Language string  `json:"language,omitempty"`
	Score    float64 `json:"score"`

	Signature          string                `json:"signature,omitempty"`
	Snippet            string                `json:"snippet,omitempty"`
	Content            string                `json:"content,omitempty"`
	Parent             string                `json:"parent,omitempty"`
	Relationships      []RelationshipRecord  `json:"relationships,omitempty"`
	TotalRelationships int                   `json:"total_count,omitempty"`
	Complexity         *ComplexityRecord     `json:"complexity,omitempty"`
	Impact             *ImpactRecord         `json:"impact,omitempty"`
}

// BuildRecord projects a retrieve.Hit into a Record, populating the
// minimal fields unconditionally and the expanded fields named in keys.
func BuildRecord(hit retrieve.Hit, keys []Key) Record {
	p := hit.Payload
	r := Record{
		Name:     str(p["name"]),
		Type:     str(p["object_type"]),
		File:     str(p["file_path"]),
		Lines:    fmt.Sprintf("%d-%d", intOf(p["start_line"]), intOf(p["end_line"])),
		Language: str(p["language"]),
		Score:    hit.Score,
	}

	want := make(map[Key]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}

	if want[KeySignature] {
		r.Signature = str(p["signature"])
	}
	if want[KeySnippet] {
		r.Snippet = extractSnippet(str(p["content"]), snippetLines)
	}
	if want[KeyContent] {
		r.Content = str(p["content"])
	}
	if want[KeyParent] {
		r.Parent = parentOf(p)
	}
	if want[KeyRelationships] {
		r.Relationships = relationshipRecords(hit.Relationships)
		r.TotalRelationships = hit.TotalRelationships
	}
	if want[KeyComplexity] {
		r.Complexity = complexityOf(p)
	}
	if want[KeyImpact] {
		r.Impact = &ImpactRecord{DirectCallers: countIncomingCalls(hit.Relationships)}
	}
	return r
}

func relationshipRecords(views []retrieve.RelationshipView) []RelationshipRecord {
	out := make([]RelationshipRecord, len(views))
	for i, v := range views {
		out[i] = RelationshipRecord{Name: v.Name, Type: v.RelationType, File: v.FilePath, Line: v.Line}
	}
	return out
}

// countIncomingCalls reports how many distinct CALLS/CALLED_BY edges
// reference this object, the direct_callers figure behind impact.
func countIncomingCalls(views []retrieve.RelationshipView) int {
	count := 0
	for _, v := range views {
		if v.RelationType == "CALLED_BY" || v.RelationType == "CALLS" {
			count++
		}
	}
	return count
}

// parentOf derives the enclosing entity name: a Go-style receiver type
// recorded in metadata, or the qualified name's containing segment
// (e.g. "Widget.Render" -> "Widget") when the object's own name is a
// suffix of its qualified name.
func parentOf(payload map[string]any) string {
	meta, _ := payload["metadata"].(map[string]any)
	if meta != nil {
		if recv, ok := meta["receiver_type"].(string); ok && recv != "" {
			return recv
		}
	}
	qualified := str(payload["qualified_name"])
	name := str(payload["name"])
	if qualified == "" || name == "" {
		return ""
	}
	suffix := "." + name
	if strings.HasSuffix(qualified, suffix) {
		return strings.TrimSuffix(qualified, suffix)
	}
	return ""
}

func complexityOf(payload map[string]any) *ComplexityRecord {
	meta, _ := payload["metadata"].(map[string]any)
	if meta == nil {
		return nil
	}
	cyclomatic, ok := metaInt(meta, "cyclomatic_complexity")
	if !ok {
		return nil
	}
	cognitive, _ := metaInt(meta, "cognitive_complexity")
	rating, _ := meta["complexity_rating"].(string)
	return &ComplexityRecord{Cyclomatic: cyclomatic, Cognitive: cognitive, Rating: rating}
}

func metaInt(meta map[string]any, key string) (int, bool) {
	switch n := meta[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// extractSnippet keeps the first maxLines non-empty lines of code,
// truncating any single line over 80 characters.
func extractSnippet(content string, maxLines int) string {
	if content == "" {
		return ""
	}
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if len(line) > 80 {
			line = line[:77] + "..."
		}
		kept = append(kept, line)
		if len(kept) >= maxLines {
			break
		}
	}
	return strings.Join(kept, "\n")
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func intOf(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
