// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"testing"

	"github.com/codecontext/codecontext-core/pkg/retrieve"
)

func sampleHit() retrieve.Hit {
	return retrieve.Hit{
		ID:    "obj-1",
		Score: 0.0271,
		Payload: map[string]any{
			"name":           "Render",
			"object_type":    "method",
			"file_path":      "widget.go",
			"start_line":     10,
			"end_line":       42,
			"language":       "go",
			"signature":      "func (w *Widget) Render() string",
			"content":        "func (w *Widget) Render() string {\n\treturn w.text\n}",
			"qualified_name": "Widget.Render",
			"metadata": map[string]any{
				"receiver_type":         "Widget",
				"cyclomatic_complexity": 2,
				"cognitive_complexity":  1,
				"complexity_rating":     "A",
			},
		},
		Relationships: []retrieve.RelationshipView{
			{Name: "NewWidget", RelationType: "CALLED_BY", FilePath: "factory.go", Line: 5},
			{Name: "text", RelationType: "REFERENCES", FilePath: "widget.go", Line: 12},
		},
		TotalRelationships: 2,
	}
}

func TestBuildRecordMinimalOnly(t *testing.T) {
	r := BuildRecord(sampleHit(), nil)
	if r.Name != "Render" || r.Type != "method" || r.File != "widget.go" || r.Lines != "10-42" {
		t.Fatalf("unexpected minimal record: %+v", r)
	}
	if r.Signature != "" || r.Content != "" || r.Parent != "" || r.Complexity != nil {
		t.Errorf("expected no expanded fields without keys, got %+v", r)
	}
}

func TestBuildRecordExpandedFieldsAreOptIn(t *testing.T) {
	r := BuildRecord(sampleHit(), []Key{KeySignature, KeyParent, KeyComplexity, KeyImpact, KeyRelationships})
	if r.Signature == "" {
		t.Errorf("expected signature to be populated")
	}
	if r.Parent != "Widget" {
		t.Errorf("Parent = %q, want Widget", r.Parent)
	}
	if r.Complexity == nil || r.Complexity.Cyclomatic != 2 || r.Complexity.Rating != "A" {
		t.Errorf("unexpected complexity: %+v", r.Complexity)
	}
	if r.Impact == nil || r.Impact.DirectCallers != 1 {
		t.Errorf("expected 1 direct caller, got %+v", r.Impact)
	}
	if len(r.Relationships) != 2 || r.TotalRelationships != 2 {
		t.Errorf("expected 2 hydrated relationships, got %+v", r.Relationships)
	}
}

func TestBuildRecordSnippetTruncatesToThreeLines(t *testing.T) {
	hit := sampleHit()
	hit.Payload["content"] = "line one\n\nline two\nline three\nline four"
	r := BuildRecord(hit, []Key{KeySnippet})
	want := "line one\nline two\nline three"
	if r.Snippet != want {
		t.Errorf("Snippet = %q, want %q", r.Snippet, want)
	}
}

func TestParentOfFallsBackToQualifiedNameSuffix(t *testing.T) {
	payload := map[string]any{"name": "Render", "qualified_name": "Widget.Render"}
	if got := parentOf(payload); got != "Widget" {
		t.Errorf("parentOf() = %q, want Widget", got)
	}
}

func TestParentOfReturnsEmptyWithoutMatch(t *testing.T) {
	payload := map[string]any{"name": "Render", "qualified_name": "Render"}
	if got := parentOf(payload); got != "" {
		t.Errorf("parentOf() = %q, want empty", got)
	}
}
