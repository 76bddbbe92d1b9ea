// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"strings"
	"testing"
)

func TestTextIncludesHeaderAndExpandedSections(t *testing.T) {
	r := BuildRecord(sampleHit(), []Key{KeySignature, KeyParent, KeyComplexity, KeyImpact, KeyRelationships})
	var buf bytes.Buffer
	if err := Text(&buf, []Record{r}); err != nil {
		t.Fatalf("Text: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Render (method) widget.go:10-42", "parent: Widget", "signature:", "complexity:", "impact:", "relationships (2 total"} {
		if !strings.Contains(out, want) {
			t.Errorf("Text() output missing %q, got:\n%s", want, out)
		}
	}
}

func TestTextSeparatesMultipleRecordsWithBlankLine(t *testing.T) {
	hit := sampleHit()
	r := BuildRecord(hit, nil)
	var buf bytes.Buffer
	if err := Text(&buf, []Record{r, r}); err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(buf.String(), "\n\n") {
		t.Errorf("expected a blank line between records, got:\n%s", buf.String())
	}
}

func TestJSONEncodesRecordArray(t *testing.T) {
	r := BuildRecord(sampleHit(), []Key{KeyContent})
	var buf bytes.Buffer
	if err := JSON(&buf, []Record{r}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"name": "Render"`) {
		t.Errorf("expected encoded name field, got:\n%s", out)
	}
	if !strings.Contains(out, `"content"`) {
		t.Errorf("expected content field since it was requested, got:\n%s", out)
	}
}

