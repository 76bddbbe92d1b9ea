// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package parse

import (
	"strings"
	"testing"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

func TestDocumentParserHeadingsAndParagraphs(t *testing.T) {
	src := "# Title\n\nIntro paragraph text here.\n\n## Section\n\nMore body text.\n\n```go\nfunc f() {}\n```\n"
	d := NewDocumentParser(DefaultChunkConfig())
	nodes := d.Chunk("docs/readme.md", []byte(src))

	var sawHeading, sawParagraph, sawCode bool
	for _, n := range nodes {
		switch n.NodeType {
		case codeobject.NodeHeading:
			sawHeading = true
		case codeobject.NodeParagraph:
			sawParagraph = true
		case codeobject.NodeCodeBlock:
			sawCode = true
			if !strings.Contains(n.Content, "func f()") {
				t.Errorf("code block missing content: %q", n.Content)
			}
		}
	}
	if !sawHeading || !sawParagraph || !sawCode {
		t.Fatalf("expected heading, paragraph, and code_block nodes; got %+v", nodes)
	}
}

func TestDocumentParserHeadingHierarchy(t *testing.T) {
	src := "# Top\n\nBody.\n\n## Child\n\nChild body.\n"
	d := NewDocumentParser(DefaultChunkConfig())
	nodes := d.Chunk("doc.md", []byte(src))

	var topID, childID, childParagraphParent string
	for _, n := range nodes {
		if n.NodeType == codeobject.NodeHeading && n.Content == "Top" {
			topID = n.ID
		}
		if n.NodeType == codeobject.NodeHeading && n.Content == "Child" {
			childID = n.ID
		}
		if n.NodeType == codeobject.NodeParagraph && n.Content == "Child body." {
			childParagraphParent = n.ParentID
		}
	}
	if topID == "" {
		t.Fatal("did not find top heading")
	}
	// A paragraph's ParentID is the nearest heading above it.
	if childID == "" || childParagraphParent != childID {
		t.Errorf("child paragraph ParentID = %q, want the Child heading id %q", childParagraphParent, childID)
	}
}

func TestDocumentParserSplitsOversizedParagraph(t *testing.T) {
	sentence := "This is a reasonably long sentence about the indexing pipeline and its behavior. "
	var b strings.Builder
	for i := 0; i < 100; i++ {
		b.WriteString(sentence)
	}
	cfg := ChunkConfig{MinChunkSize: 5, MaxChunkSize: 50, Overlap: 5}
	d := NewDocumentParser(cfg)
	nodes := d.Chunk("big.md", []byte(b.String()))
	if len(nodes) < 2 {
		t.Fatalf("expected oversized paragraph to split into multiple chunks, got %d", len(nodes))
	}
	for _, n := range nodes {
		if tokenCount(n.Content) > cfg.MaxChunkSize+cfg.Overlap {
			t.Errorf("chunk exceeds max size: %d tokens", tokenCount(n.Content))
		}
	}
}

func TestDetectEnvVarRefs(t *testing.T) {
	refs := detectEnvVarRefs("Set ${DATABASE_URL} and $API_KEY before running.")
	if len(refs) != 2 {
		t.Fatalf("expected 2 env var refs, got %v", refs)
	}
}

func TestDetectCodeRefs(t *testing.T) {
	refs := detectCodeRefs("See `Extractor.Extract` and call `NewPipeline()` to build one.")
	if len(refs) != 2 {
		t.Fatalf("expected 2 code refs, got %v", refs)
	}
	if refs[0] != "Extractor.Extract" || refs[1] != "NewPipeline" {
		t.Errorf("unexpected code refs: %v", refs)
	}
}

func TestChunkAttachesCodeRefMetadata(t *testing.T) {
	src := "# API\n\nCall `ParseFile` to parse a source file.\n"
	d := NewDocumentParser(DefaultChunkConfig())
	nodes := d.Chunk("doc.md", []byte(src))

	var found bool
	for _, n := range nodes {
		if n.NodeType != codeobject.NodeParagraph {
			continue
		}
		refs, ok := n.Metadata["code_refs"].([]string)
		if ok && len(refs) == 1 && refs[0] == "ParseFile" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected paragraph chunk to carry code_refs metadata; got %+v", nodes)
	}
}

func TestChunkIDDeterministic(t *testing.T) {
	src := "# Title\n\nBody text.\n"
	d := NewDocumentParser(DefaultChunkConfig())
	a := d.Chunk("f.md", []byte(src))
	b := d.Chunk("f.md", []byte(src))
	if len(a) != len(b) {
		t.Fatalf("chunk count differs across runs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("node %d id not deterministic: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
}
