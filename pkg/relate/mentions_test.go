// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package relate

import (
	"testing"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

func TestExtractDocumentRelationshipsHeadingDocuments(t *testing.T) {
	objects := []codeobject.CodeObject{
		obj("fn", "ParseFile", "parse.ParseFile", codeobject.ObjectFunction, "pkg/parse/go_parser.go", 10, "func ParseFile() {}"),
	}
	ex := NewExtractor(objects)

	docs := []codeobject.DocumentNode{
		{
			ID: "doc:heading", NodeType: codeobject.NodeHeading, Content: "ParseFile",
			FilePath: "README.md", StartLine: 3,
			Metadata: map[string]any{"code_refs": []string{"ParseFile"}},
		},
	}

	rels := ex.ExtractDocumentRelationships(docs)

	var sawForward, sawReverse bool
	for _, r := range rels {
		if r.RelationType == codeobject.RelDocuments && r.SourceID == "doc:heading" && r.TargetID == "fn" {
			sawForward = true
		}
		if r.RelationType == codeobject.RelDocumentedBy && r.SourceID == "fn" && r.TargetID == "doc:heading" {
			sawReverse = true
		}
	}
	if !sawForward || !sawReverse {
		t.Fatalf("expected DOCUMENTS and DOCUMENTED_BY edges, got %+v", rels)
	}
}

func TestExtractDocumentRelationshipsParagraphMentions(t *testing.T) {
	objects := []codeobject.CodeObject{
		obj("fn", "ParseFile", "parse.ParseFile", codeobject.ObjectFunction, "pkg/parse/go_parser.go", 10, "func ParseFile() {}"),
	}
	ex := NewExtractor(objects)

	docs := []codeobject.DocumentNode{
		{
			ID: "doc:para", NodeType: codeobject.NodeParagraph, Content: "Call ParseFile to parse a file.",
			FilePath: "README.md", StartLine: 5,
			Metadata: map[string]any{"code_refs": []string{"ParseFile"}},
		},
	}

	rels := ex.ExtractDocumentRelationships(docs)

	var sawMentions bool
	for _, r := range rels {
		if r.RelationType == codeobject.RelMentions && r.SourceID == "doc:para" && r.TargetID == "fn" {
			sawMentions = true
		}
	}
	if !sawMentions {
		t.Fatalf("expected MENTIONS edge from paragraph chunk, got %+v", rels)
	}
}

func TestExtractDocumentRelationshipsUnresolvedRefSkipped(t *testing.T) {
	ex := NewExtractor(nil)
	docs := []codeobject.DocumentNode{
		{
			ID: "doc:para", NodeType: codeobject.NodeParagraph, Content: "See NoSuchThing for details.",
			FilePath: "README.md", StartLine: 1,
			Metadata: map[string]any{"code_refs": []string{"NoSuchThing"}},
		},
	}
	rels := ex.ExtractDocumentRelationships(docs)
	if len(rels) != 0 {
		t.Fatalf("expected no edges for an unresolved reference, got %+v", rels)
	}
}
