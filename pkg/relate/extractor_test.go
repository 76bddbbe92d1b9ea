// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package relate

import (
	"testing"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

func obj(id, name, qualified string, t codeobject.ObjectType, file string, line int, content string) codeobject.CodeObject {
	return codeobject.CodeObject{
		ID: id, Name: name, QualifiedName: qualified, ObjectType: t,
		FilePath: file, StartLine: line, Content: content, Language: "go",
	}
}

func TestExtractorResolvesCalls(t *testing.T) {
	objects := []codeobject.CodeObject{
		obj("a", "Caller", "pkg.Caller", codeobject.ObjectFunction, "pkg/a.go", 1, "func Caller() { Callee() }"),
		obj("b", "Callee", "pkg.Callee", codeobject.ObjectFunction, "pkg/b.go", 1, "func Callee() {}"),
	}
	ex := NewExtractor(objects)
	rels := ex.Extract(objects)

	var sawForward, sawReverse bool
	for _, r := range rels {
		if r.RelationType == codeobject.RelCalls && r.SourceID == "a" && r.TargetID == "b" {
			sawForward = true
		}
		if r.RelationType == codeobject.RelCalledBy && r.SourceID == "b" && r.TargetID == "a" {
			sawReverse = true
		}
	}
	if !sawForward || !sawReverse {
		t.Fatalf("expected CALLS and CALLED_BY edges, got %+v", rels)
	}
}

func TestExtractorAmbiguousSimpleNameDropped(t *testing.T) {
	objects := []codeobject.CodeObject{
		obj("a", "Caller", "pkg.Caller", codeobject.ObjectFunction, "pkg/a.go", 1, "func Caller() { Dup() }"),
		obj("b", "Dup", "pkg1.Dup", codeobject.ObjectFunction, "pkg1/b.go", 1, "func Dup() {}"),
		obj("c", "Dup", "pkg2.Dup", codeobject.ObjectFunction, "pkg2/c.go", 1, "func Dup() {}"),
	}
	ex := NewExtractor(objects)
	rels := ex.Extract(objects)
	for _, r := range rels {
		if r.SourceID == "a" && r.RelationType == codeobject.RelCalls {
			t.Fatalf("expected ambiguous simple-name call to be dropped, got edge to %s", r.TargetID)
		}
	}
}

func TestExtractorDeduplicatesByKey(t *testing.T) {
	objects := []codeobject.CodeObject{
		obj("a", "Caller", "pkg.Caller", codeobject.ObjectFunction, "pkg/a.go", 1, "func Caller() { Callee(); Callee() }"),
		obj("b", "Callee", "pkg.Callee", codeobject.ObjectFunction, "pkg/b.go", 1, "func Callee() {}"),
	}
	ex := NewExtractor(objects)
	rels := ex.Extract(objects)

	count := 0
	for _, r := range rels {
		if r.RelationType == codeobject.RelCalls && r.SourceID == "a" && r.TargetID == "b" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 deduplicated CALLS edge, got %d", count)
	}
}

func TestExtractorResolvesReferences(t *testing.T) {
	objects := []codeobject.CodeObject{
		obj("a", "Caller", "pkg.Caller", codeobject.ObjectFunction, "pkg/a.go", 1, "func Caller() {\n\tvar w Widget\n\t_ = w\n}"),
		obj("w", "Widget", "pkg.Widget", codeobject.ObjectClass, "pkg/w.go", 1, "type Widget struct{}"),
	}
	ex := NewExtractor(objects)
	rels := ex.Extract(objects)

	var sawForward, sawReverse bool
	for _, r := range rels {
		if r.RelationType == codeobject.RelReferences && r.SourceID == "a" && r.TargetID == "w" {
			sawForward = true
			if r.Metadata["confidence"] != referenceConfidence {
				t.Errorf("expected reference confidence metadata, got %+v", r.Metadata)
			}
		}
		if r.RelationType == codeobject.RelReferencedBy && r.SourceID == "w" && r.TargetID == "a" {
			sawReverse = true
		}
	}
	if !sawForward || !sawReverse {
		t.Fatalf("expected REFERENCES and REFERENCED_BY edges, got %+v", rels)
	}
}

func TestExtractorCallSiteNotDoubleCountedAsReference(t *testing.T) {
	objects := []codeobject.CodeObject{
		obj("a", "Caller", "pkg.Caller", codeobject.ObjectFunction, "pkg/a.go", 1, "func Caller() { Callee() }"),
		obj("b", "Callee", "pkg.Callee", codeobject.ObjectFunction, "pkg/b.go", 1, "func Callee() {}"),
	}
	ex := NewExtractor(objects)
	rels := ex.Extract(objects)
	for _, r := range rels {
		if r.RelationType == codeobject.RelReferences && r.SourceID == "a" && r.TargetID == "b" {
			t.Fatalf("expected a resolved call site not to also surface as a REFERENCES edge")
		}
	}
}

func TestExtractorGoEmbedExtends(t *testing.T) {
	objects := []codeobject.CodeObject{
		obj("base", "Base", "pkg.Base", codeobject.ObjectClass, "pkg/base.go", 1, "type Base struct {\n\tName string\n}"),
		obj("child", "Child", "pkg.Child", codeobject.ObjectClass, "pkg/child.go", 1, "type Child struct {\n\tBase\n\tExtra int\n}"),
	}
	ex := NewExtractor(objects)
	rels := ex.Extract(objects)

	var sawExtends bool
	for _, r := range rels {
		if r.RelationType == codeobject.RelExtends && r.SourceID == "child" && r.TargetID == "base" {
			sawExtends = true
		}
	}
	if !sawExtends {
		t.Fatalf("expected EXTENDS edge from embedded struct field, got %+v", rels)
	}
}
