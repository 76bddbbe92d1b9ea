// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package parse

import (
	"testing"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

func TestGoParser_FunctionsAndMethods(t *testing.T) {
	src := []byte(`package sample

// Start begins serving requests.
func (s *Server) Start() error {
	return nil
}

func NewServer(port int) *Server {
	return &Server{port: port}
}

type Server struct {
	port int
}
`)
	p := NewGoParser(nil)
	result, err := p.Parse("sample.go", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var sawMethod, sawFunc, sawStruct bool
	for _, obj := range result.Objects {
		switch {
		case obj.ObjectType == codeobject.ObjectMethod && obj.Name == "Start":
			sawMethod = true
			if obj.Docstring != "Start begins serving requests." {
				t.Errorf("unexpected docstring: %q", obj.Docstring)
			}
			if obj.Metadata["receiver_type"] != "Server" {
				t.Errorf("expected receiver_type Server, got %v", obj.Metadata["receiver_type"])
			}
		case obj.ObjectType == codeobject.ObjectFunction && obj.Name == "NewServer":
			sawFunc = true
		case obj.ObjectType == codeobject.ObjectClass && obj.Name == "Server":
			sawStruct = true
		}
	}
	if !sawMethod || !sawFunc || !sawStruct {
		t.Fatalf("expected method, function, and struct objects; got %d objects", len(result.Objects))
	}
}

func TestGoParser_ContainsRelationships(t *testing.T) {
	src := []byte("package sample\n\nfunc Foo() {}\n")
	p := NewGoParser(nil)
	result, err := p.Parse("foo.go", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(result.Relationships) != 2 {
		t.Fatalf("expected 2 relationships (forward+reverse CONTAINS), got %d", len(result.Relationships))
	}
	var sawContains, sawContainedBy bool
	for _, r := range result.Relationships {
		switch r.RelationType {
		case codeobject.RelContains:
			sawContains = true
		case codeobject.RelContainedBy:
			sawContainedBy = true
		}
	}
	if !sawContains || !sawContainedBy {
		t.Fatal("expected both CONTAINS and CONTAINED_BY edges")
	}
}

func TestGoParser_DeterministicIDs(t *testing.T) {
	src := []byte("package sample\n\nfunc Foo() {}\n")
	p := NewGoParser(nil)
	a, err := p.Parse("foo.go", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, err := p.Parse("foo.go", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(a.Objects) != len(b.Objects) || a.Objects[0].ID != b.Objects[0].ID {
		t.Fatal("object IDs are not deterministic across re-parses of identical input")
	}
}

func TestGoParser_Imports(t *testing.T) {
	src := []byte(`package sample

import (
	"fmt"
	ioutil "io/ioutil"
)
`)
	p := NewGoParser(nil)
	result, err := p.Parse("imp.go", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	names := map[string]bool{}
	for _, obj := range result.Objects {
		if obj.ObjectType == codeobject.ObjectImport {
			names[obj.Name] = true
		}
	}
	if !names["fmt"] || !names["ioutil"] {
		t.Fatalf("expected fmt and ioutil imports, got %v", names)
	}
}

func TestGoParser_ImportsRelationships(t *testing.T) {
	src := []byte("package sample\n\nimport \"fmt\"\n\nfunc Foo() { fmt.Println(\"hi\") }\n")
	p := NewGoParser(nil)
	result, err := p.Parse("imp.go", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var sawImports, sawImportedBy bool
	for _, r := range result.Relationships {
		switch r.RelationType {
		case codeobject.RelImports:
			if r.TargetName == "fmt" {
				sawImports = true
			}
		case codeobject.RelImportedBy:
			if r.SourceName == "fmt" {
				sawImportedBy = true
			}
		}
	}
	if !sawImports || !sawImportedBy {
		t.Fatalf("expected IMPORTS and IMPORTED_BY edges for the fmt import, got %+v", result.Relationships)
	}
}

func TestForFileRegistersGoParser(t *testing.T) {
	p, ok := ForFile("main.go")
	if !ok {
		t.Fatal("expected a parser registered for .go")
	}
	if p.Language() != "go" {
		t.Fatalf("expected go parser, got %s", p.Language())
	}
}
