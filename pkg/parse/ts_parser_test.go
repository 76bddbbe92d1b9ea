// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package parse

import (
	"testing"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

func TestTSParser_FunctionsAndClasses(t *testing.T) {
	src := []byte(`
import { readFile } from "fs";

export function greet(name: string): string {
	return "hi " + name;
}

class Greeter {
	greet(name: string) {
		return "hi " + name;
	}
}
`)
	p := NewTypeScriptParser(nil)
	result, err := p.Parse("sample.ts", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var sawFunc, sawClass, sawMethod bool
	for _, obj := range result.Objects {
		switch {
		case obj.ObjectType == codeobject.ObjectFunction && obj.Name == "greet":
			sawFunc = true
		case obj.ObjectType == codeobject.ObjectClass && obj.Name == "Greeter":
			sawClass = true
		case obj.ObjectType == codeobject.ObjectMethod && obj.Name == "greet":
			sawMethod = true
		}
	}
	if !sawFunc || !sawClass || !sawMethod {
		t.Fatalf("expected function, class, and method objects; got %+v", result.Objects)
	}
}

func TestTSParser_ImportsRelationships(t *testing.T) {
	src := []byte("import { readFile } from \"fs\";\n")
	p := NewTypeScriptParser(nil)
	result, err := p.Parse("sample.ts", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var sawImports, sawImportedBy bool
	for _, r := range result.Relationships {
		switch r.RelationType {
		case codeobject.RelImports:
			if r.TargetName == "fs" {
				sawImports = true
			}
		case codeobject.RelImportedBy:
			if r.SourceName == "fs" {
				sawImportedBy = true
			}
		}
	}
	if !sawImports || !sawImportedBy {
		t.Fatalf("expected IMPORTS and IMPORTED_BY edges for the fs import, got %+v", result.Relationships)
	}
}

func TestForFileRegistersTSParser(t *testing.T) {
	p, ok := ForFile("main.ts")
	if !ok {
		t.Fatal("expected a parser registered for .ts")
	}
	if p.Language() != "typescript" {
		t.Fatalf("expected typescript parser, got %s", p.Language())
	}
}
