// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

func parsePython(t *testing.T, src string) ParseResult {
	t.Helper()
	p := NewPythonParser(nil)
	result, err := p.Parse("sample.py", []byte(src))
	require.NoError(t, err, "Parse should not error on valid Python source")
	return result
}

func TestPythonParser_FunctionsAndDocstring(t *testing.T) {
	result := parsePython(t, `
def greet(name):
    """Say hello."""
    return "hello " + name

def farewell(name):
    return "bye " + name
`)

	var funcs []codeobject.CodeObject
	for _, obj := range result.Objects {
		if obj.ObjectType == codeobject.ObjectFunction {
			funcs = append(funcs, obj)
		}
	}
	require.Len(t, funcs, 2, "expected two module-level functions")

	var greet *codeobject.CodeObject
	for i := range funcs {
		if funcs[i].Name == "greet" {
			greet = &funcs[i]
		}
	}
	require.NotNil(t, greet, "greet function should be extracted")
	assert.Equal(t, "Say hello.", greet.Docstring)
	assert.Contains(t, greet.Signature, "def greet")
}

func TestPythonParser_ClassMethodsAreQualified(t *testing.T) {
	result := parsePython(t, `
class Greeter:
    def greet(self, name):
        return "hi " + name
`)

	var class, method *codeobject.CodeObject
	for i := range result.Objects {
		obj := &result.Objects[i]
		switch {
		case obj.ObjectType == codeobject.ObjectClass && obj.Name == "Greeter":
			class = obj
		case obj.ObjectType == codeobject.ObjectMethod && obj.Name == "greet":
			method = obj
		}
	}
	require.NotNil(t, class, "Greeter class should be extracted")
	require.NotNil(t, method, "greet method should be extracted")
	assert.Equal(t, "Greeter.greet", method.QualifiedName)
}

func TestPythonParser_Imports(t *testing.T) {
	result := parsePython(t, "import os\nfrom collections import OrderedDict\n")

	var imports []string
	for _, obj := range result.Objects {
		if obj.ObjectType == codeobject.ObjectImport {
			imports = append(imports, obj.Name)
		}
	}
	assert.Len(t, imports, 2, "expected two import statements extracted")
}

func TestPythonParser_ImportsRelationships(t *testing.T) {
	result := parsePython(t, "import os\n")

	var sawImports, sawImportedBy bool
	for _, r := range result.Relationships {
		switch r.RelationType {
		case codeobject.RelImports:
			sawImports = true
		case codeobject.RelImportedBy:
			sawImportedBy = true
		}
	}
	assert.True(t, sawImports, "expected an IMPORTS edge for the os import")
	assert.True(t, sawImportedBy, "expected the reverse IMPORTED_BY edge")
}
