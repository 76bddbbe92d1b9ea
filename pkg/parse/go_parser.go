// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package parse

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

// GoParser extracts CodeObjects and intra-file relationships from Go
// source using Tree-sitter, following the package/function/type/import
// walk the Go ecosystem expects: package-level declarations only. A
// method's receiver type is recorded in its qualified name and its
// receiver_type metadata; CONTAINS edges run from the file to every
// object, methods included.
type GoParser struct {
	sitterParser *sitter.Parser
	logger       *slog.Logger
}

// NewGoParser constructs a Go language Tree-sitter parser.
func NewGoParser(logger *slog.Logger) *GoParser {
	if logger == nil {
		logger = slog.Default()
	}
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	return &GoParser{sitterParser: p, logger: logger}
}

// Language implements Parser.
func (p *GoParser) Language() string { return "go" }

// Parse implements Parser.
func (p *GoParser) Parse(filePath string, source []byte) (ParseResult, error) {
	tree, err := p.sitterParser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return ParseResult{}, fmt.Errorf("tree-sitter parse %s: %w", filePath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		p.logger.Warn("parser.go.syntax_errors", "path", filePath)
	}

	w := &goWalker{content: source, filePath: filePath}
	w.walk(root)

	var rels []codeobject.Relationship
	for _, obj := range w.objects {
		rels = append(rels, fileContainsObject(filePath, obj)...)
		if obj.ObjectType == codeobject.ObjectImport {
			rels = append(rels, fileImportsObject(filePath, obj)...)
		}
	}

	return ParseResult{Objects: w.objects, Relationships: rels}, nil
}

func fileContainsObject(filePath string, obj codeobject.CodeObject) []codeobject.Relationship {
	fileID := "file:" + codeobject.NormalizePath(filePath)
	fwd := codeobject.Relationship{
		SourceID:     fileID,
		TargetID:     obj.ID,
		RelationType: codeobject.RelContains,
		SourceName:   filePath,
		SourceType:   "file",
		SourceFile:   filePath,
		TargetName:   obj.Name,
		TargetType:   string(obj.ObjectType),
		TargetFile:   obj.FilePath,
		TargetLine:   obj.StartLine,
	}
	return []codeobject.Relationship{fwd, fwd.Reversed()}
}

// fileImportsObject emits the IMPORTS/IMPORTED_BY edge linking a file to
// one of its declared import CodeObjects, alongside the CONTAINS edge
// every parsed object gets.
func fileImportsObject(filePath string, obj codeobject.CodeObject) []codeobject.Relationship {
	fileID := "file:" + codeobject.NormalizePath(filePath)
	fwd := codeobject.Relationship{
		SourceID:     fileID,
		TargetID:     obj.ID,
		RelationType: codeobject.RelImports,
		SourceName:   filePath,
		SourceType:   "file",
		SourceFile:   filePath,
		TargetName:   obj.Name,
		TargetType:   string(obj.ObjectType),
		TargetFile:   obj.FilePath,
		TargetLine:   obj.StartLine,
	}
	return []codeobject.Relationship{fwd, fwd.Reversed()}
}

type goWalker struct {
	content  []byte
	filePath string
	objects  []codeobject.CodeObject
	pkgName  string
}

func (w *goWalker) walk(node *sitter.Node) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "package_clause":
		if id := node.ChildByFieldName("name"); id != nil {
			w.pkgName = w.text(id)
		}
	case "import_declaration":
		w.extractImports(node)
	case "function_declaration":
		w.extractFunction(node)
		return
	case "method_declaration":
		w.extractMethod(node)
		return
	case "type_declaration":
		w.extractTypeDeclaration(node)
	case "const_declaration":
		w.extractValueDeclaration(node, codeobject.ObjectConstant)
	case "var_declaration":
		w.extractValueDeclaration(node, codeobject.ObjectVariable)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i))
	}
}

func (w *goWalker) text(n *sitter.Node) string {
	return string(w.content[n.StartByte():n.EndByte()])
}

func (w *goWalker) lines(n *sitter.Node) (int, int) {
	return int(n.StartPoint().Row) + 1, int(n.EndPoint().Row) + 1
}

// docstring returns the contiguous block of "//" line comments immediately
// preceding node, joined with newlines, Go-doc-comment style.
func (w *goWalker) docstring(node *sitter.Node) string {
	prev := node.PrevSibling()
	var lines []string
	for prev != nil && prev.Type() == "comment" {
		lines = append([]string{strings.TrimPrefix(strings.TrimPrefix(w.text(prev), "//"), " ")}, lines...)
		prev = prev.PrevSibling()
	}
	return strings.Join(lines, "\n")
}

func (w *goWalker) newObject(name, qualifiedName string, objType codeobject.ObjectType, node *sitter.Node, signature string) codeobject.CodeObject {
	start, end := w.lines(node)
	content := w.text(node)
	id := codeobject.GenerateObjectID(w.filePath, qualifiedName, start, objType)
	cyclo := CyclomaticComplexity("go", content)
	nesting := NestingDepth(content)
	loc := LinesOfCode(content)
	return codeobject.CodeObject{
		ID:            id,
		Name:          name,
		QualifiedName: qualifiedName,
		ObjectType:    objType,
		Language:      "go",
		FilePath:      w.filePath,
		RelativePath:  w.filePath,
		StartLine:     start,
		EndLine:       end,
		Content:       content,
		Signature:     signature,
		Docstring:     w.docstring(node),
		Checksum:      codeobject.Checksum(content),
		Metadata: map[string]any{
			"cyclomatic_complexity":  cyclo,
			"cognitive_complexity":   CognitiveComplexity(cyclo, nesting),
			"nesting_depth":          nesting,
			"lines_of_code":          loc,
			"complexity_rating":      string(ComplexityRating(cyclo)),
			"package":                w.pkgName,
		},
	}
}

func (w *goWalker) extractFunction(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	sig := w.buildSignature("func", name, node)
	qualified := w.pkgName + "." + name
	w.objects = append(w.objects, w.newObject(name, qualified, codeobject.ObjectFunction, node, sig))
}

func (w *goWalker) extractMethod(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	receiverType := ""
	if recv := node.ChildByFieldName("receiver"); recv != nil {
		receiverType = extractGoReceiverType(recv, w.content)
	}
	sig := w.buildSignature("func", name, node)
	qualified := w.pkgName + "." + receiverType + "." + name
	obj := w.newObject(name, qualified, codeobject.ObjectMethod, node, sig)
	if obj.Metadata == nil {
		obj.Metadata = map[string]any{}
	}
	obj.Metadata["receiver_type"] = receiverType
	w.objects = append(w.objects, obj)
}

func (w *goWalker) buildSignature(keyword, name string, node *sitter.Node) string {
	var b strings.Builder
	b.WriteString(keyword)
	b.WriteString(" ")
	b.WriteString(name)
	if params := node.ChildByFieldName("parameters"); params != nil {
		b.WriteString(w.text(params))
	}
	if result := node.ChildByFieldName("result"); result != nil {
		b.WriteString(" ")
		b.WriteString(w.text(result))
	}
	return b.String()
}

func (w *goWalker) extractTypeDeclaration(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type_spec":
			w.extractTypeSpec(child)
		case "type_spec_list":
			for j := 0; j < int(child.ChildCount()); j++ {
				if spec := child.Child(j); spec.Type() == "type_spec" {
					w.extractTypeSpec(spec)
				}
			}
		}
	}
}

func (w *goWalker) extractTypeSpec(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	typeNode := node.ChildByFieldName("type")

	objType := codeobject.ObjectType_
	if typeNode != nil {
		switch typeNode.Type() {
		case "struct_type":
			objType = codeobject.ObjectClass
			w.extractStructFields(typeNode, name)
		case "interface_type":
			objType = codeobject.ObjectInterface
		}
	}

	qualified := w.pkgName + "." + name
	w.objects = append(w.objects, w.newObject(name, qualified, objType, node, ""))
}

func (w *goWalker) extractStructFields(structNode *sitter.Node, structName string) {
	fieldListNode := structNode.ChildByFieldName("body")
	if fieldListNode == nil {
		return
	}
	for i := 0; i < int(fieldListNode.ChildCount()); i++ {
		decl := fieldListNode.Child(i)
		if decl.Type() != "field_declaration" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := w.text(nameNode)
		qualified := w.pkgName + "." + structName + "." + name
		w.objects = append(w.objects, w.newObject(name, qualified, codeobject.ObjectField, decl, ""))
	}
}

func (w *goWalker) extractValueDeclaration(node *sitter.Node, objType codeobject.ObjectType) {
	for i := 0; i < int(node.ChildCount()); i++ {
		spec := node.Child(i)
		if spec.Type() != "const_spec" && spec.Type() != "var_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := w.text(nameNode)
		qualified := w.pkgName + "." + name
		w.objects = append(w.objects, w.newObject(name, qualified, objType, spec, ""))
	}
}

func (w *goWalker) extractImports(node *sitter.Node) {
	w.walkImportSpecs(node)
}

func (w *goWalker) walkImportSpecs(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import_spec":
			w.extractImportSpec(child)
		case "import_spec_list":
			w.walkImportSpecs(child)
		}
	}
}

func (w *goWalker) extractImportSpec(node *sitter.Node) {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		return
	}
	importPath := strings.Trim(w.text(pathNode), `"`)
	name := importPath
	if alias := node.ChildByFieldName("name"); alias != nil {
		name = w.text(alias)
	}
	qualified := importPath
	w.objects = append(w.objects, w.newObject(name, qualified, codeobject.ObjectImport, node, importPath))
}

func extractGoReceiverType(receiverNode *sitter.Node, content []byte) string {
	for i := 0; i < int(receiverNode.ChildCount()); i++ {
		param := receiverNode.Child(i)
		if param.Type() != "parameter_declaration" {
			continue
		}
		typeNode := param.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		name := string(content[typeNode.StartByte():typeNode.EndByte()])
		return strings.TrimPrefix(name, "*")
	}
	return ""
}

func init() {
	Register(NewGoParser(nil), ".go")
}
