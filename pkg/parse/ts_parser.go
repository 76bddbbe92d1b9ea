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
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

// TSParser extracts CodeObjects from TypeScript and JavaScript source.
// Both grammars share node shapes closely enough (function_declaration,
// class_declaration, interface_declaration, import_statement) to drive
// from one walker, parameterized by which sitter.Language and label to
// use.
type TSParser struct {
	sitterParser *sitter.Parser
	language     string
	logger       *slog.Logger
}

// NewTypeScriptParser constructs a TypeScript Tree-sitter parser.
func NewTypeScriptParser(logger *slog.Logger) *TSParser {
	if logger == nil {
		logger = slog.Default()
	}
	p := sitter.NewParser()
	p.SetLanguage(typescript.GetLanguage())
	return &TSParser{sitterParser: p, language: "typescript", logger: logger}
}

// NewJavaScriptParser constructs a JavaScript Tree-sitter parser.
func NewJavaScriptParser(logger *slog.Logger) *TSParser {
	if logger == nil {
		logger = slog.Default()
	}
	p := sitter.NewParser()
	p.SetLanguage(javascript.GetLanguage())
	return &TSParser{sitterParser: p, language: "javascript", logger: logger}
}

// Language implements Parser.
func (p *TSParser) Language() string { return p.language }

// Parse implements Parser.
func (p *TSParser) Parse(filePath string, source []byte) (ParseResult, error) {
	tree, err := p.sitterParser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return ParseResult{}, fmt.Errorf("tree-sitter parse %s: %w", filePath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		p.logger.Warn("parser.ts.syntax_errors", "path", filePath, "language", p.language)
	}

	w := &tsWalker{content: source, filePath: filePath, language: p.language}
	w.walk(root, nil)

	var rels []codeobject.Relationship
	for _, obj := range w.objects {
		rels = append(rels, fileContainsObject(filePath, obj)...)
		if obj.ObjectType == codeobject.ObjectImport {
			rels = append(rels, fileImportsObject(filePath, obj)...)
		}
	}

	return ParseResult{Objects: w.objects, Relationships: rels}, nil
}

type tsWalker struct {
	content  []byte
	filePath string
	language string
	objects  []codeobject.CodeObject
}

func (w *tsWalker) text(n *sitter.Node) string {
	return string(w.content[n.StartByte():n.EndByte()])
}

func (w *tsWalker) lines(n *sitter.Node) (int, int) {
	return int(n.StartPoint().Row) + 1, int(n.EndPoint().Row) + 1
}

// docstring returns a preceding JSDoc-style "/** ... */" comment, if any.
func (w *tsWalker) docstring(node *sitter.Node) string {
	prev := node.PrevSibling()
	if prev == nil || prev.Type() != "comment" {
		return ""
	}
	text := w.text(prev)
	if !strings.HasPrefix(text, "/**") {
		return ""
	}
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimSuffix(text, "*/")
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		out = append(out, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func (w *tsWalker) newObject(name, qualifiedName string, objType codeobject.ObjectType, node *sitter.Node, signature string) codeobject.CodeObject {
	start, end := w.lines(node)
	content := w.text(node)
	id := codeobject.GenerateObjectID(w.filePath, qualifiedName, start, objType)
	cyclo := CyclomaticComplexity(w.language, content)
	nesting := NestingDepth(content)
	return codeobject.CodeObject{
		ID:            id,
		Name:          name,
		QualifiedName: qualifiedName,
		ObjectType:    objType,
		Language:      w.language,
		FilePath:      w.filePath,
		RelativePath:  w.filePath,
		StartLine:     start,
		EndLine:       end,
		Content:       content,
		Signature:     signature,
		Docstring:     w.docstring(node),
		Checksum:      codeobject.Checksum(content),
		Metadata: map[string]any{
			"cyclomatic_complexity": cyclo,
			"cognitive_complexity":  CognitiveComplexity(cyclo, nesting),
			"nesting_depth":         nesting,
			"lines_of_code":         LinesOfCode(content),
			"complexity_rating":     string(ComplexityRating(cyclo)),
		},
	}
}

// walk descends the tree; scope is the enclosing class/interface name
// (nil at top level) so methods get "Class.method" qualified names.
func (w *tsWalker) walk(node *sitter.Node, scope *string) {
	if node == nil {
		return
	}

	childScope := scope
	switch node.Type() {
	case "import_statement":
		w.extractImport(node)
	case "function_declaration":
		w.extractFunction(node, scope)
	case "method_definition":
		w.extractMethod(node, scope)
	case "class_declaration":
		name := w.extractClass(node)
		childScope = &name
	case "interface_declaration":
		name := w.extractInterface(node)
		childScope = &name
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i), childScope)
	}
}

func (w *tsWalker) buildSignature(keyword, name string, node *sitter.Node) string {
	var b strings.Builder
	b.WriteString(keyword)
	b.WriteString(" ")
	b.WriteString(name)
	if params := node.ChildByFieldName("parameters"); params != nil {
		b.WriteString(w.text(params))
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		b.WriteString(w.text(ret))
	}
	return b.String()
}

func (w *tsWalker) extractFunction(node *sitter.Node, scope *string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	qualified := name
	if scope != nil {
		qualified = *scope + "." + name
	}
	sig := w.buildSignature("function", name, node)
	w.objects = append(w.objects, w.newObject(name, qualified, codeobject.ObjectFunction, node, sig))
}

func (w *tsWalker) extractMethod(node *sitter.Node, scope *string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	qualified := name
	if scope != nil {
		qualified = *scope + "." + name
	}
	sig := w.buildSignature("method", name, node)
	w.objects = append(w.objects, w.newObject(name, qualified, codeobject.ObjectMethod, node, sig))
}

func (w *tsWalker) extractClass(node *sitter.Node) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := w.text(nameNode)
	w.objects = append(w.objects, w.newObject(name, name, codeobject.ObjectClass, node, "class "+name))
	return name
}

func (w *tsWalker) extractInterface(node *sitter.Node) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := w.text(nameNode)
	w.objects = append(w.objects, w.newObject(name, name, codeobject.ObjectInterface, node, "interface "+name))
	return name
}

func (w *tsWalker) extractImport(node *sitter.Node) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		return
	}
	importPath := strings.Trim(w.text(sourceNode), `"'`)
	w.objects = append(w.objects, w.newObject(importPath, importPath, codeobject.ObjectImport, node, importPath))
}

func init() {
	Register(NewTypeScriptParser(nil), ".ts", ".tsx")
	Register(NewJavaScriptParser(nil), ".js", ".jsx", ".mjs")
}
