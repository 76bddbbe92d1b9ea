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
	"github.com/smacker/go-tree-sitter/python"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

// PythonParser extracts CodeObjects from Python source: module-level and
// nested function_definition / class_definition nodes, and import
// statements.
type PythonParser struct {
	sitterParser *sitter.Parser
	logger       *slog.Logger
}

// NewPythonParser constructs a Python Tree-sitter parser.
func NewPythonParser(logger *slog.Logger) *PythonParser {
	if logger == nil {
		logger = slog.Default()
	}
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &PythonParser{sitterParser: p, logger: logger}
}

// Language implements Parser.
func (p *PythonParser) Language() string { return "python" }

// Parse implements Parser.
func (p *PythonParser) Parse(filePath string, source []byte) (ParseResult, error) {
	tree, err := p.sitterParser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return ParseResult{}, fmt.Errorf("tree-sitter parse %s: %w", filePath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		p.logger.Warn("parser.python.syntax_errors", "path", filePath)
	}

	w := &pyWalker{content: source, filePath: filePath}
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

type pyWalker struct {
	content  []byte
	filePath string
	objects  []codeobject.CodeObject
}

func (w *pyWalker) text(n *sitter.Node) string {
	return string(w.content[n.StartByte():n.EndByte()])
}

func (w *pyWalker) lines(n *sitter.Node) (int, int) {
	return int(n.StartPoint().Row) + 1, int(n.EndPoint().Row) + 1
}

// docstring returns the leading string-expression statement of a
// function/class body, Python convention for documentation.
func (w *pyWalker) docstring(node *sitter.Node) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first.Type() != "expression_statement" || first.ChildCount() == 0 {
		return ""
	}
	strNode := first.Child(0)
	if strNode.Type() != "string" {
		return ""
	}
	text := w.text(strNode)
	text = strings.Trim(text, `"'`)
	return strings.TrimSpace(text)
}

func (w *pyWalker) newObject(name, qualifiedName string, objType codeobject.ObjectType, node *sitter.Node, signature string) codeobject.CodeObject {
	start, end := w.lines(node)
	content := w.text(node)
	id := codeobject.GenerateObjectID(w.filePath, qualifiedName, start, objType)
	cyclo := CyclomaticComplexity("python", content)
	nesting := NestingDepth(content)
	return codeobject.CodeObject{
		ID:            id,
		Name:          name,
		QualifiedName: qualifiedName,
		ObjectType:    objType,
		Language:      "python",
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

func (w *pyWalker) walk(node *sitter.Node, scope *string) {
	if node == nil {
		return
	}

	childScope := scope
	switch node.Type() {
	case "import_statement", "import_from_statement":
		w.extractImport(node)
	case "function_definition":
		w.extractFunction(node, scope)
	case "class_definition":
		name := w.extractClass(node)
		childScope = &name
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i), childScope)
	}
}

func (w *pyWalker) buildSignature(name string, node *sitter.Node) string {
	var b strings.Builder
	b.WriteString("def ")
	b.WriteString(name)
	if params := node.ChildByFieldName("parameters"); params != nil {
		b.WriteString(w.text(params))
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		b.WriteString(" -> ")
		b.WriteString(w.text(ret))
	}
	return b.String()
}

func (w *pyWalker) extractFunction(node *sitter.Node, scope *string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	objType := codeobject.ObjectFunction
	qualified := name
	if scope != nil {
		objType = codeobject.ObjectMethod
		qualified = *scope + "." + name
	}
	sig := w.buildSignature(name, node)
	w.objects = append(w.objects, w.newObject(name, qualified, objType, node, sig))
}

func (w *pyWalker) extractClass(node *sitter.Node) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := w.text(nameNode)
	w.objects = append(w.objects, w.newObject(name, name, codeobject.ObjectClass, node, "class "+name))
	return name
}

func (w *pyWalker) extractImport(node *sitter.Node) {
	text := w.text(node)
	name := strings.Fields(text)
	modName := text
	if len(name) >= 2 {
		modName = name[1]
	}
	w.objects = append(w.objects, w.newObject(modName, modName, codeobject.ObjectImport, node, text))
}

func init() {
	Register(NewPythonParser(nil), ".py")
}
