// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package parse

import (
	"regexp"
	"strings"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

// ChunkConfig bounds document chunk sizes, measured in whitespace-split
// tokens.
type ChunkConfig struct {
	MinChunkSize int
	MaxChunkSize int
	Overlap      int
}

// DefaultChunkConfig matches the defaults a reasonable markdown/config
// corpus chunks well under: small enough to keep embeddings focused,
// large enough to avoid one-chunk-per-line fragmentation.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{MinChunkSize: 50, MaxChunkSize: 400, Overlap: 40}
}

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)

// DocumentParser splits Markdown/plaintext documents into DocumentNode
// chunks respecting ChunkConfig, preserving heading hierarchy via
// ParentID and Level.
type DocumentParser struct {
	cfg ChunkConfig
}

// NewDocumentParser constructs a document chunker with cfg.
func NewDocumentParser(cfg ChunkConfig) *DocumentParser {
	return &DocumentParser{cfg: cfg}
}

type rawBlock struct {
	nodeType  codeobject.NodeType
	content   string
	startLine int
	endLine   int
	level     int
}

// Chunk splits source into DocumentNodes for filePath.
func (d *DocumentParser) Chunk(filePath string, source []byte) []codeobject.DocumentNode {
	blocks := d.splitBlocks(string(source))
	blocks = d.mergeSmall(blocks)
	var expanded []rawBlock
	for _, b := range blocks {
		expanded = append(expanded, d.splitOversized(b)...)
	}

	var nodes []codeobject.DocumentNode
	var headingStack []string // id per active heading level (index 0 == level 1)
	for _, b := range expanded {
		var parentID string
		if b.nodeType == codeobject.NodeHeading {
			for len(headingStack) >= b.level {
				headingStack = headingStack[:len(headingStack)-1]
			}
		} else if len(headingStack) > 0 {
			parentID = headingStack[len(headingStack)-1]
		}

		id := codeobject.GenerateDocumentID(filePath, b.nodeType, b.startLine, firstLine(b.content))
		node := codeobject.DocumentNode{
			ID:        id,
			NodeType:  b.nodeType,
			Content:   b.content,
			FilePath:  filePath,
			StartLine: b.startLine,
			EndLine:   b.endLine,
			Level:     b.level,
			ParentID:  parentID,
		}
		if refs := detectEnvVarRefs(b.content); len(refs) > 0 {
			node.Metadata = map[string]any{"env_var_refs": refs}
		}
		if refs := detectCodeRefs(b.content); len(refs) > 0 {
			if node.Metadata == nil {
				node.Metadata = map[string]any{}
			}
			node.Metadata["code_refs"] = refs
		}
		nodes = append(nodes, node)

		if b.nodeType == codeobject.NodeHeading {
			headingStack = append(headingStack, id)
		}
	}
	return nodes
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// splitBlocks does a first pass over lines: headings become their own
// block; code fences become code_block nodes; everything else
// accumulates into paragraph blocks broken at blank lines.
func (d *DocumentParser) splitBlocks(content string) []rawBlock {
	lines := strings.Split(content, "\n")
	var blocks []rawBlock
	var para []string
	paraStart := 0
	inFence := false
	var fence []string
	fenceStart := 0

	flushPara := func(endLine int) {
		if len(para) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(para, "\n"))
		if text != "" {
			blocks = append(blocks, rawBlock{nodeType: codeobject.NodeParagraph, content: text, startLine: paraStart + 1, endLine: endLine})
		}
		para = nil
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				fence = append(fence, line)
				blocks = append(blocks, rawBlock{
					nodeType:  codeobject.NodeCodeBlock,
					content:   strings.Join(fence, "\n"),
					startLine: fenceStart + 1,
					endLine:   i + 1,
				})
				fence = nil
				inFence = false
			} else {
				flushPara(i)
				inFence = true
				fenceStart = i
				fence = []string{line}
			}
			continue
		}
		if inFence {
			fence = append(fence, line)
			continue
		}

		if m := headingRe.FindStringSubmatch(line); m != nil {
			flushPara(i)
			blocks = append(blocks, rawBlock{
				nodeType:  codeobject.NodeHeading,
				content:   strings.TrimSpace(m[2]),
				startLine: i + 1,
				endLine:   i + 1,
				level:     len(m[1]),
			})
			continue
		}

		if trimmed == "" {
			flushPara(i)
			paraStart = i + 1
			continue
		}
		if len(para) == 0 {
			paraStart = i
		}
		para = append(para, line)
	}
	flushPara(len(lines))
	if inFence && len(fence) > 0 {
		blocks = append(blocks, rawBlock{
			nodeType:  codeobject.NodeCodeBlock,
			content:   strings.Join(fence, "\n"),
			startLine: fenceStart + 1,
			endLine:   len(lines),
		})
	}
	return blocks
}

// mergeSmall merges a paragraph block into the paragraph block before it
// when that one has fewer than MinChunkSize tokens and the combined count
// stays within MaxChunkSize, so undersized paragraph fragments aren't
// indexed as separate near-empty chunks. Other block types are never
// merged.
func (d *DocumentParser) mergeSmall(blocks []rawBlock) []rawBlock {
	var out []rawBlock
	for _, b := range blocks {
		if len(out) == 0 {
			out = append(out, b)
			continue
		}
		last := &out[len(out)-1]
		if last.nodeType == b.nodeType && b.nodeType == codeobject.NodeParagraph &&
			tokenCount(last.content) < d.cfg.MinChunkSize &&
			tokenCount(last.content)+tokenCount(b.content) <= d.cfg.MaxChunkSize {
			last.content = last.content + "\n\n" + b.content
			last.endLine = b.endLine
			continue
		}
		out = append(out, b)
	}
	return out
}

// splitOversized breaks a block exceeding MaxChunkSize at sentence
// boundaries, carrying Overlap tokens into the next piece.
func (d *DocumentParser) splitOversized(b rawBlock) []rawBlock {
	if tokenCount(b.content) <= d.cfg.MaxChunkSize || b.nodeType == codeobject.NodeCodeBlock {
		return []rawBlock{b}
	}

	sentences := splitSentences(b.content)
	var out []rawBlock
	var cur []string
	curTokens := 0
	lineOffset := b.startLine

	flush := func() {
		if len(cur) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(cur, " "))
		lineSpan := strings.Count(text, "\n") + 1
		out = append(out, rawBlock{
			nodeType:  b.nodeType,
			content:   text,
			startLine: lineOffset,
			endLine:   lineOffset + lineSpan - 1,
			level:     b.level,
		})
		lineOffset += lineSpan
	}

	for _, s := range sentences {
		st := tokenCount(s)
		if curTokens+st > d.cfg.MaxChunkSize && len(cur) > 0 {
			flush()
			cur = overlapTail(cur, d.cfg.Overlap)
			curTokens = tokenCount(strings.Join(cur, " "))
		}
		cur = append(cur, s)
		curTokens += st
	}
	flush()
	if len(out) == 0 {
		return []rawBlock{b}
	}
	return out
}

func tokenCount(s string) int {
	return len(strings.Fields(s))
}

var sentenceBoundaryRe = regexp.MustCompile(`(?:[.!?])\s+`)

func splitSentences(text string) []string {
	parts := sentenceBoundaryRe.Split(text, -1)
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}

func overlapTail(sentences []string, overlapTokens int) []string {
	if overlapTokens <= 0 {
		return nil
	}
	var tail []string
	total := 0
	for i := len(sentences) - 1; i >= 0; i-- {
		total += tokenCount(sentences[i])
		tail = append([]string{sentences[i]}, tail...)
		if total >= overlapTokens {
			break
		}
	}
	return tail
}

var envVarRe = regexp.MustCompile(`\$\{?([A-Z][A-Z0-9_]{2,})\}?`)

// detectEnvVarRefs finds SCREAMING_SNAKE_CASE environment-variable-style
// references (e.g. $DATABASE_URL, ${API_KEY}) in prose, for metadata.
func detectEnvVarRefs(content string) []string {
	matches := envVarRe.FindAllStringSubmatch(content, -1)
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

var codeRefRe = regexp.MustCompile("`([A-Za-z_][A-Za-z0-9_]*(?:\\.[A-Za-z_][A-Za-z0-9_]*)*)\\(?\\)?`")

// detectCodeRefs finds backtick-quoted identifiers in prose (e.g.
// `ParseFile`, `Extractor.Extract`, `NewPipeline()`), candidates for
// linking a document chunk back to the code objects it discusses.
func detectCodeRefs(content string) []string {
	matches := codeRefRe.FindAllStringSubmatch(content, -1)
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		name := m[1]
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
