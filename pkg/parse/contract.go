// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package parse

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

// Parser is the contract every language-specific AST parser satisfies:
// given a file's path and source bytes, produce the code objects it
// declares and the intra-file relationships (CONTAINS/CONTAINED_BY,
// IMPORTS/IMPORTED_BY) among them.
type Parser interface {
	// Language returns the language identifier this parser handles (e.g.
	// "go", "typescript", "python", "javascript").
	Language() string

	// Parse extracts code objects and intra-file relationships from
	// source. filePath is project-relative and forward-slash normalized.
	Parse(filePath string, source []byte) (ParseResult, error)
}

// ParseResult is what a language parser returns for one file.
type ParseResult struct {
	Objects       []codeobject.CodeObject
	Relationships []codeobject.Relationship
}

// registry is the closed set of parser implementations, registered at
// composition time rather than discovered at runtime.
type registry struct {
	mu        sync.RWMutex
	byExt     map[string]Parser
	byLang    map[string]Parser
}

var defaultRegistry = newRegistry()

func newRegistry() *registry {
	return &registry{
		byExt:  make(map[string]Parser),
		byLang: make(map[string]Parser),
	}
}

// Register adds a parser to the default factory, associating it with the
// given file extensions (including the leading dot, e.g. ".go").
func Register(p Parser, extensions ...string) {
	defaultRegistry.register(p, extensions...)
}

func (r *registry) register(p Parser, extensions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byLang[p.Language()] = p
	for _, ext := range extensions {
		r.byExt[strings.ToLower(ext)] = p
	}
}

// ForFile returns the registered parser for filePath's extension, and
// false if no parser is registered for it (unsupported/unknown language;
// callers should skip the file and continue indexing).
func ForFile(filePath string) (Parser, bool) {
	return defaultRegistry.forFile(filePath)
}

func (r *registry) forFile(filePath string) (Parser, bool) {
	ext := strings.ToLower(filepath.Ext(filePath))
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byExt[ext]
	return p, ok
}

// ForLanguage returns the registered parser for a language identifier.
func ForLanguage(language string) (Parser, bool) {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	p, ok := defaultRegistry.byLang[language]
	return p, ok
}
