// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package relate

import (
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

// parallelThreshold is the call-site count at or above which Extractor switches
// from sequential to worker-pool resolution.
const parallelThreshold = 1000

// callSite is a single unresolved reference discovered inside an object's
// body: a candidate callee/base-type name plus the calling object's id
// and package directory, awaiting resolution against the project index.
type callSite struct {
	callerID   string
	calleeName string
	pkgDir     string
}

var callPattern = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)?)\s*\(`)

// identPattern matches a bare identifier (optionally dotted) not followed
// by a call parenthesis: type references, field accesses, variable reads.
var identPattern = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)?)\b`)

// referenceConfidence is the weight attached to a REFERENCES edge's
// metadata, lower than the certainty of a resolved CALLS edge since the
// identifier's role (type, read, field) isn't distinguished.
const referenceConfidence = 0.5

// Extractor resolves cross-file relationships among a project's
// CodeObjects: CALLS, EXTENDS/IMPLEMENTS, and REFERENCES, writing the
// bidirectional reverse edge for every resolved forward edge.
type Extractor struct {
	idx *objectIndex
}

// NewExtractor builds the project-wide name index used to resolve
// cross-file references. Call once per indexing run after all files'
// intra-file objects are known.
func NewExtractor(objects []codeobject.CodeObject) *Extractor {
	return &Extractor{idx: buildObjectIndex(objects)}
}

// Extract resolves CALLS, EXTENDS/IMPLEMENTS, and REFERENCES relationships
// for the given objects and returns the deduplicated forward+reverse edge
// set.
func (e *Extractor) Extract(objects []codeobject.CodeObject) []codeobject.Relationship {
	sites := e.collectCallSites(objects)

	var resolved []codeobject.Relationship
	if len(sites) < parallelThreshold {
		resolved = e.resolveSequential(sites)
	} else {
		resolved = e.resolveParallel(sites)
	}

	resolved = append(resolved, e.extractInheritance(objects)...)
	resolved = append(resolved, e.extractReferences(objects, sites)...)

	return dedupeWithReverse(resolved)
}

func (e *Extractor) collectCallSites(objects []codeobject.CodeObject) []callSite {
	var sites []callSite
	for _, obj := range objects {
		if obj.ObjectType != codeobject.ObjectFunction && obj.ObjectType != codeobject.ObjectMethod {
			continue
		}
		pkgDir := filepath.Dir(obj.FilePath)
		matches := callPattern.FindAllStringSubmatch(obj.Content, -1)
		seen := make(map[string]bool, len(matches))
		for _, m := range matches {
			name := m[1]
			if name == obj.Name || seen[name] || isLanguageKeyword(name) {
				continue
			}
			seen[name] = true
			sites = append(sites, callSite{callerID: obj.ID, calleeName: name, pkgDir: pkgDir})
		}
	}
	return sites
}

var keywordSet = map[string]bool{
	"if": true, "for": true, "switch": true, "while": true, "func": true,
	"return": true, "defer": true, "go": true, "select": true,
}

func isLanguageKeyword(name string) bool {
	return keywordSet[name]
}

func (e *Extractor) resolveSequential(sites []callSite) []codeobject.Relationship {
	var rels []codeobject.Relationship
	for _, s := range sites {
		if rel, ok := e.resolveOne(s); ok {
			rels = append(rels, rel)
		}
	}
	return rels
}

func (e *Extractor) resolveParallel(sites []callSite) []codeobject.Relationship {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}

	jobs := make(chan callSite, len(sites))
	results := make(chan codeobject.Relationship, len(sites))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				if rel, ok := e.resolveOne(s); ok {
					results <- rel
				}
			}
		}()
	}
	for _, s := range sites {
		jobs <- s
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var rels []codeobject.Relationship
	for rel := range results {
		rels = append(rels, rel)
	}
	return rels
}

func (e *Extractor) resolveOne(s callSite) (codeobject.Relationship, bool) {
	return e.resolveSite(s, codeobject.RelCalls, nil)
}

// resolveSite resolves a callSite's name against the package-scoped index
// and builds a relationship of relType, attaching metadata (e.g. a
// confidence score) when given.
func (e *Extractor) resolveSite(s callSite, relType codeobject.RelationType, metadata map[string]any) (codeobject.Relationship, bool) {
	calleeName := s.calleeName
	if i := strings.LastIndex(calleeName, "."); i >= 0 {
		calleeName = calleeName[i+1:]
	}
	if len(calleeName) == 0 {
		return codeobject.Relationship{}, false
	}

	calleeID := e.idx.resolveInPackage(s.pkgDir, calleeName)
	if calleeID == "" || calleeID == s.callerID {
		return codeobject.Relationship{}, false
	}

	caller, callerOK := e.idx.objects[s.callerID]
	callee, calleeOK := e.idx.objects[calleeID]
	if !callerOK || !calleeOK {
		return codeobject.Relationship{}, false
	}

	return codeobject.Relationship{
		SourceID:     caller.ID,
		TargetID:     callee.ID,
		RelationType: relType,
		SourceName:   caller.Name,
		SourceType:   string(caller.ObjectType),
		SourceFile:   caller.FilePath,
		SourceLine:   caller.StartLine,
		TargetName:   callee.Name,
		TargetType:   string(callee.ObjectType),
		TargetFile:   callee.FilePath,
		TargetLine:   callee.StartLine,
		Metadata:     metadata,
	}, true
}

// collectReferenceSites finds bare identifier occurrences in a function or
// method body that are not already captured as call sites: type names,
// field accesses, variable reads. These resolve to REFERENCES edges,
// the lower-confidence fallback for any symbol use CALLS doesn't cover.
func (e *Extractor) collectReferenceSites(objects []codeobject.CodeObject, callSites []callSite) []callSite {
	calledNames := make(map[string]map[string]bool, len(objects))
	for _, s := range callSites {
		if calledNames[s.callerID] == nil {
			calledNames[s.callerID] = make(map[string]bool)
		}
		calledNames[s.callerID][s.calleeName] = true
	}

	var sites []callSite
	for _, obj := range objects {
		if obj.ObjectType != codeobject.ObjectFunction && obj.ObjectType != codeobject.ObjectMethod {
			continue
		}
		pkgDir := filepath.Dir(obj.FilePath)
		matches := identPattern.FindAllStringSubmatch(obj.Content, -1)
		seen := make(map[string]bool, len(matches))
		already := calledNames[obj.ID]
		for _, m := range matches {
			name := m[1]
			if name == obj.Name || seen[name] || already[name] || isLanguageKeyword(name) {
				continue
			}
			seen[name] = true
			sites = append(sites, callSite{callerID: obj.ID, calleeName: name, pkgDir: pkgDir})
		}
	}
	return sites
}

// extractReferences resolves the REFERENCES edges for any symbol use
// collectReferenceSites surfaces, tagging each with a confidence below
// a resolved CALLS edge since the identifier's role isn't disambiguated.
func (e *Extractor) extractReferences(objects []codeobject.CodeObject, callSites []callSite) []codeobject.Relationship {
	var rels []codeobject.Relationship
	for _, s := range e.collectReferenceSites(objects, callSites) {
		if rel, ok := e.resolveSite(s, codeobject.RelReferences, map[string]any{"confidence": referenceConfidence}); ok {
			rels = append(rels, rel)
		}
	}
	return rels
}

var (
	goEmbedRe      = regexp.MustCompile(`(?m)^\s*\*?([A-Z][A-Za-z0-9_]*)\s*$`)
	extendsKindRe  = regexp.MustCompile(`(?:extends|implements)\s+([A-Za-z_][A-Za-z0-9_.]*)`)
)

// extractInheritance resolves EXTENDS/IMPLEMENTS edges: Go embedded
// struct fields are treated as EXTENDS; TypeScript/Python/Java-style
// "extends"/"implements" clauses captured verbatim in class signatures
// are resolved against the class/interface index.
func (e *Extractor) extractInheritance(objects []codeobject.CodeObject) []codeobject.Relationship {
	var rels []codeobject.Relationship
	for _, obj := range objects {
		if obj.ObjectType != codeobject.ObjectClass && obj.ObjectType != codeobject.ObjectInterface {
			continue
		}

		for _, m := range extendsKindRe.FindAllStringSubmatch(obj.Signature+" "+obj.Content, -1) {
			baseID := e.idx.resolveType(m[1])
			if baseID == "" || baseID == obj.ID {
				continue
			}
			base := e.idx.objects[baseID]
			relType := codeobject.RelExtends
			if e.idx.interfaceNames[base.Name] {
				relType = codeobject.RelImplements
			}
			rels = append(rels, codeobject.Relationship{
				SourceID:     obj.ID,
				TargetID:     baseID,
				RelationType: relType,
				SourceName:   obj.Name,
				SourceType:   string(obj.ObjectType),
				SourceFile:   obj.FilePath,
				SourceLine:   obj.StartLine,
				TargetName:   base.Name,
				TargetType:   string(base.ObjectType),
				TargetFile:   base.FilePath,
				TargetLine:   base.StartLine,
			})
		}

		if obj.Language == "go" && obj.ObjectType == codeobject.ObjectClass {
			for _, m := range goEmbedRe.FindAllStringSubmatch(obj.Content, -1) {
				baseID := e.idx.resolveType(m[1])
				if baseID == "" || baseID == obj.ID {
					continue
				}
				base := e.idx.objects[baseID]
				rels = append(rels, codeobject.Relationship{
					SourceID:     obj.ID,
					TargetID:     baseID,
					RelationType: codeobject.RelExtends,
					SourceName:   obj.Name,
					SourceType:   string(obj.ObjectType),
					SourceFile:   obj.FilePath,
					TargetName:   base.Name,
					TargetType:   string(base.ObjectType),
					TargetFile:   base.FilePath,
				})
			}
		}
	}
	return rels
}

// dedupeWithReverse writes the reverse edge for every forward edge and
// deduplicates the combined set by (source, target, relation_type).
func dedupeWithReverse(forward []codeobject.Relationship) []codeobject.Relationship {
	seen := make(map[[3]string]bool, len(forward)*2)
	out := make([]codeobject.Relationship, 0, len(forward)*2)
	for _, r := range forward {
		if !seen[r.Key()] {
			seen[r.Key()] = true
			out = append(out, r)
		}
		rev := r.Reversed()
		if !seen[rev.Key()] {
			seen[rev.Key()] = true
			out = append(out, rev)
		}
	}
	return out
}

// Stats reports index size for observability.
func (e *Extractor) Stats() (objects, simpleNames, packages int) {
	return len(e.idx.objects), len(e.idx.bySimpleName), len(e.idx.byPackage)
}
