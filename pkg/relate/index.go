// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package relate

import (
	"path/filepath"
	"strings"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

// objectIndex is the project-wide name index Extractor resolves against,
// built once per run and split by package directory.
type objectIndex struct {
	byQualifiedName map[string]string              // qualified_name -> id
	bySimpleName    map[string][]string             // simple name -> ids (ambiguous if >1)
	byPackage       map[string]map[string]string    // package dir -> simple name -> id
	classIndex      map[string]string                // class/interface simple name -> id
	interfaceNames  map[string]bool
	objects         map[string]codeobject.CodeObject // id -> object
}

func buildObjectIndex(objects []codeobject.CodeObject) *objectIndex {
	idx := &objectIndex{
		byQualifiedName: make(map[string]string),
		bySimpleName:    make(map[string][]string),
		byPackage:       make(map[string]map[string]string),
		classIndex:      make(map[string]string),
		interfaceNames:  make(map[string]bool),
		objects:         make(map[string]codeobject.CodeObject, len(objects)),
	}

	for _, obj := range objects {
		idx.objects[obj.ID] = obj
		idx.byQualifiedName[obj.QualifiedName] = obj.ID

		simple := simpleName(obj.QualifiedName, obj.Name)
		idx.bySimpleName[simple] = append(idx.bySimpleName[simple], obj.ID)

		pkgDir := filepath.Dir(obj.FilePath)
		if _, ok := idx.byPackage[pkgDir]; !ok {
			idx.byPackage[pkgDir] = make(map[string]string)
		}
		idx.byPackage[pkgDir][simple] = obj.ID

		switch obj.ObjectType {
		case codeobject.ObjectClass:
			idx.classIndex[obj.Name] = obj.ID
		case codeobject.ObjectInterface:
			idx.classIndex[obj.Name] = obj.ID
			idx.interfaceNames[obj.Name] = true
		}
	}
	return idx
}

func simpleName(qualified, name string) string {
	if name != "" {
		return name
	}
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

// resolveExact prefers an exact qualified-name match, then falls back to
// a unique simple-name match, returning "" if neither applies.
func (idx *objectIndex) resolveExact(name string) string {
	if id, ok := idx.byQualifiedName[name]; ok {
		return id
	}
	simple := simpleName(name, "")
	if ids, ok := idx.bySimpleName[simple]; ok && len(ids) == 1 {
		return ids[0]
	}
	return ""
}

// resolveInPackage prefers a match within the same package directory
// before falling back to the project-wide unique-name rule.
func (idx *objectIndex) resolveInPackage(pkgDir, name string) string {
	if pkgFuncs, ok := idx.byPackage[pkgDir]; ok {
		if id, ok := pkgFuncs[name]; ok {
			return id
		}
	}
	return idx.resolveExact(name)
}

func (idx *objectIndex) resolveType(name string) string {
	if id, ok := idx.classIndex[name]; ok {
		return id
	}
	return ""
}
