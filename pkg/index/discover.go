// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
)

// DiscoveredFile is a candidate source file found by Discover, not yet
// parsed or classified against prior IndexState.
type DiscoveredFile struct {
	RelPath  string
	AbsPath  string
	Size     int64
	Language string
}

// DiscoverResult is the outcome of walking a project tree.
type DiscoverResult struct {
	Files       []DiscoveredFile
	SkipReasons map[string]int
}

// Discover walks rootPath, applying gitignore-style include/exclude
// patterns (with negation) and the max file size limit.
func Discover(rootPath string, includeGlobs, excludeGlobs []string, maxFileSize int64) (*DiscoverResult, error) {
	excludeMatcher, err := gitignore.CompileIgnoreLines(excludeGlobs...)
	if err != nil {
		return nil, fmt.Errorf("compile exclude patterns: %w", err)
	}

	// With a negation pattern present a matched directory is still walked,
	// since a path beneath it may be re-included; its files are then
	// matched one by one.
	hasNegation := false
	for _, p := range excludeGlobs {
		if len(p) > 0 && p[0] == '!' {
			hasNegation = true
		}
	}

	result := &DiscoverResult{SkipReasons: make(map[string]int)}

	walkErr := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.SkipReasons["walk_error"]++
			return nil
		}
		relPath, relErr := filepath.Rel(rootPath, path)
		if relErr != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)
		if relPath == "." {
			return nil
		}

		if d.IsDir() {
			if !hasNegation && excludeMatcher.MatchesPath(relPath) {
				result.SkipReasons["excluded_dir"]++
				return filepath.SkipDir
			}
			return nil
		}

		if excludeMatcher.MatchesPath(relPath) {
			result.SkipReasons["excluded"]++
			return nil
		}
		if len(includeGlobs) > 0 && !matchesAnyGlob(includeGlobs, relPath) {
			result.SkipReasons["not_included"]++
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			result.SkipReasons["stat_error"]++
			return nil
		}
		if maxFileSize > 0 && info.Size() > maxFileSize {
			result.SkipReasons["too_large"]++
			return nil
		}
		if looksBinary(path) {
			result.SkipReasons["binary"]++
			return nil
		}

		lang := DetectLanguage(relPath)
		if lang == "" {
			result.SkipReasons["unsupported_language"]++
			return nil
		}

		result.Files = append(result.Files, DiscoveredFile{
			RelPath:  relPath,
			AbsPath:  path,
			Size:     info.Size(),
			Language: lang,
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk project tree: %w", walkErr)
	}

	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].RelPath < result.Files[j].RelPath })
	return result, nil
}

func matchesAnyGlob(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

// looksBinary sniffs the first 8KB of a file for a NUL byte.
func looksBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	const sniff = 8192
	buf := make([]byte, sniff)
	n, _ := io.ReadFull(f, buf)
	if n <= 0 {
		return false
	}
	return bytes.IndexByte(buf[:n], 0x00) >= 0
}

// extLanguage maps a lowercase file extension to the language/config
// identifier the parser registry and document chunkers key on.
var extLanguage = map[string]string{
	".go":     "go",
	".ts":     "typescript",
	".tsx":    "typescript",
	".js":     "javascript",
	".jsx":    "javascript",
	".mjs":    "javascript",
	".py":     "python",
	".md":     "markdown",
	".mdx":    "markdown",
	".yaml":   "config",
	".yml":    "config",
	".json":   "config",
	".env":    "config",
}

// DetectLanguage returns the language identifier for a relative path, or
// "" if the extension (or, for dotfiles like .env, the base name) is not
// one of the supported kinds.
func DetectLanguage(relPath string) string {
	base := filepath.Base(relPath)
	if base == ".env" || hasDotEnvSuffix(base) {
		return "config"
	}
	ext := filepath.Ext(relPath)
	return extLanguage[ext]
}

func hasDotEnvSuffix(base string) bool {
	return len(base) > 4 && base[:4] == ".env"
}
