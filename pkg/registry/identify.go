// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
)

const maxProjectIDLength = 63

// Identify resolves a project directory to a stable project id:
// explicit > git remote.origin.url > directory name > a hash of the
// absolute path.
//
// explicit, if non-empty, is returned normalized and takes precedence
// over every other source (the CLI's --project-id flag).
func Identify(absPath, explicit string) string {
	if explicit != "" {
		return normalize(explicit)
	}
	if remote := remoteOriginSlug(absPath); remote != "" {
		return normalize(remote)
	}
	if name := filepath.Base(absPath); name != "" && name != "." && name != string(filepath.Separator) {
		return normalize(name)
	}
	return "project-" + hashSuffix(absPath)
}

// remoteOriginSlug reads .git/config's [remote "origin"] url and returns
// the last path segment with a trailing ".git" stripped. Returns "" if
// there is no git repository or no origin remote.
func remoteOriginSlug(dir string) string {
	gitDir, err := findGitDir(dir)
	if err != nil {
		return ""
	}
	url := readOriginURL(filepath.Join(gitDir, "config"))
	if url == "" {
		return ""
	}
	url = strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	slug := url
	if i := strings.LastIndexAny(url, "/:"); i >= 0 {
		slug = url[i+1:]
	}
	return slug
}

// findGitDir walks up from dir looking for a .git directory or worktree
// file.
func findGitDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		gitPath := filepath.Join(abs, ".git")
		if info, err := os.Stat(gitPath); err == nil {
			if info.IsDir() {
				return gitPath, nil
			}
			if content, err := os.ReadFile(gitPath); err == nil {
				const prefix = "gitdir: "
				line := strings.TrimSpace(string(content))
				if strings.HasPrefix(line, prefix) {
					gitdir := strings.TrimPrefix(line, prefix)
					if filepath.IsAbs(gitdir) {
						return gitdir, nil
					}
					return filepath.Join(abs, gitdir), nil
				}
			}
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", os.ErrNotExist
		}
		abs = parent
	}
}

// readOriginURL scans a .git/config file for the url key inside
// [remote "origin"], a minimal hand-rolled INI scan since the project's
// only need is a single key, not general git plumbing.
func readOriginURL(configPath string) string {
	f, err := os.Open(configPath) //nolint:gosec // configPath built from the discovered .git dir
	if err != nil {
		return ""
	}
	defer f.Close()

	inOrigin := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "[") {
			inOrigin = line == `[remote "origin"]`
			continue
		}
		if !inOrigin {
			continue
		}
		if key, value, ok := strings.Cut(line, "="); ok && strings.TrimSpace(key) == "url" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// normalize lowercases, maps every non-[a-z0-9] rune to '-', trims
// leading/trailing '-', and truncates to maxProjectIDLength.
func normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > maxProjectIDLength {
		out = out[:maxProjectIDLength]
		out = strings.TrimRight(out, "-")
	}
	return out
}

// hashSuffix returns the first 16 hex characters of SHA-256(absPath).
func hashSuffix(absPath string) string {
	sum := sha256.Sum256([]byte(absPath))
	return hex.EncodeToString(sum[:])[:16]
}
