// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package codeobject

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
)

// NormalizePath normalizes a file path for consistent, cross-platform
// deterministic id generation: strips a leading "./", cleans redundant
// separators, converts to forward slashes, and strips a leading "/".
func NormalizePath(path string) string {
	if len(path) >= 2 && path[0:2] == "./" {
		path = path[2:]
	}
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}

// GenerateObjectID computes a deterministic CodeObject/DocumentNode id: a
// hash of (file_path, qualified_name, start_line, object_type).
// Re-running parsing on unchanged input reproduces an identical id.
func GenerateObjectID(filePath, qualifiedName string, startLine int, objectType ObjectType) string {
	normalized := NormalizePath(filePath)
	idStr := fmt.Sprintf("%s|%s|%d|%s", normalized, qualifiedName, startLine, objectType)
	hash := sha256.Sum256([]byte(idStr))
	return fmt.Sprintf("obj:%s", hex.EncodeToString(hash[:]))
}

// GenerateDocumentID computes a deterministic DocumentNode id, reusing the
// same scheme as GenerateObjectID with node_type standing in for
// object_type and the chunk heading/first-line text standing in for
// qualified_name.
func GenerateDocumentID(filePath string, nodeType NodeType, startLine int, headingOrText string) string {
	normalized := NormalizePath(filePath)
	idStr := fmt.Sprintf("%s|%s|%d|%s", normalized, nodeType, startLine, headingOrText)
	hash := sha256.Sum256([]byte(idStr))
	return fmt.Sprintf("doc:%s", hex.EncodeToString(hash[:]))
}

// Checksum computes the non-cryptographic-use content checksum stored on
// CodeObject/DocumentNode and FileChecksum. SHA-256 is used for its
// collision resistance, reusing the same primitive as id generation so
// the package has a single hashing dependency.
func Checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// ProjectCollectionName returns the vector-store collection name for a
// project id: "codecontext_<project_id>".
func ProjectCollectionName(projectID string) string {
	return "codecontext_" + projectID
}
