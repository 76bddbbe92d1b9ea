// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package tokenize splits identifiers and free text into code-aware,
// lowercase tokens shared by the BM25F encoder (pkg/bm25f) and the
// retriever's name-boost comparison (pkg/retrieve).
//
// Splitting rules:
//  1. Split on any non-alphanumeric rune (including '_' and '-').
//  2. Split camelCase/PascalCase boundaries, keeping acronym runs intact
//     unless followed by a digit ("HTTPServer" -> "HTTP", "Server";
//     "MD5sum" splits before a digit inside an acronym run).
//  3. Lowercase, drop tokens shorter than 2 runes, drop stopwords.
//
// A size-bounded LRU cache memoizes Tokenize by input string.
// The cache lives on a *Tokenizer value rather than behind a package-level
// singleton, so callers that need isolation (e.g. per-project contexts) can each
// hold their own instance.
package tokenize
