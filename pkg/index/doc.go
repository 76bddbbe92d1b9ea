// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package index implements the indexing pipeline: walking a project tree,
// routing files to parsers, extracting code objects and document nodes,
// embedding and BM25F-encoding them, and upserting the results into a
// VectorStore. Both full and incremental (checksum-based) sync are
// supported, sharing the same per-file processing path.
package index
