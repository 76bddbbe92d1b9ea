// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package bm25f implements the code-aware BM25F sparse encoder: a
// field-weighted variant of BM25 that emits sparse vectors keyed by stable
// 64-bit token hashes, so the encoder and the vector store agree on index
// identity without sharing a vocabulary table.
package bm25f
