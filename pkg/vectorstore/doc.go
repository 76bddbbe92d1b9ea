// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package vectorstore defines the VectorStore contract: a collection with
// two named vectors per point ("dense" and "sparse") plus a JSON-like
// payload, searched by Reciprocal Rank Fusion across both vector spaces.
//
// Two implementations are registered: an in-memory store (the default,
// used for tests and small/local projects) and a Qdrant-backed store for
// production-scale collections.
package vectorstore
