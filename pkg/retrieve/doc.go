// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package retrieve implements the five-stage search pipeline: embed the
// query, run a fused hybrid search, expand one hop through the stored
// relationship graph, apply type/name boosts and the stored score weight,
// and diversify the final ranking by file.
package retrieve
