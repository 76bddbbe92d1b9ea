// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package embedding defines the EmbeddingProvider contract the indexer and
// retriever embed text through, plus its registered implementations. A
// provider may embed several texts in one call and is free to reorder them
// internally for throughput (e.g. batching by length), but Embed always
// returns vectors in the caller's original order.
package embedding
