// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package codeobject defines the shared data model for CodeContext:
// CodeObject, DocumentNode, Relationship, FileChecksum and IndexState.
//
// These types are produced by the parse and relate packages, enriched by
// the index pipeline (embeddings, relationships, score weight), and
// consumed by the retrieve and format packages. Every id in this package
// is a deterministic hash of identifying fields so that re-parsing
// unchanged input reproduces identical ids.
package codeobject
