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

// Package parse provides the AST Parser contract and its registered
// per-language implementations (Tree-sitter backed), plus the document and
// config chunkers.
//
// Parsers are pluggable by language; ForFile selects an implementation by
// file extension only (there is no content sniffing, so a file whose
// extension has no registered parser gets none). A parser may fail for
// an individual file without aborting the indexing run: callers should log
// the failure and skip the file, continuing with the rest of the batch.
package parse
