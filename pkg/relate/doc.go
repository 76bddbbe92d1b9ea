// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package relate builds the cross-file Relationship graph: given the
// CodeObjects a project's parsers extracted (each already carrying its
// intra-file CONTAINS/IMPORTS edges), Extractor resolves CALLS,
// EXTENDS/IMPLEMENTS, and REFERENCES edges by name against a project-wide
// object index, then writes the bidirectional reverse edge for every
// resolved forward edge via codeobject.ReverseMap.
package relate
