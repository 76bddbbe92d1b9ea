// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package codeobject

// RelationType enumerates the 22 directed relation types (11 bidirectional
// pairs) a Relationship can carry.
type RelationType string

const (
	RelCalls          RelationType = "CALLS"
	RelCalledBy       RelationType = "CALLED_BY"
	RelReferences     RelationType = "REFERENCES"
	RelReferencedBy   RelationType = "REFERENCED_BY"
	RelExtends        RelationType = "EXTENDS"
	RelExtendedBy     RelationType = "EXTENDED_BY"
	RelImplements     RelationType = "IMPLEMENTS"
	RelImplementedBy  RelationType = "IMPLEMENTED_BY"
	RelContains       RelationType = "CONTAINS"
	RelContainedBy    RelationType = "CONTAINED_BY"
	RelImports        RelationType = "IMPORTS"
	RelImportedBy     RelationType = "IMPORTED_BY"
	RelDependsOn      RelationType = "DEPENDS_ON"
	RelDependedBy     RelationType = "DEPENDED_BY"
	RelAnnotates      RelationType = "ANNOTATES"
	RelAnnotatedBy    RelationType = "ANNOTATED_BY"
	RelDocuments      RelationType = "DOCUMENTS"
	RelDocumentedBy   RelationType = "DOCUMENTED_BY"
	RelMentions       RelationType = "MENTIONS"
	RelMentionedIn    RelationType = "MENTIONED_IN"
	RelImplementsSpec RelationType = "IMPLEMENTS_SPEC"
	RelImplementedIn  RelationType = "IMPLEMENTED_IN"
)

// ReverseMap maps each forward relation type to its reverse. It is complete
// and symmetric: ReverseMap[ReverseMap[t]] == t for every t.
var ReverseMap = map[RelationType]RelationType{
	RelCalls:          RelCalledBy,
	RelCalledBy:       RelCalls,
	RelReferences:     RelReferencedBy,
	RelReferencedBy:   RelReferences,
	RelExtends:        RelExtendedBy,
	RelExtendedBy:     RelExtends,
	RelImplements:     RelImplementedBy,
	RelImplementedBy:  RelImplements,
	RelContains:       RelContainedBy,
	RelContainedBy:    RelContains,
	RelImports:        RelImportedBy,
	RelImportedBy:     RelImports,
	RelDependsOn:      RelDependedBy,
	RelDependedBy:     RelDependsOn,
	RelAnnotates:      RelAnnotatedBy,
	RelAnnotatedBy:    RelAnnotates,
	RelDocuments:      RelDocumentedBy,
	RelDocumentedBy:   RelDocuments,
	RelMentions:       RelMentionedIn,
	RelMentionedIn:    RelMentions,
	RelImplementsSpec: RelImplementedIn,
	RelImplementedIn:  RelImplementsSpec,
}

// Reverse returns the reverse of a relation type, or "" if t is unknown.
func (t RelationType) Reverse() RelationType {
	return ReverseMap[t]
}

// Relationship is a directed edge between two entities (CodeObject or
// DocumentNode ids).
type Relationship struct {
	SourceID     string         `json:"source_id"`
	TargetID     string         `json:"target_id,omitempty"`
	RelationType RelationType   `json:"relation_type"`
	SourceName   string         `json:"source_name"`
	SourceType   string         `json:"source_type"`
	SourceFile   string         `json:"source_file"`
	SourceLine   int            `json:"source_line"`
	TargetName   string         `json:"target_name"`
	TargetType   string         `json:"target_type"`
	TargetFile   string         `json:"target_file"`
	TargetLine   int            `json:"target_line"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Reversed returns the reverse edge for r: source/target swapped and the
// relation type inverted via ReverseMap.
func (r Relationship) Reversed() Relationship {
	rev := r
	rev.SourceID, rev.TargetID = r.TargetID, r.SourceID
	rev.SourceName, rev.TargetName = r.TargetName, r.SourceName
	rev.SourceType, rev.TargetType = r.TargetType, r.SourceType
	rev.SourceFile, rev.TargetFile = r.TargetFile, r.SourceFile
	rev.SourceLine, rev.TargetLine = r.TargetLine, r.SourceLine
	rev.RelationType = r.RelationType.Reverse()
	return rev
}

// Key returns the (source, target, type) de-duplication key used by
// get_relationships' union of outgoing and incoming edges.
func (r Relationship) Key() [3]string {
	return [3]string{r.SourceID, r.TargetID, string(r.RelationType)}
}
