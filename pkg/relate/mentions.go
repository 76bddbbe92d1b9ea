// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package relate

import (
	"strings"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

// ExtractDocumentRelationships resolves the code_refs metadata attached to
// document chunks (backtick-quoted identifiers found in prose) against the
// project's object index. A reference on a heading chunk names the section
// the code object is documented under (DOCUMENTS/DOCUMENTED_BY); a
// reference anywhere else is an incidental mention (MENTIONS/MENTIONED_IN).
func (e *Extractor) ExtractDocumentRelationships(documents []codeobject.DocumentNode) []codeobject.Relationship {
	var rels []codeobject.Relationship
	for _, doc := range documents {
		refs, _ := doc.Metadata["code_refs"].([]string)
		if len(refs) == 0 {
			continue
		}
		relType := codeobject.RelMentions
		if doc.NodeType == codeobject.NodeHeading {
			relType = codeobject.RelDocuments
		}
		for _, name := range refs {
			targetID := e.idx.resolveExact(name)
			if targetID == "" {
				continue
			}
			target, ok := e.idx.objects[targetID]
			if !ok {
				continue
			}
			rels = append(rels, codeobject.Relationship{
				SourceID:     doc.ID,
				TargetID:     target.ID,
				RelationType: relType,
				SourceName:   docLabel(doc.Content),
				SourceType:   string(doc.NodeType),
				SourceFile:   doc.FilePath,
				SourceLine:   doc.StartLine,
				TargetName:   target.Name,
				TargetType:   string(target.ObjectType),
				TargetFile:   target.FilePath,
				TargetLine:   target.StartLine,
			})
		}
	}
	return dedupeWithReverse(rels)
}

func docLabel(content string) string {
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		return content[:i]
	}
	return content
}
