// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package retrieve

// str reads a string payload field, returning "" for any absent or
// differently-typed value.
func str(v any) string {
	s, _ := v.(string)
	return s
}

// intOf reads an int-ish payload field (json/protobuf round trips can
// surface it as int, int64, or float64 depending on the store backend).
func intOf(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// scoreWeightOf reads a payload's score_weight, defaulting to 1.0 when
// absent (graph-expanded neighbors synthesized from a relationship edge
// carry no score_weight of their own).
func scoreWeightOf(payload map[string]any) float64 {
	switch v := payload["score_weight"].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 1.0
}

// edgesOf reads one of a payload's relationship edge lists, tolerating
// both the in-process []map[string]any shape (MemoryStore) and the
// []any-of-map shape a JSON/protobuf round trip produces (QdrantStore).
func edgesOf(payload map[string]any, key string) []map[string]any {
	raw, ok := payload[key]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// hydrateRelationships flattens a candidate's outgoing+incoming edges into
// the result-hydration view, per the retriever's expand request.
func hydrateRelationships(payload map[string]any) ([]RelationshipView, int) {
	var views []RelationshipView
	for _, key := range [2]string{"outgoing_relationships", "incoming_relationships"} {
		for _, edge := range edgesOf(payload, key) {
			views = append(views, RelationshipView{
				Name:         str(edge["name"]),
				ObjectType:   str(edge["object_type"]),
				FilePath:     str(edge["file_path"]),
				Line:         intOf(edge["line"]),
				RelationType: str(edge["relation_type"]),
			})
		}
	}
	return views, len(views)
}

// tokenSet turns a token slice into a membership set for set-comparison
// boosts (exact match vs subset).
func tokenSet(tokens []string) map[string]bool {
	out := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		out[t] = true
	}
	return out
}

func setsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func isNonEmptySubset(sub, super map[string]bool) bool {
	if len(sub) == 0 {
		return false
	}
	for k := range sub {
		if !super[k] {
			return false
		}
	}
	return true
}
