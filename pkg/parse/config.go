// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package parse

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codecontext/codecontext-core/pkg/codeobject"
)

// ConfigParser emits one DocumentNode per leaf config value, keyed by its
// dotted path, node_type config_key, for YAML/JSON configuration files. It reuses
// gopkg.in/yaml.v3 for both formats since strict JSON is a subset of
// YAML's data model.
type ConfigParser struct{}

// NewConfigParser constructs a config-file chunker.
func NewConfigParser() *ConfigParser { return &ConfigParser{} }

// Chunk parses source as YAML/JSON and emits one config_key DocumentNode
// per leaf path, with the serialized value and detected env-var
// references recorded in metadata.
func (c *ConfigParser) Chunk(filePath string, source []byte) ([]codeobject.DocumentNode, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(source, &root); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filePath, err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	var nodes []codeobject.DocumentNode
	walkConfigNode(root.Content[0], "", filePath, &nodes)
	return nodes, nil
}

func walkConfigNode(n *yaml.Node, path, filePath string, out *[]codeobject.DocumentNode) {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			childPath := key
			if path != "" {
				childPath = path + "." + key
			}
			walkConfigNode(n.Content[i+1], childPath, filePath, out)
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			walkConfigNode(item, fmt.Sprintf("%s[%d]", path, i), filePath, out)
		}
	default:
		value := n.Value
		content := path + " = " + value
		id := codeobject.GenerateDocumentID(filePath, codeobject.NodeConfigKey, n.Line, path)
		node := codeobject.DocumentNode{
			ID:        id,
			NodeType:  codeobject.NodeConfigKey,
			Content:   content,
			FilePath:  filePath,
			StartLine: n.Line,
			EndLine:   n.Line,
			Metadata: map[string]any{
				"config_key":   path,
				"config_value": value,
			},
		}
		if refs := detectEnvVarRefs(value); len(refs) > 0 {
			node.Metadata["env_var_refs"] = refs
		}
		*out = append(*out, node)
	}
}

// ChunkDotEnv parses ".env"-style KEY=VALUE files, one config_key node
// per non-comment, non-blank line.
func (c *ConfigParser) ChunkDotEnv(filePath string, source []byte) []codeobject.DocumentNode {
	var nodes []codeobject.DocumentNode
	for i, line := range strings.Split(string(source), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		lineNum := i + 1
		id := codeobject.GenerateDocumentID(filePath, codeobject.NodeConfigKey, lineNum, key)
		node := codeobject.DocumentNode{
			ID:        id,
			NodeType:  codeobject.NodeConfigKey,
			Content:   key + " = " + value,
			FilePath:  filePath,
			StartLine: lineNum,
			EndLine:   lineNum,
			Metadata: map[string]any{
				"config_key":   key,
				"config_value": value,
			},
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// isConfigPath reports whether a file should be routed to ConfigParser
// based on its extension, used by the document/config dispatch in the
// indexing pipeline.
func isConfigPath(filePath string) bool {
	lower := strings.ToLower(filePath)
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
