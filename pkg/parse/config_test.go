// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package parse

import "testing"

func TestConfigParserYAML(t *testing.T) {
	src := []byte("database:\n  host: localhost\n  port: 5432\nfeature_flags:\n  - beta\n  - gamma\n")
	c := NewConfigParser()
	nodes, err := c.Chunk("config.yaml", src)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	found := map[string]bool{}
	for _, n := range nodes {
		key, _ := n.Metadata["config_key"].(string)
		found[key] = true
	}
	for _, want := range []string{"database.host", "database.port"} {
		if !found[want] {
			t.Errorf("missing config key %q among %v", want, found)
		}
	}
}

func TestConfigParserEnvVarDetection(t *testing.T) {
	src := []byte("service:\n  url: \"${API_BASE_URL}/v1\"\n")
	c := NewConfigParser()
	nodes, err := c.Chunk("config.yaml", src)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	var sawRef bool
	for _, n := range nodes {
		if refs, ok := n.Metadata["env_var_refs"].([]string); ok && len(refs) > 0 {
			sawRef = true
		}
	}
	if !sawRef {
		t.Fatal("expected env_var_refs to be detected in config value")
	}
}

func TestChunkDotEnv(t *testing.T) {
	src := []byte("# comment\nDATABASE_URL=postgres://localhost/db\n\nAPI_KEY=\"secret\"\n")
	c := NewConfigParser()
	nodes := c.ChunkDotEnv(".env", src)
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if nodes[0].Metadata["config_key"] != "DATABASE_URL" {
		t.Errorf("unexpected first key: %v", nodes[0].Metadata["config_key"])
	}
	if nodes[1].Metadata["config_value"] != "secret" {
		t.Errorf("expected quotes trimmed, got %v", nodes[1].Metadata["config_value"])
	}
}

func TestIsConfigPath(t *testing.T) {
	cases := map[string]bool{
		"config.yaml":   true,
		"config.yml":    true,
		"settings.json": true,
		"main.go":       false,
		"readme.md":     false,
	}
	for path, want := range cases {
		if got := isConfigPath(path); got != want {
			t.Errorf("isConfigPath(%q) = %v, want %v", path, got, want)
		}
	}
}
