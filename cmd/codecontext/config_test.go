// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Embedding.Provider != "mock" || cfg.VectorStore.Provider != "memory" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigMergesProjectFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".codecontext.yaml")
	content := "project_id: widget-factory\nembedding:\n  provider: ollama\n  model: nomic-embed-text\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ProjectID != "widget-factory" {
		t.Errorf("ProjectID = %q, want widget-factory", cfg.ProjectID)
	}
	if cfg.Embedding.Provider != "ollama" || cfg.Embedding.Model != "nomic-embed-text" {
		t.Errorf("unexpected embedding config: %+v", cfg.Embedding)
	}
	if cfg.VectorStore.Provider != "memory" {
		t.Errorf("expected untouched default to survive merge, got %q", cfg.VectorStore.Provider)
	}
}

func TestEnvOverridesBeatProjectFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".codecontext.yaml")
	content := "embedding:\n  provider: ollama\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CODECONTEXT_EMBEDDING__PROVIDER", "openai")
	t.Setenv("CODECONTEXT_EMBEDDING__DIMENSION", "1536")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("Embedding.Provider = %q, want env override openai", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimension != 1536 {
		t.Errorf("Embedding.Dimension = %d, want 1536", cfg.Embedding.Dimension)
	}
}
