// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/codecontext/codecontext-core/pkg/embedding"
	"github.com/codecontext/codecontext-core/pkg/registry"
	"github.com/codecontext/codecontext-core/pkg/vectorstore"
)

// indexStateDir is the single directory holding every project's
// persisted IndexState (one state-<project_id>.json file per project),
// the source of truth registry.Registry.List walks.
func indexStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codecontext/state"
	}
	return filepath.Join(home, ".codecontext", "state")
}

// newEmbedder builds the Provider named by cfg.Embedding, a thin wrapper
// over embedding.NewProvider so every subcommand constructs providers the
// same way.
func newEmbedder(cfg *Config, logger *slog.Logger) (embedding.Provider, error) {
	return embedding.NewProvider(embedding.Config{
		Type:      cfg.Embedding.Provider,
		BaseURL:   cfg.Embedding.BaseURL,
		APIKey:    cfg.Embedding.APIKey,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
	}, logger)
}

// storeOpener returns a registry.StoreOpener bound to cfg, opening either
// a QdrantStore or a process-local MemoryStore per cfg.VectorStore.Provider.
//
// A MemoryStore is process-local: it is only useful within a single CLI
// invocation's lifetime (e.g. index-then-immediately-search in tests), and
// is the default when no Qdrant endpoint is configured, mirroring the
// teacher's embedded-backend-by-default posture.
func storeOpener(cfg *Config, logger *slog.Logger) registry.StoreOpener {
	return func(ctx context.Context, projectID string) (vectorstore.Store, error) {
		return openStore(ctx, cfg, projectID, logger)
	}
}

func openStore(ctx context.Context, cfg *Config, projectID string, logger *slog.Logger) (vectorstore.Store, error) {
	switch cfg.VectorStore.Provider {
	case "qdrant":
		return vectorstore.NewQdrantStore(ctx, vectorstore.QdrantConfig{
			Host:       cfg.VectorStore.Host,
			Port:       cfg.VectorStore.Port,
			APIKey:     cfg.VectorStore.APIKey,
			UseTLS:     cfg.VectorStore.UseTLS,
			ProjectID:  projectID,
			Dimension:  cfg.Embedding.Dimension,
			InitSchema: true,
		}, logger)
	case "memory", "":
		return vectorstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown vector store provider %q", cfg.VectorStore.Provider)
	}
}
