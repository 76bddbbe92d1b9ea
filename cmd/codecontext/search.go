// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	apperrors "github.com/codecontext/codecontext-core/internal/errors"
	"github.com/codecontext/codecontext-core/pkg/bm25f"
	"github.com/codecontext/codecontext-core/pkg/format"
	"github.com/codecontext/codecontext-core/pkg/registry"
	"github.com/codecontext/codecontext-core/pkg/retrieve"
	"github.com/codecontext/codecontext-core/pkg/tokenize"
	"github.com/codecontext/codecontext-core/pkg/vectorstore"
)

// runSearch executes 'codecontext search "<query>"': a hybrid BM25F +
// dense-ANN search with graph expansion, boosting, and diversity
// filtering.
//
// Flags: --project, --language, --type, --file, --limit, --format
// text|json, --expand FIELDS (comma-separated expanded-field names).
//
// Exit codes: 0 with results (including zero results); 4 (ExitInput) for
// an empty query or an invalid --format; 1 (ExitConfig) when the embedding
// provider cannot be built; 2 (ExitDatabase) when the vector store cannot
// be opened or the search fails; 10 (ExitInternal) when rendering fails.
func runSearch(args []string, globals GlobalFlags, cfg *Config) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	project := fs.String("project", "", "Explicit project id (overrides auto-detection)")
	language := fs.String("language", "", "Filter results to this language")
	objectType := fs.String("type", "", "Filter results to this object type")
	file := fs.String("file", "", "Filter results to this file path (glob)")
	limit := fs.Int("limit", 10, "Maximum results returned")
	outputFormat := fs.String("format", "text", "Output format: text or json")
	expand := fs.String("expand", "", "Comma-separated expanded fields: signature,snippet,content,parent,relationships,complexity,impact.direct_callers")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codecontext search "<query>" [options]

Runs a hybrid search against an indexed project.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(apperrors.ExitInput)
	}

	if fs.NArg() == 0 || strings.TrimSpace(fs.Arg(0)) == "" {
		apperrors.FatalError(apperrors.NewEmptyQueryError(), globals.JSON)
	}
	query := fs.Arg(0)

	if *outputFormat != "text" && *outputFormat != "json" {
		apperrors.FatalError(apperrors.NewInputError("Invalid --format value", "format must be text or json", "Pass --format text or --format json"), globals.JSON)
	}

	projectID := *project
	if projectID == "" {
		projectID = cfg.ProjectID
	}
	if projectID == "" {
		cwd, err := os.Getwd()
		if err == nil {
			projectID = registry.Identify(cwd, "")
		}
	}

	logLevel := slog.LevelWarn
	if globals.Verbose > 0 {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	ctx := context.Background()

	embedder, err := newEmbedder(cfg, logger)
	if err != nil {
		apperrors.FatalError(apperrors.NewConfigError("Cannot initialize embedding provider", err.Error(), "Check embedding.provider and related settings in .codecontext.yaml", err), globals.JSON)
	}
	defer embedder.Close()

	store, err := openStore(ctx, cfg, projectID, logger)
	if err != nil {
		apperrors.FatalError(apperrors.NewDatabaseError("Cannot open vector store", err.Error(), "Check vector_store settings in .codecontext.yaml", err), globals.JSON)
	}
	defer store.Close()

	tokenizer := tokenize.New()
	encoder := bm25f.NewEncoder(bm25f.DefaultConfig(), tokenizer)
	retriever := retrieve.New(store, embedder, encoder, tokenizer, retrieve.DefaultConfig())

	keys := parseExpandKeys(*expand)
	needsRelationships := false
	for _, k := range keys {
		if k == format.KeyRelationships || k == format.KeyImpact {
			needsRelationships = true
			break
		}
	}

	hits, err := retriever.Retrieve(ctx, retrieve.Request{
		Query: query,
		Limit: *limit,
		Filter: vectorstore.Filter{
			Language:     *language,
			ObjectType:   *objectType,
			FilePathGlob: *file,
			ProjectID:    projectID,
		},
		Expand: needsRelationships,
	})
	if err != nil {
		if ctx.Err() != nil {
			apperrors.FatalError(apperrors.NewCancelledError("Search cancelled", err.Error()), globals.JSON)
		}
		apperrors.FatalError(apperrors.NewDatabaseError("Search failed", err.Error(), "Check that the project has been indexed and the vector store is reachable", err), globals.JSON)
	}

	records := make([]format.Record, len(hits))
	for i, hit := range hits {
		records[i] = format.BuildRecord(hit, keys)
	}

	var formatErr error
	if *outputFormat == "json" || globals.JSON {
		formatErr = format.JSON(os.Stdout, records)
	} else {
		formatErr = format.Text(os.Stdout, records)
	}
	if formatErr != nil {
		apperrors.FatalError(apperrors.NewInternalError("Cannot render results", formatErr.Error(), "", formatErr), globals.JSON)
	}
}

// parseExpandKeys splits a comma-separated --expand flag value into
// format.Key values, ignoring blank entries.
func parseExpandKeys(raw string) []format.Key {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keys := make([]format.Key, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			keys = append(keys, format.Key(p))
		}
	}
	return keys
}
