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

	apperrors "github.com/codecontext/codecontext-core/internal/errors"
	"github.com/codecontext/codecontext-core/internal/ui"
	"github.com/codecontext/codecontext-core/pkg/index"
	"github.com/codecontext/codecontext-core/pkg/registry"
)

// runListProjects executes 'codecontext list-projects': every project
// with persisted index state, its point count included when the
// configured vector store can be reached.
//
// Exit code: 0, or 2 (ExitDatabase) if the project list cannot be read.
func runListProjects(args []string, globals GlobalFlags, cfg *Config) {
	fs := flag.NewFlagSet("list-projects", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: codecontext list-projects [--json]\n\nLists every indexed project.\n")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(apperrors.ExitInput)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	states := index.NewStateStore(indexStateDir())
	reg := registry.New(states, storeOpener(cfg, logger))

	summaries, err := reg.List(context.Background())
	if err != nil {
		apperrors.FatalError(apperrors.NewDatabaseError("Cannot list projects", err.Error(), "", err), globals.JSON)
	}

	if globals.JSON {
		_ = outputJSON(summaries)
		return
	}

	if len(summaries) == 0 {
		ui.Info("No projects indexed yet. Run 'codecontext index' to index one.")
		return
	}
	ui.Header("Indexed Projects")
	for _, s := range summaries {
		fmt.Printf("%s\n", ui.Label(s.ProjectID))
		fmt.Printf("  path:       %s\n", s.ProjectPath)
		fmt.Printf("  files:      %d\n", s.TotalFiles)
		fmt.Printf("  objects:    %d\n", s.TotalObjects)
		fmt.Printf("  documents:  %d\n", s.TotalDocuments)
		fmt.Printf("  points:     %d\n", s.PointCount)
		fmt.Printf("  indexed at: %s\n\n", s.LastIndexed)
	}
}
