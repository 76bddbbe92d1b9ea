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

// runStatus executes 'codecontext status [--project NAME]': one
// project's index statistics.
//
// Exit code: 0 always for a recognized (or explicitly missing) project;
// 4 (ExitInput) if the project id cannot be resolved at all.
func runStatus(args []string, globals GlobalFlags, cfg *Config) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	project := fs.String("project", "", "Project id (default: auto-detected from the current directory)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: codecontext status [--project NAME] [--json]\n\nShows one project's index status.\n")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(apperrors.ExitInput)
	}

	projectID := *project
	if projectID == "" {
		projectID = cfg.ProjectID
	}
	if projectID == "" {
		cwd, err := os.Getwd()
		if err != nil {
			apperrors.FatalError(apperrors.NewInputError("Cannot determine project", err.Error(), "Pass --project NAME"), globals.JSON)
		}
		projectID = registry.Identify(cwd, "")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	states := index.NewStateStore(indexStateDir())
	reg := registry.New(states, storeOpener(cfg, logger))

	ctx := context.Background()
	summary, err := reg.Status(ctx, projectID)
	if err != nil {
		suggestions, _ := reg.Suggest(ctx, projectID, 5)
		notFound := apperrors.NewProjectNotFoundError(projectID, suggestions)
		if globals.JSON {
			_ = outputJSON(notFound.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, notFound.Format(globals.NoColor))
		}
		return
	}

	if globals.JSON {
		_ = outputJSON(summary)
		return
	}

	ui.Header("Project Status: " + summary.ProjectID)
	fmt.Printf("Path:        %s\n", summary.ProjectPath)
	fmt.Printf("Files:       %d\n", summary.TotalFiles)
	fmt.Printf("Objects:     %d\n", summary.TotalObjects)
	fmt.Printf("Documents:   %d\n", summary.TotalDocuments)
	fmt.Printf("Points:      %d\n", summary.PointCount)
	fmt.Printf("Last indexed: %s\n", summary.LastIndexed)
}
