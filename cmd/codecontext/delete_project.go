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

// runDeleteProject executes 'codecontext delete-project NAME [--yes]':
// an all-or-nothing drop of a project's collection and persisted state.
//
// Exit code: 0 on success; 4 (ExitInput) if the name or --yes is missing;
// 6 (ExitNotFound) if the project is unknown; 2 (ExitDatabase) if the drop
// itself fails partway through.
func runDeleteProject(args []string, globals GlobalFlags, cfg *Config) {
	fs := flag.NewFlagSet("delete-project", flag.ExitOnError)
	confirm := fs.Bool("yes", false, "Confirm the deletion (required)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codecontext delete-project NAME [--yes]

Deletes a project's entire index: its vector store collection and its
persisted state. This cannot be undone.
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(apperrors.ExitInput)
	}

	if fs.NArg() == 0 {
		apperrors.FatalError(apperrors.NewInputError("Project name required", "delete-project needs a project id argument", "Run 'codecontext list-projects' to see known project ids"), globals.JSON)
	}
	projectID := fs.Arg(0)

	if !*confirm {
		apperrors.FatalError(apperrors.NewInputError(
			"Deletion not confirmed",
			fmt.Sprintf("This will permanently delete all indexed data for project %q", projectID),
			"Pass --yes to confirm: codecontext delete-project "+projectID+" --yes",
		), globals.JSON)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	states := index.NewStateStore(indexStateDir())
	reg := registry.New(states, storeOpener(cfg, logger))

	ctx := context.Background()
	if _, err := reg.Status(ctx, projectID); err != nil {
		suggestions, _ := reg.Suggest(ctx, projectID, 5)
		apperrors.FatalError(apperrors.NewProjectNotFoundError(projectID, suggestions), globals.JSON)
		return
	}
	if err := reg.Delete(ctx, projectID); err != nil {
		apperrors.FatalError(apperrors.NewDatabaseError("Cannot delete project", err.Error(), "Re-run 'codecontext delete-project "+projectID+" --yes' to finish", err), globals.JSON)
		return
	}

	if globals.JSON {
		_ = outputJSON(map[string]string{"project_id": projectID, "status": "deleted"})
		return
	}
	ui.Successf("Deleted project %q", projectID)
}
