// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"

	apperrors "github.com/codecontext/codecontext-core/internal/errors"
	"github.com/codecontext/codecontext-core/internal/ui"
	"github.com/codecontext/codecontext-core/pkg/index"
	"github.com/codecontext/codecontext-core/pkg/registry"
)

// runIndex executes 'codecontext index [path]': a full or incremental
// sync of a repository into its project's vector store collection.
//
// Flags:
//   - --incremental: only reprocess files whose checksum changed (default behavior)
//   - --project: explicit project id, overriding auto-detection
//   - --force: force a full reindex, ignoring the persisted checkpoint
//
// Exit codes: 0 success; 4 (ExitInput) for an unresolvable path; 1
// (ExitConfig) when the embedding provider cannot be built; 2
// (ExitDatabase) when the vector store cannot be opened; 10 (ExitInternal)
// when the run fails; 11 (ExitCancelled) when the run is interrupted.
func runIndex(args []string, globals GlobalFlags, cfg *Config) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	fs.Bool("incremental", true, "Only reprocess files whose checksum changed (default)")
	force := fs.Bool("force", false, "Force a full reindex, ignoring the persisted checkpoint")
	projectFlag := fs.String("project", "", "Explicit project id (overrides auto-detection)")
	metricsAddr := fs.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090) for the duration of the run")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codecontext index [path] [options]

Indexes a repository (default: current directory) incrementally. Data is
stored in the project's vector store collection, codecontext_<project_id>.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(apperrors.ExitInput)
	}

	rootPath, err := resolveRootPath(fs.Arg(0))
	if err != nil {
		apperrors.FatalError(apperrors.NewInputError("Cannot resolve repository path", err.Error(), "Pass an existing directory path"), globals.JSON)
	}

	projectID := *projectFlag
	if projectID == "" {
		projectID = cfg.ProjectID
	}
	projectID = registry.Identify(rootPath, projectID)

	logLevel := slog.LevelInfo
	if globals.Verbose > 0 {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

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

	states := index.NewStateStore(indexStateDir())
	if *force {
		if err := states.Delete(projectID); err != nil && !os.IsNotExist(err) {
			logger.Warn("state.delete.error", "err", err)
		}
	}

	pipeline := index.NewPipeline(store, embedder, states, logger)

	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		pipeline.WithMetrics(index.NewMetrics(reg))
		mux := http.NewServeMux()
		mux.Handle("/metrics", index.Handler(reg))
		srv := &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.serve.error", "err", err)
			}
		}()
		defer srv.Close()
	}

	spinner := newSpinner(globals, "Indexing "+projectID)
	if spinner != nil {
		defer spinner.Finish()
	}

	result, err := pipeline.Run(ctx, index.Config{
		ProjectID:        projectID,
		RootPath:         rootPath,
		ExcludeGlobs:     cfg.Indexing.ExcludeGlobs,
		MaxFileSizeBytes: cfg.Indexing.MaxFileSizeBytes,
		ParallelWorkers:  cfg.Indexing.ParallelWorkers,
		MaxRetries:       cfg.Indexing.MaxRetries,
	})
	if err != nil {
		if ctx.Err() != nil {
			apperrors.FatalError(apperrors.NewCancelledError("Indexing cancelled", err.Error()), globals.JSON)
		}
		apperrors.FatalError(apperrors.NewInternalError("Indexing failed", err.Error(), "Re-run 'codecontext index' to resume incrementally", err), globals.JSON)
	}

	printIndexResult(globals, result)
}

func resolveRootPath(arg string) (string, error) {
	if arg == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return "", err
	}
	return abs, nil
}

func newSpinner(globals GlobalFlags, description string) *progressbar.ProgressBar {
	if globals.Quiet || globals.JSON || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionEnableColorCodes(!globals.NoColor),
		progressbar.OptionClearOnFinish(),
	)
}

func printIndexResult(globals GlobalFlags, result *index.Result) {
	if globals.JSON {
		_ = outputJSON(result)
		return
	}
	ui.Header("Indexing Complete")
	fmt.Printf("Project ID:        %s\n", result.ProjectID)
	fmt.Printf("Files:             %d total (%d added, %d modified, %d unchanged, %d deleted)\n",
		result.TotalFiles, result.Added, result.Modified, result.Unchanged, result.Deleted)
	fmt.Printf("Objects:           %d\n", result.ObjectsCount)
	fmt.Printf("Documents:         %d\n", result.DocumentsCount)
	fmt.Printf("Relationships:     %d\n", result.Relationships)
	if result.ParseErrors > 0 {
		ui.Warningf("Parse errors:      %d", result.ParseErrors)
	}
	if result.EmbedErrors > 0 {
		ui.Warningf("Embedding errors:  %d", result.EmbedErrors)
	}
	fmt.Printf("\nTimings: parse=%s embed=%s total=%s\n", result.ParseDuration, result.EmbedDuration, result.TotalDuration)
}
