// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package main implements the codecontext CLI: an incremental AST-aware
// indexer and hybrid BM25F + dense-ANN retriever for a local source
// repository.
//
// Usage:
//
//	codecontext index [path] [--incremental] [--project NAME] [--force]
//	codecontext search "<query>" [--project NAME] [--format text|json]
//	codecontext list-projects [--json]
//	codecontext delete-project NAME [--yes]
//	codecontext status [--project NAME]
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/codecontext/codecontext-core/internal/ui"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds the flags parsed once in main() and threaded into
// every subcommand.
type GlobalFlags struct {
	JSON       bool
	Quiet      bool
	NoColor    bool
	Verbose    int
	ConfigPath string
	Project    string
}

func main() {
	var globals GlobalFlags
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.StringVarP(&globals.ConfigPath, "config", "c", "", "Path to .codecontext.yaml (default: ./.codecontext.yaml)")
	flag.StringVarP(&globals.Project, "project", "p", "", "Explicit project id (overrides auto-detection)")
	flag.BoolVar(&globals.JSON, "json", false, "Output machine-readable JSON")
	flag.BoolVarP(&globals.Quiet, "quiet", "q", false, "Suppress progress output")
	flag.BoolVar(&globals.NoColor, "no-color", false, "Disable colored terminal output")
	flag.CountVarP(&globals.Verbose, "verbose", "v", "Increase log verbosity (repeatable)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `codecontext - hybrid code search and retrieval engine

Usage:
  codecontext <command> [options]

Commands:
  index           Index the current repository (incremental by default)
  search          Run a hybrid BM25F + dense-ANN search against an index
  list-projects   List every indexed project
  delete-project  Delete a project's index (destructive)
  status          Show one project's index status

Global Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  codecontext index
  codecontext index --force --project my-service
  codecontext search "parse config file" --limit 10
  codecontext search "retry logic" --format json --expand snippet,complexity
  codecontext list-projects
  codecontext delete-project my-service --yes
  codecontext status --project my-service

Environment Variables:
  CODECONTEXT_EMBEDDING__PROVIDER     Embedding provider (mock, ollama, openai)
  CODECONTEXT_VECTOR_STORE__PROVIDER  Vector store provider (memory, qdrant)
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("codecontext version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	ui.InitColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := LoadConfig(globals.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if globals.Project != "" {
		cfg.ProjectID = globals.Project
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "index":
		runIndex(cmdArgs, globals, cfg)
	case "search":
		runSearch(cmdArgs, globals, cfg)
	case "list-projects":
		runListProjects(cmdArgs, globals, cfg)
	case "delete-project":
		runDeleteProject(cmdArgs, globals, cfg)
	case "status":
		runStatus(cmdArgs, globals, cfg)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
