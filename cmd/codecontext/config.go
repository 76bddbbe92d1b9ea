// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the resolved, project-scoped configuration for one CLI
// invocation: which project, how to embed, and where to store vectors.
//
// Resolution precedence (highest wins): environment variables > project
// config file (<cwd>/.codecontext.yaml) > user global config
// (~/.codecontext/config.yaml) > these built-in defaults.
type Config struct {
	ProjectID string `yaml:"project_id"`

	Embedding struct {
		Provider  string `yaml:"provider"`
		BaseURL   string `yaml:"base_url"`
		APIKey    string `yaml:"api_key"`
		Model     string `yaml:"model"`
		Dimension int    `yaml:"dimension"`
	} `yaml:"embedding"`

	VectorStore struct {
		Provider string `yaml:"provider"` // "qdrant" or "memory"
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		APIKey   string `yaml:"api_key"`
		UseTLS   bool   `yaml:"use_tls"`
	} `yaml:"vector_store"`

	Indexing struct {
		ExcludeGlobs     []string `yaml:"exclude"`
		MaxFileSizeBytes int64    `yaml:"max_file_size_bytes"`
		ParallelWorkers  int      `yaml:"parallel_workers"`
		MaxRetries       int      `yaml:"max_retries"`
	} `yaml:"indexing"`
}

// DefaultConfig returns built-in defaults, the bottom of the precedence
// chain.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Embedding.Provider = "mock"
	cfg.Embedding.Dimension = 768
	cfg.VectorStore.Provider = "memory"
	cfg.VectorStore.Host = "localhost"
	cfg.VectorStore.Port = 6334
	cfg.Indexing.MaxFileSizeBytes = 1 << 20
	cfg.Indexing.ParallelWorkers = 4
	cfg.Indexing.MaxRetries = 3
	return cfg
}

// LoadConfig resolves the Config for the current invocation: defaults,
// overlaid with the user global file, overlaid with the project file at
// configPath (or ./.codecontext.yaml when empty), overlaid with
// environment variables.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if home, err := os.UserHomeDir(); err == nil {
		globalPath := filepath.Join(home, ".codecontext", "config.yaml")
		if err := mergeYAMLFile(cfg, globalPath); err != nil {
			return nil, err
		}
	}

	if configPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve project config path: %w", err)
		}
		configPath = filepath.Join(cwd, ".codecontext.yaml")
	}
	if err := mergeYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// mergeYAMLFile decodes path onto cfg if it exists. A missing file is not
// an error — every layer below the defaults is optional.
func mergeYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// envPrefix names the environment variables consulted by
// applyEnvOverrides, e.g. CODECONTEXT_EMBEDDING__PROVIDER.
const envPrefix = "CODECONTEXT_"

// applyEnvOverrides reads CODECONTEXT_-prefixed, double-underscore
// nested environment variables and, when present, overrides the matching
// Config field. This is the highest-priority layer: it always wins over
// both config files.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envPrefix + "PROJECT_ID"); v != "" {
		cfg.ProjectID = v
	}
	if v := os.Getenv(envPrefix + "EMBEDDING__PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv(envPrefix + "EMBEDDING__BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv(envPrefix + "EMBEDDING__API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv(envPrefix + "EMBEDDING__MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv(envPrefix + "EMBEDDING__DIMENSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dimension = n
		}
	}
	if v := os.Getenv(envPrefix + "VECTOR_STORE__PROVIDER"); v != "" {
		cfg.VectorStore.Provider = v
	}
	if v := os.Getenv(envPrefix + "VECTOR_STORE__HOST"); v != "" {
		cfg.VectorStore.Host = v
	}
	if v := os.Getenv(envPrefix + "VECTOR_STORE__PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.VectorStore.Port = n
		}
	}
	if v := os.Getenv(envPrefix + "VECTOR_STORE__API_KEY"); v != "" {
		cfg.VectorStore.APIKey = v
	}
	if v := os.Getenv(envPrefix + "INDEXING__EXCLUDE"); v != "" {
		cfg.Indexing.ExcludeGlobs = strings.Split(v, ",")
	}
}
