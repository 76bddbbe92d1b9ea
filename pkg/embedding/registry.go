// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package embedding

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Config selects and configures an embedding Provider.
type Config struct {
	// Type selects the implementation: "mock", "ollama", "openai".
	Type string

	BaseURL   string
	APIKey    string
	Model     string
	Dimension int
}

// NewProvider constructs a Provider from Config, a closed-set factory
// switching on Config.Type.
//
// Environment variables (used as fallbacks when Config fields are empty):
//   - OLLAMA_BASE_URL / OLLAMA_EMBED_MODEL
//   - OPENAI_API_KEY / OPENAI_API_BASE / OPENAI_EMBED_MODEL
func NewProvider(cfg Config, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch strings.ToLower(cfg.Type) {
	case "mock", "test", "":
		return NewMockProvider(cfg.Dimension), nil

	case "ollama", "local":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = os.Getenv("OLLAMA_BASE_URL")
		}
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		model := cfg.Model
		if model == "" {
			model = os.Getenv("OLLAMA_EMBED_MODEL")
		}
		if model == "" {
			model = "nomic-embed-text"
		}
		return NewOllamaProvider(baseURL, model, cfg.Dimension, logger), nil

	case "openai", "openai-compatible":
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for openai embedding provider")
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = os.Getenv("OPENAI_API_BASE")
		}
		model := cfg.Model
		if model == "" {
			model = os.Getenv("OPENAI_EMBED_MODEL")
		}
		if model == "" {
			model = "text-embedding-3-small"
		}
		return NewOpenAIProvider(apiKey, baseURL, model, cfg.Dimension, logger), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider type: %s (supported: mock, ollama, openai)", cfg.Type)
	}
}
