// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codecontext/codecontext-core/pkg/retry"
)

// OllamaProvider embeds text via a local Ollama server's /api/embeddings
// endpoint. Ollama has no native batch endpoint, so Embed fans requests
// out concurrently, length-sorted into BatchSize()-sized groups.
type OllamaProvider struct {
	baseURL    string
	model      string
	dimension  int
	httpClient *http.Client
	logger     *slog.Logger
	retryCfg   retry.Config
	maxTokens  int
}

// NewOllamaProvider constructs a provider against an Ollama server.
func NewOllamaProvider(baseURL, model string, dimension int, logger *slog.Logger) *OllamaProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if dimension <= 0 {
		dimension = 896
	}
	return &OllamaProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
		retryCfg:   retry.DefaultConfig(),
		maxTokens:  2000,
	}
}

// Dimension implements Provider.
func (o *OllamaProvider) Dimension() int { return o.dimension }

// BatchSize implements Provider.
func (o *OllamaProvider) BatchSize() int { return 8 }

// Close implements Provider.
func (o *OllamaProvider) Close() error { return nil }

// Embed implements Provider.
func (o *OllamaProvider) Embed(ctx context.Context, texts []string, instruction InstructionType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batches := newLengthSortedBatches(texts, o.BatchSize())
	sorted := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, batch := range batches.batches {
		batch := batch
		g.Go(func() error {
			for _, origIdx := range batch {
				vec, err := o.embedOne(gctx, texts[origIdx], instruction)
				if err != nil {
					return err
				}
				sortedIdx := indexOf(batches.order, origIdx)
				sorted[sortedIdx] = vec
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return batches.restore(sorted), nil
}

func indexOf(order []int, value int) int {
	for i, v := range order {
		if v == value {
			return i
		}
	}
	return -1
}

func (o *OllamaProvider) embedOne(ctx context.Context, text string, instruction InstructionType) ([]float32, error) {
	text, _ = truncateToTokens(text, o.maxTokens)
	prompt := applyInstructionPrefix(text, instruction, o.model)

	var result struct {
		Embedding []float64 `json:"embedding"`
	}
	err := retry.Do(ctx, o.retryCfg, retry.DefaultClassifier, func(attempt int, sleep time.Duration, err error) {
		o.logger.Warn("embedding.ollama.retry", "attempt", attempt+1, "sleep_ms", sleep.Milliseconds(), "error", err)
	}, func() error {
		body, _ := json.Marshal(map[string]string{"model": o.model, "prompt": prompt})
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embeddings", bytes.NewReader(body))
		if reqErr != nil {
			return reqErr
		}
		req.Header.Set("Content-Type", "application/json")

		resp, doErr := o.httpClient.Do(req)
		if doErr != nil {
			return fmt.Errorf("ollama embed request (is Ollama running at %s?): %w", o.baseURL, doErr)
		}
		defer resp.Body.Close()

		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return readErr
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("ollama embed error (status %d): %s", resp.StatusCode, string(respBody))
		}
		return json.Unmarshal(respBody, &result)
	})
	if err != nil {
		return nil, err
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned empty embedding")
	}

	vec := make([]float32, len(result.Embedding))
	for i, v := range result.Embedding {
		vec[i] = float32(v)
	}
	return normalize(vec), nil
}

// applyInstructionPrefix adds the asymmetric-search prefix a given model
// family expects for the instruction type, following the Nomic
// "search_document:"/"search_query:" convention generalized across the
// closed InstructionType set.
func applyInstructionPrefix(text string, instruction InstructionType, model string) string {
	if !strings.Contains(strings.ToLower(model), "nomic") {
		return text
	}
	switch instruction {
	case NL2CodeQuery, Code2CodeQuery, QAQuery:
		return "search_query: " + text
	default:
		return "search_document: " + text
	}
}

func normalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
