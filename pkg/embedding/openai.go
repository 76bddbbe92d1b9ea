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
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codecontext/codecontext-core/pkg/retry"
)

// OpenAIProvider embeds text via an OpenAI-compatible /embeddings
// endpoint (OpenAI, Azure OpenAI, and similar). Unlike Ollama, the API
// accepts a batched `input` array in one request.
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	model      string
	dimension  int
	httpClient *http.Client
	logger     *slog.Logger
	retryCfg   retry.Config
	maxTokens  int
}

// NewOpenAIProvider constructs a provider against an OpenAI-compatible
// embeddings endpoint.
func NewOpenAIProvider(apiKey, baseURL, model string, dimension int, logger *slog.Logger) *OpenAIProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if dimension <= 0 {
		dimension = 1536
	}
	return &OpenAIProvider{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
		retryCfg:   retry.DefaultConfig(),
		maxTokens:  8000,
	}
}

// Dimension implements Provider.
func (o *OpenAIProvider) Dimension() int { return o.dimension }

// BatchSize implements Provider.
func (o *OpenAIProvider) BatchSize() int { return 64 }

// Close implements Provider.
func (o *OpenAIProvider) Close() error { return nil }

type openAIEmbedRequest struct {
	Input          []string `json:"input"`
	Model          string   `json:"model"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed implements Provider.
func (o *OpenAIProvider) Embed(ctx context.Context, texts []string, instruction InstructionType) ([][]float32, error) {
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
			vectors, err := o.embedBatch(gctx, batch, texts, instruction)
			if err != nil {
				return err
			}
			for i, origIdx := range batch {
				sortedIdx := indexOf(batches.order, origIdx)
				sorted[sortedIdx] = vectors[i]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return batches.restore(sorted), nil
}

func (o *OpenAIProvider) embedBatch(ctx context.Context, batch []int, texts []string, instruction InstructionType) ([][]float32, error) {
	inputs := make([]string, len(batch))
	for i, origIdx := range batch {
		text, _ := truncateToTokens(texts[origIdx], o.maxTokens)
		inputs[i] = text
	}

	var result openAIEmbedResponse
	err := retry.Do(ctx, o.retryCfg, retry.DefaultClassifier, func(attempt int, sleep time.Duration, err error) {
		o.logger.Warn("embedding.openai.retry", "attempt", attempt+1, "sleep_ms", sleep.Milliseconds(), "error", err)
	}, func() error {
		reqBody := openAIEmbedRequest{Input: inputs, Model: o.model, EncodingFormat: "float"}
		body, _ := json.Marshal(reqBody)

		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/embeddings", bytes.NewReader(body))
		if reqErr != nil {
			return reqErr
		}
		req.Header.Set("Content-Type", "application/json")
		if o.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+o.apiKey)
		}

		resp, doErr := o.httpClient.Do(req)
		if doErr != nil {
			return fmt.Errorf("openai embed request: %w", doErr)
		}
		defer resp.Body.Close()

		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return readErr
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("openai embed error (status %d): %s", resp.StatusCode, string(respBody))
		}
		return json.Unmarshal(respBody, &result)
	})
	if err != nil {
		return nil, err
	}
	if len(result.Data) != len(inputs) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(result.Data), len(inputs))
	}

	vectors := make([][]float32, len(result.Data))
	for _, d := range result.Data {
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vectors[d.Index] = normalize(vec)
	}
	return vectors, nil
}
