/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

package completions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"selfheal.dev/selfheal/agents/completions/retry"
	"selfheal.dev/selfheal/agents/metrics"
)

type googleCompleter struct {
	client      *genai.Client
	model       string
	timeout     time.Duration
	retryConfig retry.Config
	metrics     *metrics.GenAI
}

func newGoogle(ctx context.Context, cfg *Config) (Completer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &googleCompleter{
		client:      client,
		model:       cfg.GeminiModel,
		timeout:     cfg.Timeout,
		retryConfig: retry.DefaultConfig(),
		metrics:     newGenAIMetrics(),
	}, nil
}

func (c *googleCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := retry.Do(ctx, c.retryConfig, "google_complete", isRetryableGoogleError, func() (*genai.GenerateContentResponse, error) {
		return c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	})
	if err != nil {
		return "", fmt.Errorf("google completion: %w", err)
	}

	if resp.UsageMetadata != nil {
		c.metrics.RecordTokens(ctx, "google", c.model,
			int64(resp.UsageMetadata.PromptTokenCount),
			int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("google completion: empty response")
	}
	return text, nil
}

// isRetryableGoogleError reports rate-limit, quota exhaustion, and transient
// server errors. The genai SDK does not expose a structured error type for
// all transports, so classification is by message.
func isRetryableGoogleError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Resource exhausted") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "Overloaded") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "quota exceeded") ||
		strings.Contains(errStr, "server error")
}
