/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

package completions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"selfheal.dev/selfheal/agents/completions/retry"
	"selfheal.dev/selfheal/agents/metrics"
)

type anthropicCompleter struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	timeout     time.Duration
	retryConfig retry.Config
	metrics     *metrics.GenAI
}

func newAnthropic(_ context.Context, cfg *Config) (Completer, error) {
	return &anthropicCompleter{
		client:      anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey)),
		model:       cfg.AnthropicModel,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		retryConfig: retry.DefaultConfig(),
		metrics:     newGenAIMetrics(),
	}, nil
}

func (c *anthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	message, err := retry.Do(ctx, c.retryConfig, "anthropic_complete", isRetryableAnthropicError, func() (*anthropic.Message, error) {
		return c.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(c.model),
			MaxTokens: c.maxTokens,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}

	c.metrics.RecordTokens(ctx, "anthropic", c.model, message.Usage.InputTokens, message.Usage.OutputTokens)

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", errors.New("anthropic completion: empty response")
	}
	return text, nil
}

// isRetryableAnthropicError reports rate-limit, overloaded, and transient
// server errors.
func isRetryableAnthropicError(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 503, 504, 529:
			return true
		}
	}
	return false
}
