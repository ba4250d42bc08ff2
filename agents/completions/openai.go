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

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"selfheal.dev/selfheal/agents/completions/retry"
	"selfheal.dev/selfheal/agents/metrics"
)

// groqBaseURL is Groq's OpenAI-compatible endpoint; the groq backend is the
// openai backend pointed at it.
const groqBaseURL = "https://api.groq.com/openai/v1"

type openaiCompleter struct {
	client      openai.Client
	provider    string
	model       string
	timeout     time.Duration
	retryConfig retry.Config
	metrics     *metrics.GenAI
}

func newOpenAI(_ context.Context, cfg *Config) (Completer, error) {
	return &openaiCompleter{
		client:      openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey)),
		provider:    "openai",
		model:       cfg.OpenAIModel,
		timeout:     cfg.Timeout,
		retryConfig: retry.DefaultConfig(),
		metrics:     newGenAIMetrics(),
	}, nil
}

func newGroq(_ context.Context, cfg *Config) (Completer, error) {
	return &openaiCompleter{
		client: openai.NewClient(
			option.WithAPIKey(cfg.GroqAPIKey),
			option.WithBaseURL(groqBaseURL),
		),
		provider:    "groq",
		model:       cfg.GroqModel,
		timeout:     cfg.Timeout,
		retryConfig: retry.DefaultConfig(),
		metrics:     newGenAIMetrics(),
	}, nil
}

func (c *openaiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	operation := c.provider + "_complete"
	resp, err := retry.Do(ctx, c.retryConfig, operation, isRetryableOpenAIError, func() (*openai.ChatCompletion, error) {
		return c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(c.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
		})
	})
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", c.provider, err)
	}

	c.metrics.RecordTokens(ctx, c.provider, c.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%s completion: empty response", c.provider)
	}
	return resp.Choices[0].Message.Content, nil
}

// isRetryableOpenAIError reports rate-limit and transient server errors on
// OpenAI-compatible endpoints.
func isRetryableOpenAIError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return false
}
