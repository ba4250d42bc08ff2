/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

package completions

import (
	"context"
	"errors"
	"time"

	"github.com/chainguard-dev/clog"
	"selfheal.dev/selfheal/agents/metrics"
)

// meterName is shared by all backends; the provider and model are recorded
// as attributes on each measurement.
const meterName = "selfheal.ai.completions"

// ErrNotConfigured reports that no completion backend has a usable
// credential in the environment.
var ErrNotConfigured = errors.New("no completion provider configured")

// Completer submits a prompt and returns the model's raw text response.
// Implementations make exactly one logical call per invocation; retry and
// timeout policy live behind this interface, never in callers.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Factory constructs a Completer on demand. The orchestrator holds a
// Factory rather than a Completer so that runs which stop early (ceiling
// reached, empty diff) provably do no completion-client work.
type Factory func(ctx context.Context) (Completer, error)

// Config is the environment surface for backend selection and credentials.
type Config struct {
	// Provider optionally forces a specific backend by name.
	Provider string `env:"AI_PROVIDER"`
	// Timeout bounds each completion call end to end, including backoff.
	Timeout time.Duration `env:"AI_TIMEOUT,default=60s"`
	// MaxTokens caps the model's response size.
	MaxTokens int64 `env:"AI_MAX_TOKENS,default=2048"`

	GroqAPIKey string `env:"GROQ_API_KEY"`
	GroqModel  string `env:"GROQ_MODEL,default=llama-3.1-70b-versatile"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL,default=claude-sonnet-4-20250514"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL,default=gemini-2.5-flash"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL,default=gpt-4o"`
}

// candidate pairs a backend with its availability predicate. Selection is
// plain data: an ordered list walked front to back, not a type hierarchy.
type candidate struct {
	name      string
	available func(*Config) bool
	build     func(ctx context.Context, cfg *Config) (Completer, error)
}

// candidates is the provider priority order.
var candidates = []candidate{{
	name:      "groq",
	available: func(cfg *Config) bool { return cfg.GroqAPIKey != "" },
	build:     newGroq,
}, {
	name:      "anthropic",
	available: func(cfg *Config) bool { return cfg.AnthropicAPIKey != "" },
	build:     newAnthropic,
}, {
	name:      "google",
	available: func(cfg *Config) bool { return cfg.GeminiAPIKey != "" },
	build:     newGoogle,
}, {
	name:      "openai",
	available: func(cfg *Config) bool { return cfg.OpenAIAPIKey != "" },
	build:     newOpenAI,
}}

// pick resolves the candidate to use for cfg. An explicit Provider is
// honored only when that backend is available; otherwise selection falls
// back to the priority list.
func pick(ctx context.Context, cfg *Config) (candidate, bool) {
	if cfg.Provider != "" {
		for _, c := range candidates {
			if c.name == cfg.Provider {
				if c.available(cfg) {
					return c, true
				}
				break
			}
		}
		clog.FromContext(ctx).With("provider", cfg.Provider).
			Warn("Requested provider unavailable, falling back to priority order")
	}
	for _, c := range candidates {
		if c.available(cfg) {
			return c, true
		}
	}
	return candidate{}, false
}

// New selects the first available backend and constructs it. Returns
// ErrNotConfigured when no backend has a credential.
func New(ctx context.Context, cfg *Config) (Completer, error) {
	c, ok := pick(ctx, cfg)
	if !ok {
		return nil, ErrNotConfigured
	}
	clog.FromContext(ctx).With("provider", c.name).Info("Selected completion provider")
	return c.build(ctx, cfg)
}

// newGenAIMetrics is shared by the backend constructors.
func newGenAIMetrics() *metrics.GenAI {
	return metrics.NewGenAI(meterName)
}
