/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package pipeline holds the sequence both CI agents share: extract the
// branch diff, bind it into a bounded prompt, and submit one completion.
// What each agent does with the response is its own business.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"

	"selfheal.dev/selfheal/agents/completions"
	"selfheal.dev/selfheal/agents/promptbuilder"
)

// ErrEmptyDiff reports that the branch carries no extractable changes.
// Agents treat this as "nothing to act on" rather than a failure.
var ErrEmptyDiff = errors.New("no diff to analyze")

// Differ produces the branch changes to analyze. It never fails: an
// unextractable diff is an empty one.
type Differ interface {
	Diff(ctx context.Context) string
}

// Run executes the shared sequence. The diff is bound to the prompt's
// "diff" placeholder, truncated to diffBudget bytes. The completer is
// constructed only after the diff check passes, so runs with nothing to do
// never touch a model backend.
func Run(ctx context.Context, differ Differ, prompt *promptbuilder.Prompt, diffBudget int, newCompleter completions.Factory) (string, error) {
	diff := differ.Diff(ctx)
	if strings.TrimSpace(diff) == "" {
		return "", ErrEmptyDiff
	}
	clog.FromContext(ctx).With("diff_bytes", len(diff)).Info("Extracted branch diff")

	bound, err := prompt.BindText("diff", diff, diffBudget)
	if err != nil {
		return "", fmt.Errorf("binding diff: %w", err)
	}
	text, err := bound.Build()
	if err != nil {
		return "", fmt.Errorf("building prompt: %w", err)
	}

	completer, err := newCompleter(ctx)
	if err != nil {
		return "", fmt.Errorf("creating completion client: %w", err)
	}
	response, err := completer.Complete(ctx, text)
	if err != nil {
		return "", fmt.Errorf("completing: %w", err)
	}
	return response, nil
}
