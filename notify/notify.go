/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package notify posts run summaries as PR comments. Notification is best
// effort: it activates only when the CI environment provides the full
// GitHub coordinates, and its failures never change an agent's outcome.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
)

// Config is the environment surface for PR comments. GitHub Actions
// populates GITHUB_REPOSITORY natively; the workflow passes the token and
// PR number through.
type Config struct {
	Token      string `env:"GITHUB_TOKEN"`
	Repository string `env:"GITHUB_REPOSITORY"`
	PRNumber   int    `env:"PR_NUMBER"`
}

// enabled reports whether every coordinate needed to comment is present.
func (c Config) enabled() bool {
	return c.Token != "" && strings.Contains(c.Repository, "/") && c.PRNumber > 0
}

// Notifier posts comments on one pull request.
type Notifier struct {
	cfg    Config
	client *github.Client
}

// New returns a Notifier, or nil when the environment does not carry the
// coordinates for one. A nil Notifier is safe to use and does nothing.
func New(cfg Config) *Notifier {
	if !cfg.enabled() {
		return nil
	}
	return &Notifier{
		cfg:    cfg,
		client: github.NewClient(nil).WithAuthToken(cfg.Token),
	}
}

// Comment posts body on the configured pull request. Errors are logged and
// swallowed: a lost comment must not alter the job's exit code.
func (n *Notifier) Comment(ctx context.Context, body string) {
	if n == nil {
		return
	}
	owner, repo, ok := strings.Cut(n.cfg.Repository, "/")
	if !ok {
		return
	}
	if _, _, err := n.client.Issues.CreateComment(ctx, owner, repo, n.cfg.PRNumber, &github.IssueComment{
		Body: github.Ptr(body),
	}); err != nil {
		clog.FromContext(ctx).With("pr", n.cfg.PRNumber).With("error", err.Error()).
			Warn("Failed to post PR comment")
		return
	}
	clog.FromContext(ctx).With("pr", n.cfg.PRNumber).Info("Posted PR comment")
}

// HealSummary renders a comment body for a self-healing run.
func HealSummary(outcome, reason string) string {
	return fmt.Sprintf("**Self-Healing Agent**: `%s`\n\n%s", outcome, reason)
}

// AuditSummary renders a comment body for an audit run, including the
// model's explanation when one was decoded.
func AuditSummary(outcome, reason, explanation, recommendation string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Rules Audit**: `%s`\n\n%s", outcome, reason)
	if explanation != "" {
		fmt.Fprintf(&b, "\n\n%s", explanation)
	}
	if recommendation != "" {
		fmt.Fprintf(&b, "\n\n_Recommendation_: %s", recommendation)
	}
	return b.String()
}
