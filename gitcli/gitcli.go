/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package gitcli wraps the git binary for the repository checkout a CI run
// operates on. All git access goes through external processes; nothing in
// this repository reimplements git plumbing.
package gitcli

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/chainguard-dev/clog"
)

// Git runs git commands against one working tree.
type Git struct {
	// Dir is the working tree root. Empty means the current directory.
	Dir string
	// BaseRef is the ref the branch diff is computed against.
	BaseRef string
	// Name and Email, when set, are passed as one-shot config for commits so
	// the checkout's own identity is never modified.
	Name  string
	Email string
}

// New returns a Git for the working tree at dir, diffing against
// origin/main by default.
func New(dir string) *Git {
	return &Git{Dir: dir, BaseRef: "origin/main"}
}

// run executes git with args, feeding stdin when non-empty, and returns
// stdout. Errors carry trimmed stderr for diagnosis.
func (g *Git) run(ctx context.Context, stdin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("git %s: %w", args[0], err)
		}
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
	}
	return stdout.String(), nil
}

// Diff returns the changes this branch carries. It first diffs against the
// merge base with BaseRef; shallow clones and detached CI checkouts often
// cannot resolve that, so it falls back to the last commit, and finally to
// an empty diff. Diff never fails: no extractable diff means there is
// nothing to act on, which callers treat as a no-op.
func (g *Git) Diff(ctx context.Context) string {
	log := clog.FromContext(ctx)

	diff, err := g.run(ctx, "", "diff", g.BaseRef+"...HEAD")
	if err == nil {
		return diff
	}
	log.With("base", g.BaseRef).With("error", err.Error()).
		Debug("Base ref diff failed, falling back to last commit")

	diff, err = g.run(ctx, "", "diff", "HEAD~1")
	if err == nil {
		return diff
	}
	log.With("error", err.Error()).Debug("Last commit diff failed, using empty diff")
	return ""
}

// RecentSubjects returns the subject lines of the last n commits, newest
// first. A repository with fewer commits returns what it has.
func (g *Git) RecentSubjects(ctx context.Context, n int) ([]string, error) {
	out, err := g.run(ctx, "", "log", fmt.Sprintf("-%d", n), "--pretty=%s")
	if err != nil {
		return nil, err
	}
	var subjects []string
	for line := range strings.SplitSeq(out, "\n") {
		if line != "" {
			subjects = append(subjects, line)
		}
	}
	return subjects, nil
}

// ApplyCheck dry-runs the patch without touching the working tree.
func (g *Git) ApplyCheck(ctx context.Context, patch string) error {
	_, err := g.run(ctx, patch, "apply", "--check", "-")
	return err
}

// Apply applies the patch to the working tree. Callers dry-run with
// ApplyCheck first so a failure here is unexpected.
func (g *Git) Apply(ctx context.Context, patch string) error {
	_, err := g.run(ctx, patch, "apply", "-")
	return err
}

// StageAll stages every change in the working tree.
func (g *Git) StageAll(ctx context.Context) error {
	_, err := g.run(ctx, "", "add", "-A")
	return err
}

// Commit records the staged changes under the configured identity.
func (g *Git) Commit(ctx context.Context, message string) error {
	args := make([]string, 0, 7)
	if g.Name != "" {
		args = append(args, "-c", "user.name="+g.Name)
	}
	if g.Email != "" {
		args = append(args, "-c", "user.email="+g.Email)
	}
	args = append(args, "commit", "-m", message)
	_, err := g.run(ctx, "", args...)
	return err
}

// Push publishes the current branch to its upstream.
func (g *Git) Push(ctx context.Context) error {
	_, err := g.run(ctx, "", "push")
	return err
}
