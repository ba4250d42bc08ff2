/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package heal implements the PR self-healing agent: it analyzes the branch
// diff, asks a model for a corrective patch, validates and applies it, and
// publishes the result as a marker-tagged commit.
package heal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/waigani/diffparser"

	"selfheal.dev/selfheal/agents/completions"
	"selfheal.dev/selfheal/agents/result"
	"selfheal.dev/selfheal/pipeline"
)

const (
	// CommitMarker tags every commit this agent publishes. The repetition
	// guard counts it, so changing it resets the ceiling on open PRs.
	CommitMarker = "[ai-self-heal]"

	// BotName and BotEmail are the commit identity for published fixes.
	BotName  = "AI Self-Heal Bot"
	BotEmail = "ai-bot@noreply.github.com"

	// maxAttempts is the ceiling on marker-tagged commits within the
	// history window. Two attempts is enough to fix a trivial failure;
	// anything needing more needs a human.
	maxAttempts = 2
	// historyWindow is how many recent commit subjects the guard inspects.
	historyWindow = 5

	// diffBudget bounds the diff bound into the fix prompt, in bytes.
	diffBudget = 8000
)

// commitMessage is the subject for every published fix.
const commitMessage = CommitMarker + " Fix CI/rule violations"

// Repository is the slice of git the agent needs. *gitcli.Git satisfies it.
type Repository interface {
	pipeline.Differ
	RecentSubjects(ctx context.Context, n int) ([]string, error)
	ApplyCheck(ctx context.Context, patch string) error
	Apply(ctx context.Context, patch string) error
	StageAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context) error
}

// Agent runs one self-healing pass over a PR checkout.
type Agent struct {
	Repo Repository
	// NewCompleter is invoked lazily, after the guard and diff checks pass,
	// so runs that stop early never construct a completion client.
	NewCompleter completions.Factory
}

// Run executes the pass and returns its terminal state. Run itself never
// returns an error: every way the pass can end is a Result, and the caller
// maps it to an exit code.
func (a *Agent) Run(ctx context.Context) Result {
	log := clog.FromContext(ctx)

	reached, err := a.ceilingReached(ctx)
	if err != nil {
		return Result{
			Outcome: OutcomeGuardFailed,
			Reason:  "could not read commit history, falling back to human review",
			Err:     err,
		}
	}
	if reached {
		return Result{
			Outcome: OutcomeCeilingReached,
			Reason:  "max self-heal attempts reached, human review required",
		}
	}

	response, err := pipeline.Run(ctx, a.Repo, fixPrompt, diffBudget, a.NewCompleter)
	if errors.Is(err, pipeline.ErrEmptyDiff) {
		return Result{Outcome: OutcomeNothingToHeal, Reason: "no diff found, nothing to heal"}
	}
	if err != nil {
		return Result{
			Outcome: OutcomeAnalysisFailed,
			Reason:  "analysis failed, falling back to human review",
			Err:     err,
		}
	}

	patch, err := result.ExtractPatch(response)
	if err != nil {
		return Result{
			Outcome: OutcomeNoPatch,
			Reason:  "response did not contain a usable patch, falling back to human review",
			Err:     err,
		}
	}
	files, err := patchFiles(patch)
	if err != nil {
		return Result{
			Outcome: OutcomeNoPatch,
			Reason:  "response patch is structurally invalid, falling back to human review",
			Err:     err,
		}
	}

	log.With("patch_bytes", len(patch)).With("files", files).Info("Validating patch")
	if err := a.Repo.ApplyCheck(ctx, patch); err != nil {
		return Result{
			Outcome: OutcomePatchRejected,
			Reason:  "patch failed validation, falling back to human review",
			Err:     err,
		}
	}
	if err := a.Repo.Apply(ctx, patch); err != nil {
		return Result{
			Outcome: OutcomePatchRejected,
			Reason:  "patch failed to apply, falling back to human review",
			Err:     err,
		}
	}

	log.Info("Patch applied, publishing fix")
	if err := a.Repo.StageAll(ctx); err != nil {
		return Result{
			Outcome: OutcomeCommitFailed,
			Reason:  "staging fix failed, falling back to human review",
			Err:     err,
		}
	}
	if err := a.Repo.Commit(ctx, commitMessage); err != nil {
		return Result{
			Outcome: OutcomeCommitFailed,
			Reason:  "committing fix failed, falling back to human review",
			Err:     err,
		}
	}
	// Past this point a local commit exists: a failed push leaves history
	// diverged from the remote and must fail the job.
	if err := a.Repo.Push(ctx); err != nil {
		return Result{
			Outcome: OutcomePublishFailed,
			Reason:  "fix committed locally but push failed, human must reconcile",
			Err:     err,
		}
	}

	return Result{Outcome: OutcomeHealed, Reason: "self-healing commit pushed"}
}

// ceilingReached counts marker-tagged subjects in the recent history. An
// unreadable history is an error: the guard is the only loop-prevention
// bound, so the run must stop rather than proceed with an unknown count.
func (a *Agent) ceilingReached(ctx context.Context) (bool, error) {
	subjects, err := a.Repo.RecentSubjects(ctx, historyWindow)
	if err != nil {
		return false, fmt.Errorf("reading commit history: %w", err)
	}
	attempts := 0
	for _, s := range subjects {
		if strings.Contains(s, CommitMarker) {
			attempts++
		}
	}
	return attempts >= maxAttempts, nil
}

// patchFiles parses the patch structurally before any git process sees it
// and returns the touched file names. Fenced blocks that merely look like
// diffs fail here cheaply.
func patchFiles(patch string) ([]string, error) {
	parsed, err := diffparser.Parse(patch)
	if err != nil {
		return nil, fmt.Errorf("parsing patch: %w", err)
	}
	if len(parsed.Files) == 0 {
		return nil, errors.New("patch contains no file changes")
	}
	files := make([]string, 0, len(parsed.Files))
	for _, f := range parsed.Files {
		name := f.NewName
		if name == "" {
			name = f.OrigName
		}
		files = append(files, name)
	}
	return files, nil
}
