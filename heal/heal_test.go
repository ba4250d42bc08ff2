/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

package heal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"selfheal.dev/selfheal/agents/completions"
)

const testPatch = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -1,3 +1,3 @@
 package main
-import "os"
+import "fmt"

`

// fakeRepo is an in-memory Repository that records every mutation.
type fakeRepo struct {
	diff     string
	subjects []string

	subjectsErr   error
	applyCheckErr error
	applyErr      error
	stageErr      error
	commitErr     error
	pushErr       error

	diffCalls     int
	checkedPatch  string
	appliedPatch  string
	staged        bool
	commitMessage string
	pushed        bool
}

func (f *fakeRepo) Diff(context.Context) string {
	f.diffCalls++
	return f.diff
}

func (f *fakeRepo) RecentSubjects(context.Context, int) ([]string, error) {
	return f.subjects, f.subjectsErr
}

func (f *fakeRepo) ApplyCheck(_ context.Context, patch string) error {
	f.checkedPatch = patch
	return f.applyCheckErr
}

func (f *fakeRepo) Apply(_ context.Context, patch string) error {
	f.appliedPatch = patch
	return f.applyErr
}

func (f *fakeRepo) StageAll(context.Context) error {
	f.staged = true
	return f.stageErr
}

func (f *fakeRepo) Commit(_ context.Context, message string) error {
	f.commitMessage = message
	return f.commitErr
}

func (f *fakeRepo) Push(context.Context) error {
	f.pushed = true
	return f.pushErr
}

// countingCompleter returns a canned response and counts calls.
type countingCompleter struct {
	response string
	err      error
	calls    int
}

func (c *countingCompleter) Complete(context.Context, string) (string, error) {
	c.calls++
	return c.response, c.err
}

func newAgent(repo *fakeRepo, completer *countingCompleter) *Agent {
	return &Agent{
		Repo: repo,
		NewCompleter: func(context.Context) (completions.Completer, error) {
			return completer, nil
		},
	}
}

func TestRunHealsAndPublishes(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{
		diff:     "diff --git a/main.go b/main.go\n-broken\n+fixed\n",
		subjects: []string{"wip", CommitMarker + " Fix CI/rule violations", "feat: thing"},
	}
	completer := &countingCompleter{response: "Here is the fix:\n```diff\n" + testPatch + "```\n"}

	res := newAgent(repo, completer).Run(context.Background())

	if res.Outcome != OutcomeHealed {
		t.Fatalf("Outcome = %v (%s), want healed", res.Outcome, res.Reason)
	}
	if res.ExitCode() != 0 {
		t.Fatalf("ExitCode() = %d, want 0", res.ExitCode())
	}
	if completer.calls != 1 {
		t.Fatalf("completer called %d times, want exactly 1", completer.calls)
	}
	if repo.checkedPatch == "" {
		t.Fatal("patch was never dry-run validated")
	}
	if repo.appliedPatch != repo.checkedPatch {
		t.Fatal("applied patch differs from the validated one")
	}
	if !strings.Contains(repo.appliedPatch, "diff --git a/main.go") {
		t.Fatalf("applied patch missing diff header:\n%s", repo.appliedPatch)
	}
	if !repo.staged || !repo.pushed {
		t.Fatalf("staged = %v, pushed = %v, want both true", repo.staged, repo.pushed)
	}
	if !strings.HasPrefix(repo.commitMessage, CommitMarker) {
		t.Fatalf("commit message %q missing marker prefix", repo.commitMessage)
	}
}

func TestRunCeilingReached(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{
		diff: "some diff",
		subjects: []string{
			CommitMarker + " Fix CI/rule violations",
			"feat: unrelated",
			CommitMarker + " Fix CI/rule violations",
		},
	}
	factoryCalled := false
	agent := &Agent{
		Repo: repo,
		NewCompleter: func(context.Context) (completions.Completer, error) {
			factoryCalled = true
			return nil, errors.New("must not be reached")
		},
	}

	res := agent.Run(context.Background())

	if res.Outcome != OutcomeCeilingReached {
		t.Fatalf("Outcome = %v, want ceiling-reached", res.Outcome)
	}
	if res.ExitCode() != 0 {
		t.Fatalf("ExitCode() = %d, want 0", res.ExitCode())
	}
	if factoryCalled {
		t.Fatal("completion client constructed despite ceiling")
	}
	if repo.diffCalls != 0 {
		t.Fatal("diff fetched despite ceiling")
	}
	if repo.staged || repo.pushed || repo.appliedPatch != "" {
		t.Fatal("repository mutated despite ceiling")
	}
}

func TestRunCeilingCountsOnlyWindow(t *testing.T) {
	t.Parallel()
	// One marker commit in the window keeps the agent under the ceiling.
	repo := &fakeRepo{
		diff:     "some diff",
		subjects: []string{CommitMarker + " Fix CI/rule violations", "a", "b", "c", "d"},
	}
	completer := &countingCompleter{response: "```diff\n" + testPatch + "```"}

	res := newAgent(repo, completer).Run(context.Background())
	if res.Outcome != OutcomeHealed {
		t.Fatalf("Outcome = %v (%s), want healed with one prior attempt", res.Outcome, res.Reason)
	}
}

func TestRunHistoryErrorStopsBeforeAnalysis(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{
		diff:        "some diff",
		subjectsErr: errors.New("fatal: bad revision"),
	}
	completer := &countingCompleter{response: "```diff\n" + testPatch + "```"}

	res := newAgent(repo, completer).Run(context.Background())

	if res.Outcome != OutcomeGuardFailed {
		t.Fatalf("Outcome = %v (%s), want guard-failed when history is unreadable", res.Outcome, res.Reason)
	}
	if res.ExitCode() != 0 {
		t.Fatalf("ExitCode() = %d, want 0 (fail-open)", res.ExitCode())
	}
	if res.Err == nil {
		t.Fatal("Result.Err not populated")
	}
	if repo.diffCalls != 0 {
		t.Fatal("diff fetched despite unknown attempt count")
	}
	if completer.calls != 0 {
		t.Fatalf("completer called %d times despite unknown attempt count", completer.calls)
	}
	if repo.staged || repo.pushed || repo.appliedPatch != "" {
		t.Fatal("repository mutated despite unknown attempt count")
	}
}

func TestRunNothingToHeal(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{diff: "   \n"}
	completer := &countingCompleter{response: "unused"}

	res := newAgent(repo, completer).Run(context.Background())

	if res.Outcome != OutcomeNothingToHeal {
		t.Fatalf("Outcome = %v, want nothing-to-heal", res.Outcome)
	}
	if res.ExitCode() != 0 {
		t.Fatalf("ExitCode() = %d, want 0", res.ExitCode())
	}
	if completer.calls != 0 {
		t.Fatalf("completer called %d times for empty diff", completer.calls)
	}
}

func TestRunAnalysisFailure(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{diff: "some diff"}
	completer := &countingCompleter{err: errors.New("backend down")}

	res := newAgent(repo, completer).Run(context.Background())

	if res.Outcome != OutcomeAnalysisFailed {
		t.Fatalf("Outcome = %v, want analysis-failed", res.Outcome)
	}
	if res.ExitCode() != 0 {
		t.Fatalf("ExitCode() = %d, want 0 (fail-open)", res.ExitCode())
	}
	if res.Err == nil {
		t.Fatal("Result.Err not populated")
	}
	if repo.checkedPatch != "" || repo.staged {
		t.Fatal("repository touched after failed analysis")
	}
}

func TestRunNoUsablePatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
	}{{
		name:     "prose only",
		response: "I could not determine a fix for this failure.",
	}, {
		name:     "fenced block without diff content",
		response: "```diff\nthis is not a diff at all\n```",
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := &fakeRepo{diff: "some diff"}
			completer := &countingCompleter{response: tt.response}

			res := newAgent(repo, completer).Run(context.Background())

			if res.Outcome != OutcomeNoPatch {
				t.Fatalf("Outcome = %v (%s), want no-patch", res.Outcome, res.Reason)
			}
			if res.ExitCode() != 0 {
				t.Fatalf("ExitCode() = %d, want 0", res.ExitCode())
			}
			if repo.checkedPatch != "" {
				t.Fatal("invalid patch reached git apply --check")
			}
		})
	}
}

func TestRunPatchRejected(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{
		diff:          "some diff",
		applyCheckErr: errors.New("error: patch does not apply"),
	}
	completer := &countingCompleter{response: "```diff\n" + testPatch + "```"}

	res := newAgent(repo, completer).Run(context.Background())

	if res.Outcome != OutcomePatchRejected {
		t.Fatalf("Outcome = %v, want patch-rejected", res.Outcome)
	}
	if res.ExitCode() != 0 {
		t.Fatalf("ExitCode() = %d, want 0", res.ExitCode())
	}
	if repo.appliedPatch != "" {
		t.Fatal("patch applied after failed dry run")
	}
	if repo.staged || repo.pushed {
		t.Fatal("publish attempted after rejected patch")
	}
}

func TestRunLocalCommitFailureFailsOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mod  func(*fakeRepo)
	}{{
		name: "stage fails",
		mod:  func(r *fakeRepo) { r.stageErr = errors.New("index locked") },
	}, {
		name: "commit fails",
		mod:  func(r *fakeRepo) { r.commitErr = errors.New("hook rejected") },
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := &fakeRepo{diff: "some diff"}
			tt.mod(repo)
			completer := &countingCompleter{response: "```diff\n" + testPatch + "```"}

			res := newAgent(repo, completer).Run(context.Background())

			if res.Outcome != OutcomeCommitFailed {
				t.Fatalf("Outcome = %v (%s), want commit-failed", res.Outcome, res.Reason)
			}
			if res.ExitCode() != 0 {
				t.Fatalf("ExitCode() = %d, want 0 (nothing was published)", res.ExitCode())
			}
			if repo.pushed {
				t.Fatal("push attempted after local commit failure")
			}
		})
	}
}

func TestRunPushFailureFailsClosed(t *testing.T) {
	t.Parallel()
	repo := &fakeRepo{
		diff:    "some diff",
		pushErr: errors.New("remote rejected"),
	}
	completer := &countingCompleter{response: "```diff\n" + testPatch + "```"}

	res := newAgent(repo, completer).Run(context.Background())

	if res.Outcome != OutcomePublishFailed {
		t.Fatalf("Outcome = %v (%s), want publish-failed", res.Outcome, res.Reason)
	}
	if res.ExitCode() != 1 {
		t.Fatalf("ExitCode() = %d, want 1 (local commit diverged from remote)", res.ExitCode())
	}
	if repo.commitMessage == "" {
		t.Fatal("local commit missing before the failed push")
	}
}

func TestOutcomeStrings(t *testing.T) {
	t.Parallel()
	for o := OutcomeHealed; o <= OutcomePublishFailed; o++ {
		if o.String() == "unknown" {
			t.Errorf("Outcome(%d) has no label", o)
		}
	}
}
