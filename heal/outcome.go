/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

package heal

// Outcome classifies how a self-healing run ended. Every terminal state is
// deliberate: most failures hand the PR back to a human reviewer with a
// passing exit code, and only a half-published fix fails the job.
type Outcome int

const (
	// OutcomeHealed means a fix was applied, committed, and pushed.
	OutcomeHealed Outcome = iota
	// OutcomeCeilingReached means the attempt ceiling stopped the run
	// before any analysis.
	OutcomeCeilingReached
	// OutcomeGuardFailed means the commit history could not be read, so
	// the attempt count is unknown. The guard is the only loop-prevention
	// bound, so the run stops before any analysis.
	OutcomeGuardFailed
	// OutcomeNothingToHeal means the branch carries no extractable diff.
	OutcomeNothingToHeal
	// OutcomeAnalysisFailed means the completion call (or its setup) failed.
	OutcomeAnalysisFailed
	// OutcomeNoPatch means the model response contained no usable patch.
	OutcomeNoPatch
	// OutcomePatchRejected means the patch failed validation or application.
	OutcomePatchRejected
	// OutcomeCommitFailed means the fix was applied but staging or
	// committing it locally failed. Nothing was published, so this still
	// hands the PR to human review with a passing exit.
	OutcomeCommitFailed
	// OutcomePublishFailed means a local commit exists but the push failed,
	// leaving history diverged from the remote. This is the one outcome
	// that fails the job.
	OutcomePublishFailed
)

// String returns a short stable label for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeHealed:
		return "healed"
	case OutcomeCeilingReached:
		return "ceiling-reached"
	case OutcomeGuardFailed:
		return "guard-failed"
	case OutcomeNothingToHeal:
		return "nothing-to-heal"
	case OutcomeAnalysisFailed:
		return "analysis-failed"
	case OutcomeNoPatch:
		return "no-patch"
	case OutcomePatchRejected:
		return "patch-rejected"
	case OutcomeCommitFailed:
		return "commit-failed"
	case OutcomePublishFailed:
		return "publish-failed"
	}
	return "unknown"
}

// Result is the terminal state of one run.
type Result struct {
	Outcome Outcome
	// Reason is a human-readable explanation for CI logs.
	Reason string
	// Err carries the underlying error for outcomes caused by one.
	Err error
}

// ExitCode maps the result to the process exit code. The agent fails open:
// every outcome exits zero except a failed push, which leaves a local
// commit the remote never saw and must be surfaced, not swallowed.
func (r Result) ExitCode() int {
	if r.Outcome == OutcomePublishFailed {
		return 1
	}
	return 0
}
