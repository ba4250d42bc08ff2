/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package completions is the only place where model-provider logic lives. All
model access in this repository funnels through the single Completer
operation; no other package may depend on a concrete backend SDK.

Backends are selected from an ordered candidate list, each guarded by an
availability predicate (its API key being present in the environment). The
AI_PROVIDER variable overrides the ordering when the named provider is
available; otherwise selection falls back to the priority list. When no
candidate is available New returns ErrNotConfigured, which callers treat the
same as any other completion failure.

Each backend performs one logical call per Complete invocation, bounded by
an internal timeout, with transparent backoff for rate-limit and transient
server errors. Callers see a response string or an error; they never see
provider detail.
*/
package completions
