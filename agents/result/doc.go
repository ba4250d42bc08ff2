/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package result recovers structured content from free-form model output.

Models are instructed to answer with exactly one fenced code block, but they
deviate often enough that downstream code cannot assume the instruction was
followed. This package is a best-effort text matcher, not a parser: it finds
the first fenced block with a given language tag, with documented fallbacks
per content type.

ExtractPatch recovers a unified diff (a ```diff fence, else the suffix from
the first "diff --git" header) and fails with ErrNoPatch when neither shape
appears. Extract recovers JSON (a ```json fence, else the trimmed text) and
unmarshals it into a typed value.
*/
package result
