/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"errors"
	"strings"
)

// diffHeader is the unified-diff file header token emitted by git.
const diffHeader = "diff --git"

// ErrNoPatch reports that no recognizable unified diff was found in the
// model's output.
var ErrNoPatch = errors.New("no patch found in model output")

// ExtractPatch recovers a unified diff from model output. It first looks
// for a fenced block explicitly labeled as a diff; failing that, it falls
// back to the suffix starting at the first "diff --git" header. Models
// follow the fenced-block instruction most of the time, but a minor
// formatting deviation should not lose a patch whose header is still
// present. Returns ErrNoPatch when neither shape appears.
func ExtractPatch(text string) (string, error) {
	if body, ok := ExtractFence(text, "diff"); ok {
		return body, nil
	}

	if idx := strings.Index(text, diffHeader); idx >= 0 {
		return strings.TrimSpace(text[idx:]), nil
	}

	return "", ErrNoPatch
}
