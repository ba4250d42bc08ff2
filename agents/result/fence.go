/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

package result

import "strings"

// ExtractFence returns the interior of the first fenced code block opened by
// ```lang on its own line, trimmed of surrounding whitespace. Interior lines
// are kept verbatim; a trailing \r is only ignored when recognizing the fence
// markers themselves, so CRLF content survives extraction. The second return
// reports whether such a block was found; an interior that is empty after
// trimming counts as not found, so callers never mistake an empty fence for
// content.
func ExtractFence(text, lang string) (string, bool) {
	open := "```" + lang
	var interior strings.Builder
	inBlock := false

	for _, line := range strings.Split(text, "\n") {
		marker := strings.TrimRight(line, "\r")
		if !inBlock {
			if marker == open {
				inBlock = true
			}
			continue
		}
		if marker == "```" {
			break
		}
		if interior.Len() > 0 {
			interior.WriteString("\n")
		}
		interior.WriteString(line)
	}

	if !inBlock {
		return "", false
	}
	body := strings.TrimSpace(interior.String())
	if body == "" {
		return "", false
	}
	return body, true
}
