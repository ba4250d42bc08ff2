/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"encoding/json"
	"strings"
)

// ExtractJSON extracts JSON content from model output that may wrap it in
// markdown code blocks. It prefers a ```json fence; otherwise it returns the
// trimmed text with any stray fence markers stripped.
func ExtractJSON(text string) string {
	if body, ok := ExtractFence(text, "json"); ok {
		return body
	}

	// Fallback: models sometimes emit inline fences or none at all.
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// Extract extracts JSON content from model output and unmarshals it into T.
func Extract[T any](text string) (T, error) {
	var out T
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &out); err != nil {
		return out, err
	}
	return out, nil
}
