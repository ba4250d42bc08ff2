/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

package result

import "testing"

func TestExtractFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		lang  string
		want  string
		found bool
	}{{
		name:  "simple block",
		input: "before\n```diff\ndiff --git a/x b/x\n```\nafter",
		lang:  "diff",
		want:  "diff --git a/x b/x",
		found: true,
	}, {
		name:  "multi line interior",
		input: "```json\n{\n  \"a\": 1\n}\n```",
		lang:  "json",
		want:  "{\n  \"a\": 1\n}",
		found: true,
	}, {
		name:  "wrong language tag",
		input: "```python\nprint(1)\n```",
		lang:  "diff",
		found: false,
	}, {
		name:  "empty block is not found",
		input: "```diff\n```",
		lang:  "diff",
		found: false,
	}, {
		name:  "whitespace-only block is not found",
		input: "```diff\n   \n\t\n```",
		lang:  "diff",
		found: false,
	}, {
		name:  "unterminated block keeps suffix",
		input: "```diff\ndiff --git a/x b/x",
		lang:  "diff",
		want:  "diff --git a/x b/x",
		found: true,
	}, {
		name:  "first of two blocks wins",
		input: "```diff\nfirst\n```\n\n```diff\nsecond\n```",
		lang:  "diff",
		want:  "first",
		found: true,
	}, {
		name:  "windows line endings",
		input: "```diff\r\ndiff --git a/x b/x\r\n```\r\n",
		lang:  "diff",
		want:  "diff --git a/x b/x",
		found: true,
	}, {
		name:  "interior carriage returns survive",
		input: "```diff\r\nline1\r\nline2\r\n```\r\n",
		lang:  "diff",
		want:  "line1\r\nline2",
		found: true,
	}, {
		name:  "no fences at all",
		input: "just prose",
		lang:  "diff",
		found: false,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractFence(tt.input, tt.lang)
			if found != tt.found {
				t.Fatalf("ExtractFence() found = %v, want %v", found, tt.found)
			}
			if found && got != tt.want {
				t.Errorf("ExtractFence() = %q, want %q", got, tt.want)
			}
		})
	}
}
