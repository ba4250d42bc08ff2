/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

package heal

import "selfheal.dev/selfheal/agents/promptbuilder"

// fixPrompt asks the model for a unified diff and nothing else. The output
// format is spelled out because the patch extractor downstream only accepts
// a fenced diff block or a bare diff header.
var fixPrompt = promptbuilder.MustNewPrompt(`
You are a Senior Software Engineer acting as a PR self-healing agent.

Rules:
- Follow .ai/CLAUDE_RULES.md strictly
- Do NOT introduce new dependencies
- Do NOT weaken CI/CD, security, or coverage
- Only fix what is necessary to pass CI

Input:
Git diff:
{{diff}}

Task:
1. Identify why CI or rules likely failed
2. Propose concrete code fixes
3. Output ONLY a unified diff (git apply compatible)

Output format:
` + "```diff" + `
diff --git a/path/to/file b/path/to/file
--- a/path/to/file
+++ b/path/to/file
@@ -line,count +line,count @@
 context
-removed line
+added line
 context
` + "```" + `
`)
