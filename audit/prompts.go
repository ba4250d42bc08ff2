/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

package audit

import "selfheal.dev/selfheal/agents/promptbuilder"

// auditPrompt asks the model for a strict JSON verdict. Single braces in
// the schema are not placeholders and render as-is.
var auditPrompt = promptbuilder.MustNewPrompt(`
You are an AI governance auditor.

Repository rules are defined in .ai/CLAUDE_RULES.md.

Analyze the following git diff and answer:
1. Does this change violate ANY rule?
2. Are CI/CD gates weakened?
3. Are security checks removed or downgraded?
4. Is AI provider abstraction violated?
5. Is coverage enforcement reduced?

Respond STRICTLY in JSON with:
{
  "violation": true|false,
  "severity": "critical|high|medium|low|none",
  "explanation": "...",
  "recommendation": "..."
}

Git diff:
{{diff}}
`)
