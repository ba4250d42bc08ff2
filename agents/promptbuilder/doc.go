/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package promptbuilder assembles bounded prompts from literal templates.

Templates are literal strings with {{name}} placeholders. Placeholders are
resolved in a single pass, so bound values are never re-scanned for further
placeholders, and every binding method returns a new Prompt, leaving the
original untouched.

Two binding shapes are supported:

  - BindStringLiteral binds developer-controlled literal text.
  - BindText binds free-form text (typically a git diff) under a character
    budget. Text over the budget is cut at the budget and a visible
    truncation marker is appended, so the model is never fed an unbounded
    payload and a cut is never silent.

Basic usage:

	var fixPrompt = promptbuilder.MustNewPrompt(`
	Analyze the following change:
	{{diff}}
	`)

	p, err := fixPrompt.BindText("diff", diff, 8000)
	if err != nil {
		return err
	}
	rendered, err := p.Build()

Build returns an error when any placeholder remains unbound, which keeps a
half-assembled prompt from ever reaching a model.
*/
package promptbuilder
