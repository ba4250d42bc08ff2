/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"unicode"
)

// TruncationMarker is appended whenever BindText cuts a value at its budget.
// It is visible in the rendered prompt so a cut is never silent.
const TruncationMarker = "\n... [truncated]"

// stringLiteral only accepts untyped string constants, so templates and
// literal bindings cannot be built from user-controlled values.
type stringLiteral string

// Prompt is an immutable template with named placeholders. Binding methods
// return new instances; the receiver is never mutated.
type Prompt struct {
	template string
	bindings map[string]binding
}

// NewPrompt parses a template literal and records its placeholders.
func NewPrompt(template stringLiteral) (*Prompt, error) {
	bindings := make(map[string]binding)
	if _, err := expand(string(template), func(name string) (string, error) {
		if _, ok := bindings[name]; !ok {
			bindings[name] = &unboundBinding{name: name}
		}
		return "{{" + name + "}}", nil
	}); err != nil {
		return nil, err
	}
	return &Prompt{template: string(template), bindings: bindings}, nil
}

// Placeholders returns the set of placeholder names found in the template.
func (p *Prompt) Placeholders() map[string]struct{} {
	names := make(map[string]struct{}, len(p.bindings))
	for name := range p.bindings {
		names[name] = struct{}{}
	}
	return names
}

// BindStringLiteral binds a developer-controlled literal string to a placeholder.
func (p *Prompt) BindStringLiteral(name string, value stringLiteral) (*Prompt, error) {
	return p.bind(name, &literalBinding{val: string(value)})
}

// BindText binds free-form text under a character budget. When the text
// exceeds the budget it is cut at the budget and TruncationMarker is
// appended. A budget of zero or less means unbounded.
func (p *Prompt) BindText(name, value string, budget int) (*Prompt, error) {
	return p.bind(name, &textBinding{val: value, budget: budget})
}

func (p *Prompt) bind(name string, b binding) (*Prompt, error) {
	existing, ok := p.bindings[name]
	if !ok {
		return nil, fmt.Errorf("binding %q not found in template", name)
	}
	if _, unbound := existing.(*unboundBinding); !unbound {
		return nil, fmt.Errorf("binding %q already bound", name)
	}
	next := &Prompt{
		template: p.template,
		bindings: maps.Clone(p.bindings),
	}
	next.bindings[name] = b
	return next, nil
}

// Build renders the final prompt, failing if any placeholder is unbound.
func (p *Prompt) Build() (string, error) {
	values := make(map[string]string, len(p.bindings))
	for name, b := range p.bindings {
		val, err := b.value()
		if err != nil {
			return "", err
		}
		values[name] = val
	}
	return expand(p.template, func(name string) (string, error) {
		val, ok := values[name]
		if !ok {
			return "", fmt.Errorf("internal error: no value for binding %q", name)
		}
		return val, nil
	})
}

// expand walks the template once, replacing each {{name}} placeholder with
// whatever resolve returns for it. Replacement values are written straight
// to the output and never re-scanned, which rules out transitive
// substitution from bound data.
func expand(template string, resolve func(name string) (string, error)) (string, error) {
	var out strings.Builder
	for {
		open := strings.Index(template, "{{")
		if open < 0 {
			out.WriteString(template)
			return out.String(), nil
		}
		out.WriteString(template[:open])

		close := strings.Index(template[open:], "}}")
		if close < 0 {
			return "", errors.New("unclosed placeholder: missing '}}'")
		}
		close += open

		name := strings.TrimSpace(template[open+2 : close])
		if !validPlaceholderName(name) {
			return "", fmt.Errorf("invalid placeholder name %q", name)
		}
		replacement, err := resolve(name)
		if err != nil {
			return "", err
		}
		out.WriteString(replacement)
		template = template[close+2:]
	}
}

// validPlaceholderName reports whether s is a letter followed by letters,
// digits, or underscores.
func validPlaceholderName(s string) bool {
	for i, r := range s {
		switch {
		case i == 0 && !unicode.IsLetter(r):
			return false
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
		default:
			return false
		}
	}
	return s != ""
}
