/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"fmt"
	"unicode/utf8"
)

// binding produces the replacement text for one placeholder.
type binding interface {
	value() (string, error)
}

// unboundBinding is the initial state of every placeholder. Building a
// prompt that still holds one is an error.
type unboundBinding struct {
	name string
}

func (u *unboundBinding) value() (string, error) {
	return "", fmt.Errorf("unbound placeholder: %s", u.name)
}

// literalBinding holds a developer-provided literal string.
type literalBinding struct {
	val string
}

func (l *literalBinding) value() (string, error) {
	return l.val, nil
}

// textBinding holds free-form text capped at a character budget.
type textBinding struct {
	val    string
	budget int
}

func (t *textBinding) value() (string, error) {
	if t.budget <= 0 || len(t.val) <= t.budget {
		return t.val, nil
	}
	// Back up to a rune boundary so the cut never produces invalid UTF-8.
	cut := t.budget
	for cut > 0 && !utf8.RuneStart(t.val[cut]) {
		cut--
	}
	return t.val[:cut] + TruncationMarker, nil
}
