// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package depsedit removes dependencies and hooks from gclient DEPS files.
//
// A removal list holds one directive per line:
//
//	# comment
//	d third_party/foo      remove dependency 'src/third_party/foo'
//	h clang_format         remove hook named clang_format
//	m ^\s*'action':.*$\n   remove raw regexp matches
//
// The DEPS file is never parsed; directives are applied as text
// substitutions in order.
package depsedit

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrMalformedDirective is returned when the character after the
	// directive type is not a space.
	ErrMalformedDirective = errors.New("second char on a non-comment line must be space")

	// ErrUnknownDirectiveType is reported for a directive whose type
	// is not one of d, h or m.
	ErrUnknownDirectiveType = errors.New("unknown entry type")
)

// Kind is a directive type.
type Kind byte

const (
	// Dependency removes a single line `'src/<payload>': ...,` entry.
	Dependency Kind = 'd'
	// Hook removes a hook object whose name is the payload.
	Hook Kind = 'h'
	// Match removes all matches of the payload regexp.
	Match Kind = 'm'
)

func (k Kind) String() string {
	switch k {
	case Dependency:
		return "dependency"
	case Hook:
		return "hook"
	case Match:
		return "match"
	}
	return fmt.Sprintf("unknown(%q)", byte(k))
}

// Directive is a removal instruction.
type Directive struct {
	Kind    Kind
	Payload string

	// Line is 1-based line number in the removal list.
	Line int
}

// DirectiveError is an error about a line in the removal list.
type DirectiveError struct {
	Line int
	Text string
	Err  error
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *DirectiveError) Unwrap() error { return e.Err }

// ParseDirectives reads a removal list.
// Directives with unknown type are returned as is; Apply reports them.
func ParseDirectives(r io.Reader) ([]Directive, error) {
	var directives []Directive
	s := bufio.NewScanner(r)
	s.Buffer(nil, 1<<20)
	lineno := 0
	for s.Scan() {
		lineno++
		line := strings.TrimSpace(s.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		if len(line) < 2 || line[1] != ' ' {
			return nil, &DirectiveError{
				Line: lineno,
				Text: line,
				Err:  ErrMalformedDirective,
			}
		}
		directives = append(directives, Directive{
			Kind:    Kind(line[0]),
			Payload: strings.TrimSpace(line[1:]),
			Line:    lineno,
		})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return directives, nil
}

// ParseDirectivesBytes is ParseDirectives on buf.
func ParseDirectivesBytes(buf []byte) ([]Directive, error) {
	return ParseDirectives(bytes.NewReader(buf))
}
