// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depsedit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dlclark/regexp2"
)

// Result is the outcome of a directive.
type Result struct {
	Directive Directive

	// Matches is the number of matches removed.
	Matches int

	// Removed reports whether the text length changed.
	// It is what the diagnostic reports as success; a replacement
	// that keeps the length would be reported as failure.
	Removed bool

	// Err is a non-fatal error, i.e. ErrUnknownDirectiveType.
	Err error
}

// String returns the diagnostic line for the result.
func (r Result) String() string {
	return r.Format(func(ok bool) string {
		if ok {
			return "success"
		}
		return "FAIL"
	})
}

// Format returns the diagnostic line using status to render success/failure.
func (r Result) Format(status func(ok bool) string) string {
	d := r.Directive
	switch {
	case r.Err != nil:
		return fmt.Sprintf("Unknown entry type '%c'", byte(d.Kind))
	case d.Kind == Dependency:
		return fmt.Sprintf("Remove dependency '%s': %s", d.Payload, status(r.Removed))
	case d.Kind == Hook:
		return fmt.Sprintf("Remove hook '%s': %s", d.Payload, status(r.Removed))
	default:
		return fmt.Sprintf("Remove hook by match '%s': %s", d.Payload, status(r.Removed))
	}
}

// Pruner applies directives to DEPS text.
type Pruner struct {
	// MatchTimeout limits time spent matching a single pattern.
	// Zero means no limit.
	MatchTimeout time.Duration
}

// Pattern returns the regexp source for the directive.
// Payloads of d and h are interpolated as regexp fragments, so
// "d third_party/.*" removes every dependency under third_party.
// A single-line hook block ({'name': 'x', ...},) is not matched by h.
func Pattern(d Directive) (string, error) {
	switch d.Kind {
	case Dependency:
		return `^\s*'src/` + strings.ReplaceAll(d.Payload, "/", `\/`) + `':[^,]+,.*(?:\n|\z)`, nil
	case Hook:
		return `\{(\s*#.*$)*\n\s*'name':\s*'` + d.Payload + `',\s*\n[^}]+\},`, nil
	case Match:
		return d.Payload, nil
	}
	return "", ErrUnknownDirectiveType
}

func (p Pruner) compile(d Directive) (*regexp2.Regexp, error) {
	pat, err := Pattern(d)
	if err != nil {
		return nil, err
	}
	re, err := regexp2.Compile(pat, regexp2.Multiline)
	if err != nil {
		return nil, &DirectiveError{
			Line: d.Line,
			Text: fmt.Sprintf("%c %s", byte(d.Kind), d.Payload),
			Err:  err,
		}
	}
	if p.MatchTimeout > 0 {
		re.MatchTimeout = p.MatchTimeout
	}
	return re, nil
}

// Remove applies a single directive to text.
// It returns ErrUnknownDirectiveType for unknown directive types.
func (p Pruner) Remove(text string, d Directive) (string, Result, error) {
	result := Result{Directive: d}
	re, err := p.compile(d)
	if err != nil {
		return text, result, err
	}
	out, n, err := removeAll(re, text)
	result.Matches = n
	if err != nil {
		return text, result, fmt.Errorf("line %d: %w", d.Line, err)
	}
	result.Removed = len(out) != len(text)
	if result.Matches > 0 && !result.Removed {
		log.Warnf("line %d: %d match(es) for %s %q but text length unchanged", d.Line, result.Matches, d.Kind, d.Payload)
	}
	return out, result, nil
}

// removeAll removes all non-overlapping matches of re in text.
// Unmatched bytes are copied as is, even if text is not valid UTF-8.
func removeAll(re *regexp2.Regexp, text string) (string, int, error) {
	m, err := re.FindStringMatch(text)
	if err != nil || m == nil {
		return text, 0, err
	}
	// regexp2 reports rune offsets; each invalid byte counts as one rune,
	// same as range over string.
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))

	var sb strings.Builder
	sb.Grow(len(text))
	last, n := 0, 0
	for m != nil {
		start, end := offsets[m.Index], offsets[m.Index+m.Length]
		sb.WriteString(text[last:start])
		last = end
		n++
		m, err = re.FindNextMatch(m)
		if err != nil {
			return text, n, err
		}
	}
	sb.WriteString(text[last:])
	return sb.String(), n, nil
}

// Apply applies directives to text in order.
// Unknown directive types are reported in results and skipped.
// Any other error is fatal, and the input text is returned as is.
func (p Pruner) Apply(ctx context.Context, in string, directives []Directive) (string, []Result, error) {
	text := in
	results := make([]Result, 0, len(directives))
	for _, d := range directives {
		if err := ctx.Err(); err != nil {
			return in, results, err
		}
		out, result, err := p.Remove(text, d)
		if err != nil {
			if errors.Is(err, ErrUnknownDirectiveType) {
				log.Warnf("line %d: %v %q", d.Line, err, byte(d.Kind))
				result.Err = err
				results = append(results, result)
				continue
			}
			return in, results, err
		}
		log.Debugf("line %d: %s %q matches=%d removed=%t", d.Line, d.Kind, d.Payload, result.Matches, result.Removed)
		results = append(results, result)
		text = out
	}
	return text, results, nil
}
