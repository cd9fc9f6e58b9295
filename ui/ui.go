// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ui provides terminal helpers for reports.
package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// https://en.wikipedia.org/wiki/ANSI_escape_code#SGR_(Select_Graphic_Rendition)_parameters
type SGRCode int

const (
	Red SGRCode = iota
	Green
	Reset
)

var sgrEscSeq = map[SGRCode]string{
	Red:   "\033[31;1m",
	Green: "\033[32m",
	Reset: "\033[0m",
}

func (s SGRCode) String() string {
	return sgrEscSeq[s]
}

// SGR formats s in SGR (select graphic rendition).
func SGR(n SGRCode, s string) string {
	return fmt.Sprintf("%s%s%s", n, s, Reset)
}

// Status returns "success" or "FAIL" for ok.
// If color is true, it is rendered in green or red.
func Status(ok, color bool) string {
	s, code := "success", Green
	if !ok {
		s, code = "FAIL", Red
	}
	if !color {
		return s
	}
	return SGR(code, s)
}
