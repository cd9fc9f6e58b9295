// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDepsprepMain(t *testing.T) {
	dir := t.TempDir()
	deps := filepath.Join(dir, "DEPS")
	list := filepath.Join(dir, "remove.list")
	err := os.WriteFile(deps, []byte("deps = {\n  'src/foo': 'https://example/foo@1',\n}\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(list, []byte("d foo\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		name string
		args []string
		want int
	}{
		{
			name: "prune",
			args: []string{"prune", deps, list},
			want: 0,
		},
		{
			name: "prune-usage",
			args: []string{"prune", deps},
			want: 1,
		},
		{
			name: "prune-malformed",
			args: []string{"prune", deps, deps},
			want: 1,
		},
		{
			name: "bad-log-level",
			args: []string{"-log_level", "loud", "version"},
			want: 2,
		},
		{
			name: "version",
			args: []string{"version"},
			want: 0,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := depsprepMain(tc.args)
			if got != tc.want {
				t.Errorf("depsprepMain(%q)=%d; want=%d", tc.args, got, tc.want)
			}
		})
	}

	buf, err := os.ReadFile(deps)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(buf), "deps = {\n}\n"; got != want {
		t.Errorf("DEPS=%q; want=%q", got, want)
	}
}
