// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package prune

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func setupFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for k, v := range files {
		fname := filepath.Join(dir, k)
		err := os.WriteFile(fname, []byte(v), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	setupFiles(t, dir, map[string]string{
		"DEPS": `deps = {
  'src/foo/bar': 'https://example/repo@deadbeef',
}
hooks = [
  {
    'name': 'clang_format',
    'pattern': '.',
    'action': [ 'python', 'download.py' ],
  },
]
`,
		"remove.list": `# not needed for webrtc
d foo/bar
h clang_format
h lastchange
x something
`,
	})

	c := &run{}
	c.init()
	var out bytes.Buffer
	err := c.run(ctx, &out, []string{filepath.Join(dir, "DEPS"), filepath.Join(dir, "remove.list")})
	if err != nil {
		t.Fatalf("run=%v; want nil err", err)
	}
	want := `Remove dependency 'foo/bar': success
Remove hook 'clang_format': success
Remove hook 'lastchange': FAIL
Unknown entry type 'x'
`
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("output diff -want +got:\n%s", diff)
	}
	buf, err := os.ReadFile(filepath.Join(dir, "DEPS"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("deps = {\n}\nhooks = [\n  \n]\n", string(buf)); diff != "" {
		t.Errorf("DEPS diff -want +got:\n%s", diff)
	}
}

func TestRun_TooFewArgs(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name string
		args []string
	}{
		{
			name: "none",
		},
		{
			name: "deps-only",
			args: []string{"DEPS"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := &run{}
			c.init()
			var out bytes.Buffer
			err := c.run(ctx, &out, tc.args)
			if !errors.Is(err, flag.ErrHelp) {
				t.Errorf("run(%q)=%v; want %v", tc.args, err, flag.ErrHelp)
			}
		})
	}
}

func TestRun_DryRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	const deps = "deps = {\n  'src/foo/bar': 'https://example/repo@deadbeef',\n}\n"
	setupFiles(t, dir, map[string]string{
		"DEPS":        deps,
		"remove.list": "d foo/bar\n",
	})
	c := &run{}
	c.init()
	err := c.Flags.Parse([]string{"-n"})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	err = c.run(ctx, &out, []string{filepath.Join(dir, "DEPS"), filepath.Join(dir, "remove.list")})
	if err != nil {
		t.Fatalf("run=%v; want nil err", err)
	}
	if diff := cmp.Diff("Remove dependency 'foo/bar': success\n", out.String()); diff != "" {
		t.Errorf("output diff -want +got:\n%s", diff)
	}
	buf, err := os.ReadFile(filepath.Join(dir, "DEPS"))
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != deps {
		t.Errorf("DEPS modified by dry run:\n%s", buf)
	}
}
