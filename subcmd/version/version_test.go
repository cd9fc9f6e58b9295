// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package version

import (
	"bytes"
	"runtime/debug"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPrintVersion(t *testing.T) {
	for _, tc := range []struct {
		name      string
		buildInfo *debug.BuildInfo
		want      string
	}{
		{
			name: "no-buildinfo",
			want: "depsprep v1.0.0\n",
		},
		{
			name: "vcs",
			buildInfo: &debug.BuildInfo{
				GoVersion: "go1.24.2",
				Settings: []debug.BuildSetting{
					{Key: "-trimpath", Value: "true"},
					{Key: "vcs.revision", Value: "deadbeef"},
					{Key: "vcs.modified", Value: "false"},
				},
			},
			want: "depsprep v1.0.0\ngo\tgo1.24.2\nbuild\tvcs.revision=deadbeef\nbuild\tvcs.modified=false\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			printVersion(&buf, "depsprep v1.0.0", tc.buildInfo)
			if diff := cmp.Diff(tc.want, buf.String()); diff != "" {
				t.Errorf("printVersion diff -want +got:\n%s", diff)
			}
		})
	}
}
