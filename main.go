// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// depsprep prepares a webrtc checkout that builds against a nested
// chromium checkout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/depsprep/subcmd/help"
	"go.chromium.org/infra/build/depsprep/subcmd/link"
	"go.chromium.org/infra/build/depsprep/subcmd/prune"
	"go.chromium.org/infra/build/depsprep/subcmd/version"
	"go.chromium.org/infra/build/depsprep/ui"
)

const executableVersion = "depsprep v1.0.0"

func getApplication(globalFlags *flag.FlagSet) *cli.Application {
	return &cli.Application{
		Name:  "depsprep",
		Title: "tool to prepare a webrtc checkout with chromium deps",
		Context: func(ctx context.Context) context.Context {
			return ctx
		},
		Commands: []*subcommands.Command{
			prune.Cmd(),
			link.Cmd(),

			help.Cmd(globalFlags),
			version.Cmd(executableVersion),
		},
	}
}

func main() {
	os.Exit(depsprepMain(os.Args[1:]))
}

func depsprepMain(args []string) (exitCode int) {
	fs := flag.NewFlagSet("depsprep", flag.ContinueOnError)
	logLevel := fs.String("log_level", envOr("DEPSPREP_LOG_LEVEL", "warn"), "log level: debug, info, warn or error. can be set by $DEPSPREP_LOG_LEVEL")
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage of depsprep:\n")
		fmt.Fprintf(out, "global flags:\n")
		fs.PrintDefaults()
	}
	err := fs.Parse(args)
	if err != nil {
		return 2
	}
	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: bad -log_level: %v\n", err)
		return 2
	}
	log.SetLevel(level)

	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Errorf("panic: %v\n%s", r, buf)
			exitCode = 1
		}
	}()

	// Print build information to the log.
	buildinfo, ok := debug.ReadBuildInfo()
	if ok {
		log.Debugf("main module: %s %s", moduleInfo(&buildinfo.Main), vcsInfo(buildinfo))
	}

	ui.Init()
	defer ui.Restore()
	return subcommands.Run(getApplication(fs), fs.Args())
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func moduleInfo(m *debug.Module) string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("path:%s version:%s sum:%s replace:%s", m.Path, m.Version, m.Sum, moduleInfo(m.Replace))
}

func vcsInfo(buildinfo *debug.BuildInfo) string {
	m := make(map[string]string)
	for _, bs := range buildinfo.Settings {
		if strings.HasPrefix(bs.Key, "vcs.") {
			m[bs.Key] = bs.Value
		}
	}
	return fmt.Sprintf("vcs[revision=%s time=%s modified=%s]", m["vcs.revision"], m["vcs.time"], m["vcs.modified"])
}
