// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package link provides link subcommand.
package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/depsprep/linker"
	"go.chromium.org/infra/build/depsprep/ui"
)

const usage = `link chromium build tooling into the source tree.

 $ depsprep link -C <dir> [-manifest <links.star>]

It creates symlinks from <dir>/chromium/src into <dir> for build,
buildtools, testing, tools/* and every directory in third_party,
then writes <dir>/.get-chromium-deps-ran. If the file exists, it does
nothing unless -f is given.

The links can be declared in a Starlark manifest:

 source = "chromium/src"
 links = [link("build"), link("gn", dir = "tools"), "tools/clang"]
 scan = ["third_party"]
 sentinel = ".get-chromium-deps-ran"
`

// Cmd returns the Command for the `link` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "link [-C <dir>] [-manifest <file>]",
		ShortDesc: "link chromium deps into the source tree",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	dir      string
	manifest string
	force    bool
	dryRun   bool
}

func (c *run) init() {
	c.Flags.StringVar(&c.dir, "C", ".", "source root directory to link into")
	c.Flags.StringVar(&c.manifest, "manifest", os.Getenv("DEPSPREP_LINK_MANIFEST"), "Starlark link manifest. can be set by $DEPSPREP_LINK_MANIFEST. if empty, use builtin manifest")
	c.Flags.BoolVar(&c.force, "f", false, "link even if already linked")
	c.Flags.BoolVar(&c.dryRun, "n", false, "dry run. report links without creating them")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	if len(args) != 0 {
		fmt.Fprintf(a.GetErr(), "%s: position arguments not expected\n", a.GetName())
		return 1
	}
	err := c.run(ctx, a.GetOut())
	if err != nil {
		var lerr *linker.LinkError
		switch {
		case errors.Is(err, linker.ErrAlreadyLinked):
			fmt.Fprintln(a.GetOut(), "Already linked to chromium deps, skipping")
			return 0
		case errors.As(err, &lerr):
			for _, r := range lerr.Failed {
				fmt.Fprintf(a.GetErr(), "%s\n", r)
			}
			fmt.Fprintf(a.GetErr(), "Error: %d link(s) failed\n", len(lerr.Failed))
		default:
			fmt.Fprintf(a.GetErr(), "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	started := time.Now()
	m := linker.DefaultManifest()
	if c.manifest != "" {
		var err error
		m, err = linker.LoadManifest(c.manifest)
		if err != nil {
			return fmt.Errorf("failed to load manifest: %w", err)
		}
	}
	l := &linker.Linker{
		Root:   c.dir,
		Force:  c.force,
		DryRun: c.dryRun,
	}
	results, err := l.Run(ctx, m)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		fmt.Fprintln(w, r)
	}
	if err != nil {
		return err
	}
	log.Infof("linked %d paths in %s", len(results), ui.FormatDuration(time.Since(started)))
	return nil
}
