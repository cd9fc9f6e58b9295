// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package prune provides prune subcommand.
package prune

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/depsprep/depsedit"
	"go.chromium.org/infra/build/depsprep/ui"
)

const usage = `remove dependencies and hooks from a gclient DEPS file.

 $ depsprep prune [-n] <DEPS file> <list-of-things-to-remove>

Each non-comment line of the list is "<type> <payload>":

 d <path>     remove dependency 'src/<path>'
 h <name>     remove hook named <name>
 m <regexp>   remove all matches of <regexp>

Lines starting with '#' and empty lines are ignored.
The DEPS file is rewritten in place.
`

// Cmd returns the Command for the `prune` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "prune <DEPS file> <list-of-things-to-remove>",
		ShortDesc: "remove dependencies and hooks from DEPS",
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

	dryRun       bool
	matchTimeout time.Duration
}

func (c *run) init() {
	c.Flags.BoolVar(&c.dryRun, "n", false, "dry run. report without modifying DEPS file")
	c.Flags.DurationVar(&c.matchTimeout, "match_timeout", 0, "timeout to match a pattern. 0 means no timeout")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, a.GetOut(), args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(a.GetErr(), "%v\n%s\n", err, usage)
		default:
			fmt.Fprintf(a.GetErr(), "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, w io.Writer, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	if len(args) < 2 {
		return fmt.Errorf("too few arguments: %w", flag.ErrHelp)
	}
	started := time.Now()
	depsFile, listFile := args[0], args[1]
	results, err := depsedit.PruneFile(ctx, depsFile, listFile, depsedit.Option{
		Pruner: depsedit.Pruner{
			MatchTimeout: c.matchTimeout,
		},
		DryRun: c.dryRun,
	})
	color := ui.IsTerminal(w)
	status := func(ok bool) string {
		return ui.Status(ok, color)
	}
	for _, r := range results {
		fmt.Fprintln(w, r.Format(status))
	}
	if err != nil {
		return err
	}
	log.Infof("pruned %s by %s in %s", depsFile, listFile, ui.FormatDuration(time.Since(started)))
	return nil
}
