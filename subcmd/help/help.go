// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package help provides help subcommand.
package help

import (
	"flag"
	"fmt"

	"github.com/maruel/subcommands"
)

// Cmd returns the Command for the `help` subcommand provided by this package.
// globalFlags are printed in top-level help.
func Cmd(globalFlags *flag.FlagSet) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "help [<command>]",
		ShortDesc: "prints help about a command",
		LongDesc:  "Prints commands and global flags, or help about a specific command.",
		CommandRun: func() subcommands.CommandRun {
			return &helpCmdRun{globalFlags: globalFlags}
		},
	}
}

type helpCmdRun struct {
	subcommands.CommandRunBase
	globalFlags *flag.FlagSet
}

func (h *helpCmdRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) == 0 {
		subcommands.Usage(a.GetOut(), a, false)
		if h.globalFlags == nil {
			return 0
		}
		fmt.Fprintln(a.GetOut(), "Global flags, given before the command:")
		h.globalFlags.SetOutput(a.GetOut())
		h.globalFlags.PrintDefaults()
		return 0
	}
	// Use default subcommands.CmdHelp for a specific command.
	return subcommands.CmdHelp.CommandRun().Run(a, args, env)
}
