// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package cmd

import (
	"github.com/smira/commander"
)

func makeCmdConfig() *commander.Command {
	return &commander.Command{
		UsageLine: "config",
		Short:     "manage ppmh configuration",
		Subcommands: []*commander.Command{
			makeCmdConfigShow(),
		},
	}
}
