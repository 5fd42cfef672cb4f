// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"runtime"

	"github.com/smira/commander"
	"github.com/smira/flag"
)

func ppmhVersion(cmd *commander.Command, args []string) error {
	fmt.Fprintf(stdout, "ppmh version: %s (%s %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}

func makeCmdVersion() *commander.Command {
	return &commander.Command{
		Run:       ppmhVersion,
		UsageLine: "version",
		Short:     "display version",
		Long: `
Shows ppmh version.

ex:
  $ ppmh version
`,
		Flag: *flag.NewFlagSet("ppmh-version", flag.ExitOnError),
	}
}
