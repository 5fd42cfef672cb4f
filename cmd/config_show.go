// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package cmd

import (
	"github.com/pkg/errors"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/cppiam/ppm-huffman/utils"
)

func ppmhConfigShow(cmd *commander.Command, args []string) error {
	if len(args) != 0 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	config := context.Config()

	switch format := context.Flags().Lookup("format").Value.String(); format {
	case "json":
		return utils.WriteConfigJSON(stdout, config)
	case "yaml":
		return utils.WriteConfigYAML(stdout, config)
	case "toml":
		return utils.WriteConfigTOML(stdout, config)
	default:
		return errors.Errorf("unknown format %q", format)
	}
}

func makeCmdConfigShow() *commander.Command {
	cmd := &commander.Command{
		Run:       ppmhConfigShow,
		UsageLine: "show",
		Short:     "show current ppmh's config",
		Long: `
Command show displays the current configuration, with command-line
settings applied.

Example:

  $ ppmh -order=4 config show -format=yaml

`,
		Flag: *flag.NewFlagSet("ppmh-config-show", flag.ExitOnError),
	}
	cmd.Flag.String("format", "json", "output format: json, yaml or toml")
	return cmd
}
