// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package cmd

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/cppiam/ppm-huffman/normalize"
)

func ppmhNormalize(cmd *commander.Command, args []string) error {
	if len(args) != 2 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	data, err := readInput(args[0])
	if err != nil {
		return err
	}

	alphabet := ""
	if context.LookupOption(true, "restrict") {
		alphabet = context.Config().Alphabet
	}
	out, err := normalize.New(alphabet).Bytes(data)
	if err != nil {
		return errors.Wrapf(err, "unable to normalize %s", args[0])
	}
	if err = writeOutput(args[1], out); err != nil {
		return errors.Wrapf(err, "unable to write %s", args[1])
	}
	log.Info().Int("in", len(data)).Int("out", len(out)).Msg("normalized")
	return nil
}

func makeCmdNormalize() *commander.Command {
	cmd := &commander.Command{
		Run:       ppmhNormalize,
		UsageLine: "normalize <input> <output>",
		Short:     "normalize text for the alphabet",
		Long: `
Normalize repairs doubly encoded UTF-8, removes accents, lowercases,
replaces digits and punctuation with spaces and collapses white space.
Unless -restrict=false, characters outside the alphabet become spaces
too.

Example:

  $ ppmh normalize raw.txt clean.txt
`,
		Flag: *flag.NewFlagSet("ppmh-normalize", flag.ExitOnError),
	}
	cmd.Flag.Bool("restrict", true, "replace characters outside the alphabet with spaces")
	return cmd
}
