// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package cmd

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/cppiam/ppm-huffman/ppm"
)

func ppmhCompress(cmd *commander.Command, args []string) error {
	if len(args) != 2 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	text, err := loadText(args[0])
	if err != nil {
		return err
	}

	cfg := context.Config()
	e, err := ppm.NewEncoder(context.Alphabet(), cfg.Order)
	if err != nil {
		return err
	}

	syms := ppm.Symbols(text)
	progress := context.Progress(len(syms), "compress ")
	for _, s := range syms {
		if err = e.Encode(s); err != nil {
			progress.Finish()
			if errors.Is(err, ppm.ErrSymbolNotInAlphabet) && !cfg.Normalize {
				return errors.Wrap(err, "unable to compress (try -normalize)")
			}
			return errors.Wrap(err, "unable to compress")
		}
		progress.Add(1)
	}
	progress.Finish()

	out, err := createOutput(args[1])
	if err != nil {
		return err
	}
	n, err := e.WriteTo(out)
	if err2 := out.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return errors.Wrapf(err, "unable to write %s", args[1])
	}

	st := e.Stats()
	log.Info().
		Str("output", args[1]).
		Int("order", cfg.Order).
		Int("symbols", st.Symbols).
		Int64("bytes", n).
		Float64("bitsPerSymbol", st.BitsPerSymbol()).
		Msg("compressed")
	return nil
}

func makeCmdCompress() *commander.Command {
	cmd := &commander.Command{
		Run:       ppmhCompress,
		UsageLine: "compress <input> <output>",
		Short:     "compress text file",
		Long: `
Compress encodes the text of <input> and writes the compressed form to
<output>. Either may be - for standard input or output. Every character
of the text must belong to the alphabet; -normalize folds the text into
the alphabet first.

Example:

  $ ppmh -order=3 compress book.txt book.ppm
`,
		Flag: *flag.NewFlagSet("ppmh-compress", flag.ExitOnError),
	}
	return cmd
}
