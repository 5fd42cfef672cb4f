// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/cppiam/ppm-huffman/ppm"
)

func ppmhDecompress(cmd *commander.Command, args []string) error {
	if len(args) != 2 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	var in io.Reader
	if args[0] == "-" {
		in = stdin
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	cfg := context.Config()
	d, err := ppm.NewDecoder(in, context.Alphabet(), cfg.Order)
	if err != nil {
		return errors.Wrapf(err, "unable to decompress %s", args[0])
	}

	var (
		text     bytes.Buffer
		syms     []ppm.Symbol
		progress = context.Progress(d.Len(), "decompress ")
	)
	for {
		var s ppm.Symbol
		s, err = d.Next()
		if err != nil {
			break
		}
		syms = append(syms, s)
		progress.Add(1)
	}
	progress.Finish()
	text.WriteString(ppm.String(syms))

	if err != io.EOF {
		if context.Flags().Lookup("partial").Value.Get().(bool) && len(syms) > 0 {
			if err2 := writeOutput(args[1], text.Bytes()); err2 != nil {
				log.Error().Err(err2).Msg("unable to write partial output")
			}
		}
		return errors.Wrapf(err, "unable to decompress %s", args[0])
	}

	if err = writeOutput(args[1], text.Bytes()); err != nil {
		return errors.Wrapf(err, "unable to write %s", args[1])
	}
	log.Info().
		Str("output", args[1]).
		Int("order", cfg.Order).
		Int("symbols", d.Decoded()).
		Int("bytes", text.Len()).
		Msg("decompressed")
	return nil
}

func makeCmdDecompress() *commander.Command {
	cmd := &commander.Command{
		Run:       ppmhDecompress,
		UsageLine: "decompress <input> <output>",
		Short:     "decompress file written by compress",
		Long: `
Decompress decodes a file written by compress and writes the text to
<output>. The alphabet and order must be those used to compress it.
Either file may be - for standard input or output.

Example:

  $ ppmh -order=3 decompress book.ppm book.txt
`,
		Flag: *flag.NewFlagSet("ppmh-decompress", flag.ExitOnError),
	}
	cmd.Flag.Bool("partial", false, "on a decoding error, write the text recovered so far")
	return cmd
}
