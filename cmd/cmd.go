// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

// Package cmd implements console commands
package cmd

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/cppiam/ppm-huffman/normalize"
)

// Version of ppmh, filled in by main
var Version = "unknown"

// Destinations of command output, replaced in tests
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

// RootCommand creates root command in command tree
func RootCommand() *commander.Command {
	cmd := &commander.Command{
		UsageLine: os.Args[0],
		Short:     "text compression by prediction by partial matching",
		Long: `
ppmh compresses text with a PPM model of bounded order: every symbol
is coded with a Huffman code built from the statistics of the longest
context that has seen it, escaping to shorter contexts and finally to
a fixed-width index of the symbols not seen yet.

Both ends must agree on the alphabet and the order; neither is stored
in the compressed file.`,
		Flag: *flag.NewFlagSet("ppmh", flag.ExitOnError),
		Subcommands: []*commander.Command{
			makeCmdCompress(),
			makeCmdDecompress(),
			makeCmdNormalize(),
			makeCmdTables(),
			makeCmdStats(),
			makeCmdTrace(),
			makeCmdConfig(),
			makeCmdVersion(),
		},
	}

	cmd.Flag.String("config", "", "location of configuration file (default locations are ~/.ppmh.conf, /etc/ppmh.conf)")
	cmd.Flag.Int("order", 2, "maximum context order")
	cmd.Flag.String("alphabet", "", "symbols of the model (default lowercase latin letters and space)")
	cmd.Flag.Bool("normalize", false, "normalize input text before modeling it")
	cmd.Flag.Bool("progress", false, "show progress bar on terminals")
	cmd.Flag.String("log-level", "", "log level: trace, debug, info, warn or error")
	cmd.Flag.String("log-format", "", "log format: default or json")

	return cmd
}

// readInput reads the whole of the named file, or standard input for "-"
func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// createOutput creates the named file, or returns standard output for "-"
func createOutput(name string) (io.WriteCloser, error) {
	if name == "-" {
		return nopWriteCloser{stdout}, nil
	}
	return os.Create(name)
}

// writeOutput writes data to the named file, or standard output for "-"
func writeOutput(name string, data []byte) error {
	out, err := createOutput(name)
	if err != nil {
		return err
	}
	if _, err = out.Write(data); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// loadText reads text to be modeled, normalizing it if configured
func loadText(name string) (string, error) {
	data, err := readInput(name)
	if err != nil {
		return "", err
	}
	if err = normalize.CheckText(data); err != nil {
		return "", errors.Wrapf(err, "unable to read %s", name)
	}
	cfg := context.Config()
	if cfg.Normalize {
		return normalize.New(cfg.Alphabet).String(string(data)), nil
	}
	return string(data), nil
}
