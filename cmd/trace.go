// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/cppiam/ppm-huffman/ppm"
)

// describeLevels lists the code words of each level tried for history.
func describeLevels(r *ppm.Resolver, history []ppm.Symbol) (string, error) {
	levels, err := r.Levels(history)
	if err != nil {
		return "", err
	}
	var lines []string
	for _, l := range levels {
		var words []string
		for _, s := range l.Code.Symbols() {
			bits, _ := l.Code.Lookup(s)
			words = append(words, symbolString(s)+"="+bits.String())
		}
		lines = append(lines, fmt.Sprintf("%d: %s", l.Order, strings.Join(words, " ")))
	}
	return strings.Join(lines, "\n"), nil
}

func ppmhTrace(cmd *commander.Command, args []string) error {
	if len(args) != 1 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	text, err := loadText(args[0])
	if err != nil {
		return err
	}

	cfg := context.Config()
	m, err := ppm.NewModel(context.Alphabet(), cfg.Order)
	if err != nil {
		return err
	}
	r := ppm.NewResolver(m)
	showCodes := context.Flags().Lookup("codes").Value.Get().(bool)

	header := []string{"#", "Symbol", "Context", "Order", "Escapes", "Bits"}
	if showCodes {
		header = append(header, "Codes")
	}
	table := tablewriter.NewWriter(stdout)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetRowLine(showCodes)

	var (
		history []ppm.Symbol
		total   int
	)
	for i, s := range ppm.Symbols(text) {
		var codes string
		if showCodes {
			if codes, err = describeLevels(r, history); err != nil {
				return err
			}
		}
		res, err := r.Resolve(s, history)
		if err != nil {
			return errors.Wrapf(err, "symbol %d", i)
		}
		ctx := history[max(0, len(history)-cfg.Order):]
		row := []string{
			strconv.Itoa(i),
			symbolString(s),
			strconv.Quote(ppm.String(ctx)),
			strconv.Itoa(res.Order),
			strconv.Itoa(res.Escapes),
			res.Bits.String(),
		}
		if showCodes {
			row = append(row, codes)
		}
		table.Append(row)
		total += res.Bits.Len()

		m.Update(s, history)
		history = append(history, s)
	}
	table.Render()
	fmt.Fprintf(stdout, "\n%d symbols, %d bits\n", len(history), total)
	return nil
}

func makeCmdTrace() *commander.Command {
	cmd := &commander.Command{
		Run:       ppmhTrace,
		UsageLine: "trace <input>",
		Short:     "show how each symbol of a text is coded",
		Long: `
Trace codes the text of <input> symbol by symbol and prints, for each,
the context it followed, the order that coded it, the escapes emitted
on the way and the resulting bits. With -codes it also prints the code
words of every order tried.

Example:

  $ echo -n abracadabra > a.txt
  $ ppmh -alphabet=abcdr trace -codes a.txt
`,
		Flag: *flag.NewFlagSet("ppmh-trace", flag.ExitOnError),
	}
	cmd.Flag.Bool("codes", false, "print the code words of every order tried")
	return cmd
}
