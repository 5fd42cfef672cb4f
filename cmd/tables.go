// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/cppiam/ppm-huffman/ppm"
)

func symbolString(s ppm.Symbol) string {
	if s == ppm.Escape {
		return "esc"
	}
	return strconv.QuoteRune(rune(s))
}

func appendFrequencyRows(table *tablewriter.Table, order int, t *ppm.FrequencyTable, withEscape bool) {
	ctx := strconv.Quote(ppm.String(t.Context()))
	if order == 0 {
		ctx = ""
	}
	syms := t.Symbols()
	if withEscape {
		syms = append(syms, ppm.Escape)
	}
	for _, s := range syms {
		count := t.Count(s)
		if s == ppm.Escape {
			count = t.Distinct()
		}
		table.Append([]string{
			strconv.Itoa(order),
			ctx,
			symbolString(s),
			strconv.Itoa(count),
			fmt.Sprintf("%.4f", t.Probability(s, withEscape)),
		})
	}
}

func ppmhTables(cmd *commander.Command, args []string) error {
	if len(args) != 1 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	text, err := loadText(args[0])
	if err != nil {
		return err
	}

	e, err := ppm.NewEncoder(context.Alphabet(), context.Config().Order)
	if err != nil {
		return err
	}
	if err = e.EncodeString(text); err != nil {
		return errors.Wrap(err, "unable to model text")
	}
	m := e.Model()

	minOrder := context.Flags().Lookup("min-order").Value.Get().(int)

	table := tablewriter.NewWriter(stdout)
	table.SetHeader([]string{"Order", "Context", "Symbol", "Count", "Probability"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)

	for k := m.Order(); k >= 1 && k >= minOrder; k-- {
		for _, t := range m.Contexts(k) {
			appendFrequencyRows(table, k, t, m.CanEscape(t))
		}
	}
	if g := m.Global(); g.Total() > 0 && minOrder <= 0 {
		appendFrequencyRows(table, 0, g, m.CanEscape(g))
	}
	if unseen := m.Unseen(); len(unseen) > 0 && minOrder <= ppm.UnseenOrder {
		p := fmt.Sprintf("%.4f", 1/float64(len(unseen)))
		for _, s := range unseen {
			table.Append([]string{strconv.Itoa(ppm.UnseenOrder), "", symbolString(s), "", p})
		}
	}
	table.Render()
	return nil
}

func makeCmdTables() *commander.Command {
	cmd := &commander.Command{
		Run:       ppmhTables,
		UsageLine: "tables <input>",
		Short:     "show model statistics after reading text",
		Long: `
Tables reads the text of <input> into a fresh model and prints every
frequency table: one per context for each order down to 1, the global
order 0 table and the symbols never seen, which order -1 codes with a
uniform probability. An esc row gives the probability left for symbols
the context has not seen.

Example:

  $ ppmh -order=1 tables sample.txt
`,
		Flag: *flag.NewFlagSet("ppmh-tables", flag.ExitOnError),
	}
	cmd.Flag.Int("min-order", -1, "lowest order to show")
	return cmd
}
