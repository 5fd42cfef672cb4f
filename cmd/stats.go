// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/cppiam/ppm-huffman/huffman"
	"github.com/cppiam/ppm-huffman/ppm"
)

// A baseline is the compressed size of the text under some other method.
type baseline struct {
	name string
	size int
}

// staticHuffmanSize returns the size of text coded with a single Huffman
// code built from its own rune frequencies. The code itself is not counted.
func staticHuffmanSize(text []byte) (int, error) {
	cb := huffman.NewCodeBuilder(huffman.SplitRunes)
	if _, err := cb.Write(text); err != nil {
		return 0, err
	}
	code, err := cb.Code()
	if err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	enc := code.NewEncoder(&buf, huffman.SplitRunes)
	if _, err = enc.Write(text); err != nil {
		return 0, err
	}
	if err = enc.Close(); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

func gzipSize(text []byte) (int, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return 0, err
	}
	if _, err = w.Write(text); err != nil {
		return 0, err
	}
	if err = w.Close(); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

func zstdSize(text []byte) (int, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return 0, err
	}
	defer enc.Close()
	return len(enc.EncodeAll(text, nil)), nil
}

func snappySize(text []byte) (int, error) {
	return len(snappy.Encode(nil, text)), nil
}

func baselines(text []byte) ([]baseline, error) {
	var out []baseline
	for _, b := range []struct {
		name string
		size func([]byte) (int, error)
	}{
		{"static huffman", staticHuffmanSize},
		{"gzip -9", gzipSize},
		{"zstd", zstdSize},
		{"snappy", snappySize},
	} {
		n, err := b.size(text)
		if err != nil {
			return nil, errors.Wrap(err, b.name)
		}
		out = append(out, baseline{b.name, n})
	}
	return out, nil
}

func ppmhStats(cmd *commander.Command, args []string) error {
	if len(args) != 1 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	text, err := loadText(args[0])
	if err != nil {
		return err
	}
	if text == "" {
		return errors.Errorf("%s: no text", args[0])
	}

	cfg := context.Config()
	alphabet := context.Alphabet()
	var compressed bytes.Buffer
	st, err := ppm.Compress(&compressed, ppm.Symbols(text), alphabet, cfg.Order)
	if err != nil {
		return errors.Wrap(err, "unable to compress")
	}

	if context.Flags().Lookup("verify").Value.Get().(bool) {
		got, err := ppm.Decompress(bytes.NewReader(compressed.Bytes()), alphabet, cfg.Order)
		if err != nil {
			return errors.Wrap(err, "verification failed")
		}
		if ppm.String(got) != text {
			return errors.New("verification failed: decompressed text differs")
		}
		log.Debug().Int("symbols", len(got)).Msg("round trip verified")
	}

	others, err := baselines([]byte(text))
	if err != nil {
		return err
	}

	original := len(text)
	row := func(name string, size int) []string {
		return []string{
			name,
			strconv.Itoa(size),
			fmt.Sprintf("%.3f", 8*float64(size)/float64(st.Symbols)),
			fmt.Sprintf("%.1f%%", 100*float64(size)/float64(original)),
		}
	}

	table := tablewriter.NewWriter(stdout)
	table.SetHeader([]string{"Method", "Bytes", "Bits/symbol", "Size"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.Append(row("original", original))
	table.Append(row(fmt.Sprintf("ppm order %d", cfg.Order), st.FileSize()))
	for _, b := range others {
		table.Append(row(b.name, b.size))
	}
	table.Render()

	fmt.Fprintf(stdout, "\nSymbols: %d  Escapes: %d  Novel: %d\n", st.Symbols, st.Escapes, st.Novel)
	fmt.Fprintf(stdout, "Code length: %.4f bits/symbol  Model entropy: %.4f bits/symbol\n\n",
		st.BitsPerSymbol(), st.EntropyPerSymbol())

	orders := make([]int, 0, len(st.ByOrder))
	for k := range st.ByOrder {
		orders = append(orders, k)
	}
	slices.Sort(orders)
	slices.Reverse(orders)

	byOrder := tablewriter.NewWriter(stdout)
	byOrder.SetHeader([]string{"Order", "Symbols", "Share"})
	byOrder.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, k := range orders {
		byOrder.Append([]string{
			strconv.Itoa(k),
			strconv.Itoa(st.ByOrder[k]),
			fmt.Sprintf("%.1f%%", 100*float64(st.ByOrder[k])/float64(st.Symbols)),
		})
	}
	byOrder.Render()
	return nil
}

func makeCmdStats() *commander.Command {
	cmd := &commander.Command{
		Run:       ppmhStats,
		UsageLine: "stats <input>",
		Short:     "compare compression of text against other methods",
		Long: `
Stats compresses the text of <input> in memory and reports the size
reached, the mean code length against the entropy of the model and the
orders that coded the symbols. For comparison it shows the sizes reached
by a static Huffman code of the whole text, gzip, zstd and snappy.

Example:

  $ ppmh -order=4 stats book.txt
`,
		Flag: *flag.NewFlagSet("ppmh-stats", flag.ExitOnError),
	}
	cmd.Flag.Bool("verify", true, "decompress and compare with the input")
	return cmd
}
