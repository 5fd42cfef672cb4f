// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

// Package huffman builds canonical Huffman codes from frequency tables
// and reads and writes the bit sequences they produce.
//
// A [Code] is a pure function of its input table: building it twice from
// the same frequencies yields the same bits for every symbol. Encoders and
// decoders that observe the same counts can therefore rebuild the same code
// independently, without transmitting it.
package huffman

import (
	"cmp"
	"io"
	"slices"
	"unicode/utf8"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/pkg/errors"
)

// A Symbol is a symbol in an alphabet. It may represent a byte or Unicode code point,
// or it may be an index into a table of arbitrary runes or strings.
// For the most part, this package does not distinguish those cases.
type Symbol = uint32

// MaxCodeLen is the longest code, in bits, that a [Code] may assign.
const MaxCodeLen = 64

var (
	ErrEmptyTable    = errors.New("huffman: empty frequency table")
	ErrBadCount      = errors.New("huffman: frequency must be positive")
	ErrCodeTooLong   = errors.New("huffman: code longer than 64 bits")
	ErrUnknownSymbol = errors.New("huffman: symbol not in code")
	ErrNoPrefix      = errors.New("huffman: bits match no code")
)

// A Code is a mapping from Symbols to bit sequences.
type Code struct {
	codes  map[Symbol]bitcode
	decode map[bitcode]Symbol
	syms   []Symbol // ascending
	maxLen int
}

type bitcode struct {
	val uint64
	len uint8
}

// A node of the code tree. Nodes live in an arena and refer to
// their children by index.
type node struct {
	count       int
	sym         Symbol
	leaf        bool
	seq         int // creation order
	left, right int
}

// compareNodes is the total order used to pick the next two nodes to merge.
// Lower counts come first. Equal counts are ordered by symbol value for two
// leaves, leaf before internal node, and by creation order for two internal
// nodes. Decoding depends on this order being the same on both sides.
func compareNodes(a, b *node) int {
	switch {
	case a.count != b.count:
		return cmp.Compare(a.count, b.count)
	case a.leaf && b.leaf:
		return cmp.Compare(a.sym, b.sym)
	case a.leaf:
		return -1
	case b.leaf:
		return 1
	default:
		return cmp.Compare(a.seq, b.seq)
	}
}

// NewCode constructs a [Code] for symbols with the given frequencies.
// Every frequency must be positive. A table with a single symbol
// yields the empty code for it: no bits are needed to send a certainty.
func NewCode(frequencies map[Symbol]int) (*Code, error) {
	if len(frequencies) == 0 {
		return nil, ErrEmptyTable
	}
	syms := make([]Symbol, 0, len(frequencies))
	for s, f := range frequencies {
		if f <= 0 {
			return nil, errors.Wrapf(ErrBadCount, "symbol %d has frequency %d", s, f)
		}
		syms = append(syms, s)
	}
	slices.Sort(syms)

	nodes := make([]node, 0, 2*len(syms)-1)
	for i, s := range syms {
		nodes = append(nodes, node{count: frequencies[s], sym: s, leaf: true, seq: i, left: -1, right: -1})
	}
	queue := binaryheap.NewWith(func(a, b interface{}) int {
		return compareNodes(&nodes[a.(int)], &nodes[b.(int)])
	})
	for i := range nodes {
		queue.Push(i)
	}
	for queue.Size() > 1 {
		l, _ := queue.Pop()
		r, _ := queue.Pop()
		left, right := l.(int), r.(int)
		nodes = append(nodes, node{
			count: nodes[left].count + nodes[right].count,
			seq:   len(nodes),
			left:  left,
			right: right,
		})
		queue.Push(len(nodes) - 1)
	}
	root, _ := queue.Pop()

	c := &Code{
		codes:  make(map[Symbol]bitcode, len(syms)),
		decode: make(map[bitcode]Symbol, len(syms)),
		syms:   syms,
	}
	if err := c.assign(nodes, root.(int)); err != nil {
		return nil, err
	}
	return c, nil
}

// assign walks the tree from root, giving 0 to left branches and 1 to right ones.
func (c *Code) assign(nodes []node, root int) error {
	type item struct {
		n    int
		code bitcode
	}
	stack := []item{{n: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nd := &nodes[it.n]
		if nd.leaf {
			c.codes[nd.sym] = it.code
			c.decode[it.code] = nd.sym
			c.maxLen = max(c.maxLen, int(it.code.len))
			continue
		}
		if it.code.len == MaxCodeLen {
			return ErrCodeTooLong
		}
		next := it.code.len + 1
		stack = append(stack,
			item{nd.right, bitcode{it.code.val<<1 | 1, next}},
			item{nd.left, bitcode{it.code.val << 1, next}})
	}
	return nil
}

// Len returns the number of symbols in the code.
func (c *Code) Len() int { return len(c.syms) }

// Symbols returns the symbols of the code in ascending order.
func (c *Code) Symbols() []Symbol { return slices.Clone(c.syms) }

// MaxLen returns the length of the longest code word.
func (c *Code) MaxLen() int { return c.maxLen }

// Lookup returns the bits for s.
func (c *Code) Lookup(s Symbol) (Bits, bool) {
	bc, ok := c.codes[s]
	if !ok {
		return Bits{}, false
	}
	var b Bits
	b.AppendBits(bc.val, int(bc.len))
	return b, true
}

// BitLen returns the length of the code word for s.
func (c *Code) BitLen(s Symbol) (int, bool) {
	bc, ok := c.codes[s]
	return int(bc.len), ok
}

// Append appends the code word for s to dst.
func (c *Code) Append(dst *Bits, s Symbol) error {
	bc, ok := c.codes[s]
	if !ok {
		return errors.Wrapf(ErrUnknownSymbol, "symbol %d", s)
	}
	dst.AppendBits(bc.val, int(bc.len))
	return nil
}

// Decode reads bits from r until they form a code word, and returns its symbol.
// Errors from r are returned unchanged.
func (c *Code) Decode(r BitReader) (Symbol, error) {
	var cur bitcode
	for {
		if s, ok := c.decode[cur]; ok {
			return s, nil
		}
		if int(cur.len) >= c.maxLen {
			return 0, ErrNoPrefix
		}
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		cur.val = cur.val<<1 | uint64(bit)
		cur.len++
	}
}

// A SplitFunc divides data into symbols.
type SplitFunc func([]byte) []Symbol

// SplitBytes treats each byte as a symbol.
func SplitBytes(data []byte) []Symbol {
	syms := make([]Symbol, len(data))
	for i, b := range data {
		syms[i] = Symbol(b)
	}
	return syms
}

// SplitRunes treats each UTF-8 encoded rune as a symbol.
// Each call must be given whole runes.
func SplitRunes(data []byte) []Symbol {
	syms := make([]Symbol, 0, utf8.RuneCount(data))
	for len(data) > 0 {
		r, n := utf8.DecodeRune(data)
		syms = append(syms, Symbol(r))
		data = data[n:]
	}
	return syms
}

// A CodeBuilder counts symbol frequencies so that a [Code] can be built from them.
type CodeBuilder struct {
	split SplitFunc
	freqs map[Symbol]int
}

// NewCodeBuilder returns a CodeBuilder that uses split to divide written
// data into symbols. If split is nil, [SplitBytes] is used.
func NewCodeBuilder(split SplitFunc) *CodeBuilder {
	if split == nil {
		split = SplitBytes
	}
	return &CodeBuilder{split: split, freqs: map[Symbol]int{}}
}

func (cb *CodeBuilder) Write(data []byte) (int, error) {
	cb.Add(cb.split(data)...)
	return len(data), nil
}

// Add counts syms.
func (cb *CodeBuilder) Add(syms ...Symbol) {
	for _, s := range syms {
		cb.freqs[s]++
	}
}

// Frequencies returns a copy of the counts so far.
func (cb *CodeBuilder) Frequencies() map[Symbol]int {
	m := make(map[Symbol]int, len(cb.freqs))
	for s, f := range cb.freqs {
		m[s] = f
	}
	return m
}

func (cb *CodeBuilder) Code() (*Code, error) {
	return NewCode(cb.freqs)
}

// An Encoder encodes symbols with a [Code].
type Encoder struct {
	c     *Code
	w     *Writer
	split SplitFunc
	err   error
	n     int
}

// NewEncoder returns an Encoder that writes to w.
// Data given to [Encoder.Write] is divided with split, or [SplitBytes] if nil.
func (c *Code) NewEncoder(w io.Writer, split SplitFunc) *Encoder {
	if split == nil {
		split = SplitBytes
	}
	return &Encoder{c: c, w: NewWriter(w), split: split}
}

func (e *Encoder) Write(data []byte) (int, error) {
	e.AddSymbols(e.split(data))
	if e.err != nil {
		return 0, e.err
	}
	return len(data), nil
}

// AddSymbol encodes s. It is an error if s is not in the Encoder's [Code].
func (e *Encoder) AddSymbol(s Symbol) {
	if e.err != nil {
		return
	}
	bc, ok := e.c.codes[s]
	if !ok {
		e.err = errors.Wrapf(ErrUnknownSymbol, "symbol %d", s)
		return
	}
	e.w.WriteBits(bc.val, int(bc.len))
	e.err = e.w.Err()
	e.n++
}

func (e *Encoder) AddSymbols(syms []Symbol) {
	for _, s := range syms {
		if e.err != nil {
			return
		}
		e.AddSymbol(s)
	}
}

// Count returns the number of symbols encoded.
func (e *Encoder) Count() int { return e.n }

// Close flushes the final partial byte.
func (e *Encoder) Close() error {
	if err := e.w.Close(); e.err == nil {
		e.err = err
	}
	return e.err
}

// Err returns the first error encountered from adding data, if any.
func (e *Encoder) Err() error { return e.err }

// A Decoder decodes data encoded by an Encoder.
// The encoded form does not record how many symbols it holds, and
// padding bits may decode as symbols, so callers must track the count.
type Decoder struct {
	c *Code
	r *Reader
}

func (c *Code) NewDecoder(r io.Reader) *Decoder {
	return &Decoder{c: c, r: NewReader(r)}
}

// DecodeSymbols fills buf with decoded symbols and returns how many it decoded.
// It returns io.EOF if the input ended on a code boundary and
// io.ErrUnexpectedEOF if it ended inside a code word.
func (d *Decoder) DecodeSymbols(buf []Symbol) (int, error) {
	for i := range buf {
		start := d.r.Consumed()
		s, err := d.c.Decode(d.r)
		if err != nil {
			if err == io.EOF && d.r.Consumed() != start {
				err = io.ErrUnexpectedEOF
			}
			return i, err
		}
		buf[i] = s
	}
	return len(buf), nil
}
