// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package huffman

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Bits is an append-only sequence of bits.
// Bits are packed most-significant-bit first within each byte.
// The zero value is an empty sequence ready to use.
// Like a slice, a copied Bits shares storage with the original;
// only one of them should be appended to.
type Bits struct {
	buf []byte
	n   int // number of valid bits in buf
}

// BitsFromBytes returns the 8*len(p) bits of p. It does not copy p.
func BitsFromBytes(p []byte) Bits {
	return Bits{buf: p, n: 8 * len(p)}
}

// ParseBits parses a string of '0' and '1' characters.
func ParseBits(s string) (Bits, error) {
	var b Bits
	for i, c := range s {
		switch c {
		case '0':
			b.AppendBit(0)
		case '1':
			b.AppendBit(1)
		default:
			return Bits{}, errors.Errorf("huffman.ParseBits: bad character %q at %d", c, i)
		}
	}
	return b, nil
}

// Len returns the number of bits in b.
func (b Bits) Len() int { return b.n }

// Bit returns the i'th bit of b, 0 or 1.
func (b Bits) Bit(i int) uint8 {
	if i < 0 || i >= b.n {
		panic("huffman: bit index out of range")
	}
	return (b.buf[i/8] >> (7 - uint(i%8))) & 1
}

// AppendBit appends the low-order bit of bit.
func (b *Bits) AppendBit(bit uint8) {
	if b.n%8 == 0 {
		b.buf = append(b.buf[:b.n/8], 0)
	}
	mask := byte(1) << (7 - uint(b.n%8))
	if bit&1 != 0 {
		b.buf[b.n/8] |= mask
	} else {
		b.buf[b.n/8] &^= mask
	}
	b.n++
}

// AppendBits appends the n low-order bits of val, most significant first.
func (b *Bits) AppendBits(val uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		b.AppendBit(uint8(val >> uint(i)))
	}
}

// Append appends all of o.
func (b *Bits) Append(o Bits) {
	for i := range o.n {
		b.AppendBit(o.Bit(i))
	}
}

// Bytes returns the packed bits. If Len is not a multiple of 8,
// the last byte is padded with zero bits on the low side.
func (b Bits) Bytes() []byte {
	return b.buf[:(b.n+7)/8]
}

// Equal reports whether b and o hold the same bits.
func (b Bits) Equal(o Bits) bool {
	if b.n != o.n {
		return false
	}
	for i := range b.n {
		if b.Bit(i) != o.Bit(i) {
			return false
		}
	}
	return true
}

// String returns b as a string of '0' and '1' characters.
func (b Bits) String() string {
	var sb strings.Builder
	sb.Grow(b.n)
	for i := range b.n {
		sb.WriteByte('0' + b.Bit(i))
	}
	return sb.String()
}

// A BitReader supplies bits one at a time.
// ReadBit returns io.EOF when no bits remain.
type BitReader interface {
	ReadBit() (uint8, error)
}

// A Cursor reads from a Bits without modifying it.
// What has not been read yet is available from [Cursor.Remaining].
type Cursor struct {
	bits Bits
	pos  int
}

// NewCursor returns a Cursor positioned at the first bit of b.
func NewCursor(b Bits) *Cursor {
	return &Cursor{bits: b}
}

func (c *Cursor) ReadBit() (uint8, error) {
	if c.pos >= c.bits.n {
		return 0, io.EOF
	}
	bit := c.bits.Bit(c.pos)
	c.pos++
	return bit, nil
}

// Consumed returns the number of bits read so far.
func (c *Cursor) Consumed() int { return c.pos }

// Remaining returns the bits that have not been read.
func (c *Cursor) Remaining() Bits {
	var r Bits
	for i := c.pos; i < c.bits.n; i++ {
		r.AppendBit(c.bits.Bit(i))
	}
	return r
}

// A Writer packs bits into bytes, most significant bit first.
// Full bytes are written to its contained [io.Writer] as soon as they fill.
// Write errors are stored and reported by [Writer.Close] or [Writer.Err].
// On Close, a partial last byte is padded with zero bits on the low side.
type Writer struct {
	err   error
	w     io.Writer
	cur   byte // pending bits, aligned to the high end
	nbits int  // number of bits in cur; always < 8
	n     int64
}

// NewWriter returns a Writer that writes bytes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteBits writes the n low-order bits of val, most significant first.
func (w *Writer) WriteBits(val uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		w.writeBit(uint8(val>>uint(i)) & 1)
	}
}

// Write writes all of b.
func (w *Writer) Write(b Bits) {
	// Whole bytes can go straight through when we are aligned.
	if w.nbits == 0 {
		full := b.n / 8
		w.write(b.buf[:full])
		for i := full * 8; i < b.n; i++ {
			w.writeBit(b.Bit(i))
		}
		return
	}
	for i := range b.n {
		w.writeBit(b.Bit(i))
	}
}

func (w *Writer) writeBit(bit uint8) {
	w.cur |= bit << (7 - uint(w.nbits))
	w.nbits++
	if w.nbits == 8 {
		w.write([]byte{w.cur})
		w.cur = 0
		w.nbits = 0
	}
}

// Close writes any remaining bits, zero-padded to a byte.
// It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.nbits > 0 {
		w.write([]byte{w.cur})
		w.cur = 0
		w.nbits = 0
	}
	return w.err
}

func (w *Writer) write(buf []byte) {
	if w.err != nil || len(buf) == 0 {
		return
	}
	var nn int
	nn, w.err = w.w.Write(buf)
	w.n += int64(nn)
}

func (w *Writer) Err() error {
	return w.err
}

// BytesWritten returns the number of bytes written to the underlying writer.
func (w *Writer) BytesWritten() int64 { return w.n }

// A Reader reads bits from an [io.Reader], most significant bit first.
// Bytes are pulled from the underlying reader only when needed.
type Reader struct {
	err   error
	r     io.Reader
	cur   byte
	nbits int // unread bits in cur, aligned to the high end
	read  int // bits delivered so far
}

// NewReader returns a Reader that reads bytes from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// fill reads the next byte.
// It reports io.EOF when the underlying reader is exhausted.
func (r *Reader) fill() {
	var buf [1]byte
	n, err := io.ReadFull(r.r, buf[:])
	if n == 1 {
		r.cur = buf[0]
		r.nbits = 8
		return
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	r.err = err
}

func (r *Reader) ReadBit() (uint8, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.nbits == 0 {
		r.fill()
		if r.err != nil {
			return 0, r.err
		}
	}
	bit := r.cur >> 7
	r.cur <<= 1
	r.nbits--
	r.read++
	return bit, nil
}

// ReadBits reads n bits, at most 64, and returns them in the low-order
// bits of the result, the first bit read being the most significant.
func (r *Reader) ReadBits(n int) (uint64, error) {
	return ReadBits(r, n)
}

// ReadBits reads n bits, at most 64, from br.
// The first bit read is the most significant bit of the result.
func ReadBits(br BitReader, n int) (uint64, error) {
	if n < 0 || n > 64 {
		panic("bad number of bits to read")
	}
	var v uint64
	for range n {
		bit, err := br.ReadBit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | uint64(bit)
	}
	return v, nil
}

// Consumed returns the number of bits read so far.
func (r *Reader) Consumed() int { return r.read }
