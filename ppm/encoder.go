// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package ppm

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/cppiam/ppm-huffman/huffman"
)

// HeaderSize is the size of the symbol count that starts the persisted form.
const HeaderSize = 4

// An Encoder compresses a sequence of symbols.
// Each symbol is coded against the model as it stood before the symbol,
// and only then is the model updated with it.
//
// The persisted form, written by [Encoder.WriteTo], is the number of symbols
// as a little-endian uint32 followed by the code bits packed most significant
// bit first, with the last byte padded with zero bits.
type Encoder struct {
	model    *Model
	resolver *Resolver
	history  []Symbol
	bits     huffman.Bits
	stats    Stats
}

// NewEncoder returns an Encoder with an empty model of the given order over alphabet.
func NewEncoder(alphabet []Symbol, order int) (*Encoder, error) {
	m, err := NewModel(alphabet, order)
	if err != nil {
		return nil, err
	}
	return &Encoder{model: m, resolver: NewResolver(m)}, nil
}

// Model returns the encoder's model. It must not be updated by the caller.
func (e *Encoder) Model() *Model { return e.model }

// Encode codes s and then teaches it to the model.
// On error, neither the model nor the output changes.
func (e *Encoder) Encode(s Symbol) error {
	res, err := e.resolver.Resolve(s, e.history)
	if err != nil {
		return errors.Wrapf(err, "encoding symbol %d", len(e.history))
	}
	e.bits.Append(res.Bits)
	e.stats.add(res)
	e.model.Update(s, e.history)
	e.history = append(e.history, s)
	return nil
}

// EncodeSymbols encodes each of syms in turn, stopping at the first error.
func (e *Encoder) EncodeSymbols(syms []Symbol) error {
	for _, s := range syms {
		if err := e.Encode(s); err != nil {
			return err
		}
	}
	return nil
}

// EncodeString encodes the runes of text.
func (e *Encoder) EncodeString(text string) error {
	return e.EncodeSymbols(Symbols(text))
}

// Len returns the number of symbols encoded.
func (e *Encoder) Len() int { return len(e.history) }

// Bits returns the code bits produced so far.
func (e *Encoder) Bits() huffman.Bits { return e.bits }

// Stats returns statistics for the symbols encoded so far.
func (e *Encoder) Stats() Stats { return e.stats.clone() }

// WriteTo writes the persisted form to w.
func (e *Encoder) WriteTo(w io.Writer) (int64, error) {
	if uint64(len(e.history)) > math.MaxUint32 {
		return 0, errors.Errorf("ppm: %d symbols do not fit the header", len(e.history))
	}
	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(e.history)))
	n, err := w.Write(hdr[:])
	if err != nil {
		return int64(n), err
	}
	bw := huffman.NewWriter(w)
	bw.Write(e.bits)
	err = bw.Close()
	log.Debug().Int("symbols", len(e.history)).Int("bits", e.bits.Len()).Msg("ppm encoded")
	return int64(n) + bw.BytesWritten(), err
}

// MarshalBinary returns the persisted form.
func (e *Encoder) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := e.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Compress encodes text with a fresh model and writes the persisted form to w.
func Compress(w io.Writer, text []Symbol, alphabet []Symbol, order int) (Stats, error) {
	e, err := NewEncoder(alphabet, order)
	if err != nil {
		return Stats{}, err
	}
	if err := e.EncodeSymbols(text); err != nil {
		return e.Stats(), err
	}
	_, err = e.WriteTo(w)
	return e.Stats(), err
}
