// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package ppm

import (
	"bufio"
	"encoding/binary"
	"io"
	"slices"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/cppiam/ppm-huffman/huffman"
)

// A Decoder reads the persisted form written by an [Encoder] using the same
// alphabet and order. It rebuilds the encoder's model symbol by symbol.
type Decoder struct {
	model    *Model
	resolver *Resolver
	history  []Symbol
	br       *huffman.Reader
	n        int
	err      error
}

// NewDecoder reads the header from r and returns a Decoder for the symbols that follow.
// Payload bytes are read from r only as they are needed.
func NewDecoder(r io.Reader, alphabet []Symbol, order int) (*Decoder, error) {
	m, err := NewModel(alphabet, order)
	if err != nil {
		return nil, err
	}
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.Wrapf(ErrMalformedHeader, "input shorter than %d bytes", HeaderSize)
		}
		return nil, errors.Wrap(err, "reading header")
	}
	return &Decoder{
		model:    m,
		resolver: NewResolver(m),
		br:       huffman.NewReader(bufio.NewReader(r)),
		n:        int(binary.LittleEndian.Uint32(hdr[:])),
	}, nil
}

// Model returns the decoder's model. It must not be updated by the caller.
func (d *Decoder) Model() *Model { return d.model }

// Len returns the number of symbols declared by the header.
func (d *Decoder) Len() int { return d.n }

// Decoded returns the number of symbols decoded so far.
func (d *Decoder) Decoded() int { return len(d.history) }

// Next decodes the next symbol. It returns io.EOF after the declared
// number of symbols, and a *DecodeError if the input cannot supply them.
// A failed Decoder stays failed.
func (d *Decoder) Next() (Symbol, error) {
	if d.err != nil {
		return 0, d.err
	}
	if len(d.history) >= d.n {
		return 0, io.EOF
	}
	s, err := d.resolver.Decode(d.br, d.history)
	if err != nil {
		d.err = &DecodeError{Recovered: len(d.history), Err: err}
		return 0, d.err
	}
	d.model.Update(s, d.history)
	d.history = append(d.history, s)
	return s, nil
}

// DecodeAll decodes the remaining symbols. On failure it returns the
// symbols recovered so far along with the error.
func (d *Decoder) DecodeAll() ([]Symbol, error) {
	for {
		_, err := d.Next()
		if err == io.EOF {
			log.Debug().Int("symbols", len(d.history)).Int("bits", d.br.Consumed()).Msg("ppm decoded")
			return slices.Clone(d.history), nil
		}
		if err != nil {
			return slices.Clone(d.history), err
		}
	}
}

// DecodeString is like DecodeAll but returns text.
func (d *Decoder) DecodeString() (string, error) {
	syms, err := d.DecodeAll()
	return String(syms), err
}

// Decompress reads the persisted form from r and decodes it.
// On failure it returns the symbols recovered before the error.
func Decompress(r io.Reader, alphabet []Symbol, order int) ([]Symbol, error) {
	d, err := NewDecoder(r, alphabet, order)
	if err != nil {
		return nil, err
	}
	return d.DecodeAll()
}
