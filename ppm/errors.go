// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package ppm

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrSymbolNotInAlphabet is returned when asked to encode a symbol
	// outside the alphabet. The model is left untouched.
	ErrSymbolNotInAlphabet = errors.New("ppm: symbol not in alphabet")
	// ErrDecodeExhausted means the input bits ran out, or matched no code word
	// or unseen-symbol index, before a symbol was recovered.
	ErrDecodeExhausted = errors.New("ppm: no symbol matches the remaining bits")
	// ErrMalformedHeader means the input is too short to hold the symbol count.
	ErrMalformedHeader = errors.New("ppm: malformed header")
	// ErrEmptyUnseenSet means resolution fell through every order with no
	// unseen symbol left to account for the symbol. Either the alphabet does
	// not cover the input or the encoder and decoder models have diverged.
	ErrEmptyUnseenSet = errors.New("ppm: no unseen symbols left at order -1")
)

// A DecodeError reports a decode failure together with the number of
// symbols successfully recovered before it.
type DecodeError struct {
	Recovered int
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ppm: decode failed after %d symbols: %v", e.Recovered, e.Err)
}

func (e *DecodeError) Cause() error  { return e.Err }
func (e *DecodeError) Unwrap() error { return e.Err }
