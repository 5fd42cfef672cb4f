// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package ppm

import (
	"io"
	"math"
	"math/bits"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/cppiam/ppm-huffman/huffman"
)

// A Level is one order tried while resolving a symbol: the table left after
// excluding the symbols of the order above, and the code built from it.
type Level struct {
	Order int
	Table *FrequencyTable
	// CanEscape reports whether the code includes [Escape].
	CanEscape bool
	Code      *huffman.Code
}

// escapeAllowed reports whether a table of this many distinct symbols gets an
// escape code. A table that already holds the whole alphabet leaves no
// probability for anything else, so it gets none.
func escapeAllowed(distinct, alphabetSize int) bool {
	return distinct < alphabetSize
}

// Probability returns the probability the level gives to s, which may be [Escape].
func (l *Level) Probability(s Symbol) float64 {
	return l.Table.Probability(s, l.CanEscape)
}

// indexWidth returns the number of bits needed to index n unseen symbols,
// ceil(log2 n). A single candidate needs none.
func indexWidth(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// A Resolver walks the orders of a [Model] from the highest down to the
// unseen-symbol level, escaping from each order that cannot code a symbol.
// It never changes the model. Encoding and decoding visit the same levels
// in the same order, so both sides build identical codes.
type Resolver struct {
	model *Model
}

func NewResolver(m *Model) *Resolver {
	return &Resolver{model: m}
}

func (r *Resolver) newLevel(k int, t *FrequencyTable) (*Level, error) {
	l := &Level{
		Order:     k,
		Table:     t,
		CanEscape: escapeAllowed(t.Distinct(), len(r.model.alphabet)),
	}
	freqs := t.frequencies()
	if l.CanEscape {
		freqs[Escape] = t.Distinct()
	}
	code, err := huffman.NewCode(freqs)
	if err != nil {
		return nil, errors.Wrapf(err, "building code for order %d", k)
	}
	l.Code = code
	return l, nil
}

// walk calls visit for each order from the model's maximum down to 0 that
// has a non-empty table after exclusion, until visit reports done.
// The symbols of each order's context are excluded from the order below it.
func (r *Resolver) walk(history []Symbol, visit func(*Level) (done bool, err error)) (bool, error) {
	var excluded mapset.Set[Symbol]
	for k := r.model.order; k >= 0; k-- {
		t, ok := r.model.Query(k, history)
		if !ok {
			excluded = nil
			continue
		}
		filtered := t
		if excluded != nil {
			filtered = t.without(excluded)
		}
		excluded = t.distinct
		if filtered.Distinct() == 0 {
			continue
		}
		l, err := r.newLevel(k, filtered)
		if err != nil {
			return false, err
		}
		log.Trace().Int("order", k).Int("symbols", filtered.Distinct()).Bool("escape", l.CanEscape).Msg("ppm level")
		done, err := visit(l)
		if err != nil || done {
			return done, err
		}
	}
	return false, nil
}

// Levels returns every level that resolution would try for history, whatever
// the symbol.
func (r *Resolver) Levels(history []Symbol) ([]*Level, error) {
	var levels []*Level
	_, err := r.walk(history, func(l *Level) (bool, error) {
		levels = append(levels, l)
		return false, nil
	})
	return levels, err
}

// A Resolution describes how a symbol was coded.
type Resolution struct {
	Bits huffman.Bits
	// Order is the order that coded the symbol, or UnseenOrder.
	Order int
	// Escapes is the number of escape codes emitted before it.
	Escapes int
	// Information is -log2 of the probability the model gave the symbol,
	// the length an ideal entropy coder would have spent.
	Information float64
}

// Resolve codes s in the context of history.
func (r *Resolver) Resolve(s Symbol, history []Symbol) (Resolution, error) {
	if !r.model.Contains(s) {
		return Resolution{}, errors.Wrapf(ErrSymbolNotInAlphabet, "symbol %q", rune(s))
	}
	var res Resolution
	done, err := r.walk(history, func(l *Level) (bool, error) {
		if l.Table.Contains(s) {
			res.Order = l.Order
			res.Information -= math.Log2(l.Probability(s))
			return true, l.Code.Append(&res.Bits, s)
		}
		if !l.CanEscape {
			return false, errors.Errorf("ppm: order %d covers the alphabet but not %q", l.Order, rune(s))
		}
		res.Escapes++
		res.Information -= math.Log2(l.Probability(Escape))
		return false, l.Code.Append(&res.Bits, Escape)
	})
	if err != nil {
		return Resolution{}, err
	}
	if done {
		return res, nil
	}

	unseen := r.model.Unseen()
	i, found := slices.BinarySearch(unseen, s)
	if !found {
		return Resolution{}, errors.Wrapf(ErrEmptyUnseenSet, "symbol %q escaped every order (%d unseen)", rune(s), len(unseen))
	}
	res.Order = UnseenOrder
	res.Bits.AppendBits(uint64(i), indexWidth(len(unseen)))
	res.Information += math.Log2(float64(len(unseen)))
	log.Debug().Str("symbol", string(rune(s))).Int("unseen", len(unseen)).Int("escapes", res.Escapes).Msg("novel symbol")
	return res, nil
}

// Encode returns the bits that code s in the context of history: one escape
// code per order s fell through, then the code for s itself.
func (r *Resolver) Encode(s Symbol, history []Symbol) (huffman.Bits, error) {
	res, err := r.Resolve(s, history)
	return res.Bits, err
}

// Decode reads the bits of one symbol from br in the context of history.
func (r *Resolver) Decode(br huffman.BitReader, history []Symbol) (Symbol, error) {
	var sym Symbol
	done, err := r.walk(history, func(l *Level) (bool, error) {
		s, err := l.Code.Decode(br)
		if err != nil {
			return false, decodeError(err, l.Order)
		}
		if s == Escape {
			return false, nil
		}
		sym = s
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	if done {
		return sym, nil
	}

	unseen := r.model.Unseen()
	if len(unseen) == 0 {
		return 0, errors.Wrap(ErrEmptyUnseenSet, "escaped every order")
	}
	i, err := huffman.ReadBits(br, indexWidth(len(unseen)))
	if err != nil {
		return 0, decodeError(err, UnseenOrder)
	}
	if i >= uint64(len(unseen)) {
		return 0, errors.Wrapf(ErrDecodeExhausted, "index %d of %d unseen symbols", i, len(unseen))
	}
	return unseen[i], nil
}

func decodeError(err error, order int) error {
	if err == io.EOF || errors.Is(err, huffman.ErrNoPrefix) {
		return errors.Wrapf(ErrDecodeExhausted, "order %d", order)
	}
	return errors.Wrapf(err, "reading order %d", order)
}
