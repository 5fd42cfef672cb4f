// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package ppm

import (
	"encoding/binary"
	"math"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"

	"github.com/cppiam/ppm-huffman/huffman"
)

// A Symbol is one element of the alphabet. Text symbols are Unicode code points.
type Symbol = huffman.Symbol

// Escape is the pseudo-symbol that sends resolution to the next lower order.
// It sorts after every real symbol and may not appear in an alphabet.
const Escape Symbol = math.MaxUint32

// UnseenOrder is the order of the final fallback level, which codes
// symbols that have never been seen.
const UnseenOrder = -1

// ParseAlphabet returns the distinct runes of s in ascending order.
func ParseAlphabet(s string) []Symbol {
	return normalizeAlphabet(Symbols(s))
}

// Symbols returns the runes of s as symbols.
func Symbols(s string) []Symbol {
	syms := make([]Symbol, 0, len(s))
	for _, r := range s {
		syms = append(syms, Symbol(r))
	}
	return syms
}

// String returns the text formed by syms.
func String(syms []Symbol) string {
	var sb strings.Builder
	for _, s := range syms {
		sb.WriteRune(rune(s))
	}
	return sb.String()
}

func normalizeAlphabet(alphabet []Symbol) []Symbol {
	a := slices.Clone(alphabet)
	slices.Sort(a)
	return slices.Compact(a)
}

// A FrequencyTable counts the symbols seen in one context.
// Its distinct set always equals the symbols with a positive count.
type FrequencyTable struct {
	context  []Symbol // nil for the order-0 table
	counts   map[Symbol]int
	distinct mapset.Set[Symbol]
	total    int
}

func newFrequencyTable(context []Symbol) *FrequencyTable {
	return &FrequencyTable{
		context:  context,
		counts:   map[Symbol]int{},
		distinct: mapset.NewThreadUnsafeSet[Symbol](),
	}
}

func (t *FrequencyTable) add(s Symbol) {
	t.counts[s]++
	t.distinct.Add(s)
	t.total++
}

// Context returns the symbols that key this table, oldest first.
func (t *FrequencyTable) Context() []Symbol { return slices.Clone(t.context) }

// Count returns the number of times s was seen in this context.
func (t *FrequencyTable) Count(s Symbol) int { return t.counts[s] }

// Contains reports whether s was seen in this context.
func (t *FrequencyTable) Contains(s Symbol) bool { return t.distinct.Contains(s) }

// Total returns the sum of all counts.
func (t *FrequencyTable) Total() int { return t.total }

// Distinct returns the number of distinct symbols seen. It is also the
// count given to the escape pseudo-symbol.
func (t *FrequencyTable) Distinct() int { return t.distinct.Cardinality() }

// Symbols returns the symbols seen in this context, in ascending order.
func (t *FrequencyTable) Symbols() []Symbol {
	syms := t.distinct.ToSlice()
	slices.Sort(syms)
	return syms
}

// Probability returns the probability a level coding t gives to s, which
// may be [Escape]. The escape symbol takes a share only if withEscape is set.
func (t *FrequencyTable) Probability(s Symbol, withEscape bool) float64 {
	denom := t.total
	if withEscape {
		denom += t.Distinct()
	}
	if denom == 0 {
		return 0
	}
	if s == Escape {
		if !withEscape {
			return 0
		}
		return float64(t.Distinct()) / float64(denom)
	}
	return float64(t.counts[s]) / float64(denom)
}

// without returns a copy of t holding none of the symbols in excluded.
func (t *FrequencyTable) without(excluded mapset.Set[Symbol]) *FrequencyTable {
	f := newFrequencyTable(t.context)
	for s, n := range t.counts {
		if excluded.Contains(s) {
			continue
		}
		f.counts[s] = n
		f.distinct.Add(s)
		f.total += n
	}
	return f
}

// frequencies returns the counts as a fresh map, ready for huffman.NewCode.
func (t *FrequencyTable) frequencies() map[Symbol]int {
	m := make(map[Symbol]int, len(t.counts)+1)
	for s, n := range t.counts {
		m[s] = n
	}
	return m
}

// A Model holds the statistics of every order from 0 to its maximum order,
// plus the set of symbols seen so far. It only ever grows.
// A Model is not safe for concurrent use.
type Model struct {
	order    int
	alphabet []Symbol
	members  mapset.Set[Symbol]
	global   *FrequencyTable
	contexts []map[string]*FrequencyTable // contexts[k-1] holds order k
	seen     mapset.Set[Symbol]
}

// NewModel returns an empty model of the given maximum order over alphabet.
// Duplicate symbols in alphabet are ignored.
func NewModel(alphabet []Symbol, order int) (*Model, error) {
	if order < 0 {
		return nil, errors.Errorf("ppm: negative order %d", order)
	}
	a := normalizeAlphabet(alphabet)
	if len(a) == 0 {
		return nil, errors.New("ppm: empty alphabet")
	}
	if a[len(a)-1] == Escape {
		return nil, errors.Errorf("ppm: alphabet may not contain the escape symbol %d", Escape)
	}
	m := &Model{
		order:    order,
		alphabet: a,
		members:  mapset.NewThreadUnsafeSet(a...),
		global:   newFrequencyTable(nil),
		contexts: make([]map[string]*FrequencyTable, order),
		seen:     mapset.NewThreadUnsafeSet[Symbol](),
	}
	for k := range m.contexts {
		m.contexts[k] = map[string]*FrequencyTable{}
	}
	return m, nil
}

// Order returns the maximum context order.
func (m *Model) Order() int { return m.order }

// Alphabet returns the alphabet in ascending order.
func (m *Model) Alphabet() []Symbol { return slices.Clone(m.alphabet) }

// Contains reports whether s is in the alphabet.
func (m *Model) Contains(s Symbol) bool { return m.members.Contains(s) }

// CanEscape reports whether a level coding t would include [Escape].
func (m *Model) CanEscape(t *FrequencyTable) bool {
	return escapeAllowed(t.Distinct(), len(m.alphabet))
}

// SeenCount returns the number of distinct symbols seen so far.
func (m *Model) SeenCount() int { return m.seen.Cardinality() }

// Global returns the order-0 table.
func (m *Model) Global() *FrequencyTable { return m.global }

// contextKey packs the last k symbols of history into a map key.
// It reports false if history is shorter than k.
func contextKey(history []Symbol, k int) (string, bool) {
	if len(history) < k {
		return "", false
	}
	b := make([]byte, 4*k)
	for i, s := range history[len(history)-k:] {
		binary.LittleEndian.PutUint32(b[4*i:], s)
	}
	return string(b), true
}

// Query returns the table for the order-k context at the end of history.
// For k >= 1 it reports false if history is shorter than k or the context
// has never been seen. For k == 0 it always returns the global table.
func (m *Model) Query(k int, history []Symbol) (*FrequencyTable, bool) {
	if k == 0 {
		return m.global, true
	}
	if k < 0 || k > m.order {
		return nil, false
	}
	key, ok := contextKey(history, k)
	if !ok {
		return nil, false
	}
	t, ok := m.contexts[k-1][key]
	return t, ok
}

// Update records that s followed history. History must not yet include s.
// Every order whose context is defined learns s, creating the context if needed.
func (m *Model) Update(s Symbol, history []Symbol) {
	m.seen.Add(s)
	m.global.add(s)
	for k := 1; k <= m.order; k++ {
		key, ok := contextKey(history, k)
		if !ok {
			break
		}
		t, ok := m.contexts[k-1][key]
		if !ok {
			t = newFrequencyTable(slices.Clone(history[len(history)-k:]))
			m.contexts[k-1][key] = t
		}
		t.add(s)
	}
}

// Unseen returns the alphabet symbols never seen so far, in ascending order.
func (m *Model) Unseen() []Symbol {
	var u []Symbol
	for _, s := range m.alphabet {
		if !m.seen.Contains(s) {
			u = append(u, s)
		}
	}
	return u
}

// Contexts returns the tables of order k (1 <= k <= Order),
// sorted by context.
func (m *Model) Contexts(k int) []*FrequencyTable {
	if k < 1 || k > m.order {
		return nil
	}
	tables := make([]*FrequencyTable, 0, len(m.contexts[k-1]))
	for _, t := range m.contexts[k-1] {
		tables = append(tables, t)
	}
	slices.SortFunc(tables, func(a, b *FrequencyTable) int {
		return slices.Compare(a.context, b.context)
	})
	return tables
}
