// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package ppm

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/cppiam/ppm-huffman/huffman"
)

// trace encodes text symbol by symbol and returns each resolution.
func trace(t *testing.T, alphabet string, order int, text string) []Resolution {
	t.Helper()
	m, err := NewModel(ParseAlphabet(alphabet), order)
	require.NoError(t, err)
	r := NewResolver(m)
	var (
		history []Symbol
		res     []Resolution
	)
	for _, s := range Symbols(text) {
		rs, err := r.Resolve(s, history)
		require.NoError(t, err)
		res = append(res, rs)
		m.Update(s, history)
		history = append(history, s)
	}
	return res
}

func TestAbracadabra(t *testing.T) {
	res := trace(t, "abcdr", 2, "abracadabra")
	require.Len(t, res, 11)

	var (
		bits    []string
		orders  []int
		escapes []int
	)
	for _, r := range res {
		bits = append(bits, r.Bits.String())
		orders = append(orders, r.Order)
		escapes = append(escapes, r.Escapes)
	}
	require.Equal(t, []string{"000", "100", "010", "110", "100", "111", "011", "0", "110", "0", "0"}, bits)
	require.Equal(t, []int{-1, -1, -1, 0, -1, 0, -1, 0, 1, 2, 2}, orders)
	require.Equal(t, []int{0, 1, 1, 0, 2, 0, 2, 0, 0, 0, 0}, escapes)

	// Nothing has been seen: the first 'a' is index 0 of 5 unseen symbols.
	require.Equal(t, UnseenOrder, res[0].Order)
	require.Equal(t, 3, res[0].Bits.Len())
	// The last 'a' follows "br", which was followed by 'a' before.
	require.Equal(t, 2, res[10].Order)

	e, err := NewEncoder(ParseAlphabet("abcdr"), 2)
	require.NoError(t, err)
	require.NoError(t, e.EncodeString("abracadabra"))
	data, err := e.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, "0b0000001169db00", hex.EncodeToString(data))

	st := e.Stats()
	require.Equal(t, 11, st.Symbols)
	require.Equal(t, 27, st.PayloadBits)
	require.Equal(t, 6, st.Escapes)
	require.Equal(t, 5, st.Novel)
	require.Equal(t, map[int]int{-1: 5, 0: 3, 1: 1, 2: 2}, st.ByOrder)
	require.Equal(t, len(data), st.FileSize())

	got, err := Decompress(bytes.NewReader(data), ParseAlphabet("abcdr"), 2)
	require.NoError(t, err)
	require.Equal(t, "abracadabra", String(got))
}

func TestAlternatingPair(t *testing.T) {
	res := trace(t, "xy", 1, "xyxyxy")
	for i, r := range res[2:] {
		require.Zero(t, r.Escapes, "symbol %d", i+2)
	}
	// The context "y" is first seen at index 2, so order 1 takes over from index 3.
	require.Equal(t, 0, res[2].Order)
	for i, r := range res[3:] {
		require.Equal(t, 1, r.Order, "symbol %d", i+3)
	}

	var buf bytes.Buffer
	_, err := Compress(&buf, Symbols("xyxyxy"), ParseAlphabet("xy"), 1)
	require.NoError(t, err)
	require.Equal(t, "0600000044", hex.EncodeToString(buf.Bytes()))
}

func randomAlphabet(r *rand.Rand) []Symbol {
	pool := Symbols("abcdefghijklmnopqrstuvwxyz 0123456789éüß世界αβγ")
	r.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:1+r.IntN(len(pool))]
}

func randomText(r *rand.Rand, alphabet []Symbol, n int) []Symbol {
	// Skew toward a few symbols so higher orders get some use.
	hot := alphabet[:1+r.IntN(len(alphabet))]
	text := make([]Symbol, n)
	for i := range text {
		if r.IntN(4) == 0 {
			text[i] = alphabet[r.IntN(len(alphabet))]
		} else {
			text[i] = hot[r.IntN(len(hot))]
		}
	}
	return text
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		alphabet := randomAlphabet(r)
		order := r.IntN(5)
		text := randomText(r, alphabet, r.IntN(300))

		var buf bytes.Buffer
		st, err := Compress(&buf, text, alphabet, order)
		require.NoError(t, err)
		data := buf.Bytes()

		require.GreaterOrEqual(t, len(data), HeaderSize)
		require.Equal(t, uint32(len(text)), binary.LittleEndian.Uint32(data))
		require.Equal(t, st.FileSize(), len(data))

		got, err := Decompress(bytes.NewReader(data), alphabet, order)
		require.NoError(t, err, "alphabet %q order %d text %q", String(alphabet), order, String(text))
		require.Equal(t, String(text), String(got))

		var again bytes.Buffer
		_, err = Compress(&again, text, alphabet, order)
		require.NoError(t, err)
		require.Equal(t, data, again.Bytes(), "encoding is not deterministic")
	}
}

func TestSeenSetGrows(t *testing.T) {
	alphabet := ParseAlphabet("abcdefgh")
	r := rand.New(rand.NewPCG(3, 4))
	text := randomText(r, alphabet, 500)

	m, err := NewModel(alphabet, 3)
	require.NoError(t, err)
	res := NewResolver(m)
	var history []Symbol
	prev := 0
	for i, s := range text {
		full := m.SeenCount() == len(alphabet)
		rs, err := res.Resolve(s, history)
		require.NoError(t, err)
		if full {
			require.NotEqual(t, UnseenOrder, rs.Order, "symbol %d went to the unseen level with every symbol seen", i)
		}
		m.Update(s, history)
		history = append(history, s)
		require.GreaterOrEqual(t, m.SeenCount(), prev)
		require.True(t, m.seen.Contains(s))
		prev = m.SeenCount()
	}
}

func TestSingleSymbolAlphabet(t *testing.T) {
	for order := range 4 {
		e, err := NewEncoder(ParseAlphabet("a"), order)
		require.NoError(t, err)
		require.NoError(t, e.EncodeString("aaaa"))
		require.Zero(t, e.Bits().Len())
		data, err := e.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, []byte{4, 0, 0, 0}, data)

		got, err := Decompress(bytes.NewReader(data), ParseAlphabet("a"), order)
		require.NoError(t, err)
		require.Equal(t, "aaaa", String(got))
	}
}

func TestOrderZeroIgnoresHistory(t *testing.T) {
	m, err := NewModel(ParseAlphabet("abcdr"), 0)
	require.NoError(t, err)
	var history []Symbol
	for _, s := range Symbols("abracadabra") {
		m.Update(s, history)
		history = append(history, s)
	}
	r := NewResolver(m)
	for _, s := range Symbols("abcdr") {
		want, err := r.Encode(s, Symbols("abra"))
		require.NoError(t, err)
		for _, h := range []string{"", "r", "zzzz", "cadabra"} {
			got, err := r.Encode(s, Symbols(h))
			require.NoError(t, err)
			require.True(t, want.Equal(got), "%q after %q: got %s, want %s", rune(s), h, got, want)
		}
	}
	levels, err := r.Levels(Symbols("ab"))
	require.NoError(t, err)
	require.Len(t, levels, 1)
	require.Equal(t, 0, levels[0].Order)
	require.False(t, levels[0].CanEscape)
}

func TestExclusion(t *testing.T) {
	m, err := NewModel(ParseAlphabet("abc"), 2)
	require.NoError(t, err)
	var history []Symbol
	for _, s := range Symbols("ab") {
		m.Update(s, history)
		history = append(history, s)
	}
	r := NewResolver(m)

	// After "a", order 1 offers b, so order 0 offers only a.
	levels, err := r.Levels(Symbols("a"))
	require.NoError(t, err)
	require.Len(t, levels, 2)
	require.Equal(t, 1, levels[0].Order)
	require.Equal(t, Symbols("b"), levels[0].Table.Symbols())
	require.Equal(t, 0, levels[1].Order)
	require.Equal(t, Symbols("a"), levels[1].Table.Symbols())
	require.True(t, levels[1].CanEscape)
	// The model itself is untouched.
	require.Equal(t, 2, m.Global().Distinct())

	// An unseen context excludes nothing.
	levels, err = r.Levels(Symbols("ab"))
	require.NoError(t, err)
	require.Len(t, levels, 1)
	require.Equal(t, 0, levels[0].Order)
	require.Equal(t, Symbols("ab"), levels[0].Table.Symbols())
}

func TestEscapeAllowed(t *testing.T) {
	for _, test := range []struct {
		distinct, size int
		want           bool
	}{
		{1, 1, false},
		{1, 2, true},
		{4, 5, true},
		{5, 5, false},
		{26, 27, true},
	} {
		require.Equal(t, test.want, escapeAllowed(test.distinct, test.size), "escapeAllowed(%d, %d)", test.distinct, test.size)
	}
}

func TestIndexWidth(t *testing.T) {
	for n, want := range map[int]int{0: 0, 1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 9: 4, 27: 5, 32: 5, 33: 6} {
		require.Equal(t, want, indexWidth(n), "indexWidth(%d)", n)
	}
}

func TestProbability(t *testing.T) {
	m, err := NewModel(ParseAlphabet("abc"), 0)
	require.NoError(t, err)
	m.Update('a', nil)
	m.Update('a', nil)
	m.Update('b', nil)
	levels, err := NewResolver(m).Levels(nil)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	l := levels[0]
	require.InDelta(t, 0.4, l.Probability('a'), 1e-9)
	require.InDelta(t, 0.2, l.Probability('b'), 1e-9)
	require.InDelta(t, 0.4, l.Probability(Escape), 1e-9)
	require.Zero(t, l.Probability('c'))
}

func TestModel(t *testing.T) {
	m, err := NewModel(Symbols("cabca"), 2)
	require.NoError(t, err)
	require.Equal(t, Symbols("abc"), m.Alphabet())
	require.Equal(t, Symbols("abc"), m.Unseen())

	_, ok := m.Query(1, nil)
	require.False(t, ok)
	g, ok := m.Query(0, Symbols("anything"))
	require.True(t, ok)
	require.Zero(t, g.Total())

	var history []Symbol
	for _, s := range Symbols("abab") {
		m.Update(s, history)
		history = append(history, s)
	}
	require.Equal(t, Symbols("c"), m.Unseen())
	require.Equal(t, 2, m.SeenCount())

	tb, ok := m.Query(1, Symbols("xa"))
	require.True(t, ok)
	require.Equal(t, 2, tb.Count('b'))
	require.Equal(t, Symbols("a"), tb.Context())

	tb, ok = m.Query(2, Symbols("ab"))
	require.True(t, ok)
	require.Equal(t, 1, tb.Count('a'))
	require.Equal(t, 1, tb.Total())

	_, ok = m.Query(2, Symbols("bb"))
	require.False(t, ok)
	_, ok = m.Query(3, Symbols("aba"))
	require.False(t, ok)

	var contexts []string
	for _, tb := range m.Contexts(2) {
		contexts = append(contexts, String(tb.Context()))
	}
	require.Equal(t, []string{"ab", "ba"}, contexts)
	require.Nil(t, m.Contexts(0))
}

func TestNewModelErrors(t *testing.T) {
	_, err := NewModel(Symbols("ab"), -1)
	require.Error(t, err)
	_, err = NewModel(nil, 1)
	require.Error(t, err)
	_, err = NewModel([]Symbol{'a', Escape}, 1)
	require.Error(t, err)
}

func TestEncodeForeignSymbol(t *testing.T) {
	e, err := NewEncoder(ParseAlphabet("ab"), 1)
	require.NoError(t, err)
	require.NoError(t, e.EncodeString("ab"))
	bitsBefore := e.Bits().String()

	err = e.Encode('z')
	require.ErrorIs(t, err, ErrSymbolNotInAlphabet)
	require.Equal(t, 2, e.Len())
	require.Equal(t, bitsBefore, e.Bits().String())
	require.Equal(t, 2, e.Model().Global().Total())
	require.Equal(t, 2, e.Stats().Symbols)

	require.NoError(t, e.Encode('a'))
}

func TestMalformedHeader(t *testing.T) {
	for _, data := range [][]byte{nil, {1}, {1, 0, 0}} {
		_, err := Decompress(bytes.NewReader(data), ParseAlphabet("ab"), 1)
		require.ErrorIs(t, err, ErrMalformedHeader)
	}
}

func compressString(t *testing.T, alphabet string, order int, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	_, err := Compress(&buf, Symbols(text), ParseAlphabet(alphabet), order)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestTruncatedPayload(t *testing.T) {
	data := compressString(t, "abcdr", 2, "abracadabra")
	// Keep 16 payload bits: enough for "abrac" and one bit of the next 'a'.
	got, err := Decompress(bytes.NewReader(data[:HeaderSize+2]), ParseAlphabet("abcdr"), 2)
	require.ErrorIs(t, err, ErrDecodeExhausted)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	require.Equal(t, 5, de.Recovered)
	require.Equal(t, "abrac", String(got))
}

func TestOverstatedCount(t *testing.T) {
	data := bytes.Clone(compressString(t, "abcdr", 2, "abracadabra"))
	binary.LittleEndian.PutUint32(data, 100)
	got, err := Decompress(bytes.NewReader(data), ParseAlphabet("abcdr"), 2)
	var de *DecodeError
	require.True(t, errors.As(err, &de), "got %v", err)
	require.GreaterOrEqual(t, de.Recovered, 11)
	require.Less(t, de.Recovered, 100)
	require.Equal(t, "abracadabra", String(got[:11]))
}

func TestDecoderNext(t *testing.T) {
	data := compressString(t, "xy", 1, "xyxyxy")
	d, err := NewDecoder(bytes.NewReader(data), ParseAlphabet("xy"), 1)
	require.NoError(t, err)
	require.Equal(t, 6, d.Len())
	var got []Symbol
	for {
		s, err := d.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, s)
	}
	require.Equal(t, "xyxyxy", String(got))
	require.Equal(t, 6, d.Decoded())
	_, err = d.Next()
	require.Equal(t, io.EOF, err)
}

func TestDecoderStaysFailed(t *testing.T) {
	data := compressString(t, "abcdr", 2, "abracadabra")
	d, err := NewDecoder(bytes.NewReader(data[:HeaderSize+1]), ParseAlphabet("abcdr"), 2)
	require.NoError(t, err)
	_, err = d.DecodeAll()
	require.Error(t, err)
	_, err2 := d.Next()
	require.Equal(t, err, err2)
}

func TestEmptyUnseenSet(t *testing.T) {
	m, err := NewModel(ParseAlphabet("ab"), 1)
	require.NoError(t, err)
	var history []Symbol
	for _, s := range Symbols("baa") {
		m.Update(s, history)
		history = append(history, s)
	}
	// Order 1 after "a" holds {a}, so order 0 holds {b}; both may escape,
	// but with every symbol seen there is nothing left to escape to.
	bits, err := huffman.ParseBits("11")
	require.NoError(t, err)
	_, err = NewResolver(m).Decode(huffman.NewCursor(bits), history)
	require.ErrorIs(t, err, ErrEmptyUnseenSet)
}

func TestResolverDecodeMatchesEncode(t *testing.T) {
	alphabet := ParseAlphabet("abcdefg")
	r := rand.New(rand.NewPCG(5, 6))
	text := randomText(r, alphabet, 400)

	enc, err := NewModel(alphabet, 3)
	require.NoError(t, err)
	dec, err := NewModel(alphabet, 3)
	require.NoError(t, err)
	er, dr := NewResolver(enc), NewResolver(dec)

	var history []Symbol
	for i, s := range text {
		bits, err := er.Encode(s, history)
		require.NoError(t, err)
		c := huffman.NewCursor(bits)
		got, err := dr.Decode(c, history)
		require.NoError(t, err)
		require.Equal(t, s, got, "symbol %d", i)
		require.Equal(t, bits.Len(), c.Consumed(), "symbol %d", i)
		enc.Update(s, history)
		dec.Update(got, history)
		history = append(history, s)
	}
}

func TestInformation(t *testing.T) {
	e, err := NewEncoder(ParseAlphabet("abcdr"), 2)
	require.NoError(t, err)
	require.NoError(t, e.EncodeString("abracadabra"))
	st := e.Stats()
	require.Greater(t, st.Information, 0.0)
	// Five novel symbols cost at least log2(5!) bits between them.
	require.Greater(t, st.Information, 6.9)
	require.InDelta(t, float64(st.PayloadBits)/11, st.BitsPerSymbol(), 1e-9)
}
