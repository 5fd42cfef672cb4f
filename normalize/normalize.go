// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

// Package normalize prepares natural-language text for a small alphabet.
//
// The pipeline repairs UTF-8 text that was decoded as Windows-1252 and
// encoded again, folds accented letters to their base letters, lowercases,
// turns digits and punctuation into spaces and collapses runs of white space.
// A [Normalizer] with an alphabet also turns every other rune into a space.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	digits = regexp.MustCompile(`\p{Nd}+`)
	// Anything that is not a letter, number, underscore or white space.
	punctuation = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\p{Z}]+`)
	space       = regexp.MustCompile(`[\s\p{Z}]+`)
)

// ErrBinary is returned for input that does not look like UTF-8 text.
var ErrBinary = errors.New("normalize: input is not text")

// RepairMojibake undoes one round of UTF-8 bytes misread as Windows-1252,
// as in "olÃ¡" for "olá". If s cannot be written in Windows-1252, or the
// bytes so written are not valid UTF-8, s is returned unchanged.
func RepairMojibake(s string) string {
	raw, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil || !utf8.ValidString(raw) {
		return s
	}
	return raw
}

// FoldAccents removes combining marks, so that "ação" becomes "acao".
// Letters with no decomposition, such as "ß", are kept.
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// IsText reports whether data is valid UTF-8 that no known binary file
// signature matches.
func IsText(data []byte) bool {
	return CheckText(data) == nil
}

// CheckText is like IsText but explains a failure.
func CheckText(data []byte) error {
	kind, err := filetype.Match(data)
	if err == nil && kind != filetype.Unknown {
		return errors.Wrapf(ErrBinary, "looks like %s (%s)", kind.Extension, kind.MIME.Value)
	}
	if !utf8.Valid(data) {
		return errors.Wrap(ErrBinary, "invalid UTF-8")
	}
	return nil
}

// A Normalizer rewrites text into a canonical lowercase form.
type Normalizer struct {
	alphabet mapset.Set[rune]
}

// New returns a Normalizer. If alphabet is not empty, runes outside it
// become spaces; the space character is always allowed.
func New(alphabet string) *Normalizer {
	n := &Normalizer{}
	if alphabet != "" {
		n.alphabet = mapset.NewThreadUnsafeSet([]rune(alphabet)...)
		n.alphabet.Add(' ')
	}
	return n
}

// String returns the normalized form of s.
func (n *Normalizer) String(s string) string {
	s = RepairMojibake(s)
	s = FoldAccents(s)
	s = cases.Lower(language.Und).String(s)
	s = digits.ReplaceAllString(s, " ")
	s = punctuation.ReplaceAllString(s, " ")
	if n.alphabet != nil {
		s = strings.Map(func(r rune) rune {
			if n.alphabet.Contains(r) {
				return r
			}
			return ' '
		}, s)
	}
	s = space.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Bytes checks that data is text and returns its normalized form.
func (n *Normalizer) Bytes(data []byte) ([]byte, error) {
	if err := CheckText(data); err != nil {
		return nil, err
	}
	return []byte(n.String(string(data))), nil
}

// Rejected returns the runes of s outside the alphabet, in order of first
// appearance. It is nil if n has no alphabet.
func (n *Normalizer) Rejected(s string) []rune {
	if n.alphabet == nil {
		return nil
	}
	seen := mapset.NewThreadUnsafeSet[rune]()
	var out []rune
	for _, r := range s {
		if !n.alphabet.Contains(r) && seen.Add(r) {
			out = append(out, r)
		}
	}
	return out
}
