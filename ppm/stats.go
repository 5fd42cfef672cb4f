// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package ppm

import "maps"

// Stats summarizes an encoding session.
type Stats struct {
	Symbols     int
	PayloadBits int
	// Information is the total of the per-symbol Resolution.Information.
	Information float64
	Escapes     int
	// Novel counts symbols coded at the unseen level.
	Novel int
	// ByOrder counts symbols by the order that coded them.
	ByOrder map[int]int
}

func (s *Stats) add(res Resolution) {
	if s.ByOrder == nil {
		s.ByOrder = map[int]int{}
	}
	s.Symbols++
	s.PayloadBits += res.Bits.Len()
	s.Information += res.Information
	s.Escapes += res.Escapes
	s.ByOrder[res.Order]++
	if res.Order == UnseenOrder {
		s.Novel++
	}
}

func (s Stats) clone() Stats {
	s.ByOrder = maps.Clone(s.ByOrder)
	return s
}

// BitsPerSymbol returns the mean code length.
func (s Stats) BitsPerSymbol() float64 {
	if s.Symbols == 0 {
		return 0
	}
	return float64(s.PayloadBits) / float64(s.Symbols)
}

// EntropyPerSymbol returns the mean information content under the model.
func (s Stats) EntropyPerSymbol() float64 {
	if s.Symbols == 0 {
		return 0
	}
	return s.Information / float64(s.Symbols)
}

// FileSize returns the size in bytes of the persisted form.
func (s Stats) FileSize() int {
	return HeaderSize + (s.PayloadBits+7)/8
}
