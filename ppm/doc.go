// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

// Package ppm compresses text with prediction by partial matching.
//
// A [Model] of maximum order K keeps, for every order k from 1 to K, a
// frequency table per context of the k preceding symbols, plus a global
// order-0 table and the set of symbols seen so far. To code a symbol, a
// [Resolver] tries the orders from K down to 0. Each order whose context
// has been seen builds a canonical Huffman code from its table, less the
// symbols already offered by the order above, plus an escape pseudo-symbol
// whose count is the number of distinct symbols in the table. If the symbol
// is in the table its code word is emitted; otherwise the escape code is,
// and the next order is tried. A symbol that falls through every order is
// sent as a fixed-width index into the alphabet symbols not yet seen.
//
// The encoder codes each symbol before teaching it to the model, and the
// decoder decodes before updating, so both sides build identical codes
// without any code tables being transmitted.
package ppm
