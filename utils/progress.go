// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package utils

import (
	"io"

	"github.com/cheggaaa/pb"
)

// Progress shows a progress bar for a run of symbols. A Progress with
// no output does nothing, so callers need not check whether it is enabled.
type Progress struct {
	bar *pb.ProgressBar
}

// NewProgress starts a bar counting up to total, written to w.
// If w is nil the bar is disabled.
func NewProgress(w io.Writer, total int, prefix string) *Progress {
	if w == nil {
		return &Progress{}
	}
	bar := pb.New(total)
	bar.Output = w
	bar.ShowSpeed = true
	bar.Prefix(prefix)
	bar.Start()
	return &Progress{bar: bar}
}

// Add advances the bar by n.
func (p *Progress) Add(n int) {
	if p.bar != nil {
		p.bar.Add(n)
	}
}

// Finish draws the final state and stops the bar.
func (p *Progress) Finish() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}
