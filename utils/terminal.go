// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package utils

import (
	"os"

	"golang.org/x/term"
)

// RunningOnTerminal reports whether standard error is a terminal.
func RunningOnTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
