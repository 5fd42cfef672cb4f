// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

// Ppmh compresses text with prediction by partial matching and Huffman codes.
package main

import (
	"os"

	"github.com/cppiam/ppm-huffman/cmd"
)

// Version variable, filled in at link time
var Version string

func main() {
	if Version != "" {
		cmd.Version = Version
	}

	os.Exit(cmd.Run(cmd.RootCommand(), os.Args[1:], true))
}
