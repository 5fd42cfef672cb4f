// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package utils

import (
	"bytes"

	. "gopkg.in/check.v1"
)

type ProgressSuite struct{}

var _ = Suite(&ProgressSuite{})

func (s *ProgressSuite) TestDisabled(c *C) {
	p := NewProgress(nil, 10, "compress")
	c.Check(p.bar, IsNil)
	p.Add(5)
	p.Finish()
	p.Finish()
}

func (s *ProgressSuite) TestBar(c *C) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 4, "decompress ")
	p.Add(4)
	p.Finish()
	c.Check(p.bar, IsNil)
	c.Check(bytes.Contains(buf.Bytes(), []byte("decompress")), Equals, true, Commentf("%q", buf.String()))
}
