// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package utils

import (
	"bytes"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	. "gopkg.in/check.v1"
)

type LoggingSuite struct {
	origLogger zerolog.Logger
}

var _ = Suite(&LoggingSuite{})

func (s *LoggingSuite) SetUpTest(c *C) {
	s.origLogger = log.Logger
}

func (s *LoggingSuite) TearDownTest(c *C) {
	log.Logger = s.origLogger
}

func (s *LoggingSuite) TestSetupJSONLogger(c *C) {
	var buf bytes.Buffer
	SetupJSONLogger("info", &buf)

	c.Check(zerolog.MessageFieldName, Equals, "message")
	c.Check(zerolog.LevelFieldName, Equals, "level")

	log.Info().Int("order", 2).Msg("compressed")
	log.Debug().Msg("hidden")

	output := buf.String()
	c.Check(strings.Contains(output, `"message":"compressed"`), Equals, true, Commentf("%s", output))
	c.Check(strings.Contains(output, `"order":2`), Equals, true)
	c.Check(strings.Contains(output, `"time":`), Equals, true)
	c.Check(strings.Contains(output, "hidden"), Equals, false)
}

func (s *LoggingSuite) TestSetupLogger(c *C) {
	SetupLogger("default", "warn")
	c.Check(log.Logger.GetLevel(), Equals, zerolog.WarnLevel)

	SetupLogger("json", "trace")
	c.Check(log.Logger.GetLevel(), Equals, zerolog.TraceLevel)
}

func (s *LoggingSuite) TestGetLogLevelOrDebugValid(c *C) {
	testCases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"WARNING": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
	}

	for levelStr, expectedLevel := range testCases {
		c.Check(GetLogLevelOrDebug(levelStr), Equals, expectedLevel, Commentf("Failed for level: %s", levelStr))
	}
}

func (s *LoggingSuite) TestGetLogLevelOrDebugInvalid(c *C) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf).Level(zerolog.TraceLevel)

	for _, levelStr := range []string{"invalid", "verbose"} {
		buf.Reset()
		c.Check(GetLogLevelOrDebug(levelStr), Equals, zerolog.DebugLevel)
		output := buf.String()
		c.Check(strings.Contains(output, "Unknown log level"), Equals, true, Commentf("got: %s", output))
		c.Check(strings.Contains(output, levelStr), Equals, true)
	}
}
