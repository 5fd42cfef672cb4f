// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package utils

import (
	"bytes"
	"os"
	"path/filepath"

	. "gopkg.in/check.v1"
)

type ConfigSuite struct {
	config ConfigStructure
}

var _ = Suite(&ConfigSuite{})

func (s *ConfigSuite) SetUpTest(c *C) {
	s.config = DefaultConfig()
}

func (s *ConfigSuite) writeFile(c *C, name, content string) string {
	filename := filepath.Join(c.MkDir(), name)
	c.Assert(os.WriteFile(filename, []byte(content), 0o644), IsNil)
	return filename
}

func (s *ConfigSuite) TestDefaults(c *C) {
	c.Check(s.config.Order, Equals, 2)
	c.Check(s.config.Alphabet, Equals, "abcdefghijklmnopqrstuvwxyz ")
	c.Check(s.config.LogLevel, Equals, "info")
	c.Check(s.config.LogFormat, Equals, "default")
	c.Check(s.config.Validate(), IsNil)
	c.Check(ConfigLocations(), HasLen, 2)
}

func (s *ConfigSuite) TestLoadConfigJSON(c *C) {
	configname := s.writeFile(c, "ppmh.conf", configFile)

	err := LoadConfig(configname, &s.config)
	c.Assert(err, IsNil)
	c.Check(s.config.Order, Equals, 3)
	c.Check(s.config.Alphabet, Equals, "ab ")
	c.Check(s.config.Normalize, Equals, true)
	// Fields absent from the file keep their values.
	c.Check(s.config.LogLevel, Equals, "info")
}

func (s *ConfigSuite) TestLoadConfigYAML(c *C) {
	configname := s.writeFile(c, "ppmh.yaml", "order: 4\nalphabet: xyz\nlog_level: debug\nprogress: true\n")

	err := LoadConfig(configname, &s.config)
	c.Assert(err, IsNil)
	c.Check(s.config.Order, Equals, 4)
	c.Check(s.config.Alphabet, Equals, "xyz")
	c.Check(s.config.LogLevel, Equals, "debug")
	c.Check(s.config.Progress, Equals, true)
}

func (s *ConfigSuite) TestLoadConfigTOML(c *C) {
	configname := s.writeFile(c, "ppmh.toml", "order = 1\nalphabet = \"01\"\nlog_format = \"json\"\n")

	err := LoadConfig(configname, &s.config)
	c.Assert(err, IsNil)
	c.Check(s.config.Order, Equals, 1)
	c.Check(s.config.Alphabet, Equals, "01")
	c.Check(s.config.LogFormat, Equals, "json")
}

func (s *ConfigSuite) TestLoadConfigErrors(c *C) {
	err := LoadConfig(filepath.Join(c.MkDir(), "missing.conf"), &s.config)
	c.Check(os.IsNotExist(err), Equals, true)

	configname := s.writeFile(c, "bad.conf", "order: [\n")
	err = LoadConfig(configname, &s.config)
	c.Check(err, ErrorMatches, "invalid yaml .* or json .*")

	configname = s.writeFile(c, "bad.toml", "order = \n")
	err = LoadConfig(configname, &s.config)
	c.Check(err, ErrorMatches, "invalid toml in .*")
}

func (s *ConfigSuite) TestSaveConfig(c *C) {
	dir := c.MkDir()
	s.config.Order = 5
	s.config.LogFormat = "json"

	configname := filepath.Join(dir, "ppmh.conf")
	c.Assert(SaveConfig(configname, &s.config), IsNil)

	buf, err := os.ReadFile(configname)
	c.Assert(err, IsNil)
	c.Check(string(buf), Equals, ""+
		"{\n"+
		"  \"order\": 5,\n"+
		"  \"alphabet\": \"abcdefghijklmnopqrstuvwxyz \",\n"+
		"  \"normalize\": false,\n"+
		"  \"progress\": false,\n"+
		"  \"logLevel\": \"info\",\n"+
		"  \"logFormat\": \"json\"\n"+
		"}\n")

	for _, test := range []struct {
		name string
		save func(string, *ConfigStructure) error
	}{
		{"roundtrip.json", SaveConfig},
		{"roundtrip.yaml", SaveConfigYAML},
		{"roundtrip.toml", SaveConfigTOML},
	} {
		name := filepath.Join(dir, test.name)
		c.Assert(test.save(name, &s.config), IsNil)
		loaded := DefaultConfig()
		c.Assert(LoadConfig(name, &loaded), IsNil, Commentf("%s", test.name))
		c.Check(loaded, DeepEquals, s.config, Commentf("%s", test.name))
	}
}

func (s *ConfigSuite) TestWriteConfigYAML(c *C) {
	var buf bytes.Buffer
	c.Assert(WriteConfigYAML(&buf, &s.config), IsNil)
	c.Check(buf.String(), Equals, ""+
		"order: 2\n"+
		"alphabet: 'abcdefghijklmnopqrstuvwxyz '\n"+
		"normalize: false\n"+
		"progress: false\n"+
		"log_level: info\n"+
		"log_format: default\n")
}

func (s *ConfigSuite) TestValidate(c *C) {
	s.config.Order = -1
	c.Check(s.config.Validate(), ErrorMatches, "order must not be negative.*")

	s.config = DefaultConfig()
	s.config.Alphabet = ""
	c.Check(s.config.Validate(), ErrorMatches, "alphabet must not be empty")

	s.config = DefaultConfig()
	s.config.LogFormat = "xml"
	c.Check(s.config.Validate(), ErrorMatches, "unknown log format .*")
}

const configFile = `
{
	// comments are allowed
	"order": 3,
	"alphabet": "ab ",
	"normalize": true,
}
`
