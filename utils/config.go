// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package utils

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/DisposaBoy/JsonConfigReader"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	yaml "gopkg.in/yaml.v3"
)

// DefaultAlphabet is the alphabet of normalized Latin text.
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyz "

// ConfigStructure is structure of main configuration
type ConfigStructure struct {
	// Maximum context order of the model
	Order int `json:"order"      yaml:"order"       toml:"order"`
	// Symbols the model may code; duplicates are ignored
	Alphabet string `json:"alphabet"   yaml:"alphabet"    toml:"alphabet"`
	// Normalize input text before compressing
	Normalize bool `json:"normalize"  yaml:"normalize"   toml:"normalize"`
	// Show a progress bar on terminals
	Progress bool `json:"progress"   yaml:"progress"    toml:"progress"`

	LogLevel  string `json:"logLevel"   yaml:"log_level"   toml:"log_level"`
	LogFormat string `json:"logFormat"  yaml:"log_format"  toml:"log_format"`
}

// Config is configuration for ppmh, shared by all commands
var Config = DefaultConfig()

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() ConfigStructure {
	return ConfigStructure{
		Order:     2,
		Alphabet:  DefaultAlphabet,
		Normalize: false,
		Progress:  false,
		LogLevel:  "info",
		LogFormat: "default",
	}
}

// ConfigLocations returns the files searched for configuration, in order.
func ConfigLocations() []string {
	return []string{
		filepath.Join(os.Getenv("HOME"), ".ppmh.conf"),
		"/etc/ppmh.conf",
	}
}

// Validate checks that the configuration can build a model.
func (conf *ConfigStructure) Validate() error {
	if conf.Order < 0 {
		return errors.Errorf("order must not be negative, got %d", conf.Order)
	}
	if conf.Alphabet == "" {
		return errors.New("alphabet must not be empty")
	}
	switch conf.LogFormat {
	case "default", "json":
	default:
		return errors.Errorf("unknown log format %q", conf.LogFormat)
	}
	return nil
}

// LoadConfig loads configuration from file. Files ending in .toml are read
// as TOML; anything else as JSON (comments allowed) or, failing that, YAML.
func LoadConfig(filename string, config *ConfigStructure) error {
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		md, err := toml.DecodeFile(filename, config)
		if err != nil {
			return errors.Wrapf(err, "invalid toml in %s", filename)
		}
		for _, key := range md.Undecoded() {
			log.Warn().Str("file", filename).Str("key", key.String()).Msg("unknown configuration key")
		}
		return nil
	}

	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	decJSON := json.NewDecoder(JsonConfigReader.New(f))
	if err = decJSON.Decode(config); err != nil {
		_, _ = f.Seek(0, 0)
		decYAML := yaml.NewDecoder(f)
		if err2 := decYAML.Decode(config); err2 != nil {
			err = errors.Errorf("invalid yaml (%s) or json (%s)", err2, err)
		} else {
			err = nil
		}
	}
	return err
}

// SaveConfig write configuration to json file
func SaveConfig(filename string, config *ConfigStructure) error {
	return saveConfig(filename, config, WriteConfigJSON)
}

// SaveConfigYAML write configuration to yaml file
func SaveConfigYAML(filename string, config *ConfigStructure) error {
	return saveConfig(filename, config, WriteConfigYAML)
}

// SaveConfigTOML write configuration to toml file
func SaveConfigTOML(filename string, config *ConfigStructure) error {
	return saveConfig(filename, config, WriteConfigTOML)
}

func saveConfig(filename string, config *ConfigStructure, write func(io.Writer, *ConfigStructure) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err = write(f, config); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteConfigJSON writes config as indented JSON.
func WriteConfigJSON(w io.Writer, config *ConfigStructure) error {
	encoded, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(encoded, '\n'))
	return err
}

// WriteConfigYAML writes config as YAML.
func WriteConfigYAML(w io.Writer, config *ConfigStructure) error {
	yamlData, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "error marshaling to YAML")
	}
	_, err = w.Write(yamlData)
	return err
}

// WriteConfigTOML writes config as TOML.
func WriteConfigTOML(w io.Writer, config *ConfigStructure) error {
	return toml.NewEncoder(w).Encode(config)
}
