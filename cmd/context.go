// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/cppiam/ppm-huffman/ppm"
	"github.com/cppiam/ppm-huffman/utils"
)

// PpmhContext is a common context shared by all commands
type PpmhContext struct {
	flags, globalFlags *flag.FlagSet
	configLoaded       bool
	config             utils.ConfigStructure
}

var context *PpmhContext

// FatalError is type for panicking to abort execution with non-zero
// exit code and print meaningful explanation
type FatalError struct {
	ReturnCode int
	Message    string
}

// Fatal panics and aborts execution with exit code 1
func Fatal(err error) {
	returnCode := 1
	if err == commander.ErrFlagError || err == commander.ErrCommandError {
		returnCode = 2
	}
	panic(&FatalError{ReturnCode: returnCode, Message: err.Error()})
}

// NewContext creates a context around the parsed flags
func NewContext(flags *flag.FlagSet) *PpmhContext {
	return &PpmhContext{
		flags:       flags,
		globalFlags: flags,
		config:      utils.Config,
	}
}

// InitContext initializes context with default settings
func InitContext(flags *flag.FlagSet) error {
	if context != nil {
		return errors.New("context already initialized")
	}
	ctx := NewContext(flags)
	cfg := ctx.Config()
	utils.SetupLogger(cfg.LogFormat, cfg.LogLevel)
	context = ctx
	return nil
}

// ShutdownContext shuts context down
func ShutdownContext() {
	context = nil
}

// Config loads and returns current configuration, with command-line
// settings applied over it
func (context *PpmhContext) Config() *utils.ConfigStructure {
	if context.configLoaded {
		return &context.config
	}

	configLocation := context.globalFlags.Lookup("config").Value.String()
	if configLocation != "" {
		if err := utils.LoadConfig(configLocation, &context.config); err != nil {
			Fatal(err)
		}
	} else {
		var err error
		for _, configLocation = range utils.ConfigLocations() {
			err = utils.LoadConfig(configLocation, &context.config)
			if err == nil {
				break
			}
			if !os.IsNotExist(err) {
				Fatal(errors.Wrapf(err, "error loading config file %s", configLocation))
			}
		}
		if err != nil {
			configLocation = ""
		}
	}

	if context.globalFlags.IsSet("order") {
		context.config.Order = context.globalFlags.Lookup("order").Value.Get().(int)
	}
	if context.globalFlags.IsSet("alphabet") {
		context.config.Alphabet = context.globalFlags.Lookup("alphabet").Value.String()
	}
	if context.globalFlags.IsSet("log-level") {
		context.config.LogLevel = context.globalFlags.Lookup("log-level").Value.String()
	}
	if context.globalFlags.IsSet("log-format") {
		context.config.LogFormat = context.globalFlags.Lookup("log-format").Value.String()
	}
	context.config.Normalize = context.lookupOption(context.config.Normalize, "normalize")
	context.config.Progress = context.lookupOption(context.config.Progress, "progress")

	if err := context.config.Validate(); err != nil {
		Fatal(errors.Wrap(err, "invalid configuration"))
	}
	context.configLoaded = true
	if configLocation != "" {
		log.Debug().Str("file", configLocation).Msg("configuration loaded")
	}
	return &context.config
}

// LookupOption checks boolean flag with default (usually config) and command-line
// setting
func (context *PpmhContext) LookupOption(defaultValue bool, name string) bool {
	return context.lookupOption(defaultValue, name)
}

func (context *PpmhContext) lookupOption(defaultValue bool, name string) (result bool) {
	result = defaultValue

	if context.globalFlags.IsSet(name) {
		result = context.globalFlags.Lookup(name).Value.Get().(bool)
	}

	return
}

// Alphabet returns the configured alphabet as symbols
func (context *PpmhContext) Alphabet() []ppm.Symbol {
	return ppm.ParseAlphabet(context.Config().Alphabet)
}

// Progress returns a progress bar for total steps, shown only when enabled
// and writing to a terminal
func (context *PpmhContext) Progress(total int, prefix string) *utils.Progress {
	if !context.Config().Progress || !utils.RunningOnTerminal() {
		return utils.NewProgress(nil, total, prefix)
	}
	return utils.NewProgress(os.Stderr, total, prefix)
}

// UpdateFlags sets internals of context to new flagset
func (context *PpmhContext) UpdateFlags(flags *flag.FlagSet) {
	context.flags = flags
}

// Flags returns current command flags
func (context *PpmhContext) Flags() *flag.FlagSet {
	return context.flags
}

// GlobalFlags returns flags passed to all commands
func (context *PpmhContext) GlobalFlags() *flag.FlagSet {
	return context.globalFlags
}
