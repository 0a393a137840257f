// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"flag"
	"fmt"
	"io"
	"runtime/debug"
)

// Set on build.
var version = "dev"

const (
	name = "vmlet"

	usageMessage = `Usage of 'vmlet':
    vmlet [flags...] config-file

The config file is a JSON document describing the machine to run. See the
repository documentation for the schema.
`
)

type flags struct {
	configPath string
	flagSet    *flag.FlagSet

	version bool
	debug   bool
}

func newFlags(output io.Writer) *flags {
	flags := &flags{}
	flags.initFlagset(output)

	return flags
}

func (f *flags) initFlagset(output io.Writer) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usageMessage)
		fs.PrintDefaults()
	}

	fs.BoolVar(
		&f.debug,
		"debug",
		f.debug,
		"enable debug output regardless of the configured log level",
	)

	fs.BoolVar(
		&f.version,
		"version",
		f.version,
		"show version and exit",
	)

	f.flagSet = fs
}

// fail fails like flag does. It prints the error first and then usage.
func (f *flags) fail(msg string, err error) error {
	err = &ParseArgsError{msg: msg, err: err}
	fmt.Fprintln(f.flagSet.Output(), err.Error())

	f.flagSet.Usage()

	return err
}

func (f *flags) printVersionInformation() {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	fmt.Fprintf(f.flagSet.Output(), "%s: %s\n\n", name, version)
	fmt.Fprintln(f.flagSet.Output(), buildInfo.String())
}

func (f *flags) ParseArgs(args []string) error {
	err := f.flagSet.Parse(args)
	if err != nil {
		return &ParseArgsError{msg: "flag parse", err: err}
	}

	// With version flag, just print the version and exit. Using [ErrHelp]
	// the main binary is supposed to return with a non error exit code.
	if f.version {
		f.printVersionInformation()
		return &ParseArgsError{msg: "version requested", err: ErrHelp}
	}

	positionalArgs := f.flagSet.Args()

	// The single positional argument is the machine configuration file.
	switch len(positionalArgs) {
	case 0:
		return f.fail("no config file given", nil)
	case 1:
		f.configPath = positionalArgs[0]
	default:
		return f.fail("more than one config file given", nil)
	}

	return nil
}

func parseArgs(args []string, output io.Writer) (*flags, error) {
	flags := newFlags(output)

	err := flags.ParseArgs(args[1:])
	if err != nil {
		return nil, err
	}

	return flags, nil
}
