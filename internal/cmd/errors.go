// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"flag"
	"fmt"
)

// ErrHelp is returned if usage output was requested.
var ErrHelp = flag.ErrHelp

// ErrReadBuildInfo is returned if the build info compiled into the binary
// cannot be read.
var ErrReadBuildInfo = errors.New("build info not available")

// ParseArgsError wraps errors that occur during argument parsing.
type ParseArgsError struct {
	err error
	msg string
}

func (e *ParseArgsError) Error() string {
	if e.err == nil {
		return e.msg
	}

	return fmt.Sprintf("%s: %v", e.msg, e.err)
}

func (e *ParseArgsError) Is(other error) bool {
	_, ok := other.(*ParseArgsError)
	return ok
}

func (e *ParseArgsError) Unwrap() error {
	return e.err
}
