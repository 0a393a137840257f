// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package kvm

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

var (
	// ErrAPIVersion is returned if the kernel speaks a KVM API version
	// other than the stable one.
	ErrAPIVersion = errors.New("unsupported KVM API version")

	// ErrEmptyRegion is returned if an empty buffer is passed as a guest
	// memory region.
	ErrEmptyRegion = errors.New("guest memory region must not be empty")
)

// IoctlError reports a failed kernel resource call. It carries the errno
// and the symbolic name of the request that failed. A failed call is fatal
// to the operation in progress and is never retried here.
type IoctlError struct {
	Op    string
	Errno unix.Errno
}

// Error implements the [error] interface.
func (e *IoctlError) Error() string {
	return fmt.Sprintf("ioctl %s: %s (errno %d)", e.Op, e.Errno.Error(), int(e.Errno))
}

// Is implements the [errors.Is] interface.
func (*IoctlError) Is(other error) bool {
	_, ok := other.(*IoctlError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *IoctlError) Unwrap() error {
	return e.Errno
}
