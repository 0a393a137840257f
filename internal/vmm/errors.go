// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

package vmm

import (
	"errors"
	"strconv"
)

var (
	// ErrMemoryAlloc is returned if the guest memory mapping cannot be
	// established.
	ErrMemoryAlloc = errors.New("guest memory allocation failed")

	// ErrMemorySize is returned for a guest memory size that cannot be
	// mapped on this host.
	ErrMemorySize = errors.New("invalid guest memory size")

	// ErrMemoryBounds is returned for an access outside the guest
	// physical address space.
	ErrMemoryBounds = errors.New("access outside guest memory")

	// ErrVMExited is returned for operations on a VM that has already
	// been shut down.
	ErrVMExited = errors.New("virtual machine has exited")
)

// ChannelError reports that one vCPU's channel peer is gone. It is
// collected per vCPU and never aborts sibling vCPUs.
type ChannelError struct {
	ID int
}

// Error implements the [error] interface.
func (e *ChannelError) Error() string {
	return "vcpu " + strconv.Itoa(e.ID) + ": channel peer is gone"
}

// Is implements the [errors.Is] interface.
func (*ChannelError) Is(other error) bool {
	_, ok := other.(*ChannelError)
	return ok
}
