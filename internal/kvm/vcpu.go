// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package kvm

import (
	"errors"

	"golang.org/x/sys/unix"
)

// VCPU is a per-vCPU KVM handle together with its mmaped run area. It is
// owned by exactly one vCPU thread, and all its ioctls must be issued from
// that thread.
type VCPU struct {
	id  int
	fd  int
	run []byte
}

// ID returns the zero-based vCPU index the handle was created with.
func (c *VCPU) ID() int {
	return c.id
}

// Run enters guest execution and returns on the next vCPU exit. The exit
// reason can be read from the run area by the caller.
func (c *VCPU) Run() error {
	_, err := ioctl(c.fd, kvmRun, 0, "KVM_RUN")
	return err
}

// Close unmaps the run area and releases the vCPU handle.
func (c *VCPU) Close() error {
	var errs []error

	if c.run != nil {
		if err := unix.Munmap(c.run); err != nil {
			errs = append(errs, err)
		}

		c.run = nil
	}

	if err := unix.Close(c.fd); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
