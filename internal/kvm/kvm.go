// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

//go:build linux

// Package kvm provides thin bindings to the Linux KVM API for the three
// kinds of kernel handles the monitor owns: the system handle obtained
// from /dev/kvm, the VM handle derived from it, and the per-vCPU handles
// derived from the VM handle. Every handle must be released explicitly.
package kvm

import (
	"fmt"

	"golang.org/x/sys/unix"
)

const (
	devicePath = "/dev/kvm"

	// Stable KVM API version as defined by the kernel. Anything else is
	// from the pre-1.0 development era and not supported.
	apiVersion = 12
)

// System is the system-level KVM handle. It acts as a factory for VM
// handles and answers system-wide queries.
type System struct {
	fd      int
	runSize int
}

// Open acquires the system-level KVM handle and verifies the API version.
func Open() (*System, error) {
	fd, err := unix.Open(devicePath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", devicePath, err)
	}

	version, err := ioctl(fd, kvmGetAPIVersion, 0, "KVM_GET_API_VERSION")
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	if version != apiVersion {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("%w: got %d, want %d",
			ErrAPIVersion, version, apiVersion)
	}

	runSize, err := ioctl(fd, kvmGetVCPUMmapSize, 0, "KVM_GET_VCPU_MMAP_SIZE")
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	return &System{fd: fd, runSize: int(runSize)}, nil
}

// CreateVM derives a new VM handle from the system handle.
func (s *System) CreateVM() (*VM, error) {
	fd, err := ioctl(s.fd, kvmCreateVM, 0, "KVM_CREATE_VM")
	if err != nil {
		return nil, err
	}

	return &VM{fd: int(fd), runSize: s.runSize}, nil
}

// Close releases the system handle. VM handles derived from it stay valid.
// Idempotent.
func (s *System) Close() error {
	if s.fd < 0 {
		return nil
	}

	err := unix.Close(s.fd)
	s.fd = -1

	return err
}
