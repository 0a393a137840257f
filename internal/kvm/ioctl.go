// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package kvm

import (
	"golang.org/x/sys/unix"
)

// Request numbers from linux/kvm.h. Only the subset this monitor actually
// issues is defined here.
const (
	kvmGetAPIVersion       = 0xae00
	kvmCreateVM            = 0xae01
	kvmGetVCPUMmapSize     = 0xae04
	kvmCreateVCPU          = 0xae41
	kvmSetUserMemoryRegion = 0x4020ae46
	kvmRun                 = 0xae80
)

// ioctl issues a single KVM ioctl and converts a failure into an
// [IoctlError] carrying op, the symbolic request name.
func ioctl(fd int, req uintptr, arg uintptr, op string) (uintptr, error) {
	r, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, arg)
	if errno != 0 {
		return 0, &IoctlError{Op: op, Errno: errno}
	}

	return r, nil
}
