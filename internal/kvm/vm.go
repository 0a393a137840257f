// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package kvm

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// VM is a VM-level KVM handle. All vCPU handles and guest memory slots of
// one virtual machine are derived from it and must not outlive it.
type VM struct {
	fd      int
	runSize int
}

// userspaceMemoryRegion mirrors struct kvm_userspace_memory_region from
// linux/kvm.h.
type userspaceMemoryRegion struct {
	Slot          uint32
	Flags         uint32
	GuestPhysAddr uint64
	MemorySize    uint64
	UserspaceAddr uint64
}

// SetMemoryRegion maps a host memory buffer into the guest physical
// address space at guestPhys. The buffer must stay alive and mapped for as
// long as the slot is registered.
func (vm *VM) SetMemoryRegion(slot uint32, guestPhys uint64, mem []byte) error {
	if len(mem) == 0 {
		return ErrEmptyRegion
	}

	region := userspaceMemoryRegion{
		Slot:          slot,
		GuestPhysAddr: guestPhys,
		MemorySize:    uint64(len(mem)),
		UserspaceAddr: uint64(uintptr(unsafe.Pointer(&mem[0]))),
	}

	_, err := ioctl(vm.fd, kvmSetUserMemoryRegion,
		uintptr(unsafe.Pointer(&region)), "KVM_SET_USER_MEMORY_REGION")

	runtime.KeepAlive(mem)

	return err
}

// CreateVCPU derives a vCPU handle for the given zero-based index and maps
// its shared run area.
func (vm *VM) CreateVCPU(id int) (*VCPU, error) {
	fd, err := ioctl(vm.fd, kvmCreateVCPU, uintptr(id), "KVM_CREATE_VCPU")
	if err != nil {
		return nil, err
	}

	run, err := unix.Mmap(int(fd), 0, vm.runSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(int(fd))
		return nil, fmt.Errorf("mmap vcpu %d run area: %w", id, err)
	}

	return &VCPU{id: id, fd: int(fd), run: run}, nil
}

// Close releases the VM handle. It must not be called while any vCPU
// handle derived from it is still open.
func (vm *VM) Close() error {
	return unix.Close(vm.fd)
}
