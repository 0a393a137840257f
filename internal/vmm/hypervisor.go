// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package vmm

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vmlet/vmlet/internal/config"
	"github.com/vmlet/vmlet/internal/kvm"
)

// machineHandle adapts [kvm.VM] to the [Machine] interface.
type machineHandle struct {
	*kvm.VM
}

func (m machineHandle) CreateVCPU(id int) (VCPUHandle, error) {
	return m.VM.CreateVCPU(id)
}

// Hypervisor is the top-level handle of one guest on this host: the kernel
// system handle, the virtual machine built on it and a unique machine ID.
type Hypervisor struct {
	machineID string
	sys       *kvm.System
	vm        *VirtualMachine
}

// New opens the hardware virtualization interface and constructs a paused
// [VirtualMachine] from the validated configuration.
func New(cfg *config.Config) (*Hypervisor, error) {
	sys, err := kvm.Open()
	if err != nil {
		return nil, fmt.Errorf("open kvm: %w", err)
	}

	machine, err := sys.CreateVM()
	if err != nil {
		err = errors.Join(err, sys.Close())
		return nil, fmt.Errorf("create vm: %w", err)
	}

	vm, err := NewVirtualMachine(machineHandle{machine}, cfg)
	if err != nil {
		return nil, errors.Join(err, machine.Close(), sys.Close())
	}

	hv := &Hypervisor{
		machineID: uuid.NewString(),
		sys:       sys,
		vm:        vm,
	}

	slog.Info("virtual machine ready",
		slog.String("machine", hv.machineID),
		slog.Uint64("vcpus", uint64(cfg.CPU.Count)),
		slog.Uint64("memory_mib", cfg.Memory.SizeMiB),
	)

	return hv, nil
}

// VM returns the virtual machine.
func (hv *Hypervisor) VM() *VirtualMachine {
	return hv.vm
}

// MachineID returns the unique ID assigned to this guest instance.
func (hv *Hypervisor) MachineID() string {
	return hv.machineID
}

// Close shuts the virtual machine down and releases the kernel system
// handle. Idempotent, like [VirtualMachine.Shutdown].
func (hv *Hypervisor) Close() error {
	return errors.Join(hv.vm.Shutdown(), hv.sys.Close())
}
