// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

package vmm

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmlet/vmlet/internal/config"
)

// VirtualMachine ties one [Machine] kernel handle, its guest memory and its
// vCPU threads together. All methods are called from a single control
// thread; the type adds no internal locking.
type VirtualMachine struct {
	machine Machine
	config  *config.Config
	memory  *GuestMemory
	status  Status
	vcpus   *VcpuManager
}

// NewVirtualMachine builds a complete paused VM from the validated
// configuration: guest memory mapped and registered at guest physical
// address 0, all vCPUs created and their threads paused. Construction is
// atomic. On any failure everything already created is released and only
// the error is returned.
func NewVirtualMachine(machine Machine, cfg *config.Config) (*VirtualMachine, error) {
	mem, err := NewGuestMemory(cfg.Memory.SizeMiB)
	if err != nil {
		return nil, fmt.Errorf("guest memory: %w", err)
	}

	if err := machine.SetMemoryRegion(0, 0, mem.Bytes()); err != nil {
		err = errors.Join(err, mem.Close())
		return nil, fmt.Errorf("register guest memory: %w", err)
	}

	vcpus, err := NewVcpuManager(machine, cfg.CPU, mem)
	if err != nil {
		// The partial manager still owns the vCPU threads spawned before
		// the failure.
		vcpus.Shutdown()

		err = errors.Join(err, mem.Close())

		return nil, fmt.Errorf("vcpu manager: %w", err)
	}

	vmCreated.Inc()

	return &VirtualMachine{
		machine: machine,
		config:  cfg,
		memory:  mem,
		status:  StatusPaused,
		vcpus:   vcpus,
	}, nil
}

// Status returns the VM lifecycle state.
func (vm *VirtualMachine) Status() Status {
	return vm.status
}

// Config returns the configuration the VM was built from.
func (vm *VirtualMachine) Config() *config.Config {
	return vm.config
}

// Memory returns the guest physical address space.
func (vm *VirtualMachine) Memory() *GuestMemory {
	return vm.memory
}

// Run starts guest execution on all vCPUs. The VM status advances only
// after every vCPU replied: it becomes [StatusRunning] if at least one
// vCPU reported running, otherwise it stays paused. Per-vCPU channel
// failures are joined into the returned error and leave the status
// untouched.
func (vm *VirtualMachine) Run() error {
	if vm.status == StatusExited {
		return ErrVMExited
	}

	var errs []error

	running := false

	for _, res := range vm.vcpus.Broadcast(CommandRun) {
		if res.Err != nil {
			errs = append(errs, res.Err)
			continue
		}

		if res.Status == StatusRunning {
			running = true
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if running {
		vm.status = StatusRunning
	} else {
		vm.status = StatusPaused
	}

	slog.Debug("virtual machine run",
		slog.String("status", vm.status.String()),
		slog.Int("vcpus", vm.vcpus.Count()),
	)

	return nil
}

// Broadcast sends cmd to all vCPUs and returns the per-vCPU outcomes. It
// does not interpret the replies; [VirtualMachine.Run] does.
func (vm *VirtualMachine) Broadcast(cmd Command) ([]Result, error) {
	if vm.status == StatusExited {
		return nil, ErrVMExited
	}

	return vm.vcpus.Broadcast(cmd), nil
}

// Shutdown terminates all vCPU threads, releases the guest memory and
// closes the kernel handle, in that order. Idempotent; later calls return
// nil without touching released resources.
func (vm *VirtualMachine) Shutdown() error {
	if vm.status == StatusExited {
		return nil
	}

	vm.vcpus.Shutdown()

	err := errors.Join(vm.memory.Close(), vm.machine.Close())

	vm.status = StatusExited

	slog.Debug("virtual machine exited")

	return err
}
