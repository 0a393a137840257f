// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

// Package vmm is the control core of the monitor. It owns the VM-level
// kernel handle, the mmap-backed guest memory, and one dedicated OS thread
// per vCPU, and it runs the lifecycle state machine over them.
//
// The control thread owns [Hypervisor], [VirtualMachine] and [VcpuManager].
// Each vCPU is a small actor: its thread exclusively owns the per-vCPU
// kernel handle and talks to the control thread through exactly one
// control channel and one reply channel. Delivery within a channel is
// FIFO; there is no ordering guarantee across vCPUs.
//
// Cancellation is cooperative only. A running vCPU is never preempted;
// shutdown waits until its current execution slice yields.
package vmm
