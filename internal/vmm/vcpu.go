// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

package vmm

import (
	"log/slog"
	"runtime"
)

// Capacity of the control and reply channels. Commands sent while a vCPU
// executes queue here until the vCPU yields.
const queueDepth = 8

// VCPUHandle is the per-vCPU kernel resource as the core consumes it. It
// is owned by exactly one vCPU thread and released when that thread
// terminates. *kvm.VCPU implements it.
type VCPUHandle interface {
	ID() int
	// Run enters guest execution and returns on the next vCPU exit.
	Run() error
	// Close releases the kernel handle.
	Close() error
}

// ExecFunc is the guest execution loop. It runs on the vCPU thread until
// the guest yields and must observe stop conditions cooperatively; nothing
// preempts it. The device and emulation layer supplies the real loop;
// execStub stands in for it here.
type ExecFunc func(handle VCPUHandle, mem *GuestMemory) error

// execStub yields immediately.
func execStub(VCPUHandle, *GuestMemory) error {
	return nil
}

// vcpu is one virtual CPU. The value is handed to its thread at spawn and
// never returned: the thread is the sole writer of status and the sole
// owner of the kernel handle and of its two channel endpoints.
type vcpu struct {
	id     int
	handle VCPUHandle
	mem    *GuestMemory
	status Status
	exec   ExecFunc

	ctrl    chan Command
	replies chan Status
	ready   chan struct{}
	done    chan struct{}
}

func newVcpu(id int, handle VCPUHandle, mem *GuestMemory, exec ExecFunc) *vcpu {
	return &vcpu{
		id:      id,
		handle:  handle,
		mem:     mem,
		status:  StatusEpoch,
		exec:    exec,
		ctrl:    make(chan Command, queueDepth),
		replies: make(chan Status, queueDepth),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// serve is the vCPU thread function. Its only suspension point is the
// blocking receive on the control channel, i.e. whenever the vCPU is
// paused. A closed control channel is treated like [CommandExit].
func (v *vcpu) serve() {
	runtime.LockOSThread()

	defer close(v.done)

	v.status = StatusPaused
	close(v.ready)

	slog.Debug("vcpu ready", slog.Int("vcpu", v.id))

	for cmd := range v.ctrl {
		switch cmd {
		case CommandRun:
			if v.runGuest() {
				return
			}
		case CommandExit:
			v.exit()
			return
		default:
			// Unknown commands reply with the current status unchanged.
			v.replies <- v.status
		}
	}

	v.exit()
}

// runGuest executes guest code until it yields, then answers commands that
// queued up in the meantime. It reports whether the vCPU exited.
func (v *vcpu) runGuest() bool {
	v.status = StatusRunning

	if err := v.exec(v.handle, v.mem); err != nil {
		slog.Error("vcpu execution loop failed",
			slog.Int("vcpu", v.id),
			slog.Any("error", err),
		)
	}

	// Commands that arrived while the guest was executing are answered
	// before yielding: Run is an idempotent no-op, Exit wins.
	for {
		select {
		case cmd, ok := <-v.ctrl:
			if !ok || cmd == CommandExit {
				v.exit()
				return true
			}

			v.replies <- StatusRunning
		default:
			v.status = StatusPaused
			v.replies <- v.status

			return false
		}
	}
}

// exit releases the kernel handle and marks the vCPU terminal. No reply is
// sent; the closed reply channel tells the manager the peer is gone, and
// termination itself is observed by joining the thread.
func (v *vcpu) exit() {
	close(v.replies)

	if err := v.handle.Close(); err != nil {
		slog.Error("vcpu release kernel handle",
			slog.Int("vcpu", v.id),
			slog.Any("error", err),
		)
	}

	v.status = StatusExited
	vcpuExited.Inc()

	slog.Debug("vcpu exited", slog.Int("vcpu", v.id))
}
