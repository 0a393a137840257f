// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

package vmm

import (
	"fmt"
	"log/slog"

	"github.com/vmlet/vmlet/internal/config"
)

// Machine is the VM-level kernel handle as the core consumes it: a factory
// for vCPU handles, a target for guest memory registration, and a resource
// to release. It is read-only shared once vCPU creation completes.
type Machine interface {
	CreateVCPU(id int) (VCPUHandle, error)
	SetMemoryRegion(slot uint32, guestPhys uint64, mem []byte) error
	Close() error
}

// VcpuManager owns the control-thread side of every vCPU: the control send
// endpoints, the reply receive endpoints, and the join handles. Index i
// refers to the same vCPU in every slice.
type VcpuManager struct {
	count   int
	ctrl    []chan<- Command
	replies []<-chan Status
	joins   []<-chan struct{}

	// down marks vCPUs whose reply channel was observed closed. Their
	// threads are terminating or gone; no further commands are sent.
	down []bool
}

// NewVcpuManager creates one kernel vCPU handle per requested vCPU at
// dense indices 0..count in ascending order and spawns one OS thread per
// handle. Every thread has reached the paused state when the call returns.
//
// On a handle-creation failure the threads already spawned for earlier
// indices keep running; they are returned inside the partial manager
// alongside the error so the caller can shut them down.
func NewVcpuManager(machine Machine, cpu config.CPU, mem *GuestMemory) (*VcpuManager, error) {
	return newVcpuManager(machine, int(cpu.Count), mem, execStub)
}

func newVcpuManager(machine Machine, count int, mem *GuestMemory, exec ExecFunc) (*VcpuManager, error) {
	m := &VcpuManager{
		ctrl:    make([]chan<- Command, 0, count),
		replies: make([]<-chan Status, 0, count),
		joins:   make([]<-chan struct{}, 0, count),
		down:    make([]bool, 0, count),
	}

	readys := make([]<-chan struct{}, 0, count)

	for i := 0; i < count; i++ {
		handle, err := machine.CreateVCPU(i)
		if err != nil {
			return m, fmt.Errorf("create vcpu %d: %w", i, err)
		}

		v := newVcpu(i, handle, mem, exec)

		m.ctrl = append(m.ctrl, v.ctrl)
		m.replies = append(m.replies, v.replies)
		m.joins = append(m.joins, v.done)
		m.down = append(m.down, false)
		m.count++

		readys = append(readys, v.ready)

		go v.serve()

		vcpuCreated.Inc()
	}

	// All vCPUs are paused before construction is considered done.
	for _, ready := range readys {
		<-ready
	}

	slog.Debug("vcpu manager ready", slog.Int("count", m.count))

	return m, nil
}

// Count returns the number of vCPUs the manager owns.
func (m *VcpuManager) Count() int {
	return m.count
}

// Broadcast sends cmd to every vCPU's control channel in index order, then
// waits for one reply per vCPU in the same order. Send order implies no
// execution order between vCPUs; only the manager's bookkeeping is
// sequential. A gone peer yields a per-vCPU [ChannelError] and never
// aborts sibling vCPUs.
func (m *VcpuManager) Broadcast(cmd Command) []Result {
	results := make([]Result, m.count)
	sent := make([]bool, m.count)

	for i, ch := range m.ctrl {
		results[i].ID = i

		if m.down[i] {
			results[i].Err = &ChannelError{ID: i}
			continue
		}

		ch <- cmd
		sent[i] = true
	}

	for i, ch := range m.replies {
		if !sent[i] {
			continue
		}

		status, ok := <-ch
		if !ok {
			m.down[i] = true
			results[i].Err = &ChannelError{ID: i}
			channelErrors.Inc()

			continue
		}

		results[i].Status = status
	}

	return results
}

// Shutdown sends [CommandExit] to every vCPU in index order, then joins
// every thread. It may block until a running vCPU's current execution
// slice yields; nothing preempts a vCPU. After Shutdown returns no vCPU
// thread remains and any later Broadcast reports a [ChannelError] per
// vCPU.
func (m *VcpuManager) Shutdown() {
	for i, ch := range m.ctrl {
		if m.down[i] {
			continue
		}

		ch <- CommandExit
	}

	for i, join := range m.joins {
		<-join
		m.down[i] = true
	}

	slog.Debug("all vcpu threads joined", slog.Int("count", m.count))
}
