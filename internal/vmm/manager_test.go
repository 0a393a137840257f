// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

package vmm_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmlet/vmlet/internal/config"
	"github.com/vmlet/vmlet/internal/vmm"
)

var errCreateFailed = errors.New("create failed")

type fakeHandle struct {
	id     int
	closed atomic.Bool
}

func (h *fakeHandle) ID() int { return h.id }

func (h *fakeHandle) Run() error { return nil }

func (h *fakeHandle) Close() error {
	h.closed.Store(true)
	return nil
}

// fakeMachine hands out fake vCPU handles and records the requested
// indices. failAt injects a creation failure for one index.
type fakeMachine struct {
	created []int
	handles []*fakeHandle
	failAt  int
	closed  bool
}

func newFakeMachine() *fakeMachine {
	return &fakeMachine{failAt: -1}
}

func (m *fakeMachine) CreateVCPU(id int) (vmm.VCPUHandle, error) {
	if id == m.failAt {
		return nil, errCreateFailed
	}

	handle := &fakeHandle{id: id}
	m.created = append(m.created, id)
	m.handles = append(m.handles, handle)

	return handle, nil
}

func (m *fakeMachine) SetMemoryRegion(_ uint32, _ uint64, _ []byte) error {
	return nil
}

func (m *fakeMachine) Close() error {
	m.closed = true
	return nil
}

func TestVcpuManager(t *testing.T) {
	tests := []struct {
		name  string
		count uint32
	}{
		{name: "single", count: 1},
		{name: "small", count: 4},
		{name: "large", count: 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem, err := vmm.NewGuestMemory(1)
			require.NoError(t, err)

			t.Cleanup(func() {
				require.NoError(t, mem.Close())
			})

			machine := newFakeMachine()

			mgr, err := vmm.NewVcpuManager(machine, config.CPU{Count: tt.count}, mem)
			require.NoError(t, err)

			assert.EqualValues(t, tt.count, mgr.Count())

			// Kernel handles are requested at dense ascending indices.
			expected := make([]int, tt.count)
			for i := range expected {
				expected[i] = i
			}

			assert.Equal(t, expected, machine.created)

			results := mgr.Broadcast(vmm.CommandRun)
			require.Len(t, results, int(tt.count))

			for i, res := range results {
				require.NoError(t, res.Err)
				assert.Equal(t, i, res.ID)
				assert.Equal(t, vmm.StatusPaused, res.Status)
			}

			mgr.Shutdown()

			for _, handle := range machine.handles {
				assert.True(t, handle.closed.Load(), "vcpu %d handle", handle.id)
			}
		})
	}
}

func TestVcpuManagerBroadcastAfterShutdown(t *testing.T) {
	mem, err := vmm.NewGuestMemory(1)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, mem.Close())
	})

	mgr, err := vmm.NewVcpuManager(newFakeMachine(), config.CPU{Count: 4}, mem)
	require.NoError(t, err)

	mgr.Shutdown()

	results := mgr.Broadcast(vmm.CommandRun)
	require.Len(t, results, 4)

	for i, res := range results {
		require.ErrorIs(t, res.Err, &vmm.ChannelError{}, "vcpu %d", i)
	}
}

func TestVcpuManagerShutdownExitsAll(t *testing.T) {
	mem, err := vmm.NewGuestMemory(1)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, mem.Close())
	})

	machine := newFakeMachine()

	mgr, err := vmm.NewVcpuManager(machine, config.CPU{Count: 8}, mem)
	require.NoError(t, err)

	mgr.Shutdown()
	// Joining twice must not block or send to gone peers.
	mgr.Shutdown()

	for _, handle := range machine.handles {
		assert.True(t, handle.closed.Load(), "vcpu %d handle", handle.id)
	}
}

func TestVcpuManagerPartialFailure(t *testing.T) {
	mem, err := vmm.NewGuestMemory(1)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, mem.Close())
	})

	machine := newFakeMachine()
	machine.failAt = 2

	mgr, err := vmm.NewVcpuManager(machine, config.CPU{Count: 4}, mem)
	require.ErrorIs(t, err, errCreateFailed)
	require.NotNil(t, mgr)

	// The vCPUs spawned before the failure remain ours to clean up.
	assert.Equal(t, 2, mgr.Count())

	mgr.Shutdown()

	for _, handle := range machine.handles {
		assert.True(t, handle.closed.Load(), "vcpu %d handle", handle.id)
	}
}
