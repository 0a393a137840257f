// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package kvm_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/vmlet/vmlet/internal/kvm"
)

// requireKVM skips the test if the host has no usable /dev/kvm.
func requireKVM(t *testing.T) {
	t.Helper()

	f, err := os.OpenFile("/dev/kvm", os.O_RDWR, 0)
	if err != nil {
		t.Skipf("KVM not available: %v", err)
	}

	_ = f.Close()
}

func TestHandleLifecycle(t *testing.T) {
	requireKVM(t)

	sys, err := kvm.Open()
	require.NoError(t, err)

	t.Cleanup(func() { _ = sys.Close() })

	vm, err := sys.CreateVM()
	require.NoError(t, err)

	t.Cleanup(func() { _ = vm.Close() })

	mem, err := unix.Mmap(-1, 0, 1<<20,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	require.NoError(t, err)

	t.Cleanup(func() { _ = unix.Munmap(mem) })

	err = vm.SetMemoryRegion(0, 0, mem)
	require.NoError(t, err)

	vcpu, err := vm.CreateVCPU(0)
	require.NoError(t, err)
	require.Equal(t, 0, vcpu.ID())

	require.NoError(t, vcpu.Close())
}

func TestSetMemoryRegionEmpty(t *testing.T) {
	requireKVM(t)

	sys, err := kvm.Open()
	require.NoError(t, err)

	t.Cleanup(func() { _ = sys.Close() })

	vm, err := sys.CreateVM()
	require.NoError(t, err)

	t.Cleanup(func() { _ = vm.Close() })

	err = vm.SetMemoryRegion(0, 0, nil)
	require.ErrorIs(t, err, kvm.ErrEmptyRegion)
}

func TestCreateVCPUBadIndex(t *testing.T) {
	requireKVM(t)

	sys, err := kvm.Open()
	require.NoError(t, err)

	t.Cleanup(func() { _ = sys.Close() })

	vm, err := sys.CreateVM()
	require.NoError(t, err)

	t.Cleanup(func() { _ = vm.Close() })

	// Way beyond any KVM_CAP_MAX_VCPUS value.
	_, err = vm.CreateVCPU(1 << 30)
	require.ErrorIs(t, err, &kvm.IoctlError{})
}
