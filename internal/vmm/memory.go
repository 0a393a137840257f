// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

package vmm

import (
	"fmt"
	"math"

	"golang.org/x/sys/unix"
)

const mib = 1 << 20

// GuestMemory is the mmap-backed guest physical address space. It is
// created and released by the [VirtualMachine] that owns it and shared for
// read and write by all vCPU threads while the guest runs; this core adds
// no mutual exclusion on top of it.
type GuestMemory struct {
	buf []byte
}

// NewGuestMemory maps sizeMiB MiB of anonymous memory as guest RAM.
func NewGuestMemory(sizeMiB uint64) (*GuestMemory, error) {
	if sizeMiB == 0 || sizeMiB > math.MaxInt>>20 {
		return nil, fmt.Errorf("%w: %d MiB", ErrMemorySize, sizeMiB)
	}

	buf, err := unix.Mmap(-1, 0, int(sizeMiB)*mib,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS|unix.MAP_NORESERVE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d MiB: %w", ErrMemoryAlloc, sizeMiB, err)
	}

	return &GuestMemory{buf: buf}, nil
}

// Size returns the size of the address space in bytes.
func (m *GuestMemory) Size() uint64 {
	return uint64(len(m.buf))
}

// Bytes exposes the backing mapping, e.g. for registering it with the
// VM-level kernel handle.
func (m *GuestMemory) Bytes() []byte {
	return m.buf
}

// ReadAt implements the [io.ReaderAt] interface over guest physical
// addresses.
func (m *GuestMemory) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(m.buf)) {
		return 0, fmt.Errorf("%w: read at 0x%x", ErrMemoryBounds, off)
	}

	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, fmt.Errorf("%w: short read at 0x%x", ErrMemoryBounds, off)
	}

	return n, nil
}

// WriteAt implements the [io.WriterAt] interface over guest physical
// addresses.
func (m *GuestMemory) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(m.buf)) {
		return 0, fmt.Errorf("%w: write at 0x%x", ErrMemoryBounds, off)
	}

	n := copy(m.buf[off:], p)
	if n < len(p) {
		return n, fmt.Errorf("%w: short write at 0x%x", ErrMemoryBounds, off)
	}

	return n, nil
}

// Close releases the mapping. It must not be called while any vCPU thread
// may still access the memory. Idempotent.
func (m *GuestMemory) Close() error {
	if m.buf == nil {
		return nil
	}

	err := unix.Munmap(m.buf)
	m.buf = nil

	return err
}
