// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

package vmm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmlet/vmlet/internal/vmm"
)

func TestGuestMemory(t *testing.T) {
	mem, err := vmm.NewGuestMemory(1)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, mem.Close())
	})

	assert.EqualValues(t, 1<<20, mem.Size())

	input := []byte{0xde, 0xad, 0xbe, 0xef}

	n, err := mem.WriteAt(input, 0x1000)
	require.NoError(t, err)
	assert.Equal(t, len(input), n)

	output := make([]byte, len(input))

	n, err = mem.ReadAt(output, 0x1000)
	require.NoError(t, err)
	assert.Equal(t, len(output), n)
	assert.Equal(t, input, output)
}

func TestGuestMemoryBounds(t *testing.T) {
	mem, err := vmm.NewGuestMemory(1)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, mem.Close())
	})

	_, err = mem.ReadAt(make([]byte, 8), int64(mem.Size()))
	require.ErrorIs(t, err, vmm.ErrMemoryBounds)

	_, err = mem.WriteAt(make([]byte, 8), -1)
	require.ErrorIs(t, err, vmm.ErrMemoryBounds)

	n, err := mem.ReadAt(make([]byte, 16), int64(mem.Size())-8)
	require.ErrorIs(t, err, vmm.ErrMemoryBounds)
	assert.Equal(t, 8, n)
}

func TestGuestMemorySize(t *testing.T) {
	_, err := vmm.NewGuestMemory(0)
	require.ErrorIs(t, err, vmm.ErrMemorySize)
}

func TestGuestMemoryCloseIdempotent(t *testing.T) {
	mem, err := vmm.NewGuestMemory(1)
	require.NoError(t, err)

	require.NoError(t, mem.Close())
	require.NoError(t, mem.Close())
}
