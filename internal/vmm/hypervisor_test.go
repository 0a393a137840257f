// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package vmm_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmlet/vmlet/internal/vmm"
)

func TestHypervisor(t *testing.T) {
	if f, err := os.OpenFile("/dev/kvm", os.O_RDWR, 0); err != nil {
		t.Skipf("kvm not available: %v", err)
	} else {
		_ = f.Close()
	}

	hv, err := vmm.New(testConfig(2))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, hv.Close())
	})

	assert.NotEmpty(t, hv.MachineID())
	assert.Equal(t, vmm.StatusPaused, hv.VM().Status())

	require.NoError(t, hv.VM().Run())
	require.NoError(t, hv.Close())

	// Closing twice must not fail on released resources.
	require.NoError(t, hv.Close())
}
