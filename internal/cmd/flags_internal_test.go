// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		expectErr  error
		configPath string
		debug      bool
	}{
		{
			name:       "config path only",
			args:       []string{"machine.json"},
			configPath: "machine.json",
		},
		{
			name:       "debug flag",
			args:       []string{"-debug", "machine.json"},
			configPath: "machine.json",
			debug:      true,
		},
		{
			name:      "no config path",
			args:      []string{},
			expectErr: &ParseArgsError{},
		},
		{
			name:      "too many config paths",
			args:      []string{"one.json", "two.json"},
			expectErr: &ParseArgsError{},
		},
		{
			name:      "unknown flag",
			args:      []string{"-unknown", "machine.json"},
			expectErr: &ParseArgsError{},
		},
		{
			name:      "help requested",
			args:      []string{"-h"},
			expectErr: ErrHelp,
		},
		{
			name:      "version requested",
			args:      []string{"-version"},
			expectErr: ErrHelp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := newFlags(io.Discard)

			err := flags.ParseArgs(tt.args)
			if tt.expectErr != nil {
				require.ErrorIs(t, err, tt.expectErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.configPath, flags.configPath)
			assert.Equal(t, tt.debug, flags.debug)
		})
	}
}

func TestHandleParseArgsError(t *testing.T) {
	assert.Equal(t, 0, handleParseArgsError(ErrHelp))
	assert.Equal(t, 0, handleParseArgsError(
		&ParseArgsError{msg: "version requested", err: ErrHelp}))
	assert.Equal(t, -1, handleParseArgsError(
		&ParseArgsError{msg: "no config file given"}))
}
