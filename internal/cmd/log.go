// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vmlet/vmlet/internal/config"
)

// setupLogging installs the default logger according to the monitor
// configuration. The debug flag overrides the configured level. If the
// configuration names a log file, output goes there and the returned
// closer releases it; otherwise output goes to fallback.
func setupLogging(
	fallback io.Writer,
	cfg *config.Log,
	debug bool,
) (func() error, error) {
	level := slog.LevelInfo
	if cfg != nil {
		level = cfg.Level.Slog()
	}

	if debug {
		level = slog.LevelDebug
	}

	writer := fallback
	closer := func() error { return nil }

	if cfg != nil && cfg.Path != "" {
		file, err := os.OpenFile(
			cfg.Path,
			os.O_WRONLY|os.O_CREATE|os.O_APPEND,
			0o644,
		)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}

		writer = file
		closer = file.Close
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		writer,
		&slog.HandlerOptions{
			Level: level,
		},
	)))

	return closer, nil
}
