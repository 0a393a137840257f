// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/vmlet/vmlet/internal/config"
	"github.com/vmlet/vmlet/internal/vmm"
)

// IO provides input and output details for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// checkDeviceSources verifies that every configured device source exists
// before any kernel resources are acquired.
func checkDeviceSources(ctx context.Context, devices []config.Device) error {
	eg, _ := errgroup.WithContext(ctx)

	for _, dev := range devices {
		dev := dev
		eg.Go(func() error {
			if dev.Source == "" {
				return nil
			}

			_, err := os.Stat(dev.Source)
			if err != nil {
				return fmt.Errorf("device %s: %w", dev.Driver, err)
			}

			return nil
		})
	}

	return eg.Wait()
}

func run(ctx context.Context, flags *flags, cfgIO IO) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	closeLog, err := setupLogging(cfgIO.Stderr, cfg.VMM.Log, flags.debug)
	if err != nil {
		return err
	}

	defer func() {
		_ = closeLog()
	}()

	err = checkDeviceSources(ctx, cfg.Devices)
	if err != nil {
		return fmt.Errorf("check devices: %w", err)
	}

	hv, err := vmm.New(cfg)
	if err != nil {
		return fmt.Errorf("construct vm: %w", err)
	}

	err = hv.VM().Run()
	if err != nil {
		return errors.Join(err, hv.Close())
	}

	// Stay up until the run context is canceled, then tear the guest down.
	<-ctx.Done()

	slog.Info("shutting down", slog.String("machine", hv.MachineID()))

	return hv.Close()
}

func handleParseArgsError(err error) int {
	// [ErrHelp] is returned when help is requested. So exit without error
	// in this case.
	if errors.Is(err, ErrHelp) {
		return 0
	}

	// ParseArgs already prints errors, so we just exit without an error.
	if !errors.Is(err, &ParseArgsError{}) {
		slog.Error(err.Error())
	}

	return -1
}

// Run is the main entry point for the CLI command.
func Run(ctx context.Context, args []string, cfgIO IO) int {
	// Logging defaults to stderr until the configuration is loaded.
	slog.SetDefault(slog.New(slog.NewTextHandler(
		cfgIO.Stderr,
		&slog.HandlerOptions{},
	)))

	flags, err := parseArgs(args, cfgIO.Stderr)
	if err != nil {
		return handleParseArgsError(err)
	}

	err = run(ctx, flags, cfgIO)
	if err != nil {
		slog.Error(err.Error())
		return -1
	}

	return 0
}
