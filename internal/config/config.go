// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads and validates the JSON machine description. It
// produces a single frozen [Config] value; consumers treat it as immutable
// and perform no re-validation.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// MaxVCPU is the largest supported number of vCPUs per machine.
const MaxVCPU = 512

// Config is the complete, validated machine description.
type Config struct {
	CPU     CPU
	Memory  Memory
	Devices []Device
	OS      OS
	VMM     VMM
}

// CPU describes the virtual processors of a machine.
type CPU struct {
	// Count is the number of vCPUs, in [1, MaxVCPU].
	Count uint32
}

// Memory describes the guest RAM of a machine.
type Memory struct {
	// SizeMiB is the total guest memory in MiB, greater than zero.
	SizeMiB uint64
}

// Device describes one virtual device in guest-visible order.
type Device struct {
	// Driver selects the device backend.
	Driver string
	// Source is the host file or device backing it, if any.
	Source string
}

// OS describes what the guest should boot. All fields are optional paths
// or strings.
type OS struct {
	Kernel  string
	Initrd  string
	Rootfs  string
	Cmdline string
}

// VMM carries settings for the monitor itself rather than the guest.
type VMM struct {
	Log *Log
}

// Log configures the monitor's logger.
type Log struct {
	Level Level
	// Path is the log file to append to. Empty means stderr.
	Path string
}

// Level is a log severity as it appears in the configuration file.
type Level string

const (
	LevelDebug Level = "Debug"
	LevelInfo  Level = "Info"
	LevelWarn  Level = "Warn"
	LevelError Level = "Error"
)

// Slog maps the configured level onto the [slog] level it stands for.
func (l Level) Slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	}

	return slog.LevelInfo
}

// Raw decode targets. Pointers distinguish an absent field from a zero
// value so missing and illegal configuration are reported separately.
type rawConfig struct {
	CPU    *rawCPU      `json:"cpu"`
	Memory *rawMemory   `json:"memory"`
	Device *[]rawDevice `json:"device"`
	OS     *rawOS       `json:"os"`
	VMM    *rawVMM      `json:"vmm"`
}

type rawCPU struct {
	Count *uint32 `json:"count"`
}

type rawMemory struct {
	SizeMiB *uint64 `json:"size_mib"`
}

type rawDevice struct {
	Driver *string `json:"driver"`
	Source *string `json:"source"`
}

type rawOS struct {
	Kernel  *string `json:"kernel"`
	Initrd  *string `json:"initrd"`
	Rootfs  *string `json:"rootfs"`
	Cmdline *string `json:"cmdline"`
}

type rawVMM struct {
	Log *rawLog `json:"log"`
}

type rawLog struct {
	Level *string `json:"level"`
	Path  *string `json:"path"`
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes and validates a JSON machine description. The returned
// Config is complete and frozen; all invariants the rest of the monitor
// relies on hold once Parse succeeds.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	return build(&raw)
}

func build(raw *rawConfig) (*Config, error) {
	var cfg Config

	if raw.CPU == nil {
		return nil, &MissingConfigError{Path: "cpu"}
	}

	if raw.CPU.Count == nil {
		return nil, &MissingConfigError{Path: "cpu->count"}
	}

	cfg.CPU.Count = *raw.CPU.Count
	if cfg.CPU.Count == 0 || cfg.CPU.Count > MaxVCPU {
		return nil, &IllegalConfigError{Path: "cpu->count"}
	}

	if raw.Memory == nil {
		return nil, &MissingConfigError{Path: "memory"}
	}

	if raw.Memory.SizeMiB == nil {
		return nil, &MissingConfigError{Path: "memory->size_mib"}
	}

	cfg.Memory.SizeMiB = *raw.Memory.SizeMiB
	if cfg.Memory.SizeMiB == 0 {
		return nil, &IllegalConfigError{Path: "memory->size_mib"}
	}

	if raw.Device == nil {
		return nil, &MissingConfigError{Path: "device"}
	}

	for idx, dev := range *raw.Device {
		if dev.Driver == nil || *dev.Driver == "" {
			path := fmt.Sprintf("device[%d]->driver", idx)
			return nil, &MissingConfigError{Path: path}
		}

		cfg.Devices = append(cfg.Devices, Device{
			Driver: *dev.Driver,
			Source: deref(dev.Source),
		})
	}

	if raw.OS == nil {
		return nil, &MissingConfigError{Path: "os"}
	}

	cfg.OS = OS{
		Kernel:  deref(raw.OS.Kernel),
		Initrd:  deref(raw.OS.Initrd),
		Rootfs:  deref(raw.OS.Rootfs),
		Cmdline: deref(raw.OS.Cmdline),
	}

	if raw.VMM != nil && raw.VMM.Log != nil {
		log, err := buildLog(raw.VMM.Log)
		if err != nil {
			return nil, err
		}

		cfg.VMM.Log = log
	}

	return &cfg, nil
}

func buildLog(raw *rawLog) (*Log, error) {
	if raw.Level == nil {
		return nil, &MissingConfigError{Path: "vmm->log->level"}
	}

	var log Log

	switch strings.ToLower(*raw.Level) {
	case "debug":
		log.Level = LevelDebug
	case "info":
		log.Level = LevelInfo
	case "warn":
		log.Level = LevelWarn
	case "error":
		log.Level = LevelError
	default:
		return nil, &IllegalConfigError{Path: "vmm->log->level"}
	}

	log.Path = deref(raw.Path)

	return &log, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
