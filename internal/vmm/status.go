// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

package vmm

// Status is a lifecycle state. The VM and each vCPU move through the same
// progression: Epoch -> Paused -> Running -> Paused or Exited.
type Status int

const (
	// StatusEpoch means constructed but not yet ready to run.
	StatusEpoch Status = iota
	// StatusPaused means initialized and idle.
	StatusPaused
	// StatusRunning means at least one execution context is executing.
	StatusRunning
	// StatusExited is terminal.
	StatusExited
)

// String implements the [fmt.Stringer] interface.
func (s Status) String() string {
	switch s {
	case StatusEpoch:
		return "epoch"
	case StatusPaused:
		return "paused"
	case StatusRunning:
		return "running"
	case StatusExited:
		return "exited"
	}

	return "invalid"
}

// Command is a control message sent from the control thread to one vCPU
// thread.
type Command int

const (
	// CommandRun tells the vCPU to enter its execution loop. It is
	// idempotent: a vCPU that is already running replies with its current
	// status and starts no second loop. The reply is the vCPU status at
	// the time the loop yields.
	CommandRun Command = iota

	// CommandExit tells the vCPU to release its kernel handle and
	// terminate its thread. No reply is sent; termination is observed
	// only by joining the thread.
	CommandExit
)

// String implements the [fmt.Stringer] interface.
func (c Command) String() string {
	switch c {
	case CommandRun:
		return "run"
	case CommandExit:
		return "exit"
	}

	return "invalid"
}

// Result is the per-vCPU outcome of one [VcpuManager.Broadcast] call.
// Either Status or Err is meaningful, never both.
type Result struct {
	ID     int
	Status Status
	Err    error
}
