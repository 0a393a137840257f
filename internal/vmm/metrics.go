// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

package vmm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	vmCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vmlet",
		Subsystem: "vm",
		Name:      "created_total",
		Help:      "Number of virtual machines constructed.",
	})

	vcpuCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vmlet",
		Subsystem: "vcpu",
		Name:      "created_total",
		Help:      "Number of vCPU threads spawned.",
	})

	vcpuExited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vmlet",
		Subsystem: "vcpu",
		Name:      "exited_total",
		Help:      "Number of vCPU threads terminated.",
	})

	channelErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vmlet",
		Subsystem: "vcpu",
		Name:      "channel_errors_total",
		Help:      "Number of control commands that found the vCPU peer gone.",
	})
)
