// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

// Package cmd provides the CLI command entry point for vmlet. It handles
// flag parsing, configuration loading, logging setup and error handling.
package cmd
