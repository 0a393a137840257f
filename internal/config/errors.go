// SPDX-FileCopyrightText: 2026 The vmlet authors
//
// SPDX-License-Identifier: Apache-2.0

package config

// MissingConfigError is returned if a required configuration field is
// absent. Path names the field like "cpu->count".
type MissingConfigError struct {
	Path string
}

// Error implements the [error] interface.
func (e *MissingConfigError) Error() string {
	return "required configuration " + e.Path + " is missing"
}

// Is implements the [errors.Is] interface.
func (*MissingConfigError) Is(other error) bool {
	_, ok := other.(*MissingConfigError)
	return ok
}

// IllegalConfigError is returned if a configuration field is present but
// carries a value outside its allowed range.
type IllegalConfigError struct {
	Path string
}

// Error implements the [error] interface.
func (e *IllegalConfigError) Error() string {
	return "configuration " + e.Path + " has an illegal value"
}

// Is implements the [errors.Is] interface.
func (*IllegalConfigError) Is(other error) bool {
	_, ok := other.(*IllegalConfigError)
	return ok
}
