// Package jit maps generated machine code into executable memory.
// Memory is never writable and executable at the same time: buffers
// are filled while writable and remapped read-execute before use.
package jit

import "errors"

// ErrEmptyCode is returned when a code container holds no bytes.
var ErrEmptyCode = errors.New("code container is empty")

// ErrReleased is returned when a released code mapping is used.
var ErrReleased = errors.New("code mapping has been released")
