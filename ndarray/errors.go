// SPDX-License-Identifier: MIT
// Package ndarray: sentinel error set.
// Every message carries the "ndarray:" prefix; call sites wrap with method
// context via fmt.Errorf("...: %w", ErrX) so errors.Is keeps working.

package ndarray

import (
	"errors"
	"fmt"
)

var (
	// ErrBadShape is returned when a shape is empty or has a non-positive extent.
	ErrBadShape = errors.New("ndarray: invalid shape")

	// ErrOutOfRange indicates an index outside the array bounds.
	ErrOutOfRange = errors.New("ndarray: index out of range")

	// ErrDimensionMismatch indicates incompatible shapes or ranks between operands.
	ErrDimensionMismatch = errors.New("ndarray: dimension mismatch")

	// ErrDtypeMismatch indicates operands with different element types.
	ErrDtypeMismatch = errors.New("ndarray: dtype mismatch")

	// ErrNilArray indicates a nil *Array argument.
	ErrNilArray = errors.New("ndarray: nil array")
)

// arrayErrorf wraps err with the method tag, e.g. "Array.Take: ...: ndarray: index out of range".
func arrayErrorf(method string, err error, format string, args ...any) error {
	if format == "" {
		return fmt.Errorf("Array.%s: %w", method, err)
	}

	return fmt.Errorf("Array.%s: %s: %w", method, fmt.Sprintf(format, args...), err)
}
