// SPDX-License-Identifier: MIT

package basis

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/spectral/ndarray"
)

var (
	// ErrConfiguration marks an invalid basis configuration (extent, padding,
	// dealiasing mode, quadrature rule). Not retryable.
	ErrConfiguration = errors.New("basis: invalid configuration")

	// ErrShapeMismatch marks input/output arrays whose extent along the
	// transformed axis (or any batch axis) does not match the basis.
	ErrShapeMismatch = errors.New("basis: array shape mismatch")

	// ErrDtypeMismatch marks arrays whose dtype cannot be consumed or produced
	// by the transform (e.g. complex input to a real-to-complex basis).
	ErrDtypeMismatch = errors.New("basis: dtype mismatch")
)

// configErrorf wraps ErrConfiguration with the basis name and a detail message.
func configErrorf(name, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", name, fmt.Sprintf(format, args...), ErrConfiguration)
}

// shapeErrorf names the transform, axis and both shapes.
func shapeErrorf(name, op string, axis int, in, out *ndarray.Array, err error) error {
	return fmt.Errorf("%s.%s(axis=%d): in %v, out %v: %w", name, op, axis, in, out, err)
}
