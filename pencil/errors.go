// SPDX-License-Identifier: MIT

package pencil

import "errors"

var (
	// ErrConfiguration indicates an invalid grid, shape or free-axis request.
	ErrConfiguration = errors.New("pencil: invalid configuration")

	// ErrShapeMismatch indicates a buffer whose local shape or dtype does not match the plan.
	ErrShapeMismatch = errors.New("pencil: buffer does not match layout")
)
