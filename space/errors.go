// SPDX-License-Identifier: MIT

package space

import "errors"

var (
	// ErrConfiguration indicates an invalid axis, dtype, basis or process-grid
	// combination at construction. Not retryable.
	ErrConfiguration = errors.New("space: invalid configuration")

	// ErrStructuralMismatch indicates a buffer whose local shape or dtype does
	// not match the space at that stage.
	ErrStructuralMismatch = errors.New("space: buffer does not match space")

	// ErrDestroyed indicates use of a space after Destroy.
	ErrDestroyed = errors.New("space: destroyed")
)
