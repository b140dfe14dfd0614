// SPDX-License-Identifier: MIT

package comm

import "errors"

var (
	// ErrBadDims indicates that a process-grid request cannot be satisfied for the given rank count.
	ErrBadDims = errors.New("comm: invalid process grid")

	// ErrBadSize indicates a non-positive group size.
	ErrBadSize = errors.New("comm: group size must be >= 1")

	// ErrBufferCount indicates a collective received a send list whose length differs from Size.
	ErrBufferCount = errors.New("comm: one buffer per rank required")

	// ErrFreed indicates use of a communicator after Free.
	ErrFreed = errors.New("comm: communicator freed")

	// ErrRankPanic wraps a panic recovered from a rank goroutine in Run.
	ErrRankPanic = errors.New("comm: rank panicked")
)
