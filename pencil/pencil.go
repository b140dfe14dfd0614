// SPDX-License-Identifier: MIT

package pencil

import (
	"fmt"

	"github.com/katalvlaran/spectral/comm"
)

// Decompose returns the extent and start of block rank when n items are
// split over size ranks.
func Decompose(n, size, rank int) (count, start int) {
	q, r := n/size, n%size
	count = q
	if rank < r {
		count++
	}
	start = q*rank + min(rank, r)

	return count, start
}

// Pencil is a distributed layout of a global array with one free axis.
type Pencil struct {
	comms    []comm.Comm
	shape    []int
	axis     int
	subshape []int
	substart []int
}

// New builds the pencil of shape whose free axis is axis over the grid s.
// The sub-communicator of axis must have size 1.
func New(s *Subcomm, shape []int, axis int) (*Pencil, error) {
	if s == nil {
		return nil, fmt.Errorf("pencil.New: nil subcomm: %w", ErrConfiguration)
	}

	return newPencil(s.comms, shape, axis)
}

func newPencil(comms []comm.Comm, shape []int, axis int) (*Pencil, error) {
	if len(shape) != len(comms) {
		return nil, fmt.Errorf("pencil: shape %v has %d axes, grid has %d: %w", shape, len(shape), len(comms), ErrConfiguration)
	}
	if axis < 0 || axis >= len(shape) {
		return nil, fmt.Errorf("pencil: free axis %d out of range for shape %v: %w", axis, shape, ErrConfiguration)
	}
	if n := comms[axis].Size(); n != 1 {
		return nil, fmt.Errorf("pencil: free axis %d is distributed over %d ranks: %w", axis, n, ErrConfiguration)
	}
	p := &Pencil{
		comms:    append([]comm.Comm(nil), comms...),
		shape:    append([]int(nil), shape...),
		axis:     axis,
		subshape: make([]int, len(shape)),
		substart: make([]int, len(shape)),
	}
	for i, c := range comms {
		if shape[i] < c.Size() {
			return nil, fmt.Errorf("pencil: axis %d extent %d < %d ranks: %w", i, shape[i], c.Size(), ErrConfiguration)
		}
		p.subshape[i], p.substart[i] = Decompose(shape[i], c.Size(), c.Rank())
	}

	return p, nil
}

// Pencil returns the layout of the same global shape with axis free.
func (p *Pencil) Pencil(axis int) (*Pencil, error) {
	if axis < 0 || axis >= len(p.shape) {
		return nil, fmt.Errorf("Pencil.Pencil(%d): shape %v: %w", axis, p.shape, ErrConfiguration)
	}
	comms := append([]comm.Comm(nil), p.comms...)
	comms[axis], comms[p.axis] = comms[p.axis], comms[axis]

	return newPencil(comms, p.shape, axis)
}

// Reshape returns a pencil with the same grid and free axis over a new global shape.
func (p *Pencil) Reshape(shape []int) (*Pencil, error) {
	return newPencil(p.comms, shape, p.axis)
}

// Shape returns the global shape.
func (p *Pencil) Shape() []int { return append([]int(nil), p.shape...) }

// Axis returns the free axis.
func (p *Pencil) Axis() int { return p.axis }

// Subshape returns the local block extents.
func (p *Pencil) Subshape() []int { return append([]int(nil), p.subshape...) }

// Substart returns the global offset of the local block.
func (p *Pencil) Substart() []int { return append([]int(nil), p.substart...) }

// Comm returns the sub-communicator distributing axis.
func (p *Pencil) Comm(axis int) comm.Comm { return p.comms[axis] }
