// SPDX-License-Identifier: MIT

package space

import (
	"fmt"
	"time"

	"github.com/katalvlaran/spectral/basis"
	"github.com/katalvlaran/spectral/ndarray"
	"github.com/katalvlaran/spectral/pencil"
	"github.com/katalvlaran/spectral/telemetry"
)

// stage is one per-axis transform of the forward chain. in lives on
// inPencil (axis free, forward input layout); out on outPencil (same grid,
// spectral extent along axis). The first stage reads the caller's input and
// the last writes the caller's output, so their in/out buffers stay nil.
type stage struct {
	axis      int
	basis     basis.Basis
	inPencil  *pencil.Pencil
	outPencil *pencil.Pencil
	inDtype   ndarray.Dtype
	outDtype  ndarray.Dtype
	in, out   *ndarray.Array
}

// stageFunc transforms one stage from in to out.
type stageFunc func(st *stage, in, out *ndarray.Array) error

// tapFunc sees stage i's output before the following transpose.
type tapFunc func(i int, out *ndarray.Array) error

// chain holds the stages in forward order and the transposes between them:
// transfers[i] moves stages[i].out into stages[i+1].in.
type chain struct {
	stages    []*stage
	transfers []*pencil.Transfer
	observer  telemetry.Observer
}

// buildChain walks axes from last to first, deriving each stage's pencil
// from the previous one and reshaping wherever a basis changes the extent.
func buildChain(grid *pencil.Subcomm, bases []basis.Basis, axes []int, dtype ndarray.Dtype, obs telemetry.Observer) (*chain, error) {
	n := len(axes)
	shape := make([]int, len(bases))
	for i, b := range bases {
		shape[i] = b.PhysicalN()
	}
	c := &chain{observer: obs}
	p, err := pencil.New(grid, shape, axes[n-1])
	if err != nil {
		return nil, fmt.Errorf("space: physical pencil %v free on axis %d: %w: %w", shape, axes[n-1], ErrConfiguration, err)
	}
	dt := dtype
	for i := 0; i < n; i++ {
		axis := axes[n-1-i]
		if i > 0 {
			q, err := p.Pencil(axis)
			if err != nil {
				return nil, fmt.Errorf("space: pencil %v free on axis %d: %w: %w", shape, axis, ErrConfiguration, err)
			}
			tr, err := p.Transfer(q)
			if err != nil {
				return nil, fmt.Errorf("space: transpose %d->%d: %w: %w", p.Axis(), axis, ErrConfiguration, err)
			}
			c.transfers = append(c.transfers, tr)
			p = q
		}
		b := bases[axis]
		if b.Family() == basis.PeriodicReal && dt != ndarray.Float64 {
			return nil, fmt.Errorf("space: real-to-complex basis on axis %d receives %v data: %w", axis, dt, ErrConfiguration)
		}
		st := &stage{axis: axis, basis: b, inPencil: p, inDtype: dt}
		dt = b.SpectralDtype(dt)
		st.outDtype = dt
		if m := b.SpectralN(); m != shape[axis] {
			shape[axis] = m
			if p, err = p.Reshape(shape); err != nil {
				return nil, fmt.Errorf("space: spectral pencil %v on axis %d: %w: %w", shape, axis, ErrConfiguration, err)
			}
		}
		st.outPencil = p
		c.stages = append(c.stages, st)
	}
	for i, st := range c.stages {
		if i > 0 {
			st.in = ndarray.Zeros(st.inPencil.Subshape(), st.inDtype)
		}
		if i < n-1 {
			st.out = ndarray.Zeros(st.outPencil.Subshape(), st.outDtype)
		}
	}

	return c, nil
}

func (c *chain) stageCount() int { return len(c.stages) }

func (c *chain) stageAt(i int) *stage { return c.stages[i] }

// index returns the position of axis in the chain (-1 when absent).
func (c *chain) index(axis int) int {
	for i, st := range c.stages {
		if st.axis == axis {
			return i
		}
	}

	return -1
}

// forward runs every stage from src (physical layout) into dst (spectral layout).
func (c *chain) forward(op string, src, dst *ndarray.Array, mode basis.Mode, scalar bool) error {
	return c.run(op, src, dst, func(st *stage, in, out *ndarray.Array) error {
		if scalar {
			return st.basis.ScalarProduct(in, out, st.axis, mode)
		}

		return st.basis.Forward(in, out, st.axis, mode)
	}, nil)
}

// run drives fn over the stages in forward order with the transposes in between.
func (c *chain) run(op string, src, dst *ndarray.Array, fn stageFunc, tap tapFunc) error {
	last := len(c.stages) - 1
	for i, st := range c.stages {
		out := st.out
		if i == last {
			out = dst
		}
		t0 := time.Now()
		if err := fn(st, src, out); err != nil {
			return fmt.Errorf("%s: axis %d (%s): %w", op, st.axis, st.basis.Name(), err)
		}
		c.observer.ObserveStage(op, st.axis, st.basis.Name(), time.Since(t0))
		if tap != nil {
			if err := tap(i, out); err != nil {
				return err
			}
		}
		if i == last {
			break
		}
		next := c.stages[i+1].in
		if err := c.transfers[i].Forward(out, next); err != nil {
			return fmt.Errorf("%s: transpose %d->%d: %w", op, st.axis, c.stages[i+1].axis, err)
		}
		c.observer.ObserveTranspose(op, next.Size())
		src = next
	}

	return nil
}

// backward runs the stages in reverse from src (spectral) into dst (physical).
func (c *chain) backward(op string, src, dst *ndarray.Array, mode basis.Mode) error {
	for i := len(c.stages) - 1; i >= 0; i-- {
		st := c.stages[i]
		out := st.in
		if i == 0 {
			out = dst
		}
		t0 := time.Now()
		if err := st.basis.Backward(src, out, st.axis, mode); err != nil {
			return fmt.Errorf("%s: axis %d (%s): %w", op, st.axis, st.basis.Name(), err)
		}
		c.observer.ObserveStage(op, st.axis, st.basis.Name(), time.Since(t0))
		if i == 0 {
			break
		}
		prev := c.stages[i-1].out
		if err := c.transfers[i-1].Backward(out, prev); err != nil {
			return fmt.Errorf("%s: transpose %d->%d: %w", op, st.axis, c.stages[i-1].axis, err)
		}
		c.observer.ObserveTranspose(op, prev.Size())
		src = prev
	}

	return nil
}
